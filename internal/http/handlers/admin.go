package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"server/internal/domain"
)

type adminCreditsRequest struct {
	Email  string `json:"email"`
	Amount int64  `json:"amount"`
}

func (a *App) adminEmail(w http.ResponseWriter, r *http.Request, req *adminCreditsRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return false
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return false
	}
	return true
}

// AdminCreditsAdd grants credits without a payment. Test environments only.
func (a *App) AdminCreditsAdd(w http.ResponseWriter, r *http.Request) {
	var req adminCreditsRequest
	if !a.adminEmail(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	balance, err := a.Credits.Add(r.Context(), req.Email, req.Amount, map[string]any{"source": "admin"})
	if err != nil {
		a.Logger.Error().Err(err).Str("email", req.Email).Msg("admin credit add failed")
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"ok": true, "email": req.Email, "credits": balance})
}

// AdminCreditsGet reads a balance.
func (a *App) AdminCreditsGet(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
	if email == "" {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	user, err := a.Users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "USER_NOT_FOUND")
			return
		}
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"email": user.Email, "credits": user.Credits})
}

// AdminCreditsReset forces the balance to an absolute value, default zero.
func (a *App) AdminCreditsReset(w http.ResponseWriter, r *http.Request) {
	var req adminCreditsRequest
	if !a.adminEmail(w, r, &req) {
		return
	}
	if req.Amount < 0 {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	if err := a.Users.SetCredits(r.Context(), req.Email, req.Amount); err != nil {
		a.Logger.Error().Err(err).Str("email", req.Email).Msg("admin credit reset failed")
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"ok": true, "email": req.Email, "credits": req.Amount})
}

// AdminDeleteUser removes the account record. History rows stay.
func (a *App) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	var req adminCreditsRequest
	if !a.adminEmail(w, r, &req) {
		return
	}

	if err := a.Users.Delete(r.Context(), req.Email); err != nil {
		a.Logger.Error().Err(err).Str("email", req.Email).Msg("admin user delete failed")
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"ok": true, "email": req.Email})
}
