package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"server/internal/middleware"
)

type loginRequest struct {
	Email string `json:"email"`
}

type userDTO struct {
	Email   string `json:"email"`
	Credits int64  `json:"credits"`
}

// Login issues a 30-day session token for the given email, creating the user
// record with zero credits on first sight. There is no password; the email is
// the account.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		a.error(w, http.StatusBadRequest, "INVALID_EMAIL")
		return
	}

	user, err := a.Users.Upsert(r.Context(), email)
	if err != nil {
		a.Logger.Error().Err(err).Str("email", email).Msg("login upsert failed")
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	token, err := middleware.SignJWT(a.Cfg.JWTSecret, middleware.TokenClaims{
		Email:  email,
		Exp:    time.Now().Add(30 * 24 * time.Hour).Unix(),
		Issuer: "image-proxy",
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  userDTO{Email: user.Email, Credits: user.Credits},
	})
}

// Profile returns the authenticated user's record.
func (a *App) Profile(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())

	user, err := a.Users.GetByEmail(r.Context(), email)
	if err != nil {
		a.error(w, http.StatusNotFound, "USER_NOT_FOUND")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"email":     user.Email,
		"credits":   user.Credits,
		"createdAt": user.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": user.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// CreditHistory lists the newest ledger entries for the authenticated user.
func (a *App) CreditHistory(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}

	entries, err := a.Users.ListCreditHistory(r.Context(), email, limit)
	if err != nil {
		a.Logger.Error().Err(err).Str("email", email).Msg("credit history read failed")
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, map[string]any{
			"id":        e.ID,
			"action":    e.Action,
			"amount":    e.Amount,
			"details":   e.Details,
			"createdAt": e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"history": items})
}
