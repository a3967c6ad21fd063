package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/generation"
	"server/internal/infra"
	"server/internal/kv"
	"server/internal/payment"
	"server/internal/quota"
)

// App carries the wired collaborators every handler needs.
type App struct {
	Logger       zerolog.Logger
	Cfg          *infra.Config
	Engine       *quota.Engine
	Orchestrator *generation.Orchestrator
	Users        domain.UserRepository
	Credits      *quota.CreditLedger
	Paid         *quota.PurchaseMarker
	Verifier     payment.Verifier
	KV           kv.Store
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the one-field error body the extension matches on.
func (a *App) error(w http.ResponseWriter, code int, errCode string) {
	a.json(w, code, map[string]string{"error": errCode})
}

// NotFound keeps unknown paths inside the JSON error taxonomy.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusNotFound, "NOT_FOUND")
}
