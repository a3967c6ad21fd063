package handlers

import (
	"net/http"

	"server/internal/middleware"
	"server/internal/quota"
)

// Quota reports the caller's standing without consuming anything. Repeated
// calls must return identical figures.
func (a *App) Quota(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())
	identity := middleware.ClientIP(r)

	status, err := a.Engine.Snapshot(r.Context(), email, identity)
	if err != nil {
		a.Logger.Error().Err(err).Msg("quota snapshot failed")
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	// A purchase from this client today raises the advisory limit figure
	// even while the balance routes through the free path.
	limit := status.Limit
	if status.Path == quota.PathFree {
		if purchased, err := a.Paid.Purchased(r.Context(), identity); err == nil && purchased {
			limit = a.Cfg.PurchasedLimit
		}
	}

	a.json(w, http.StatusOK, map[string]any{
		"remaining":          status.Remaining,
		"limit":              limit,
		"remainingCredits":   status.Credits,
		"creditUnit":         quota.CreditUnit,
		"baseLimit":          a.Cfg.DailyLimit,
		"purchasedLimit":     a.Cfg.PurchasedLimit,
		"budgetRemainingKrw": status.BudgetRemainingKrw,
		"dailyBudgetKrw":     a.Cfg.DailyBudgetKrw,
		"costPerCallKrw":     a.Cfg.CostPerCallKrw,
		"usdPerImage":        a.Cfg.UsdPerImage,
		"fxKrwPerUsd":        a.Cfg.FxKrwPerUsd,
		"credits":            status.Credits,
		"isLoggedIn":         email != "",
	})
}

// Budget reports the global daily spend position.
func (a *App) Budget(w http.ResponseWriter, r *http.Request) {
	remaining, err := a.Engine.BudgetRemaining(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("budget read failed")
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"remainingKrw":   remaining,
		"dailyBudgetKrw": a.Cfg.DailyBudgetKrw,
		"costPerCallKrw": a.Cfg.CostPerCallKrw,
		"usdPerImage":    a.Cfg.UsdPerImage,
		"fxKrwPerUsd":    a.Cfg.FxKrwPerUsd,
	})
}
