package handlers

import "net/http"

// Health echoes the effective pricing configuration so a deployment can be
// inspected without reading its environment.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"ok":                       true,
		"limit":                    a.Cfg.DailyLimit,
		"purchasedLimit":           a.Cfg.PurchasedLimit,
		"dailyBudgetKrw":           a.Cfg.DailyBudgetKrw,
		"costPerCallKrw":           a.Cfg.CostPerCallKrw,
		"usdPerImage":              a.Cfg.UsdPerImage,
		"fxKrwPerUsd":              a.Cfg.FxKrwPerUsd,
		"paypalEnv":                a.Cfg.PayPalEnv,
		"paypalClientIdConfigured": a.Cfg.PayPalClientID != "",
	})
}
