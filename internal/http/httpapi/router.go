package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// rateWindow is the fixed window the per-IP limit counts against.
const rateWindow = time.Minute

// RouterOptions carries the cross-cutting knobs the route tree needs.
type RouterOptions struct {
	JWTSecret       string
	AdminKey        string
	RateLimitPerMin int
	MaxBodyBytes    int64
	CountryLookup   middleware.CountryLookup
	DefaultLocale   string
}

// NewRouter wires the full route tree.
func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.CORS,
		middleware.Logger(app.Logger),
	)
	r.NotFound(app.NotFound)

	r.Get("/health", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuthJWT(opts.JWTSecret))
		r.Get("/quota", app.Quota)

		r.With(
			middleware.RateLimit(opts.RateLimitPerMin, rateWindow),
			middleware.BodyLimit(opts.MaxBodyBytes),
		).Post("/generate", app.Generate)
	})

	r.Get("/budget", app.Budget)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", app.Login)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(opts.JWTSecret))
			r.Get("/profile", app.Profile)
			r.Get("/credit-history", app.CreditHistory)
		})
	})

	r.With(middleware.AuthJWT(opts.JWTSecret)).Post("/purchase/confirm", app.PurchaseConfirm)

	r.With(middleware.Locale(opts.DefaultLocale, opts.CountryLookup)).Get("/pay", app.Pay)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminGuard(opts.AdminKey))
		r.Post("/credits/add", app.AdminCreditsAdd)
		r.Get("/credits/get", app.AdminCreditsGet)
		r.Post("/credits/reset", app.AdminCreditsReset)
		r.Post("/credits/delete-user", app.AdminDeleteUser)
	})

	r.Route("/kv", func(r chi.Router) {
		r.Get("/get", app.KVGet)
		r.Post("/set", app.KVSet)
	})

	return r
}
