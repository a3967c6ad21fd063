package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/counter"
	"server/internal/generation"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/kv"
	"server/internal/middleware"
	"server/internal/payment"
	"server/internal/providers/genai"
	"server/internal/providers/image"
	"server/internal/quota"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	users := repo.NewUserRepository(dbpool)
	if err := users.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare database schema")
	}

	// Counters and the KV bridge ride redis when configured. The in-process
	// fallback only holds on a single instance and loses state on restart.
	var counters counter.Store
	var bridge kv.Store
	if cfg.RedisURL != "" {
		redisClient, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer redisClient.Close()
		counters = counter.NewRedisStore(redisClient)
		bridge = kv.NewRedisStore(redisClient)
	} else {
		logger.Warn().Msg("REDIS_URL not set, using in-process counters")
		counters = counter.NewMemoryStore()
		bridge = kv.NewMemoryStore()
	}

	credits := quota.NewCreditLedger(users, logger)
	engine := quota.NewEngine(
		quota.NewAllowanceLedger(counters, cfg.DailyLimit),
		quota.NewBudgetLedger(counters, cfg.DailyBudgetKrw),
		credits,
		cfg.CostPerCallKrw,
	)

	genaiClient := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	if !genaiClient.Configured() {
		logger.Warn().Msg("GEMINI_API_KEY not set, /generate will fail")
	}
	editor := image.NewGeminiEditor(genaiClient)

	orchestrator := generation.NewOrchestrator(engine, editor, logger)

	verifier := payment.NewPayPalVerifier(payment.PayPalOptions{
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		Env:          cfg.PayPalEnv,
	})

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable")
	} else if resolver != nil {
		defer resolver.Close()
		countryLookup = resolver.CountryCode
	}

	app := &handlers.App{
		Logger:       logger,
		Cfg:          cfg,
		Engine:       engine,
		Orchestrator: orchestrator,
		Users:        users,
		Credits:      credits,
		Paid:         quota.NewPurchaseMarker(counters),
		Verifier:     verifier,
		KV:           bridge,
	}

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		JWTSecret:       cfg.JWTSecret,
		AdminKey:        cfg.AdminTestKey,
		RateLimitPerMin: cfg.RateLimitPerMin,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		CountryLookup:   countryLookup,
		DefaultLocale:   "en",
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
