package handlers

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"server/internal/counter"
	"server/internal/domain"
	"server/internal/generation"
	"server/internal/infra"
	"server/internal/kv"
	"server/internal/payment"
	"server/internal/providers/image"
	"server/internal/quota"
)

type fakeUsers struct {
	mu      sync.Mutex
	credits map[string]int64
	history []domain.CreditHistoryEntry
}

func newFakeUsers() *fakeUsers { return &fakeUsers{credits: make(map[string]int64)} }

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.credits[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.User{Email: email, Credits: c}, nil
}

func (f *fakeUsers) Upsert(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.credits[email]; !ok {
		f.credits[email] = 0
	}
	return &domain.User{Email: email, Credits: f.credits[email]}, nil
}

func (f *fakeUsers) AddCredits(_ context.Context, email string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credits[email] += amount
	return f.credits[email], nil
}

func (f *fakeUsers) ConsumeCredits(_ context.Context, email string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credits[email] < amount {
		return 0, domain.ErrInsufficientCredits
	}
	f.credits[email] -= amount
	return f.credits[email], nil
}

func (f *fakeUsers) SetCredits(_ context.Context, email string, credits int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credits[email] = credits
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.credits, email)
	return nil
}

func (f *fakeUsers) AppendCreditHistory(_ context.Context, entry *domain.CreditHistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, *entry)
	return nil
}

func (f *fakeUsers) ListCreditHistory(_ context.Context, email string, limit int) ([]domain.CreditHistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CreditHistoryEntry
	for i := len(f.history) - 1; i >= 0 && len(out) < limit; i-- {
		if f.history[i].Email == email {
			out = append(out, f.history[i])
		}
	}
	return out, nil
}

func (f *fakeUsers) historyFor(email string) []domain.CreditHistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CreditHistoryEntry
	for _, e := range f.history {
		if e.Email == email {
			out = append(out, e)
		}
	}
	return out
}

type stubEditor struct {
	err   error
	calls int
}

func (s *stubEditor) Edit(_ context.Context, _ image.EditRequest) (*image.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &image.Result{Data: "ZWRpdGVk", MIME: "image/png"}, nil
}

type stubVerifier struct {
	order *payment.Order
	err   error
}

func (s *stubVerifier) VerifyOrder(_ context.Context, orderID string) (*payment.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	order := *s.order
	order.ID = orderID
	return &order, nil
}

type testApp struct {
	app      *App
	users    *fakeUsers
	editor   *stubEditor
	verifier *stubVerifier
}

func newTestApp() *testApp {
	cfg := &infra.Config{
		AppEnv:         "test",
		JWTSecret:      "test-secret",
		DailyLimit:     3,
		PurchasedLimit: 20,
		DailyBudgetKrw: 10000,
		UsdPerImage:    0.039,
		FxKrwPerUsd:    1380,
		CostPerCallKrw: 54,
		PayPalEnv:      "sandbox",
	}

	counters := counter.NewMemoryStore()
	users := newFakeUsers()
	logger := zerolog.New(io.Discard)

	credits := quota.NewCreditLedger(users, logger)
	engine := quota.NewEngine(
		quota.NewAllowanceLedger(counters, cfg.DailyLimit),
		quota.NewBudgetLedger(counters, cfg.DailyBudgetKrw),
		credits,
		cfg.CostPerCallKrw,
	)

	editor := &stubEditor{}
	verifier := &stubVerifier{order: &payment.Order{Status: "COMPLETED", Currency: "USD", Value: "0.99"}}

	app := &App{
		Logger:       logger,
		Cfg:          cfg,
		Engine:       engine,
		Orchestrator: generation.NewOrchestrator(engine, editor, logger),
		Users:        users,
		Credits:      credits,
		Paid:         quota.NewPurchaseMarker(counters),
		Verifier:     verifier,
		KV:           kv.NewMemoryStore(),
	}

	return &testApp{app: app, users: users, editor: editor, verifier: verifier}
}
