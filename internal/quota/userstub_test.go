package quota

import (
	"context"
	"sync"
	"time"

	"server/internal/domain"
)

// fakeUsers is an in-memory UserRepository honoring the same atomicity
// contract as the real store.
type fakeUsers struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	history []domain.CreditHistoryEntry
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*domain.User)}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) Upsert(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		u = &domain.User{Email: email, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		f.users[email] = u
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) AddCredits(_ context.Context, email string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		u = &domain.User{Email: email, Credits: amount}
		f.users[email] = u
		return u.Credits, nil
	}
	u.Credits += amount
	return u.Credits, nil
}

func (f *fakeUsers) ConsumeCredits(_ context.Context, email string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || u.Credits < amount {
		return 0, domain.ErrInsufficientCredits
	}
	u.Credits -= amount
	return u.Credits, nil
}

func (f *fakeUsers) SetCredits(_ context.Context, email string, credits int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		u = &domain.User{Email: email}
		f.users[email] = u
	}
	u.Credits = credits
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, email)
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

var _ domain.UserRepository = (*fakeUsers)(nil)
