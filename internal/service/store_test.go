package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/maren/photorestore/internal/domain"
)

// fakeUserStore is an in-memory UserStore. A hand-written fake keeps the
// tests readable; the mutex matters because the ledger tests hammer it from
// many goroutines.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int

	findErr error
}

var _ UserStore = (*fakeUserStore)(nil)

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (f *fakeUserStore) add(firebaseUID, email string, credits int) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	user := &domain.User{
		ID:          "user-" + strconv.Itoa(f.seq),
		Email:       email,
		FirebaseUID: firebaseUID,
		Credits:     credits,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.users[firebaseUID] = user
	return user
}

func (f *fakeUserStore) FindByFirebaseUID(_ context.Context, firebaseUID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	user, ok := f.users[firebaseUID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) Upsert(_ context.Context, firebaseUID, email string, name *string) (*domain.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[firebaseUID]; ok {
		user.Email = email
		if name != nil {
			user.Name = name
		}
		user.UpdatedAt = time.Now()
		copied := *user
		return &copied, false, nil
	}
	f.seq++
	user := &domain.User{
		ID:          "user-" + strconv.Itoa(f.seq),
		Email:       email,
		FirebaseUID: firebaseUID,
		Name:        name,
		Credits:     1, // schema default
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.users[firebaseUID] = user
	copied := *user
	return &copied, true, nil
}

func (f *fakeUserStore) AddCredits(_ context.Context, firebaseUID string, amount int) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[firebaseUID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	user.Credits += amount
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) SpendCredits(_ context.Context, firebaseUID string, amount int) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[firebaseUID]
	if !ok || user.Credits < amount {
		// Mirrors the conditional UPDATE: zero matched rows.
		return nil, domain.ErrInsufficientCredits
	}
	user.Credits -= amount
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}
