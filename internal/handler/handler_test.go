package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/maren/photorestore/internal/domain"
	"github.com/maren/photorestore/internal/service"
)

// fakeStore is an in-memory service.UserStore shared by the handler tests.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

var _ service.UserStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*domain.User)}
}

func (f *fakeStore) add(firebaseUID, email string, credits int) *domain.User {
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

func (f *fakeStore) FindByFirebaseUID(_ context.Context, firebaseUID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[firebaseUID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) Upsert(_ context.Context, firebaseUID, email string, name *string) (*domain.User, bool, error) {
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
		Credits:     1,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.users[firebaseUID] = user
	copied := *user
	return &copied, true, nil
}

func (f *fakeStore) AddCredits(_ context.Context, firebaseUID string, amount int) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[firebaseUID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	user.Credits += amount
	copied := *user
	return &copied, nil
}

func (f *fakeStore) SpendCredits(_ context.Context, firebaseUID string, amount int) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[firebaseUID]
	if !ok || user.Credits < amount {
		return nil, domain.ErrInsufficientCredits
	}
	user.Credits -= amount
	copied := *user
	return &copied, nil
}

// newAPIRouter wires the user and credit routes the way cmd/server does,
// without auth.
func newAPIRouter(store *fakeStore) http.Handler {
	validate := NewValidator()
	userHandler := NewUserHandler(service.NewUserService(store), validate)
	creditHandler := NewCreditHandler(service.NewCreditService(store), validate)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/users", userHandler.SignIn)
		r.Get("/users", userHandler.Get)
		r.Get("/credits", creditHandler.Packages)
		r.Post("/credits", creditHandler.Purchase)
		r.Patch("/credits", creditHandler.Spend)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
