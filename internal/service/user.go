package service

import (
	"context"
	"errors"

	"github.com/maren/photorestore/internal/domain"
)

// UserStore defines the user data access interface consumed by services.
type UserStore interface {
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*domain.User, error)
	Upsert(ctx context.Context, firebaseUID, email string, name *string) (*domain.User, bool, error)
	AddCredits(ctx context.Context, firebaseUID string, amount int) (*domain.User, error)
	SpendCredits(ctx context.Context, firebaseUID string, amount int) (*domain.User, error)
}

// UserService handles account lifecycle.
type UserService struct {
	users UserStore
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// SignIn upserts the user record on sign-in. An existing user gets their
// email refreshed and, when a name is supplied, their name; a new user is
// inserted with the schema's starting credits. The second return value
// reports whether the user was created.
func (s *UserService) SignIn(ctx context.Context, firebaseUID, email, name string) (*domain.User, bool, error) {
	var namePtr *string
	if name != "" {
		namePtr = &name
	}
	return s.users.Upsert(ctx, firebaseUID, email, namePtr)
}

// Get retrieves a user by Firebase UID.
func (s *UserService) Get(ctx context.Context, firebaseUID string) (*domain.User, error) {
	user, err := s.users.FindByFirebaseUID(ctx, firebaseUID)
	if err != nil {
		return nil, userNotFound(err)
	}
	return user, nil
}

func userNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("User not found")
	}
	return err
}
