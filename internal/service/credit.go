package service

import (
	"context"

	"github.com/maren/photorestore/internal/domain"
)

// CreditService maintains the per-user credit balance.
type CreditService struct {
	users UserStore
}

// NewCreditService creates a new CreditService.
func NewCreditService(users UserStore) *CreditService {
	return &CreditService{users: users}
}

// Catalog returns the static package catalog.
func (s *CreditService) Catalog() map[string]domain.CreditPackage {
	return domain.Packages
}

// Purchase credits the user with the package's credit amount. The user and
// the package must both exist.
func (s *CreditService) Purchase(ctx context.Context, firebaseUID, packageName string) (*domain.User, error) {
	if _, err := s.users.FindByFirebaseUID(ctx, firebaseUID); err != nil {
		return nil, userNotFound(err)
	}

	pkg, ok := domain.PackageByName(packageName)
	if !ok {
		return nil, domain.NotFound("Package not found")
	}

	user, err := s.users.AddCredits(ctx, firebaseUID, pkg.Credits)
	if err != nil {
		return nil, userNotFound(err)
	}
	return user, nil
}

// Spend deducts amount credits from the user. The deduction is applied only
// when the balance covers it; otherwise the balance is left untouched and
// ErrInsufficientCredits is returned.
func (s *CreditService) Spend(ctx context.Context, firebaseUID string, amount int) (*domain.User, error) {
	if amount <= 0 {
		return nil, domain.Invalid("Amount must be a positive integer")
	}

	if _, err := s.users.FindByFirebaseUID(ctx, firebaseUID); err != nil {
		return nil, userNotFound(err)
	}

	return s.users.SpendCredits(ctx, firebaseUID, amount)
}
