package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/maren/photorestore/internal/domain"
)

const userColumns = `id, email, firebase_uid, name, credits, created_at, updated_at`

// UserRepository handles user data access operations.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByFirebaseUID retrieves a user by their Firebase UID.
func (r *UserRepository) FindByFirebaseUID(ctx context.Context, firebaseUID string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE firebase_uid = $1`, firebaseUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by firebase uid %s: %w", firebaseUID, err)
	}
	return &user, nil
}

// Upsert creates a new user or updates an existing one based on firebase_uid.
// A nil name leaves the stored name untouched on update. The second return
// value reports whether a new row was inserted.
func (r *UserRepository) Upsert(ctx context.Context, firebaseUID, email string, name *string) (*domain.User, bool, error) {
	var row struct {
		domain.User
		IsNew bool `db:"is_new"`
	}
	// xmax = 0 only holds for freshly inserted rows, which distinguishes the
	// insert path from the conflict-update path in a single statement.
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (id, email, firebase_uid, name)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (firebase_uid)
		 DO UPDATE SET email = EXCLUDED.email,
		               name = COALESCE(EXCLUDED.name, users.name),
		               updated_at = NOW()
		 RETURNING `+userColumns+`, (xmax = 0) AS is_new`,
		xid.New().String(), email, firebaseUID, name,
	).StructScan(&row)
	if err != nil {
		return nil, false, fmt.Errorf("upsert user %s: %w", firebaseUID, err)
	}
	return &row.User, row.IsNew, nil
}

// AddCredits increments the user's balance by amount and returns the updated
// row. There is no upper bound on the balance.
func (r *UserRepository) AddCredits(ctx context.Context, firebaseUID string, amount int) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowxContext(ctx,
		`UPDATE users
		 SET credits = credits + $2, updated_at = NOW()
		 WHERE firebase_uid = $1
		 RETURNING `+userColumns,
		firebaseUID, amount,
	).StructScan(&user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("add %d credits to user %s: %w", amount, firebaseUID, err)
	}
	return &user, nil
}

// SpendCredits decrements the user's balance by amount, but only when the
// current balance covers it. The guard lives in the WHERE clause rather than
// a read-then-write, so concurrent spends can never take the balance
// negative. Zero matched rows means the balance was insufficient.
func (r *UserRepository) SpendCredits(ctx context.Context, firebaseUID string, amount int) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowxContext(ctx,
		`UPDATE users
		 SET credits = credits - $2, updated_at = NOW()
		 WHERE firebase_uid = $1 AND credits >= $2
		 RETURNING `+userColumns,
		firebaseUID, amount,
	).StructScan(&user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInsufficientCredits
		}
		return nil, fmt.Errorf("spend %d credits of user %s: %w", amount, firebaseUID, err)
	}
	return &user, nil
}
