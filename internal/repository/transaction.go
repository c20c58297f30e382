package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/maren/photorestore/internal/domain"
)

// TransactionRepository records processed payment transactions so that
// replayed webhook deliveries do not credit a user twice.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Apply records the provider transaction ID and credits the user, atomically.
// The second return value reports whether the transaction was applied; false
// means the ID was seen before and the balance is unchanged. A failed credit
// rolls back the ID record, so a provider retry can still succeed later.
func (r *TransactionRepository) Apply(ctx context.Context, transactionID, firebaseUID string, credits int) (*domain.User, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO processed_transactions (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		transactionID)
	if err != nil {
		return nil, false, fmt.Errorf("record transaction %s: %w", transactionID, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}
	if inserted == 0 {
		return nil, false, nil
	}

	var user domain.User
	err = tx.QueryRowxContext(ctx,
		`UPDATE users
		 SET credits = credits + $2, updated_at = NOW()
		 WHERE firebase_uid = $1
		 RETURNING `+userColumns,
		firebaseUID, credits,
	).StructScan(&user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("credit user %s for transaction %s: %w", firebaseUID, transactionID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit transaction %s: %w", transactionID, err)
	}
	return &user, true, nil
}
