package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/app"
	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/sqlstore"
)

type CreditEntryRepository struct {
	db *sqlstore.DB
}

var _ app.CreditEntryRepository = (*CreditEntryRepository)(nil)

func NewCreditEntryRepository(db *sqlstore.DB) *CreditEntryRepository {
	return &CreditEntryRepository{db: db}
}

func (r *CreditEntryRepository) Save(ctx context.Context, e *domain.CreditEntry) error {
	if e.Version == 0 {
		const q = `
			INSERT INTO credit_entry (id, customer_id, total_credit_amount, version)
			VALUES (?, ?, ?, 1)`
		if _, err := r.db.Exec(ctx, q, e.ID.String(), e.CustomerID.String(), e.TotalCreditAmount.String()); err != nil {
			return fmt.Errorf("persistence: insert credit entry of %s: %w", e.CustomerID, err)
		}
		e.Version = 1
		return nil
	}

	const q = `
		UPDATE credit_entry
		SET    total_credit_amount = ?, version = version + 1
		WHERE  id = ? AND version = ?`
	res, err := r.db.Exec(ctx, q, e.TotalCreditAmount.String(), e.ID.String(), e.Version)
	if err != nil {
		return fmt.Errorf("persistence: update credit entry of %s: %w", e.CustomerID, err)
	}
	if err := checkVersioned(res, "credit entry", e.ID.String(), e.Version); err != nil {
		return err
	}
	e.Version++
	return nil
}

func (r *CreditEntryRepository) FindByCustomerID(ctx context.Context, customerID shared.CustomerID) (domain.CreditEntry, bool, error) {
	const q = `SELECT id, total_credit_amount, version FROM credit_entry WHERE customer_id = ?`
	var (
		e         domain.CreditEntry
		id, total string
	)
	err := r.db.QueryRow(ctx, q, customerID.String()).Scan(&id, &total, &e.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CreditEntry{}, false, nil
	}
	if err != nil {
		return domain.CreditEntry{}, false, fmt.Errorf("persistence: find credit entry of %s: %w", customerID, err)
	}
	e.CustomerID = customerID
	if e.ID, err = shared.ParseID[shared.CreditEntryID](id); err != nil {
		return domain.CreditEntry{}, false, fmt.Errorf("persistence: credit entry of %s: %w", customerID, err)
	}
	if e.TotalCreditAmount, err = shared.ParseMoney(total); err != nil {
		return domain.CreditEntry{}, false, fmt.Errorf("persistence: credit entry of %s: %w", customerID, err)
	}
	return e, true, nil
}

type CreditHistoryRepository struct {
	db *sqlstore.DB
}

var _ app.CreditHistoryRepository = (*CreditHistoryRepository)(nil)

func NewCreditHistoryRepository(db *sqlstore.DB) *CreditHistoryRepository {
	return &CreditHistoryRepository{db: db}
}

// Save appends h as the customer's next ledger row.
func (r *CreditHistoryRepository) Save(ctx context.Context, h domain.CreditHistory) error {
	const q = `
		INSERT INTO credit_history (id, seq, customer_id, amount, type)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?
		FROM   credit_history
		WHERE  customer_id = ?`
	_, err := r.db.Exec(ctx, q,
		h.ID.String(), h.CustomerID.String(), h.Amount.String(), string(h.TransactionType), h.CustomerID.String(),
	)
	if err != nil {
		return fmt.Errorf("persistence: insert credit history of %s: %w", h.CustomerID, err)
	}
	return nil
}

// FindByCustomerID returns the ledger in insertion order. A customer
// without rows has no ledger.
func (r *CreditHistoryRepository) FindByCustomerID(ctx context.Context, customerID shared.CustomerID) ([]domain.CreditHistory, bool, error) {
	const q = `
		SELECT id, amount, type
		FROM   credit_history
		WHERE  customer_id = ?
		ORDER  BY seq`
	rows, err := r.db.Query(ctx, q, customerID.String())
	if err != nil {
		return nil, false, fmt.Errorf("persistence: find credit history of %s: %w", customerID, err)
	}
	defer rows.Close()

	var histories []domain.CreditHistory
	for rows.Next() {
		var (
			h                  domain.CreditHistory
			id, amount, txType string
		)
		if err := rows.Scan(&id, &amount, &txType); err != nil {
			return nil, false, fmt.Errorf("persistence: scan credit history of %s: %w", customerID, err)
		}
		h.CustomerID = customerID
		h.TransactionType = domain.TransactionType(txType)
		if h.ID, err = shared.ParseID[shared.CreditHistoryID](id); err != nil {
			return nil, false, fmt.Errorf("persistence: credit history of %s: %w", customerID, err)
		}
		if h.Amount, err = shared.ParseMoney(amount); err != nil {
			return nil, false, fmt.Errorf("persistence: credit history of %s: %w", customerID, err)
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("persistence: find credit history of %s: %w", customerID, err)
	}
	return histories, len(histories) > 0, nil
}
