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

type PaymentRepository struct {
	db *sqlstore.DB
}

var _ app.PaymentRepository = (*PaymentRepository)(nil)

func NewPaymentRepository(db *sqlstore.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Save inserts a new payment or updates the status of a stored one under a
// version check. A second payment for the same order violates the unique
// order_id and is reported as a concurrent modification.
func (r *PaymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	if p.Version == 0 {
		var exists int
		err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE order_id = ?`, p.OrderID.String()).Scan(&exists)
		if err != nil {
			return fmt.Errorf("persistence: check payment of %s: %w", p.OrderID, err)
		}
		if exists > 0 {
			return fmt.Errorf("persistence: payment of %s exists: %w", p.OrderID, shared.ErrConcurrentModification)
		}
		const q = `
			INSERT INTO payments (id, customer_id, order_id, price, status, created_at, version)
			VALUES (?, ?, ?, ?, ?, ?, 1)`
		_, err = r.db.Exec(ctx, q,
			p.ID.String(), p.CustomerID.String(), p.OrderID.String(),
			p.Price.String(), string(p.Status), sqlstore.FormatTime(p.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("persistence: insert payment %s: %w", p.ID, err)
		}
		p.Version = 1
		return nil
	}

	const q = `UPDATE payments SET status = ?, version = version + 1 WHERE id = ? AND version = ?`
	res, err := r.db.Exec(ctx, q, string(p.Status), p.ID.String(), p.Version)
	if err != nil {
		return fmt.Errorf("persistence: update payment %s: %w", p.ID, err)
	}
	if err := checkVersioned(res, "payment", p.ID.String(), p.Version); err != nil {
		return err
	}
	p.Version++
	return nil
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID shared.OrderID) (domain.Payment, bool, error) {
	const q = `
		SELECT id, customer_id, price, status, created_at, version
		FROM   payments
		WHERE  order_id = ?`
	var (
		p                             domain.Payment
		id, customerID, price, status string
		createdAt                     string
	)
	err := r.db.QueryRow(ctx, q, orderID.String()).Scan(&id, &customerID, &price, &status, &createdAt, &p.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Payment{}, false, nil
	}
	if err != nil {
		return domain.Payment{}, false, fmt.Errorf("persistence: find payment of %s: %w", orderID, err)
	}

	p.OrderID = orderID
	p.Status = shared.PaymentStatus(status)
	if p.ID, err = shared.ParseID[shared.PaymentID](id); err != nil {
		return domain.Payment{}, false, fmt.Errorf("persistence: payment of %s: %w", orderID, err)
	}
	if p.CustomerID, err = shared.ParseID[shared.CustomerID](customerID); err != nil {
		return domain.Payment{}, false, fmt.Errorf("persistence: payment of %s: %w", orderID, err)
	}
	if p.Price, err = shared.ParseMoney(price); err != nil {
		return domain.Payment{}, false, fmt.Errorf("persistence: payment of %s: %w", orderID, err)
	}
	if p.CreatedAt, err = sqlstore.ParseTime(createdAt); err != nil {
		return domain.Payment{}, false, fmt.Errorf("persistence: payment of %s: %w", orderID, err)
	}
	return p, true, nil
}

func checkVersioned(res sql.Result, kind, id string, version int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("persistence: update %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("persistence: %s %s version %d: %w", kind, id, version, shared.ErrConcurrentModification)
	}
	return nil
}
