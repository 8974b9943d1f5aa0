package persistence

import (
	"context"
	"fmt"

	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/sqlstore"
)

// DemoCustomerID matches the customer seeded in the order service.
var DemoCustomerID = shared.MustID[shared.CustomerID]("d215b5f8-0249-4dc5-89a3-51fd148cfb41")

// OpenCreditAccount gives a customer without a ledger a credit entry of
// amount backed by a single CREDIT row. A customer that already has one is
// left untouched.
func OpenCreditAccount(ctx context.Context, db *sqlstore.DB, customerID shared.CustomerID, amount shared.Money) error {
	entries := NewCreditEntryRepository(db)
	histories := NewCreditHistoryRepository(db)
	return db.WithinTx(ctx, func(ctx context.Context) error {
		if _, ok, err := entries.FindByCustomerID(ctx, customerID); err != nil {
			return err
		} else if ok {
			return nil
		}
		entry := domain.CreditEntry{
			ID:                shared.NewID[shared.CreditEntryID](),
			CustomerID:        customerID,
			TotalCreditAmount: amount,
		}
		if err := entries.Save(ctx, &entry); err != nil {
			return err
		}
		err := histories.Save(ctx, domain.CreditHistory{
			ID:              shared.NewID[shared.CreditHistoryID](),
			CustomerID:      customerID,
			Amount:          amount,
			TransactionType: domain.TransactionTypeCredit,
		})
		if err != nil {
			return fmt.Errorf("persistence: open account for %s: %w", customerID, err)
		}
		return nil
	})
}

func SeedDemoData(ctx context.Context, db *sqlstore.DB) error {
	return OpenCreditAccount(ctx, db, DemoCustomerID, shared.MustMoney("500.00"))
}
