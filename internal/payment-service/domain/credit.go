package domain

import shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"

type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "DEBIT"
	TransactionTypeCredit TransactionType = "CREDIT"
)

// CreditEntry is the live balance of a customer. There is one per customer.
type CreditEntry struct {
	ID                shared.CreditEntryID
	CustomerID        shared.CustomerID
	TotalCreditAmount shared.Money
	Version           int64
}

func (c *CreditEntry) AddCreditAmount(amount shared.Money) {
	c.TotalCreditAmount = c.TotalCreditAmount.Add(amount)
}

func (c *CreditEntry) SubtractCreditAmount(amount shared.Money) {
	c.TotalCreditAmount = c.TotalCreditAmount.Subtract(amount)
}

// CreditHistory is one append-only ledger row.
type CreditHistory struct {
	ID              shared.CreditHistoryID
	CustomerID      shared.CustomerID
	Amount          shared.Money
	TransactionType TransactionType
}

// totalHistoryAmount sums the rows of one transaction type.
func totalHistoryAmount(histories []CreditHistory, txType TransactionType) shared.Money {
	total := shared.ZeroMoney
	for _, h := range histories {
		if h.TransactionType == txType {
			total = total.Add(h.Amount)
		}
	}
	return total
}
