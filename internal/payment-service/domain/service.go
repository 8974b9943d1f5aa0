package domain

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// PaymentDomainService applies payments and refunds to the credit ledger.
//
// Both operations mutate the payment and the credit entry eagerly and return
// the ledger row they appended. The caller persists the credit entry and that
// row only when the returned event is not PaymentFailed; the payment itself
// is always persisted.
type PaymentDomainService struct {
	clock shared.Clock
}

func NewPaymentDomainService(clock shared.Clock) *PaymentDomainService {
	return &PaymentDomainService{clock: clock}
}

// ValidateAndInitiatePayment debits the customer for the payment price. The
// debit and its DEBIT row happen even when the balance is insufficient; the
// failure shows up in the returned event.
func (s *PaymentDomainService) ValidateAndInitiatePayment(
	payment *Payment,
	creditEntry *CreditEntry,
	creditHistories []CreditHistory,
) (PaymentEvent, CreditHistory) {
	var failureMessages []string
	failureMessages = payment.ValidatePayment(failureMessages)
	payment.InitializePayment(s.clock)
	failureMessages = validateCreditEntry(payment, creditEntry, failureMessages)
	creditEntry.SubtractCreditAmount(payment.Price)
	history := newCreditHistory(payment, TransactionTypeDebit)
	ledger := append(slices.Clip(creditHistories), history)
	failureMessages = validateCreditHistory(creditEntry, ledger, failureMessages)

	if len(failureMessages) == 0 {
		slog.Info("payment is initiated", "order_id", payment.OrderID.String())
		payment.UpdateStatus(shared.PaymentStatusCompleted)
		return s.event(PaymentCompleted, payment, nil), history
	}
	slog.Info("payment initiation failed",
		"order_id", payment.OrderID.String(),
		"failure_messages", strings.Join(failureMessages, shared.FailureMessageDelimiter),
	)
	payment.UpdateStatus(shared.PaymentStatusFailed)
	return s.event(PaymentFailed, payment, failureMessages), history
}

// ValidateAndCancelPayment credits the payment price back to the customer and
// re-checks the ledger.
func (s *PaymentDomainService) ValidateAndCancelPayment(
	payment *Payment,
	creditEntry *CreditEntry,
	creditHistories []CreditHistory,
) (PaymentEvent, CreditHistory) {
	var failureMessages []string
	failureMessages = payment.ValidatePayment(failureMessages)
	creditEntry.AddCreditAmount(payment.Price)
	history := newCreditHistory(payment, TransactionTypeCredit)
	ledger := append(slices.Clip(creditHistories), history)
	failureMessages = validateCreditHistory(creditEntry, ledger, failureMessages)

	if len(failureMessages) == 0 {
		slog.Info("payment is cancelled", "order_id", payment.OrderID.String())
		payment.UpdateStatus(shared.PaymentStatusCancelled)
		return s.event(PaymentCancelled, payment, nil), history
	}
	slog.Info("payment cancellation failed",
		"order_id", payment.OrderID.String(),
		"failure_messages", strings.Join(failureMessages, shared.FailureMessageDelimiter),
	)
	payment.UpdateStatus(shared.PaymentStatusFailed)
	return s.event(PaymentFailed, payment, failureMessages), history
}

func (s *PaymentDomainService) event(kind PaymentEventKind, payment *Payment, failureMessages []string) PaymentEvent {
	return PaymentEvent{
		Kind:            kind,
		Payment:         *payment,
		CreatedAt:       s.clock.Now(),
		FailureMessages: failureMessages,
	}
}

func validateCreditEntry(payment *Payment, creditEntry *CreditEntry, failureMessages []string) []string {
	if payment.Price.IsGreaterThan(creditEntry.TotalCreditAmount) {
		slog.Error("customer doesn't have enough credit for payment", "customer_id", payment.CustomerID.String())
		failureMessages = append(failureMessages,
			fmt.Sprintf("Customer with id=%s doesn't have enough credit for payment!", payment.CustomerID))
	}
	return failureMessages
}

func newCreditHistory(payment *Payment, txType TransactionType) CreditHistory {
	return CreditHistory{
		ID:              shared.NewID[shared.CreditHistoryID](),
		CustomerID:      payment.CustomerID,
		Amount:          payment.Price,
		TransactionType: txType,
	}
}

// validateCreditHistory checks that debits never exceed credits and that the
// balance equals credits minus debits.
func validateCreditHistory(creditEntry *CreditEntry, creditHistories []CreditHistory, failureMessages []string) []string {
	totalCredit := totalHistoryAmount(creditHistories, TransactionTypeCredit)
	totalDebit := totalHistoryAmount(creditHistories, TransactionTypeDebit)

	if totalDebit.IsGreaterThan(totalCredit) {
		slog.Error("customer doesn't have enough credit according to credit history",
			"customer_id", creditEntry.CustomerID.String())
		failureMessages = append(failureMessages,
			fmt.Sprintf("Customer with id=%s doesn't have enough credit according to credit history!", creditEntry.CustomerID))
	}
	if !creditEntry.TotalCreditAmount.Equal(totalCredit.Subtract(totalDebit)) {
		slog.Error("credit history total is not equal to current credit",
			"customer_id", creditEntry.CustomerID.String())
		failureMessages = append(failureMessages,
			fmt.Sprintf("Credit history total is not equal to current credit for customer id: %s!", creditEntry.CustomerID))
	}
	return failureMessages
}
