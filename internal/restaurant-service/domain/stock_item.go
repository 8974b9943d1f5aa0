package domain

import shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"

// StockItem is one product line of an approval request.
type StockItem struct {
	ProductID shared.ProductID
	Quantity  int
}

// Reservation holds the stock taken for one paid order together with the
// answer that was sent for it.
type Reservation struct {
	OrderID         shared.OrderID
	Items           []StockItem
	Status          shared.OrderApprovalStatus
	FailureMessages []string
}
