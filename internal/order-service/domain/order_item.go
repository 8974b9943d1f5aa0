package domain

import shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"

// OrderItem is identified by its position within the parent order.
type OrderItem struct {
	ID       shared.OrderItemID
	OrderID  shared.OrderID
	Product  Product
	Quantity int
	Price    shared.Money
	SubTotal shared.Money
}

func (i *OrderItem) initializeOrderItem(orderID shared.OrderID, id shared.OrderItemID) {
	i.OrderID = orderID
	i.ID = id
}

// IsPriceValid reports whether the line price is positive, matches the
// confirmed product price and multiplies out to the subtotal.
func (i OrderItem) IsPriceValid() bool {
	return i.Price.IsGreaterThanZero() &&
		i.Price.Equal(i.Product.Price) &&
		i.Price.Multiply(i.Quantity).Equal(i.SubTotal)
}

// Product is a snapshot of a restaurant product. Name and price are replaced
// with the restaurant's confirmed values before the order is validated.
type Product struct {
	ID    shared.ProductID
	Name  string
	Price shared.Money
}

func (p *Product) UpdateWithConfirmedNameAndPrice(name string, price shared.Money) {
	p.Name = name
	p.Price = price
}
