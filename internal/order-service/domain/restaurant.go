package domain

import (
	"github.com/google/uuid"

	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// Restaurant is a read-only view used while creating an order. Products holds
// only the products requested by that order.
type Restaurant struct {
	ID       shared.RestaurantID
	Products []Product
	Active   bool
}

// findProduct returns the first restaurant product with the given id.
func (r Restaurant) findProduct(id shared.ProductID) (Product, bool) {
	for _, p := range r.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

type Customer struct {
	ID shared.CustomerID
}

// StreetAddress is the delivery address. ID is a storage handle and does not
// take part in equality.
type StreetAddress struct {
	ID         uuid.UUID
	Street     string
	PostalCode string
	City       string
}

func (a StreetAddress) Equal(other StreetAddress) bool {
	return a.Street == other.Street && a.PostalCode == other.PostalCode && a.City == other.City
}
