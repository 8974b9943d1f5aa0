package persistence

import (
	"context"
	"fmt"

	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/sqlstore"
)

// Demo data for local runs. The same customer is seeded with credit in the
// payment service.
var (
	DemoCustomerID   = shared.MustID[shared.CustomerID]("d215b5f8-0249-4dc5-89a3-51fd148cfb41")
	DemoRestaurantID = shared.MustID[shared.RestaurantID]("d215b5f8-0249-4dc5-89a3-51fd148cfb45")
	DemoProducts     = []domain.Product{
		{ID: shared.MustID[shared.ProductID]("d215b5f8-0249-4dc5-89a3-51fd148cfb48"), Name: "product-1", Price: shared.MustMoney("50.00")},
		{ID: shared.MustID[shared.ProductID]("d215b5f8-0249-4dc5-89a3-51fd148cfb47"), Name: "product-2", Price: shared.MustMoney("50.00")},
	}
)

// SaveCustomer stores a customer if it is not known yet.
func SaveCustomer(ctx context.Context, db *sqlstore.DB, id shared.CustomerID, username string) error {
	const q = `INSERT INTO customers (id, username) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`
	if _, err := db.Exec(ctx, q, id.String(), username); err != nil {
		return fmt.Errorf("persistence: save customer %s: %w", id, err)
	}
	return nil
}

// SaveRestaurant replaces the local copy of a restaurant's products.
func SaveRestaurant(ctx context.Context, db *sqlstore.DB, name string, restaurant domain.Restaurant) error {
	return db.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := db.Exec(ctx, `DELETE FROM restaurant_products WHERE restaurant_id = ?`, restaurant.ID.String()); err != nil {
			return fmt.Errorf("persistence: clear restaurant %s: %w", restaurant.ID, err)
		}
		active := 0
		if restaurant.Active {
			active = 1
		}
		for _, p := range restaurant.Products {
			const q = `
				INSERT INTO restaurant_products
					(restaurant_id, restaurant_name, restaurant_active, product_id, product_name, product_price)
				VALUES (?, ?, ?, ?, ?, ?)`
			_, err := db.Exec(ctx, q, restaurant.ID.String(), name, active, p.ID.String(), p.Name, p.Price.String())
			if err != nil {
				return fmt.Errorf("persistence: save product %s of %s: %w", p.ID, restaurant.ID, err)
			}
		}
		return nil
	})
}

// SeedDemoData stores the demo customer and an active demo restaurant.
func SeedDemoData(ctx context.Context, db *sqlstore.DB) error {
	if err := SaveCustomer(ctx, db, DemoCustomerID, "user_1"); err != nil {
		return err
	}
	return SaveRestaurant(ctx, db, "restaurant_1", domain.Restaurant{
		ID:       DemoRestaurantID,
		Active:   true,
		Products: DemoProducts,
	})
}
