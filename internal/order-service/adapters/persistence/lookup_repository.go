package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/app"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/sqlstore"
)

type CustomerRepository struct {
	db *sqlstore.DB
}

var _ app.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db *sqlstore.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) FindCustomer(ctx context.Context, id shared.CustomerID) (domain.Customer, bool, error) {
	var found string
	err := r.db.QueryRow(ctx, `SELECT id FROM customers WHERE id = ?`, id.String()).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, false, nil
	}
	if err != nil {
		return domain.Customer{}, false, fmt.Errorf("persistence: find customer %s: %w", id, err)
	}
	return domain.Customer{ID: id}, true, nil
}

type RestaurantRepository struct {
	db *sqlstore.DB
}

var _ app.RestaurantRepository = (*RestaurantRepository)(nil)

func NewRestaurantRepository(db *sqlstore.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// FindRestaurantInformation returns the restaurant with the requested products
// it sells. A restaurant selling none of them is reported as missing.
func (r *RestaurantRepository) FindRestaurantInformation(
	ctx context.Context,
	id shared.RestaurantID,
	productIDs []shared.ProductID,
) (domain.Restaurant, bool, error) {
	if len(productIDs) == 0 {
		return domain.Restaurant{}, false, nil
	}
	args := []any{id.String()}
	for _, p := range productIDs {
		args = append(args, p.String())
	}
	q := `
		SELECT restaurant_active, product_id, product_name, product_price
		FROM   restaurant_products
		WHERE  restaurant_id = ? AND product_id IN (?` + strings.Repeat(", ?", len(productIDs)-1) + `)
		ORDER  BY product_id`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return domain.Restaurant{}, false, fmt.Errorf("persistence: find restaurant %s: %w", id, err)
	}
	defer rows.Close()

	restaurant := domain.Restaurant{ID: id}
	for rows.Next() {
		var (
			active           int
			productID, price string
			product          domain.Product
		)
		if err := rows.Scan(&active, &productID, &product.Name, &price); err != nil {
			return domain.Restaurant{}, false, fmt.Errorf("persistence: scan restaurant %s: %w", id, err)
		}
		if err := parseInto(&product.ID, productID); err != nil {
			return domain.Restaurant{}, false, fmt.Errorf("persistence: restaurant %s: %w", id, err)
		}
		if product.Price, err = shared.ParseMoney(price); err != nil {
			return domain.Restaurant{}, false, fmt.Errorf("persistence: restaurant %s: %w", id, err)
		}
		restaurant.Active = active != 0
		restaurant.Products = append(restaurant.Products, product)
	}
	if err := rows.Err(); err != nil {
		return domain.Restaurant{}, false, fmt.Errorf("persistence: find restaurant %s: %w", id, err)
	}
	if len(restaurant.Products) == 0 {
		return domain.Restaurant{}, false, nil
	}
	return restaurant, true, nil
}
