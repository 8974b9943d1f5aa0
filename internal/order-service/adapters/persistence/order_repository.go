package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/app"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/sqlstore"
)

type OrderRepository struct {
	db *sqlstore.DB
}

var _ app.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(db *sqlstore.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Save inserts a new order with its items and address, or updates the status
// and failure messages of an existing one under a version check.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	msgs, err := encodeMessages(order.FailureMessages)
	if err != nil {
		return err
	}
	if order.Version == 0 {
		return r.insert(ctx, order, msgs)
	}

	const q = `
		UPDATE orders
		SET    order_status = ?, failure_messages = ?, version = version + 1
		WHERE  id = ? AND version = ?`
	res, err := r.db.Exec(ctx, q, string(order.Status), msgs, order.ID.String(), order.Version)
	if err != nil {
		return fmt.Errorf("persistence: update order %s: %w", order.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("persistence: update order %s: %w", order.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("persistence: order %s version %d: %w", order.ID, order.Version, shared.ErrConcurrentModification)
	}
	order.Version++
	return nil
}

func (r *OrderRepository) insert(ctx context.Context, order *domain.Order, msgs any) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		const q = `
			INSERT INTO orders (id, customer_id, restaurant_id, tracking_id, price, order_status, failure_messages, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1)`
		_, err := r.db.Exec(ctx, q,
			order.ID.String(), order.CustomerID.String(), order.RestaurantID.String(),
			order.TrackingID.String(), order.Price.String(), string(order.Status), msgs,
		)
		if err != nil {
			return fmt.Errorf("persistence: insert order %s: %w", order.ID, err)
		}

		for _, item := range order.Items {
			const qi = `
				INSERT INTO order_items (id, order_id, product_id, price, quantity, sub_total)
				VALUES (?, ?, ?, ?, ?, ?)`
			_, err := r.db.Exec(ctx, qi,
				int64(item.ID), order.ID.String(), item.Product.ID.String(),
				item.Price.String(), item.Quantity, item.SubTotal.String(),
			)
			if err != nil {
				return fmt.Errorf("persistence: insert item %d of %s: %w", item.ID, order.ID, err)
			}
		}

		addr := order.DeliveryAddress
		const qa = `
			INSERT INTO order_address (id, order_id, street, postal_code, city)
			VALUES (?, ?, ?, ?, ?)`
		if _, err := r.db.Exec(ctx, qa, addr.ID.String(), order.ID.String(), addr.Street, addr.PostalCode, addr.City); err != nil {
			return fmt.Errorf("persistence: insert address of %s: %w", order.ID, err)
		}
		order.Version = 1
		return nil
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id shared.OrderID) (domain.Order, bool, error) {
	return r.findOne(ctx, "id", id.String())
}

func (r *OrderRepository) FindByTrackingID(ctx context.Context, id shared.TrackingID) (domain.Order, bool, error) {
	return r.findOne(ctx, "tracking_id", id.String())
}

func (r *OrderRepository) findOne(ctx context.Context, column, value string) (domain.Order, bool, error) {
	q := `
		SELECT id, customer_id, restaurant_id, tracking_id, price, order_status, failure_messages, version
		FROM   orders
		WHERE  ` + column + ` = ?`

	var (
		order                                  domain.Order
		id, customerID, restaurantID, tracking string
		price, orderStatus                     string
		msgs                                   sql.NullString
	)
	err := r.db.QueryRow(ctx, q, value).Scan(
		&id, &customerID, &restaurantID, &tracking, &price, &orderStatus, &msgs, &order.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("persistence: find order by %s: %w", column, err)
	}

	if err := parseAll(
		parseInto(&order.ID, id),
		parseInto(&order.CustomerID, customerID),
		parseInto(&order.RestaurantID, restaurantID),
		parseInto(&order.TrackingID, tracking),
	); err != nil {
		return domain.Order{}, false, fmt.Errorf("persistence: order %s: %w", id, err)
	}
	if order.Price, err = shared.ParseMoney(price); err != nil {
		return domain.Order{}, false, fmt.Errorf("persistence: order %s: %w", id, err)
	}
	order.Status = shared.OrderStatus(orderStatus)
	if order.FailureMessages, err = decodeMessages(msgs); err != nil {
		return domain.Order{}, false, fmt.Errorf("persistence: order %s: %w", id, err)
	}

	if order.Items, err = r.findItems(ctx, order.ID); err != nil {
		return domain.Order{}, false, err
	}
	if order.DeliveryAddress, err = r.findAddress(ctx, order.ID); err != nil {
		return domain.Order{}, false, err
	}
	return order, true, nil
}

func (r *OrderRepository) findItems(ctx context.Context, orderID shared.OrderID) ([]domain.OrderItem, error) {
	const q = `
		SELECT id, product_id, price, quantity, sub_total
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY id`
	rows, err := r.db.Query(ctx, q, orderID.String())
	if err != nil {
		return nil, fmt.Errorf("persistence: items of %s: %w", orderID, err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			id                         int64
			productID, price, subTotal string
			item                       domain.OrderItem
		)
		if err := rows.Scan(&id, &productID, &price, &item.Quantity, &subTotal); err != nil {
			return nil, fmt.Errorf("persistence: scan item of %s: %w", orderID, err)
		}
		item.ID = shared.OrderItemID(id)
		item.OrderID = orderID
		if err := parseInto(&item.Product.ID, productID); err != nil {
			return nil, fmt.Errorf("persistence: item %d of %s: %w", id, orderID, err)
		}
		if item.Price, err = shared.ParseMoney(price); err != nil {
			return nil, fmt.Errorf("persistence: item %d of %s: %w", id, orderID, err)
		}
		if item.SubTotal, err = shared.ParseMoney(subTotal); err != nil {
			return nil, fmt.Errorf("persistence: item %d of %s: %w", id, orderID, err)
		}
		item.Product.Price = item.Price
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persistence: items of %s: %w", orderID, err)
	}
	return items, nil
}

func (r *OrderRepository) findAddress(ctx context.Context, orderID shared.OrderID) (domain.StreetAddress, error) {
	const q = `SELECT id, street, postal_code, city FROM order_address WHERE order_id = ?`
	var (
		addr domain.StreetAddress
		id   string
	)
	if err := r.db.QueryRow(ctx, q, orderID.String()).Scan(&id, &addr.Street, &addr.PostalCode, &addr.City); err != nil {
		return domain.StreetAddress{}, fmt.Errorf("persistence: address of %s: %w", orderID, err)
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return domain.StreetAddress{}, fmt.Errorf("persistence: address of %s: %w", orderID, err)
	}
	addr.ID = u
	return addr, nil
}

// encodeMessages stores nil as NULL so the failure message merge sees the
// same nil/empty distinction after a reload.
func encodeMessages(msgs []string) (any, error) {
	if msgs == nil {
		return nil, nil
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("persistence: encode failure messages: %w", err)
	}
	return string(b), nil
}

func decodeMessages(raw sql.NullString) ([]string, error) {
	if !raw.Valid {
		return nil, nil
	}
	msgs := []string{}
	if err := json.Unmarshal([]byte(raw.String), &msgs); err != nil {
		return nil, fmt.Errorf("decode failure messages: %w", err)
	}
	return msgs, nil
}

func parseInto[T ~[16]byte](dst *T, s string) error {
	id, err := shared.ParseID[T](s)
	if err != nil {
		return err
	}
	*dst = id
	return nil
}

func parseAll(errs ...error) error {
	return errors.Join(errs...)
}
