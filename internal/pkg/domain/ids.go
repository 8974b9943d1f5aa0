package domain

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Typed identifiers. Distinct types keep an OrderID from being passed where a
// CustomerID is expected; equality is plain == on the same type.
type (
	OrderID         uuid.UUID
	CustomerID      uuid.UUID
	RestaurantID    uuid.UUID
	ProductID       uuid.UUID
	PaymentID       uuid.UUID
	TrackingID      uuid.UUID
	CreditEntryID   uuid.UUID
	CreditHistoryID uuid.UUID
)

// OrderItemID is sequential within its order, starting at 1.
type OrderItemID int64

// ParseID parses a UUID string into any of the UUID-backed id types.
func ParseID[T ~[16]byte](s string) (T, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("domain: parse id %q: %w", s, err)
	}
	return T(u), nil
}

// MustID is ParseID for literals known to be valid.
func MustID[T ~[16]byte](s string) T {
	id, err := ParseID[T](s)
	if err != nil {
		panic(err)
	}
	return id
}

// NewID returns a random id of the requested type.
func NewID[T ~[16]byte]() T { return T(uuid.New()) }

func (id OrderID) String() string         { return uuid.UUID(id).String() }
func (id CustomerID) String() string      { return uuid.UUID(id).String() }
func (id RestaurantID) String() string    { return uuid.UUID(id).String() }
func (id ProductID) String() string       { return uuid.UUID(id).String() }
func (id PaymentID) String() string       { return uuid.UUID(id).String() }
func (id TrackingID) String() string      { return uuid.UUID(id).String() }
func (id CreditEntryID) String() string   { return uuid.UUID(id).String() }
func (id CreditHistoryID) String() string { return uuid.UUID(id).String() }
func (id OrderItemID) String() string     { return strconv.FormatInt(int64(id), 10) }

func (id OrderID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id PaymentID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
