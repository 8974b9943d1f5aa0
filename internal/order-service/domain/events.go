package domain

import "time"

// Domain events are plain records. Publishing them is the caller's decision.

type OrderCreatedEvent struct {
	Order     Order
	CreatedAt time.Time
}

type OrderPaidEvent struct {
	Order     Order
	CreatedAt time.Time
}

type OrderCancelledEvent struct {
	Order     Order
	CreatedAt time.Time
}
