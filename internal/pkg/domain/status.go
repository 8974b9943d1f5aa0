package domain

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusApproved   OrderStatus = "APPROVED"
	OrderStatusCancelling OrderStatus = "CANCELLING"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// PaymentOrderStatus tells the payment service whether to charge or refund.
type PaymentOrderStatus string

const (
	PaymentOrderStatusPending   PaymentOrderStatus = "PENDING"
	PaymentOrderStatusCancelled PaymentOrderStatus = "CANCELLED"
)

type OrderApprovalStatus string

const (
	OrderApprovalStatusApproved OrderApprovalStatus = "APPROVED"
	OrderApprovalStatusRejected OrderApprovalStatus = "REJECTED"
)

type RestaurantOrderStatus string

const (
	RestaurantOrderStatusPaid RestaurantOrderStatus = "PAID"
)

// FailureMessageDelimiter joins failure messages for log lines.
const FailureMessageDelimiter = ","
