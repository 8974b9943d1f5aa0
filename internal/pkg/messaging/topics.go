package messaging

const (
	TopicPaymentRequest             = "payment-request"
	TopicPaymentResponse            = "payment-response"
	TopicRestaurantApprovalRequest  = "restaurant-approval-request"
	TopicRestaurantApprovalResponse = "restaurant-approval-response"
)

// Topics names the streams a service reads and writes. Services take it from
// configuration so environments can prefix or rename streams.
type Topics struct {
	PaymentRequest             string
	PaymentResponse            string
	RestaurantApprovalRequest  string
	RestaurantApprovalResponse string
}

func DefaultTopics() Topics {
	return Topics{
		PaymentRequest:             TopicPaymentRequest,
		PaymentResponse:            TopicPaymentResponse,
		RestaurantApprovalRequest:  TopicRestaurantApprovalRequest,
		RestaurantApprovalResponse: TopicRestaurantApprovalResponse,
	}
}
