package payment

// GatewayOrder is the processor-side order a checkout is paid against.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// GatewayOrderRequest opens a processor-side order. Amount is in minor
// currency units.
type GatewayOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type CreateRequest struct {
	OrderID string `json:"orderId" validate:"required,uuid"`
}

type VerifyRequest struct {
	OrderID        string `json:"orderId" validate:"required,uuid"`
	PaymentID      string `json:"paymentId" validate:"required"`
	GatewayOrderID string `json:"razorpayOrderId" validate:"required"`
	Signature      string `json:"razorpaySignature" validate:"required"`
}

const (
	EventCaptured = "payment.captured"
	EventFailed   = "payment.failed"
)

// WebhookEvent is the subset of a processor webhook this service reads.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Method  string `json:"method"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}
