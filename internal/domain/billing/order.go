package billing

import "time"

// Order is an upstream-issued, single-use purchase intent. Created exactly once
// per attempt and never mutated afterwards. Amount is in minor currency units.
type Order struct {
	ID          string    `json:"id"`
	PackageID   string    `json:"package_id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Gateway     string    `json:"gateway"`
	KeyID       string    `json:"key_id,omitempty"`
	CheckoutURL string    `json:"checkout_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaymentProof is the gateway's success-callback payload. Transient: it is
// submitted to verification once and never persisted on this side.
type PaymentProof struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}
