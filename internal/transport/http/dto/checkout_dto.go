package dto

import "time"

type CheckoutCreateRequest struct {
	PackageID string `json:"package_id"`
	Gateway   string `json:"gateway"`
}

type ModalSessionResponse struct {
	Gateway  string `json:"gateway"`
	OrderID  string `json:"order_id"`
	KeyID    string `json:"key_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type RedirectResponse struct {
	URL string `json:"url"`
}

type LaunchResponse struct {
	Kind     string                `json:"kind"`
	Modal    *ModalSessionResponse `json:"modal,omitempty"`
	Redirect *RedirectResponse     `json:"redirect,omitempty"`
}

type AttemptResponse struct {
	ID             string     `json:"id"`
	PackageID      string     `json:"package_id"`
	Gateway        string     `json:"gateway"`
	Status         string     `json:"status"`
	FailureCode    string     `json:"failure_code,omitempty"`
	FailureMessage string     `json:"failure_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	SettledAt      *time.Time `json:"settled_at,omitempty"`
}

type CheckoutCreateResponse struct {
	Attempt AttemptResponse `json:"attempt"`
	Launch  LaunchResponse  `json:"launch"`
}

type PaymentProofRequest struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

type CheckoutCallbackRequest struct {
	Outcome string               `json:"outcome"`
	Proof   *PaymentProofRequest `json:"proof,omitempty"`
	Reason  string               `json:"reason,omitempty"`
}

type CheckoutCallbackResponse struct {
	Attempt         AttemptResponse         `json:"attempt"`
	Wallet          *WalletSnapshotResponse `json:"wallet,omitempty"`
	AlreadyResolved bool                    `json:"already_resolved,omitempty"`
}

type CheckoutAttemptResponse struct {
	Attempt AttemptResponse `json:"attempt"`
}
