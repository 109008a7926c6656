package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
	"github.com/bhavya681/akobot-billing/internal/domain/enums"
)

func TestCreateOrderFailsClosedWithoutOrderID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/order" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"amount":   49900,
			"currency": "INR",
			"keyId":    "rzp_test_x",
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "svc-token", ts.Client())
	_, err := client.CreateOrder(context.Background(), "p1", "razorpay")
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestCreateOrderCarriesCheckoutURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode order request: %v", err)
		}
		if req["packageId"] != "p1" || req["gateway"] != "payu" {
			t.Fatalf("unexpected order request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"orderId":     "order_redir",
			"amount":      49900,
			"currency":    "INR",
			"checkoutUrl": "https://secure.payu.in/pay/order_redir",
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", ts.Client())
	order, err := client.CreateOrder(context.Background(), "p1", "payu")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "order_redir" || order.CheckoutURL == "" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestVerifyPaymentMapsRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"verified": false})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", ts.Client())
	result, err := client.VerifyPayment(context.Background(), billing.PaymentProof{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_1",
		Signature:        "sig1",
	})
	if err != nil {
		t.Fatalf("verify payment: %v", err)
	}
	if result.Outcome != enums.VerificationRejected {
		t.Fatalf("unexpected outcome: %s", result.Outcome)
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", &http.Client{Timeout: 200 * time.Millisecond})
	_, err := client.WalletBalance(context.Background(), 7)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestApplyWalletActionSendsActionKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode action request: %v", err)
		}
		if req["actionKey"] == "" || req["action"] != "debit" {
			t.Fatalf("unexpected action request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"balance": 500,
			"entry": map[string]any{
				"at":     time.Now().UTC().Format(time.RFC3339),
				"amount": -500,
				"kind":   "debit",
				"remark": "chargeback",
				"actor":  "admin:9",
			},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", ts.Client())
	entry, err := client.ApplyWalletAction(context.Background(), WalletActionInput{
		UserID:    7,
		Amount:    500,
		Action:    enums.LedgerKindDebit,
		Remark:    "chargeback",
		ActionKey: "key-1",
	})
	if err != nil {
		t.Fatalf("apply wallet action: %v", err)
	}
	if entry.Amount != -500 || entry.Kind != enums.LedgerKindDebit {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}
