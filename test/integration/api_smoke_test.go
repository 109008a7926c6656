package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/bhavya681/akobot-billing/internal/app/apiapp"
	"github.com/bhavya681/akobot-billing/internal/config"
	authsvc "github.com/bhavya681/akobot-billing/internal/services/auth"
)

// upstreamStub plays the platform backend: catalog, order creation, payment
// verification and the wallet ledger. It also serves the gateway script the
// loader probes.
type upstreamStub struct {
	mu       sync.Mutex
	credited bool
}

func (s *upstreamStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /script.js", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /packages", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []map[string]any{
			{"id": "p1", "name": "Starter", "included_credits": 1000, "current_price": 499.0, "is_active": true, "sort_order": 1},
		})
	})
	mux.HandleFunc("POST /payments/order", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"orderId":  "order_abc",
			"amount":   49900,
			"currency": "INR",
			"keyId":    "rzp_test_x",
		})
	})
	mux.HandleFunc("POST /payments/verify", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GatewayOrderID   string `json:"gatewayOrderId"`
			GatewayPaymentID string `json:"gatewayPaymentId"`
			Signature        string `json:"signature"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GatewayOrderID != "order_abc" {
			writeJSON(w, map[string]any{"verified": false})
			return
		}
		s.mu.Lock()
		s.credited = true
		s.mu.Unlock()
		writeJSON(w, map[string]any{"verified": true, "credited_credits": 1000})
	})
	mux.HandleFunc("GET /admin/wallet/42/balance", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"balance": s.balance()})
	})
	mux.HandleFunc("GET /admin/wallet/42/history", func(w http.ResponseWriter, _ *http.Request) {
		entries := []map[string]any{}
		if s.balance() > 0 {
			entries = append(entries, map[string]any{
				"at":     time.Now().UTC().Format(time.RFC3339),
				"amount": 1000,
				"kind":   "credit",
				"remark": "purchase p1",
				"actor":  "purchase",
			})
		}
		writeJSON(w, map[string]any{"entries": entries})
	})
	return mux
}

func (s *upstreamStub) balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credited {
		return 1000
	}
	return 0
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func newTestApp(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	mr := miniredis.RunT(t)
	stub := &upstreamStub{}
	backend := httptest.NewServer(stub.handler())
	t.Cleanup(backend.Close)

	cfg := config.Default()
	cfg.HTTP.Addr = ":0"
	cfg.Redis.Addr = mr.Addr()
	cfg.Upstream.BaseURL = backend.URL
	cfg.Gateways = []config.GatewayConfig{
		{Name: "razorpay", Kind: "modal", ScriptURL: backend.URL + "/script.js"},
	}

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}

	ts := httptest.NewServer(app.Handler())
	t.Cleanup(ts.Close)

	token, err := authsvc.NewJWTManager(cfg.Auth.JWTSecret).SignAccessToken(42, "sid-42", "USER", time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return ts, token
}

func doJSON(t *testing.T, method, url, token, body string, target any) int {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestApp(t)

	var payload struct {
		OK bool `json:"ok"`
	}
	status := doJSON(t, http.MethodGet, ts.URL+"/healthz", "", "", &payload)
	if status != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", status, http.StatusOK)
	}
	if !payload.OK {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestPurchaseFlowEndToEnd(t *testing.T) {
	ts, token := newTestApp(t)

	var packages struct {
		Packages []struct {
			ID              string `json:"id"`
			IncludedCredits int    `json:"included_credits"`
		} `json:"packages"`
	}
	if status := doJSON(t, http.MethodGet, ts.URL+"/packages", "", "", &packages); status != http.StatusOK {
		t.Fatalf("list packages: status %d", status)
	}
	if len(packages.Packages) != 1 || packages.Packages[0].ID != "p1" {
		t.Fatalf("unexpected catalog: %+v", packages.Packages)
	}

	var created struct {
		Attempt struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"attempt"`
		Launch struct {
			Kind  string `json:"kind"`
			Modal *struct {
				OrderID  string `json:"order_id"`
				KeyID    string `json:"key_id"`
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
			} `json:"modal"`
		} `json:"launch"`
	}
	status := doJSON(t, http.MethodPost, ts.URL+"/checkout", token,
		`{"package_id":"p1","gateway":"razorpay"}`, &created)
	if status != http.StatusOK {
		t.Fatalf("create checkout: status %d", status)
	}
	if created.Launch.Kind != "modal" || created.Launch.Modal == nil {
		t.Fatalf("unexpected launch: %+v", created.Launch)
	}
	if created.Launch.Modal.OrderID != "order_abc" || created.Launch.Modal.KeyID != "rzp_test_x" {
		t.Fatalf("unexpected modal session: %+v", created.Launch.Modal)
	}
	if created.Launch.Modal.Amount != 49900 || created.Launch.Modal.Currency != "INR" {
		t.Fatalf("unexpected order totals: %+v", created.Launch.Modal)
	}

	var resolved struct {
		Attempt struct {
			Status string `json:"status"`
		} `json:"attempt"`
		Wallet *struct {
			Balance int64 `json:"balance"`
			History []struct {
				Amount int64  `json:"amount"`
				Kind   string `json:"kind"`
			} `json:"history"`
		} `json:"wallet"`
	}
	status = doJSON(t, http.MethodPost, ts.URL+"/checkout/"+created.Attempt.ID+"/result", token,
		`{"outcome":"success","proof":{"gateway_order_id":"order_abc","gateway_payment_id":"pay_1","signature":"sig1"}}`,
		&resolved)
	if status != http.StatusOK {
		t.Fatalf("resolve checkout: status %d", status)
	}
	if resolved.Attempt.Status != "succeeded" {
		t.Fatalf("unexpected attempt status: %s", resolved.Attempt.Status)
	}
	if resolved.Wallet == nil || resolved.Wallet.Balance != 1000 {
		t.Fatalf("wallet not refreshed: %+v", resolved.Wallet)
	}
	if len(resolved.Wallet.History) != 1 || resolved.Wallet.History[0].Kind != "credit" || resolved.Wallet.History[0].Amount != 1000 {
		t.Fatalf("unexpected ledger history: %+v", resolved.Wallet.History)
	}

	// The wallet endpoint serves the refreshed snapshot from cache.
	var wallet struct {
		Balance int64 `json:"balance"`
		Cached  bool  `json:"cached"`
	}
	if status := doJSON(t, http.MethodGet, ts.URL+"/wallet", token, "", &wallet); status != http.StatusOK {
		t.Fatalf("get wallet: status %d", status)
	}
	if wallet.Balance != 1000 {
		t.Fatalf("unexpected balance: %d", wallet.Balance)
	}
}

func TestCheckoutRequiresSignIn(t *testing.T) {
	ts, _ := newTestApp(t)

	var payload struct {
		Code          string `json:"code"`
		ResumePackage string `json:"resume_package"`
	}
	status := doJSON(t, http.MethodPost, ts.URL+"/checkout", "",
		`{"package_id":"p1","gateway":"razorpay"}`, &payload)
	if status != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", status, http.StatusUnauthorized)
	}
	if payload.Code != "UNAUTHENTICATED" || payload.ResumePackage != "p1" {
		t.Fatalf("unexpected sign-in payload: %+v", payload)
	}
}

func TestAdminWalletRequiresRole(t *testing.T) {
	ts, token := newTestApp(t)

	status := doJSON(t, http.MethodGet, ts.URL+"/admin/wallet/42/balance", token, "", nil)
	if status != http.StatusForbidden {
		t.Fatalf("unexpected status for USER role: got %d want %d", status, http.StatusForbidden)
	}
}
