package upstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
	"github.com/bhavya681/akobot-billing/internal/domain/enums"
)

type packagePayload struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	IncludedCredits int      `json:"included_credits"`
	CurrentPrice    float64  `json:"current_price"`
	OriginalPrice   *float64 `json:"original_price"`
	OfferLabel      string   `json:"offer_label"`
	IsActive        bool     `json:"is_active"`
	SortOrder       int      `json:"sort_order"`
}

type orderPayload struct {
	OrderID     string `json:"orderId"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	KeyID       string `json:"keyId"`
	CheckoutURL string `json:"checkoutUrl"`
}

type verifyRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}

type verifyPayload struct {
	Verified        bool `json:"verified"`
	CreditedCredits int  `json:"credited_credits"`
}

type balancePayload struct {
	Balance int64 `json:"balance"`
}

type ledgerEntryPayload struct {
	At     time.Time `json:"at"`
	Amount int64     `json:"amount"`
	Kind   string    `json:"kind"`
	Remark string    `json:"remark"`
	Actor  string    `json:"actor"`
}

type historyPayload struct {
	Entries []ledgerEntryPayload `json:"entries"`
}

type walletActionRequest struct {
	UserID    int64  `json:"userId"`
	Amount    int64  `json:"amount"`
	Action    string `json:"action"`
	Remark    string `json:"remark"`
	ActionKey string `json:"actionKey"`
}

type walletActionPayload struct {
	Entry   ledgerEntryPayload `json:"entry"`
	Balance int64              `json:"balance"`
}

// ListPackages returns the raw catalog. Active filtering happens in the
// catalog service; the upstream is never trusted to pre-filter.
func (c *Client) ListPackages(ctx context.Context) ([]billing.Package, error) {
	var payload []packagePayload
	if err := c.getJSON(ctx, "/packages", &payload); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	packages := make([]billing.Package, 0, len(payload))
	for _, p := range payload {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("%w: package entry without id", ErrBadResponse)
		}
		packages = append(packages, billing.Package{
			ID:              p.ID,
			Name:            p.Name,
			Description:     p.Description,
			IncludedCredits: p.IncludedCredits,
			CurrentPrice:    p.CurrentPrice,
			OriginalPrice:   p.OriginalPrice,
			OfferLabel:      p.OfferLabel,
			IsActive:        p.IsActive,
			SortOrder:       p.SortOrder,
		})
	}
	return packages, nil
}

// CreateOrder asks the upstream to open a single-use purchase intent. A
// response without an order id is malformed, full stop.
func (c *Client) CreateOrder(ctx context.Context, packageID, gateway string) (billing.Order, error) {
	req := map[string]string{
		"packageId": packageID,
		"gateway":   gateway,
	}

	var payload orderPayload
	if err := c.postJSON(ctx, "/payments/order", req, &payload); err != nil {
		return billing.Order{}, fmt.Errorf("create order: %w", err)
	}
	if strings.TrimSpace(payload.OrderID) == "" {
		return billing.Order{}, fmt.Errorf("%w: order response without orderId", ErrBadResponse)
	}

	return billing.Order{
		ID:          payload.OrderID,
		PackageID:   packageID,
		Amount:      payload.Amount,
		Currency:    payload.Currency,
		Gateway:     gateway,
		KeyID:       payload.KeyID,
		CheckoutURL: payload.CheckoutURL,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// VerifyPayment submits a gateway proof exactly once. Rejections come back as
// (Verified=false, nil error); transport trouble surfaces as ErrUnavailable so
// the caller can apply the softer "may have succeeded" handling.
func (c *Client) VerifyPayment(ctx context.Context, proof billing.PaymentProof) (billing.VerificationResult, error) {
	req := verifyRequest{
		GatewayOrderID:   proof.GatewayOrderID,
		GatewayPaymentID: proof.GatewayPaymentID,
		Signature:        proof.Signature,
	}

	var payload verifyPayload
	if err := c.postJSON(ctx, "/payments/verify", req, &payload); err != nil {
		return billing.VerificationResult{}, fmt.Errorf("verify payment: %w", err)
	}

	if !payload.Verified {
		return billing.VerificationResult{Outcome: enums.VerificationRejected}, nil
	}
	return billing.VerificationResult{
		Outcome:         enums.VerificationVerified,
		CreditedCredits: payload.CreditedCredits,
	}, nil
}

func (c *Client) WalletBalance(ctx context.Context, userID int64) (int64, error) {
	var payload balancePayload
	if err := c.getJSON(ctx, userPath("/admin/wallet/", userID, "/balance"), &payload); err != nil {
		return 0, fmt.Errorf("wallet balance: %w", err)
	}
	return payload.Balance, nil
}

func (c *Client) WalletHistory(ctx context.Context, userID int64, limit int) ([]billing.LedgerEntry, error) {
	path := userPath("/admin/wallet/", userID, "/history")
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	var payload historyPayload
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("wallet history: %w", err)
	}

	entries := make([]billing.LedgerEntry, 0, len(payload.Entries))
	for _, e := range payload.Entries {
		entry, err := mapLedgerEntry(e)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

type WalletActionInput struct {
	UserID    int64
	Amount    int64
	Action    enums.LedgerKind
	Remark    string
	ActionKey string
}

// ApplyWalletAction posts a manual credit/debit. The action key makes retries
// of the same submission idempotent upstream.
func (c *Client) ApplyWalletAction(ctx context.Context, in WalletActionInput) (billing.LedgerEntry, error) {
	req := walletActionRequest{
		UserID:    in.UserID,
		Amount:    in.Amount,
		Action:    string(in.Action),
		Remark:    in.Remark,
		ActionKey: in.ActionKey,
	}

	var payload walletActionPayload
	if err := c.postJSON(ctx, "/admin/wallet/action", req, &payload); err != nil {
		return billing.LedgerEntry{}, fmt.Errorf("apply wallet action: %w", err)
	}
	return mapLedgerEntry(payload.Entry)
}

func mapLedgerEntry(e ledgerEntryPayload) (billing.LedgerEntry, error) {
	kind, ok := enums.ParseLedgerKind(e.Kind)
	if !ok {
		return billing.LedgerEntry{}, fmt.Errorf("%w: ledger entry with kind %q", ErrBadResponse, e.Kind)
	}
	return billing.LedgerEntry{
		At:     e.At,
		Amount: e.Amount,
		Kind:   kind,
		Remark: e.Remark,
		Actor:  e.Actor,
	}, nil
}
