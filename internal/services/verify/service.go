package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
	"github.com/bhavya681/akobot-billing/internal/domain/enums"
	"github.com/bhavya681/akobot-billing/internal/repo/upstream"
)

var ErrValidation = errors.New("validation error")

type Store interface {
	VerifyPayment(ctx context.Context, proof billing.PaymentProof) (billing.VerificationResult, error)
}

// Client submits gateway proofs for upstream verification. Single-shot:
// callers submit a proof once and act on the outcome. A network failure is
// never retried here; the charge may already have landed.
type Client struct {
	store Store
	log   *zap.Logger
}

func NewClient(store Store, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{store: store, log: log}
}

func (c *Client) Verify(ctx context.Context, proof billing.PaymentProof) (billing.VerificationResult, error) {
	if c.store == nil {
		return billing.VerificationResult{}, fmt.Errorf("verification store is nil")
	}
	if strings.TrimSpace(proof.GatewayOrderID) == "" ||
		strings.TrimSpace(proof.GatewayPaymentID) == "" ||
		strings.TrimSpace(proof.Signature) == "" {
		return billing.VerificationResult{}, ErrValidation
	}

	result, err := c.store.VerifyPayment(ctx, proof)
	if err != nil {
		if errors.Is(err, upstream.ErrUnavailable) {
			c.log.Warn("verification unreachable, charge state unknown",
				zap.String("gateway_order_id", proof.GatewayOrderID),
				zap.Error(err),
			)
			return billing.VerificationResult{Outcome: enums.VerificationNetworkError}, nil
		}
		if errors.Is(err, upstream.ErrRejected) {
			return billing.VerificationResult{Outcome: enums.VerificationRejected}, nil
		}
		return billing.VerificationResult{}, fmt.Errorf("verify proof: %w", err)
	}
	return result, nil
}
