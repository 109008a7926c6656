package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
	"github.com/bhavya681/akobot-billing/internal/domain/enums"
	"github.com/bhavya681/akobot-billing/internal/repo/upstream"
)

type LedgerWriter interface {
	ApplyWalletAction(ctx context.Context, in upstream.WalletActionInput) (billing.LedgerEntry, error)
}

// AdminService is the operator entry point into the ledger contract. It shares
// the idempotency posture of the purchase path: each submitted action carries
// a fresh key, and a reversal is a new opposite action with its own remark,
// never an undo.
type AdminService struct {
	ledger LedgerWriter
	bridge *Bridge
	log    *zap.Logger
	newKey func() string
}

type ApplyInput struct {
	UserID int64
	Amount int64
	Action string
	Remark string
}

type ApplyResult struct {
	Entry    billing.LedgerEntry
	Snapshot Snapshot
}

func NewAdminService(ledger LedgerWriter, bridge *Bridge, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{
		ledger: ledger,
		bridge: bridge,
		log:    log,
		newKey: uuid.NewString,
	}
}

// Apply validates the action fully before any network call: a non-positive
// amount or empty remark never reaches the upstream ledger.
func (s *AdminService) Apply(ctx context.Context, in ApplyInput) (ApplyResult, error) {
	if s.ledger == nil || s.bridge == nil {
		return ApplyResult{}, fmt.Errorf("admin wallet dependencies are not configured")
	}

	if in.UserID <= 0 || in.Amount <= 0 {
		return ApplyResult{}, ErrValidation
	}
	kind, ok := enums.ParseLedgerKind(strings.ToLower(strings.TrimSpace(in.Action)))
	if !ok {
		return ApplyResult{}, ErrValidation
	}
	remark := strings.TrimSpace(in.Remark)
	if remark == "" {
		return ApplyResult{}, ErrValidation
	}

	entry, err := s.ledger.ApplyWalletAction(ctx, upstream.WalletActionInput{
		UserID:    in.UserID,
		Amount:    in.Amount,
		Action:    kind,
		Remark:    remark,
		ActionKey: s.newKey(),
	})
	if err != nil {
		return ApplyResult{}, fmt.Errorf("apply wallet action: %w", err)
	}

	s.log.Info("admin wallet action applied",
		zap.Int64("user_id", in.UserID),
		zap.Int64("amount", in.Amount),
		zap.String("kind", string(kind)),
	)

	// Refresh both balance and history so the operator sees the effect
	// immediately instead of a stale cached snapshot.
	snapshot, err := s.bridge.ForceRefresh(ctx, in.UserID)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("refresh wallet after action: %w", err)
	}

	return ApplyResult{Entry: entry, Snapshot: snapshot}, nil
}

// Balance and History proxy the operator lookup views through the same bridge
// the purchase path refreshes.
func (s *AdminService) Balance(ctx context.Context, userID int64) (Snapshot, error) {
	if s.bridge == nil {
		return Snapshot{}, fmt.Errorf("wallet bridge is nil")
	}
	return s.bridge.Refresh(ctx, userID)
}

func (s *AdminService) History(ctx context.Context, userID int64) ([]billing.LedgerEntry, error) {
	snapshot, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snapshot.History, nil
}
