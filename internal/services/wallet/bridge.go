package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
	redrepo "github.com/bhavya681/akobot-billing/internal/repo/redis"
)

var ErrValidation = errors.New("validation error")

type LedgerReader interface {
	WalletBalance(ctx context.Context, userID int64) (int64, error)
	WalletHistory(ctx context.Context, userID int64, limit int) ([]billing.LedgerEntry, error)
}

type SnapshotCache interface {
	Get(ctx context.Context, userID int64) (redrepo.WalletSnapshotRecord, bool, error)
	Set(ctx context.Context, record redrepo.WalletSnapshotRecord, ttl time.Duration) error
	Invalidate(ctx context.Context, userID int64) error
}

type Config struct {
	HistoryLimit int
	CacheTTL     time.Duration
}

// Bridge reconciles the displayed wallet view with the upstream ledger. It is
// strictly read-only: balances are whatever the ledger reports, cached for at
// most CacheTTL. Views reading through different Bridge calls may transiently
// disagree until each has refreshed.
type Bridge struct {
	reader LedgerReader
	cache  SnapshotCache
	cfg    Config
	log    *zap.Logger
	now    func() time.Time
}

type Snapshot struct {
	UserID    int64                 `json:"user_id"`
	Balance   int64                 `json:"balance"`
	History   []billing.LedgerEntry `json:"history"`
	FetchedAt time.Time             `json:"fetched_at"`
	Cached    bool                  `json:"cached"`
}

func NewBridge(reader LedgerReader, cache SnapshotCache, cfg Config, log *zap.Logger) *Bridge {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		reader: reader,
		cache:  cache,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// Refresh returns the wallet snapshot, serving the cached copy while fresh.
func (b *Bridge) Refresh(ctx context.Context, userID int64) (Snapshot, error) {
	if userID <= 0 {
		return Snapshot{}, ErrValidation
	}
	if b.reader == nil {
		return Snapshot{}, fmt.Errorf("ledger reader is nil")
	}

	if b.cache != nil {
		record, hit, err := b.cache.Get(ctx, userID)
		if err != nil {
			b.log.Warn("wallet cache read failed", zap.Int64("user_id", userID), zap.Error(err))
		} else if hit {
			return Snapshot{
				UserID:    record.UserID,
				Balance:   record.Balance,
				History:   record.History,
				FetchedAt: record.FetchedAt,
				Cached:    true,
			}, nil
		}
	}

	return b.fetch(ctx, userID)
}

// ForceRefresh drops the cached snapshot and re-reads the ledger. Used right
// after a verified purchase or an admin action so the mutation is visible on
// the next render, and by the manual "refresh balance" affordance.
func (b *Bridge) ForceRefresh(ctx context.Context, userID int64) (Snapshot, error) {
	if userID <= 0 {
		return Snapshot{}, ErrValidation
	}
	if err := b.Invalidate(ctx, userID); err != nil {
		b.log.Warn("wallet cache invalidate failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	return b.fetch(ctx, userID)
}

func (b *Bridge) Invalidate(ctx context.Context, userID int64) error {
	if b.cache == nil {
		return nil
	}
	return b.cache.Invalidate(ctx, userID)
}

func (b *Bridge) fetch(ctx context.Context, userID int64) (Snapshot, error) {
	balance, err := b.reader.WalletBalance(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read wallet balance: %w", err)
	}
	history, err := b.reader.WalletHistory(ctx, userID, b.cfg.HistoryLimit)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read wallet history: %w", err)
	}

	snapshot := Snapshot{
		UserID:    userID,
		Balance:   balance,
		History:   history,
		FetchedAt: b.now().UTC(),
	}

	if b.cache != nil {
		record := redrepo.WalletSnapshotRecord{
			UserID:    snapshot.UserID,
			Balance:   snapshot.Balance,
			History:   snapshot.History,
			FetchedAt: snapshot.FetchedAt,
		}
		if err := b.cache.Set(ctx, record, b.cfg.CacheTTL); err != nil {
			b.log.Warn("wallet cache write failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	return snapshot, nil
}
