package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
)

const walletSnapshotPrefix = "wallet_snapshot:"

// WalletCacheRepo holds short-lived wallet snapshots so repeated balance reads
// do not hammer the upstream ledger. Staleness up to the TTL is acceptable by
// contract; writers must invalidate after any known ledger mutation.
type WalletCacheRepo struct {
	client *goredis.Client
}

type WalletSnapshotRecord struct {
	UserID    int64                 `json:"user_id"`
	Balance   int64                 `json:"balance"`
	History   []billing.LedgerEntry `json:"history"`
	FetchedAt time.Time             `json:"fetched_at"`
}

func NewWalletCacheRepo(client *goredis.Client) *WalletCacheRepo {
	return &WalletCacheRepo{client: client}
}

func (r *WalletCacheRepo) Get(ctx context.Context, userID int64) (WalletSnapshotRecord, bool, error) {
	if r.client == nil {
		return WalletSnapshotRecord{}, false, fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return WalletSnapshotRecord{}, false, fmt.Errorf("invalid wallet cache user id")
	}

	raw, err := r.client.Get(ctx, walletSnapshotKey(userID)).Bytes()
	if err == goredis.Nil {
		return WalletSnapshotRecord{}, false, nil
	}
	if err != nil {
		return WalletSnapshotRecord{}, false, fmt.Errorf("get wallet snapshot: %w", err)
	}

	var record WalletSnapshotRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		return WalletSnapshotRecord{}, false, nil
	}
	return record, true, nil
}

func (r *WalletCacheRepo) Set(ctx context.Context, record WalletSnapshotRecord, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if record.UserID <= 0 || ttl <= 0 {
		return fmt.Errorf("invalid wallet snapshot payload")
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal wallet snapshot: %w", err)
	}
	if err := r.client.Set(ctx, walletSnapshotKey(record.UserID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("set wallet snapshot: %w", err)
	}
	return nil
}

func (r *WalletCacheRepo) Invalidate(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid wallet cache user id")
	}
	if err := r.client.Del(ctx, walletSnapshotKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate wallet snapshot: %w", err)
	}
	return nil
}

func walletSnapshotKey(userID int64) string {
	return walletSnapshotPrefix + strconv.FormatInt(userID, 10)
}
