package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
	"github.com/bhavya681/akobot-billing/internal/domain/enums"
	redrepo "github.com/bhavya681/akobot-billing/internal/repo/redis"
	"github.com/bhavya681/akobot-billing/internal/repo/upstream"
)

// ledgerStub is a tiny upstream wallet: balance plus append-only entries, with
// the action-key idempotency the real ledger guarantees.
type ledgerStub struct {
	balance      int64
	entries      []billing.LedgerEntry
	balanceCalls int
	historyCalls int
	actionCalls  int
	seenKeys     map[string]billing.LedgerEntry
}

func newLedgerStub(balance int64) *ledgerStub {
	return &ledgerStub{balance: balance, seenKeys: make(map[string]billing.LedgerEntry)}
}

func (s *ledgerStub) WalletBalance(_ context.Context, _ int64) (int64, error) {
	s.balanceCalls++
	return s.balance, nil
}

func (s *ledgerStub) WalletHistory(_ context.Context, _ int64, limit int) ([]billing.LedgerEntry, error) {
	s.historyCalls++
	if limit > 0 && len(s.entries) > limit {
		return s.entries[len(s.entries)-limit:], nil
	}
	return s.entries, nil
}

func (s *ledgerStub) ApplyWalletAction(_ context.Context, in upstream.WalletActionInput) (billing.LedgerEntry, error) {
	s.actionCalls++
	if entry, seen := s.seenKeys[in.ActionKey]; seen {
		return entry, nil
	}

	amount := in.Amount
	if in.Action == enums.LedgerKindDebit {
		amount = -amount
	}
	entry := billing.LedgerEntry{
		At:     time.Now().UTC(),
		Amount: amount,
		Kind:   in.Action,
		Remark: in.Remark,
		Actor:  "admin",
	}
	s.balance += amount
	s.entries = append(s.entries, entry)
	s.seenKeys[in.ActionKey] = entry
	return entry, nil
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *redrepo.WalletCacheRepo) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, redrepo.NewWalletCacheRepo(client)
}

func TestRefreshServesCachedSnapshotUntilTTL(t *testing.T) {
	mr, cache := newTestCache(t)
	ledger := newLedgerStub(1000)
	bridge := NewBridge(ledger, cache, Config{HistoryLimit: 10, CacheTTL: 30 * time.Second}, nil)

	ctx := context.Background()
	first, err := bridge.Refresh(ctx, 7)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if first.Cached || first.Balance != 1000 {
		t.Fatalf("unexpected first snapshot: %+v", first)
	}

	// The upstream moved on, but the fresh cache still answers: views may lag
	// by one TTL window by contract.
	ledger.balance = 2000
	second, err := bridge.Refresh(ctx, 7)
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if !second.Cached || second.Balance != 1000 {
		t.Fatalf("expected cached stale snapshot, got %+v", second)
	}
	if ledger.balanceCalls != 1 {
		t.Fatalf("cached refresh must not hit the ledger, got %d calls", ledger.balanceCalls)
	}

	mr.FastForward(31 * time.Second)
	third, err := bridge.Refresh(ctx, 7)
	if err != nil {
		t.Fatalf("third refresh: %v", err)
	}
	if third.Cached || third.Balance != 2000 {
		t.Fatalf("expected fresh snapshot after TTL, got %+v", third)
	}
}

func TestForceRefreshBypassesCache(t *testing.T) {
	_, cache := newTestCache(t)
	ledger := newLedgerStub(1000)
	bridge := NewBridge(ledger, cache, Config{CacheTTL: time.Minute}, nil)

	ctx := context.Background()
	if _, err := bridge.Refresh(ctx, 7); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	ledger.balance = 2000
	snapshot, err := bridge.ForceRefresh(ctx, 7)
	if err != nil {
		t.Fatalf("force refresh: %v", err)
	}
	if snapshot.Cached || snapshot.Balance != 2000 {
		t.Fatalf("force refresh served stale data: %+v", snapshot)
	}
}

func TestAdminDebitReflectsInBalanceAndHistory(t *testing.T) {
	_, cache := newTestCache(t)
	ledger := newLedgerStub(1000)
	bridge := NewBridge(ledger, cache, Config{CacheTTL: time.Minute}, nil)
	admin := NewAdminService(ledger, bridge, nil)

	ctx := context.Background()
	// Prime the cache so the post-action refresh has something to invalidate.
	if _, err := bridge.Refresh(ctx, 1); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	result, err := admin.Apply(ctx, ApplyInput{
		UserID: 1,
		Amount: 500,
		Action: "debit",
		Remark: "chargeback",
	})
	if err != nil {
		t.Fatalf("apply debit: %v", err)
	}

	if result.Entry.Amount != -500 || result.Entry.Kind != enums.LedgerKindDebit || result.Entry.Remark != "chargeback" {
		t.Fatalf("unexpected ledger entry: %+v", result.Entry)
	}
	if result.Snapshot.Balance != 500 {
		t.Fatalf("operator does not see the debit: balance %d", result.Snapshot.Balance)
	}
	if len(result.Snapshot.History) != 1 {
		t.Fatalf("expected one history entry, got %d", len(result.Snapshot.History))
	}
}

func TestAdminValidationFailsBeforeAnyNetworkCall(t *testing.T) {
	_, cache := newTestCache(t)
	ledger := newLedgerStub(1000)
	bridge := NewBridge(ledger, cache, Config{}, nil)
	admin := NewAdminService(ledger, bridge, nil)

	cases := []ApplyInput{
		{UserID: 1, Amount: 0, Action: "debit", Remark: "x"},
		{UserID: 1, Amount: -5, Action: "credit", Remark: "x"},
		{UserID: 1, Amount: 10, Action: "debit", Remark: "   "},
		{UserID: 1, Amount: 10, Action: "transfer", Remark: "x"},
		{UserID: 0, Amount: 10, Action: "credit", Remark: "x"},
	}
	for i, in := range cases {
		if _, err := admin.Apply(context.Background(), in); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
	if ledger.actionCalls != 0 || ledger.balanceCalls != 0 {
		t.Fatalf("validation failures reached the upstream: actions=%d balances=%d", ledger.actionCalls, ledger.balanceCalls)
	}
}
