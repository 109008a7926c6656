package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
	"github.com/bhavya681/akobot-billing/internal/domain/enums"
	"github.com/bhavya681/akobot-billing/internal/repo/upstream"
	"github.com/bhavya681/akobot-billing/internal/services/auth"
	"github.com/bhavya681/akobot-billing/internal/services/catalog"
	gatewaysvc "github.com/bhavya681/akobot-billing/internal/services/gateway"
	verifysvc "github.com/bhavya681/akobot-billing/internal/services/verify"
	walletsvc "github.com/bhavya681/akobot-billing/internal/services/wallet"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrAlreadyInProgress    = errors.New("purchase already in progress")
	ErrUnsupportedGateway   = errors.New("unsupported gateway")
	ErrGatewayNotReady      = errors.New("gateway not ready")
	ErrInvalidOrderResponse = errors.New("invalid order response")
	ErrPackageUnavailable   = errors.New("package unavailable")
	ErrNetwork              = errors.New("network error")
	ErrAttemptNotFound      = errors.New("attempt not found")
)

// Failure codes recorded on settled attempts. UserCancelled is a neutral
// outcome, not an error: the user chose to close the widget.
const (
	FailureGatewayFailure       = "GATEWAY_FAILURE"
	FailureUserCancelled        = "USER_CANCELLED"
	FailureVerificationRejected = "VERIFICATION_REJECTED"
	FailureNetworkError         = "NETWORK_ERROR"
)

// networkErrorMessage is deliberately soft: a verification transport failure
// means the charge may have landed, so the user is pointed at their wallet
// instead of being told the payment failed.
const networkErrorMessage = "payment may have succeeded - check your wallet and refresh the balance"

// settledRetention is how long a settled attempt stays readable for polling
// clients and duplicate callbacks before it is evicted.
const settledRetention = 15 * time.Minute

type Catalog interface {
	Purchasable(ctx context.Context, packageID string) (billing.Package, error)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, packageID, gateway string) (billing.Order, error)
}

type ScriptLoader interface {
	EnsureLoaded(ctx context.Context, gatewayName string) (gatewaysvc.LoadState, error)
}

type LaunchResolver interface {
	Known(gatewayName string) bool
	Resolve(gatewayName string, order billing.Order) (gatewaysvc.Launch, error)
}

type Verifier interface {
	Verify(ctx context.Context, proof billing.PaymentProof) (billing.VerificationResult, error)
}

type WalletRefresher interface {
	ForceRefresh(ctx context.Context, userID int64) (walletsvc.Snapshot, error)
}

type Dependencies struct {
	Catalog  Catalog
	Orders   OrderCreator
	Loader   ScriptLoader
	Gateways LaunchResolver
	Verifier Verifier
	Wallet   WalletRefresher
	Logger   *zap.Logger
}

// attemptState serializes transitions of one attempt. resolved flips exactly
// once; duplicate gateway callbacks after that are answered idempotently.
type attemptState struct {
	mu       sync.Mutex
	attempt  billing.Attempt
	resolved bool
}

// Coordinator drives the purchase state machine:
//
//	idle -> selecting_gateway -> creating_order -> awaiting_gateway
//	     -> verifying -> succeeded | failed       (modal flow)
//	creating_order -> redirected                  (redirect flow)
//
// At most one non-terminal attempt exists per (user, package); a second buy
// click while one is in flight is a rejected no-op, never a queued retry.
type Coordinator struct {
	deps Dependencies
	log  *zap.Logger

	mu       sync.Mutex
	inflight map[string]string
	attempts map[string]*attemptState
	settled  map[string]time.Time
	retain   time.Duration

	now   func() time.Time
	newID func() string
}

func NewCoordinator(deps Dependencies) *Coordinator {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		deps:     deps,
		log:      log,
		inflight: make(map[string]string),
		attempts: make(map[string]*attemptState),
		settled:  make(map[string]time.Time),
		retain:   settledRetention,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

type BeginResult struct {
	Attempt billing.Attempt
	Launch  gatewaysvc.Launch
}

// Begin runs the buy path up to the point where the browser takes over:
// a modal session to open, or a redirect to follow. Guards fail before any
// upstream order is created; once order creation succeeds the order exists
// server-side no matter what happens client-side afterwards.
func (c *Coordinator) Begin(ctx context.Context, identity auth.Identity, packageID, gatewayName string) (BeginResult, error) {
	if c.deps.Catalog == nil || c.deps.Orders == nil || c.deps.Loader == nil || c.deps.Gateways == nil {
		return BeginResult{}, fmt.Errorf("checkout dependencies are not configured")
	}

	if identity.UserID <= 0 {
		return BeginResult{}, ErrUnauthenticated
	}
	packageID = strings.TrimSpace(packageID)
	gatewayName = strings.ToLower(strings.TrimSpace(gatewayName))
	if packageID == "" || gatewayName == "" {
		return BeginResult{}, ErrValidation
	}

	pkg, err := c.deps.Catalog.Purchasable(ctx, packageID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrPackageUnavailable):
			return BeginResult{}, ErrPackageUnavailable
		case errors.Is(err, catalog.ErrValidation):
			return BeginResult{}, ErrValidation
		case errors.Is(err, upstream.ErrUnavailable):
			return BeginResult{}, fmt.Errorf("%w: load catalog: %v", ErrNetwork, err)
		default:
			return BeginResult{}, fmt.Errorf("resolve package: %w", err)
		}
	}

	// Neither checkout mechanic can serve an unknown gateway; fail before an
	// attempt is registered or an order created.
	if !c.deps.Gateways.Known(gatewayName) {
		return BeginResult{}, ErrUnsupportedGateway
	}

	state, err := c.register(identity.UserID, pkg.ID, gatewayName)
	if err != nil {
		return BeginResult{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	loadState, err := c.deps.Loader.EnsureLoaded(ctx, gatewayName)
	if err != nil {
		c.abandon(state)
		return BeginResult{}, fmt.Errorf("gateway script state: %w", err)
	}
	if loadState != gatewaysvc.LoadStateReady {
		// Back to idle: the user may retry once the script situation changes.
		c.abandon(state)
		return BeginResult{}, ErrGatewayNotReady
	}

	state.attempt.Status = enums.AttemptStatusCreatingOrder
	order, err := c.deps.Orders.CreateOrder(ctx, pkg.ID, gatewayName)
	if err != nil {
		c.abandon(state)
		switch {
		case errors.Is(err, upstream.ErrBadResponse), errors.Is(err, upstream.ErrRejected):
			return BeginResult{}, fmt.Errorf("%w: %v", ErrInvalidOrderResponse, err)
		case errors.Is(err, upstream.ErrUnavailable):
			return BeginResult{}, fmt.Errorf("%w: create order: %v", ErrNetwork, err)
		default:
			return BeginResult{}, fmt.Errorf("create order: %w", err)
		}
	}
	state.attempt.Order = &order

	launch, err := c.deps.Gateways.Resolve(gatewayName, order)
	if err != nil {
		// The order now exists upstream and cannot be cancelled from here; it
		// goes stale behind upstream expiry while the user retries fresh.
		c.abandon(state)
		switch {
		case errors.Is(err, gatewaysvc.ErrMissingKey):
			return BeginResult{}, fmt.Errorf("%w: %v", ErrInvalidOrderResponse, err)
		case errors.Is(err, gatewaysvc.ErrUnsupportedGateway):
			return BeginResult{}, ErrUnsupportedGateway
		default:
			return BeginResult{}, fmt.Errorf("resolve gateway launch: %w", err)
		}
	}

	if launch.Kind == enums.GatewayKindRedirect {
		// The browser navigates away; verification happens out-of-band when
		// the user lands back, so this side settles the attempt now.
		c.settleLocked(state, enums.AttemptStatusRedirected, "", "")
		c.log.Info("checkout redirect issued",
			zap.String("attempt_id", state.attempt.ID),
			zap.String("package_id", pkg.ID),
			zap.String("gateway", gatewayName),
		)
		return BeginResult{Attempt: state.attempt, Launch: launch}, nil
	}

	state.attempt.Status = enums.AttemptStatusAwaitingGateway
	c.log.Info("checkout modal session opened",
		zap.String("attempt_id", state.attempt.ID),
		zap.String("order_id", order.ID),
		zap.String("gateway", gatewayName),
	)
	return BeginResult{Attempt: state.attempt, Launch: launch}, nil
}

type CallbackInput struct {
	Outcome string
	Proof   *billing.PaymentProof
	Reason  string
}

type ResolveResult struct {
	Attempt         billing.Attempt
	Wallet          *walletsvc.Snapshot
	AlreadyResolved bool
}

// Resolve consumes the gateway widget's callback. Exactly one of
// success/failure/dismiss settles an attempt; anything after the first
// resolution is answered with the settled state and touches nothing.
func (c *Coordinator) Resolve(ctx context.Context, attemptID string, in CallbackInput) (ResolveResult, error) {
	state, ok := c.lookup(attemptID)
	if !ok {
		return ResolveResult{}, ErrAttemptNotFound
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.resolved {
		return ResolveResult{Attempt: state.attempt, AlreadyResolved: true}, nil
	}
	if state.attempt.Status != enums.AttemptStatusAwaitingGateway {
		return ResolveResult{}, fmt.Errorf("%w: attempt %s is %s", ErrValidation, attemptID, state.attempt.Status)
	}

	switch strings.ToLower(strings.TrimSpace(in.Outcome)) {
	case "success":
		return c.resolveSuccess(ctx, state, in.Proof)
	case "failure":
		c.settleLocked(state, enums.AttemptStatusFailed, FailureGatewayFailure, strings.TrimSpace(in.Reason))
		c.log.Warn("gateway reported checkout failure",
			zap.String("attempt_id", state.attempt.ID),
			zap.String("reason", state.attempt.FailureMessage),
		)
		return ResolveResult{Attempt: state.attempt}, nil
	case "dismiss":
		// Legitimate cancellation: terminal for this attempt, no error
		// surfaced. A fresh buy click constructs a fresh attempt.
		c.settleLocked(state, enums.AttemptStatusFailed, FailureUserCancelled, "")
		c.log.Info("checkout dismissed by user", zap.String("attempt_id", state.attempt.ID))
		return ResolveResult{Attempt: state.attempt}, nil
	default:
		return ResolveResult{}, ErrValidation
	}
}

func (c *Coordinator) resolveSuccess(ctx context.Context, state *attemptState, proof *billing.PaymentProof) (ResolveResult, error) {
	if c.deps.Verifier == nil {
		return ResolveResult{}, fmt.Errorf("verifier is not configured")
	}
	if proof == nil {
		return ResolveResult{}, ErrValidation
	}

	state.attempt.Status = enums.AttemptStatusVerifying
	result, err := c.deps.Verifier.Verify(ctx, *proof)
	if err != nil {
		if errors.Is(err, verifysvc.ErrValidation) {
			// Malformed proof: the attempt keeps waiting for a well-formed
			// callback rather than burning its single resolution.
			state.attempt.Status = enums.AttemptStatusAwaitingGateway
			return ResolveResult{}, ErrValidation
		}
		c.settleLocked(state, enums.AttemptStatusFailed, FailureNetworkError, networkErrorMessage)
		return ResolveResult{Attempt: state.attempt}, nil
	}

	switch result.Outcome {
	case enums.VerificationVerified:
		c.settleLocked(state, enums.AttemptStatusSucceeded, "", "")
		c.log.Info("purchase verified",
			zap.String("attempt_id", state.attempt.ID),
			zap.Int64("user_id", state.attempt.UserID),
			zap.Int("credited_credits", result.CreditedCredits),
		)

		var snapshot *walletsvc.Snapshot
		if c.deps.Wallet != nil {
			refreshed, refreshErr := c.deps.Wallet.ForceRefresh(ctx, state.attempt.UserID)
			if refreshErr != nil {
				// The credit is applied upstream either way; the wallet view
				// catches up on its next read.
				c.log.Warn("wallet refresh after purchase failed",
					zap.Int64("user_id", state.attempt.UserID),
					zap.Error(refreshErr),
				)
			} else {
				snapshot = &refreshed
			}
		}
		return ResolveResult{Attempt: state.attempt, Wallet: snapshot}, nil

	case enums.VerificationNetworkError:
		c.settleLocked(state, enums.AttemptStatusFailed, FailureNetworkError, networkErrorMessage)
		return ResolveResult{Attempt: state.attempt}, nil

	default:
		c.settleLocked(state, enums.AttemptStatusFailed, FailureVerificationRejected, "payment could not be verified")
		return ResolveResult{Attempt: state.attempt}, nil
	}
}

// Attempt returns a copy of the attempt for polling clients.
func (c *Coordinator) Attempt(attemptID string) (billing.Attempt, error) {
	state, ok := c.lookup(attemptID)
	if !ok {
		return billing.Attempt{}, ErrAttemptNotFound
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.attempt, nil
}

// register atomically claims the (user, package) in-flight slot.
func (c *Coordinator) register(userID int64, packageID, gatewayName string) (*attemptState, error) {
	key := inflightKey(userID, packageID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inflight[key]; busy {
		return nil, ErrAlreadyInProgress
	}

	state := &attemptState{
		attempt: billing.Attempt{
			ID:        c.newID(),
			UserID:    userID,
			PackageID: packageID,
			Gateway:   gatewayName,
			Status:    enums.AttemptStatusSelectingGateway,
			CreatedAt: c.now().UTC(),
		},
	}
	c.inflight[key] = state.attempt.ID
	c.attempts[state.attempt.ID] = state
	return state, nil
}

// abandon drops a pre-settlement attempt entirely, as if the buy click never
// happened: the package is immediately purchasable again.
func (c *Coordinator) abandon(state *attemptState) {
	state.attempt.Status = enums.AttemptStatusIdle

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, inflightKey(state.attempt.UserID, state.attempt.PackageID))
	delete(c.attempts, state.attempt.ID)
}

// settleLocked moves the attempt to a terminal state and frees the in-flight
// slot. The attempt record stays readable for the retention window, then a
// lookup or the sweep evicts it; it never transitions again.
func (c *Coordinator) settleLocked(state *attemptState, status enums.AttemptStatus, failureCode, failureMessage string) {
	now := c.now().UTC()
	state.attempt.Status = status
	state.attempt.FailureCode = failureCode
	state.attempt.FailureMessage = failureMessage
	state.attempt.SettledAt = &now
	state.resolved = true

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, inflightKey(state.attempt.UserID, state.attempt.PackageID))
	c.settled[state.attempt.ID] = now
}

// SweepSettled evicts settled attempts older than the retention window and
// reports how many were dropped. Run periodically by the cleanup job.
func (c *Coordinator) SweepSettled() int {
	cutoff := c.now().UTC().Add(-c.retain)

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for id, settledAt := range c.settled {
		if settledAt.Before(cutoff) {
			delete(c.attempts, id)
			delete(c.settled, id)
			evicted++
		}
	}
	return evicted
}

func (c *Coordinator) lookup(attemptID string) (*attemptState, bool) {
	id := strings.TrimSpace(attemptID)

	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.attempts[id]
	if !ok {
		return nil, false
	}
	if settledAt, done := c.settled[id]; done && c.now().UTC().Sub(settledAt) > c.retain {
		delete(c.attempts, id)
		delete(c.settled, id)
		return nil, false
	}
	return state, true
}

func inflightKey(userID int64, packageID string) string {
	return fmt.Sprintf("%d|%s", userID, packageID)
}
