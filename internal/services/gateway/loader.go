package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LoadState is the per-gateway checkout script state. Failed is sticky: once a
// probe fails the gateway stays unavailable until the process restarts, so no
// half-loaded script tags pile up behind automatic retries.
type LoadState string

const (
	LoadStateReady  LoadState = "ready"
	LoadStateFailed LoadState = "failed"
)

var ErrUnknownGateway = errors.New("unknown gateway")

// probeTimeout bounds a single script probe. The probe runs detached from the
// triggering request: its outcome is cached for every user, so it must not
// inherit one caller's deadline or cancellation.
const probeTimeout = 10 * time.Second

// Prober checks that a gateway's checkout script endpoint answers.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

type httpProber struct {
	client *http.Client
}

func (p httpProber) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe gateway script: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("probe gateway script: status %d", resp.StatusCode)
	}
	return nil
}

// Loader ensures each gateway's script endpoint is probed at most once per
// process. Concurrent callers coalesce into the single in-flight probe.
type Loader struct {
	scripts map[string]string
	prober  Prober
	log     *zap.Logger

	group  singleflight.Group
	mu     sync.Mutex
	states map[string]LoadState
}

func NewLoader(scripts map[string]string, httpClient *http.Client, log *zap.Logger) *Loader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		scripts: scripts,
		prober:  httpProber{client: httpClient},
		log:     log,
		states:  make(map[string]LoadState),
	}
}

// SetProber swaps the probe implementation. Test seam.
func (l *Loader) SetProber(p Prober) {
	if p != nil {
		l.prober = p
	}
}

// EnsureLoaded resolves the gateway's script state, probing on first use. The
// probe itself runs on a detached context with its own deadline.
func (l *Loader) EnsureLoaded(_ context.Context, gatewayName string) (LoadState, error) {
	url, ok := l.scripts[gatewayName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGateway, gatewayName)
	}

	l.mu.Lock()
	if state, done := l.states[gatewayName]; done {
		l.mu.Unlock()
		return state, nil
	}
	l.mu.Unlock()

	result, err, _ := l.group.Do(gatewayName, func() (any, error) {
		probeCtx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		state := LoadStateReady
		if probeErr := l.prober.Probe(probeCtx, url); probeErr != nil {
			l.log.Warn("gateway script probe failed",
				zap.String("gateway", gatewayName),
				zap.Error(probeErr),
			)
			state = LoadStateFailed
		}

		l.mu.Lock()
		l.states[gatewayName] = state
		l.mu.Unlock()
		return state, nil
	})
	if err != nil {
		return "", err
	}
	return result.(LoadState), nil
}
