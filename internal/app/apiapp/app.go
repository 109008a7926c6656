package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bhavya681/akobot-billing/internal/config"
	"github.com/bhavya681/akobot-billing/internal/domain/enums"
	"github.com/bhavya681/akobot-billing/internal/infra/httpclient"
	"github.com/bhavya681/akobot-billing/internal/jobs/cleanup"
	redrepo "github.com/bhavya681/akobot-billing/internal/repo/redis"
	"github.com/bhavya681/akobot-billing/internal/repo/upstream"
	authsvc "github.com/bhavya681/akobot-billing/internal/services/auth"
	catalogsvc "github.com/bhavya681/akobot-billing/internal/services/catalog"
	checkoutsvc "github.com/bhavya681/akobot-billing/internal/services/checkout"
	gatewaysvc "github.com/bhavya681/akobot-billing/internal/services/gateway"
	verifysvc "github.com/bhavya681/akobot-billing/internal/services/verify"
	walletsvc "github.com/bhavya681/akobot-billing/internal/services/wallet"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	walletCache := redrepo.NewWalletCacheRepo(redisClient)

	httpClient := httpclient.New(cfg.Upstream.Timeout)
	upstreamClient := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.ServiceToken, httpClient)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret)
	catalogService := catalogsvc.NewService(upstreamClient)

	descriptors := make([]gatewaysvc.Descriptor, 0, len(cfg.Gateways))
	for _, gw := range cfg.Gateways {
		// cfg.Validate already rejected unknown kinds.
		kind, _ := enums.ParseGatewayKind(gw.Kind)
		descriptors = append(descriptors, gatewaysvc.Descriptor{
			Name:      gw.Name,
			Kind:      kind,
			ScriptURL: gw.ScriptURL,
		})
	}
	registry := gatewaysvc.NewRegistry(descriptors)
	loader := gatewaysvc.NewLoader(registry.ScriptURLs(), httpClient, log)

	walletBridge := walletsvc.NewBridge(upstreamClient, walletCache, walletsvc.Config{
		HistoryLimit: cfg.Wallet.HistoryLimit,
		CacheTTL:     cfg.Wallet.CacheTTL,
	}, log)
	adminWallet := walletsvc.NewAdminService(upstreamClient, walletBridge, log)
	verifier := verifysvc.NewClient(upstreamClient, log)

	coordinator := checkoutsvc.NewCoordinator(checkoutsvc.Dependencies{
		Catalog:  catalogService,
		Orders:   upstreamClient,
		Loader:   loader,
		Gateways: registry,
		Verifier: verifier,
		Wallet:   walletBridge,
		Logger:   log,
	})

	cleanupJob := cleanup.New(coordinator, 5*time.Minute, log)
	go cleanupJob.Start(ctx)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		CatalogService: catalogService,
		Coordinator:    coordinator,
		WalletBridge:   walletBridge,
		AdminWallet:    adminWallet,
		JWTManager:     jwtManager,
		Logger:         log,
		Config:         cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("billing api started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
