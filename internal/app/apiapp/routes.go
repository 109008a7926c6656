package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bhavya681/akobot-billing/internal/config"
	authsvc "github.com/bhavya681/akobot-billing/internal/services/auth"
	catalogsvc "github.com/bhavya681/akobot-billing/internal/services/catalog"
	checkoutsvc "github.com/bhavya681/akobot-billing/internal/services/checkout"
	walletsvc "github.com/bhavya681/akobot-billing/internal/services/wallet"
	"github.com/bhavya681/akobot-billing/internal/transport/http/handlers"
)

type Dependencies struct {
	CatalogService *catalogsvc.Service
	Coordinator    *checkoutsvc.Coordinator
	WalletBridge   *walletsvc.Bridge
	AdminWallet    *walletsvc.AdminService
	JWTManager     *authsvc.JWTManager
	Logger         *zap.Logger
	Config         config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	catalogHandler := handlers.NewCatalogHandler(deps.CatalogService)
	checkoutHandler := handlers.NewCheckoutHandler(deps.Coordinator)
	walletHandler := handlers.NewWalletHandler(deps.WalletBridge)
	adminWalletHandler := handlers.NewAdminWalletHandler(deps.AdminWallet)

	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)
	requireAuth := RequireAuth()
	adminRoleMW := RequireRole("OWNER", "SUPPORT")

	r.Get("/healthz", healthHandler.Get)
	r.Get("/packages", catalogHandler.List)

	// Checkout runs with the soft auth middleware: an anonymous buy click gets
	// a 401 that carries the intended purchase instead of a bare rejection.
	r.With(authMW).Post("/checkout", checkoutHandler.Create)
	r.With(authMW, requireAuth).Post("/checkout/{attemptID}/result", checkoutHandler.Callback)
	r.With(authMW, requireAuth).Get("/checkout/{attemptID}", checkoutHandler.Get)

	r.With(authMW, requireAuth).Get("/wallet", walletHandler.Get)
	r.With(authMW, requireAuth).Post("/wallet/refresh", walletHandler.Refresh)

	r.Route("/admin/wallet", func(r chi.Router) {
		r.Use(authMW, adminRoleMW)
		r.Get("/{userID}/balance", adminWalletHandler.Balance)
		r.Get("/{userID}/history", adminWalletHandler.History)
		r.Post("/action", adminWalletHandler.Action)
	})
}
