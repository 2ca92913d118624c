package app

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"markev/backend/services/charger-finder/internal/catalog"
	appconfig "markev/backend/services/charger-finder/internal/config"
	httpserver "markev/backend/services/charger-finder/internal/http"
	"markev/backend/services/charger-finder/internal/http/handlers"
	"markev/backend/services/charger-finder/internal/http/middleware"
	"markev/backend/services/charger-finder/internal/metrics"
	"markev/backend/services/charger-finder/internal/models"
	"markev/backend/services/charger-finder/internal/password"
	"markev/backend/services/charger-finder/internal/service"
	"markev/backend/services/charger-finder/internal/ws"
)

const (
	adminRole        = "admin"
	feedWriteTimeout = 10 * time.Second
)

// App wires dependencies for the charger finder.
type App struct {
	server *httpserver.Server
	stores *Stores
	hub    *ws.Hub
	logger *zap.Logger
}

// New builds application graph.
func New(cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	stores, err := OpenStores(cfg, logger)
	if err != nil {
		return nil, err
	}

	handler, hub := newHandler(cfg, stores, logger)
	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		handler,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(cfg.CORS.AllowedOrigin),
	)

	return &App{
		server: server,
		stores: stores,
		hub:    hub,
		logger: logger,
	}, nil
}

func newHandler(cfg *appconfig.Config, stores *Stores, logger *zap.Logger) (http.Handler, *ws.Hub) {
	var fallback catalog.Fallback = catalog.NewStatic()
	if !cfg.Fallback.Enabled {
		fallback = catalog.Empty{}
	}

	chargerSvc := service.NewChargerService(stores.Chargers, fallback, service.ChargerServiceOptions{
		Timeout: cfg.RepositoryTimeout(),
		Policy:  service.FallbackPolicy(cfg.Fallback.Policy),
	}, logger)

	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	authSvc := service.NewAuthService(stores.Users, password.NewBcryptHasher(cfg.Auth.BcryptCost), tokenSvc, logger)
	authSvc.AllowClientRoles(cfg.Auth.AllowRoleOnRegister)
	if cfg.Auth.AllowRoleOnRegister && cfg.Auth.ProtectSeed {
		logger.Warn("registration accepts client roles; any caller can obtain the seed role")
	}

	deps := httpserver.RouterDeps{
		AuthHandlers:    handlers.NewAuthHandlers(authSvc, logger),
		ChargerHandlers: handlers.NewChargerHandlers(chargerSvc, logger),
	}
	if cfg.Auth.ProtectSeed {
		deps.SeedGuard = middleware.AuthMiddleware(tokenSvc, adminRole)
	} else {
		logger.Warn("charger seed endpoint is not protected")
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.Handler()
	}

	var hub *ws.Hub
	if cfg.Feed.Enabled {
		hub = ws.NewHub(logger)
		chargerSvc.OnReseed(hub.BroadcastReseed)
		snapshot := func(ctx context.Context) []models.Charger {
			return chargerSvc.All(ctx).Chargers
		}
		deps.Feed = ws.NewServer(hub, snapshot, feedWriteTimeout, originChecker(cfg.CORS.AllowedOrigin), logger).HandleWS
	}

	return httpserver.NewRouter(deps), hub
}

func originChecker(allowed string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return allowed == "" || allowed == "*" || origin == "" || origin == allowed
	}
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.stores.Close(ctx); err != nil {
		a.logger.Warn("failed to close storage", zap.Error(err))
	}
}
