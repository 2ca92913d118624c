package httpserver

import (
	"net/http"

	"markev/backend/services/charger-finder/internal/http/handlers"
	"markev/backend/services/charger-finder/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	AuthHandlers    *handlers.AuthHandlers
	ChargerHandlers *handlers.ChargerHandlers
	Feed            http.HandlerFunc
	Metrics         http.Handler
	// SeedGuard protects the reseed endpoint; nil leaves it open.
	SeedGuard func(http.Handler) http.Handler
}

// NewRouter wires HTTP routes.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/", exactPath("/", method(http.MethodGet, handlers.NewRootHandler())))
	mux.Handle("/api/health", method(http.MethodGet, handlers.NewHealthHandler()))

	mux.Handle("/api/chargers/all", method(http.MethodGet, http.HandlerFunc(deps.ChargerHandlers.All)))
	mux.Handle("/api/chargers/nearby", method(http.MethodGet, http.HandlerFunc(deps.ChargerHandlers.Nearby)))

	var seed http.Handler = http.HandlerFunc(deps.ChargerHandlers.Seed)
	if deps.SeedGuard != nil {
		seed = middleware.Chain(seed, deps.SeedGuard)
	}
	mux.Handle("/api/chargers/seed", method(http.MethodPost, seed))

	mux.Handle("/auth/register", method(http.MethodPost, http.HandlerFunc(deps.AuthHandlers.Register)))
	mux.Handle("/auth/login", method(http.MethodPost, http.HandlerFunc(deps.AuthHandlers.Login)))

	if deps.Feed != nil {
		mux.Handle("/ws/chargers", method(http.MethodGet, deps.Feed))
	}
	if deps.Metrics != nil {
		mux.Handle("/metrics", method(http.MethodGet, deps.Metrics))
	}

	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

// exactPath answers 404 for anything the catch-all pattern swept up, before any method check.
func exactPath(path string, handler http.Handler) http.Handler {
	notFound := handlers.NewNotFoundHandler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			notFound.ServeHTTP(w, r)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
