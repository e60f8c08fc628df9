// Package api wires the control-plane HTTP contracts (§6) to chi routes.
// Handlers are thin translation layers between HTTP and the store/queues;
// no business logic lives here.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nimble-agent/nimble/internal/models"
	"github.com/nimble-agent/nimble/internal/paths"
	"github.com/nimble-agent/nimble/internal/queue"
	"github.com/nimble-agent/nimble/internal/store"
)

// Dependencies groups everything the router and its handlers need. Passing
// one struct instead of N constructor arguments keeps NewRouter's signature
// stable as handlers grow more dependencies.
type Dependencies struct {
	Logger     *slog.Logger
	Store      *store.Store
	Paths      paths.Paths
	BuildQueue *queue.Queue[models.BuildJob]
}

// NewRouter constructs the chi multiplexer, attaches middleware, builds
// every handler, and registers every route. It returns a plain
// http.Handler so main has no chi import of its own.
func NewRouter(deps Dependencies) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	healthHandler := NewHealthHandler(deps.Logger)
	buildHandler := NewBuildHandler(deps.Store, deps.Paths, deps.BuildQueue, deps.Logger)
	deploymentHandler := NewDeploymentHandler(deps.Store, deps.Logger)

	// Every route, /health included, is registered at the root with no /api
	// prefix; load balancers and uptime monitors find /health at its standard
	// path.
	router.Get("/health", healthHandler.Health)

	router.Post("/builds", buildHandler.CreateBuild)
	router.Get("/builds", buildHandler.ListBuilds)
	router.Get("/builds/{id}", buildHandler.GetBuild)

	router.Get("/deployments", deploymentHandler.ListDeployments)
	router.Get("/deployments/{id}", deploymentHandler.GetDeployment)

	return router
}
