// Package httptransport exposes the identity core over HTTP. Silos
// authenticate through the gateway handshake and carry the resulting session
// token as a bearer credential on every data route.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"helix/internal/coordinator"
	"helix/internal/dna"
	"helix/internal/gateway"
	"helix/internal/streak"
	"helix/internal/vault"
	id "helix/pkg/domain"
)

// Handler wires the HTTP surface to the domain services.
type Handler struct {
	coordinator *coordinator.Coordinator
	pool        *coordinator.Pool
	vault       *vault.Service
	oracle      *streak.Service
	dna         *dna.Service
	gateway     *gateway.Service
	logger      *slog.Logger
	gatherer    prometheus.Gatherer
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithMetricsGatherer mounts /metrics backed by the given gatherer.
func WithMetricsGatherer(g prometheus.Gatherer) Option {
	return func(h *Handler) { h.gatherer = g }
}

func NewHandler(
	coord *coordinator.Coordinator,
	pool *coordinator.Pool,
	xpVault *vault.Service,
	oracle *streak.Service,
	aggregator *dna.Service,
	gw *gateway.Service,
	opts ...Option,
) *Handler {
	h := &Handler{
		coordinator: coord,
		pool:        pool,
		vault:       xpVault,
		oracle:      oracle,
		dna:         aggregator,
		gateway:     gw,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts every route on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Use(RequestID)
	r.Use(Recovery(h.logger))
	r.Use(RequestLogger(h.logger))

	r.Get("/healthz", h.handleHealth)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/handshake", h.handleHandshake)
		r.Post("/revoke", h.handleRevoke)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(h.gateway.Sessions(), id.IntentRead))
			r.Get("/silos", h.handleListSilos)
			r.Get("/players/{userID}/xp", h.handleXPHistory)
			r.Get("/players/{userID}/dna", h.handleDNA)
			r.Get("/players/{userID}/streak", h.handleStreak)
			r.Get("/players/{userID}/alerts", h.handleAlerts)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(h.gateway.Sessions(), id.IntentWrite))
			r.Post("/events/drill", h.handleDrillCompletion)
			r.Post("/events/arcade", h.handleArcadeResult)
			r.Post("/events/bankroll", h.handleBankrollUpdate)
			r.Post("/events/reputation", h.handleReputationUpdate)
			r.Post("/grants", h.handleManualGrant)
			r.Delete("/players/{userID}", h.handleErasure)
		})

		// SecureUpdate validates its own session token; no middleware here
		// so the gateway can audit the denial itself.
		r.Post("/updates/{userID}", h.handleSecureUpdate)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathUserID(r *http.Request) (id.UserID, error) {
	return id.ParseUserID(chi.URLParam(r, "userID"))
}
