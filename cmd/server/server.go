package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aonescu/kubelens/internal/kube"
	"github.com/aonescu/kubelens/internal/poller"
	"github.com/aonescu/kubelens/internal/related"
	"github.com/aonescu/kubelens/internal/state"
)

type APIServer struct {
	store      state.EventStore
	registry   related.Registry
	client     kube.Client
	namespaces *poller.Namespaces
	logger     *zap.Logger
	mux        *http.ServeMux
}

func NewAPIServer(store state.EventStore, client kube.Client, namespaces *poller.Namespaces, logger *zap.Logger) *APIServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := &APIServer{
		store:      store,
		registry:   related.NewRegistry(client),
		client:     client,
		namespaces: namespaces,
		logger:     logger,
		mux:        http.NewServeMux(),
	}
	api.registerRoutes()
	return api
}

func (api *APIServer) registerRoutes() {
	// Event endpoints
	api.mux.HandleFunc("/api/v1/events", api.handleEvents)
	api.mux.HandleFunc("/api/v1/events/history", api.handleEventHistory)

	// Related resources
	api.mux.HandleFunc("/api/v1/related", api.handleRelated)
	api.mux.HandleFunc("/api/v1/describe", api.handleDescribe)

	// Watched namespaces
	api.mux.HandleFunc("/api/v1/namespaces", api.handleNamespaces)

	// Health check
	api.mux.HandleFunc("/health", api.handleHealth)
	api.mux.HandleFunc("/ready", api.handleReady)
}

// Handler returns the routes wrapped in the logging and CORS middleware.
func (api *APIServer) Handler() http.Handler {
	return api.corsMiddleware(api.loggingMiddleware(api.mux))
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (api *APIServer) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			api.logger.Warn("API server shutdown failed", zap.Error(err))
		}
	}()

	api.logger.Info("starting API server", zap.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
