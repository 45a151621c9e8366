package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aonescu/kubelens/internal/config"
	"github.com/aonescu/kubelens/internal/db"
	"github.com/aonescu/kubelens/internal/related"
)

const defaultHistoryLimit = 20

type relatedResponse struct {
	Kind      string        `json:"kind"`
	Namespace string        `json:"namespace"`
	Criteria  string        `json:"criteria"`
	Related   related.Value `json:"related"`
}

type namespacesBody struct {
	Namespaces []string `json:"namespaces"`
}

// GET /api/v1/events
func (api *APIServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot, ok := api.store.Latest()
	if !ok {
		http.Error(w, "No events collected yet", http.StatusNotFound)
		return
	}
	api.respondJSON(w, snapshot)
}

// GET /api/v1/events/history?limit=20  (limit=0 returns everything kept)
func (api *APIServer) handleEventHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = l
	}

	api.respondJSON(w, map[string]interface{}{
		"snapshots": api.store.History(limit),
	})
}

// GET /api/v1/related?kind=pods&namespace=default&selector=app=web
// GET /api/v1/related?kind=services&namespace=default&names=a,b
func (api *APIServer) handleRelated(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	kind := query.Get("kind")
	resolver, ok := api.registry.Lookup(kind)
	if !ok {
		http.Error(w, "kind must be one of: "+strings.Join(api.registry.Names(), ", "), http.StatusBadRequest)
		return
	}

	namespace := namespaceParam(r)
	selector, names := query.Get("selector"), query.Get("names")
	var cr related.Criteria
	switch {
	case selector != "" && names != "":
		http.Error(w, "selector and names are mutually exclusive", http.StatusBadRequest)
		return
	case selector != "":
		set, err := related.ParseSelector(selector)
		if err != nil {
			http.Error(w, "Invalid selector: "+err.Error(), http.StatusBadRequest)
			return
		}
		cr = related.MatchSelector(set)
	case names != "":
		cr = related.MatchNames(config.SplitList(names)...)
	default:
		http.Error(w, "selector or names is required", http.StatusBadRequest)
		return
	}

	value, err := resolver.Related(r.Context(), namespace, cr)
	if err != nil {
		api.logger.Warn("related lookup failed",
			zap.String("kind", kind),
			zap.String("namespace", namespace),
			zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	api.respondJSON(w, relatedResponse{
		Kind:      kind,
		Namespace: namespace,
		Criteria:  cr.String(),
		Related:   value,
	})
}

// GET /api/v1/describe?kind=service&namespace=default&name=web
func (api *APIServer) handleDescribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind := r.URL.Query().Get("kind")
	name := r.URL.Query().Get("name")
	namespace := namespaceParam(r)

	if kind == "" || name == "" {
		http.Error(w, "kind and name are required", http.StatusBadRequest)
		return
	}

	var (
		d   *related.Description
		err error
	)
	switch strings.ToLower(kind) {
	case "service", "services", "svc":
		d, err = related.DescribeService(r.Context(), api.client, namespace, name)
	case "pod", "pods", "po":
		d, err = related.DescribePod(r.Context(), api.client, namespace, name)
	default:
		http.Error(w, "kind must be service or pod", http.StatusBadRequest)
		return
	}
	if err != nil {
		api.logger.Warn("describe failed",
			zap.String("kind", kind),
			zap.String("namespace", namespace),
			zap.String("name", name),
			zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	api.respondJSON(w, d)
}

// GET /api/v1/namespaces
// PUT /api/v1/namespaces  Body: {"namespaces": ["default", "kube-system"]}
func (api *APIServer) handleNamespaces(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		api.respondJSON(w, namespacesBody{Namespaces: api.namespaces.Get()})
	case http.MethodPut:
		var req namespacesBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		var cleaned []string
		for _, ns := range req.Namespaces {
			if ns = strings.TrimSpace(ns); ns != "" {
				cleaned = append(cleaned, ns)
			}
		}
		if len(cleaned) == 0 {
			http.Error(w, "at least one namespace is required", http.StatusBadRequest)
			return
		}
		api.namespaces.Set(cleaned)
		api.logger.Info("watched namespaces updated", zap.Strings("namespaces", cleaned))
		api.respondJSON(w, namespacesBody{Namespaces: api.namespaces.Get()})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /health
func (api *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "healthy",
		"time":   time.Now(),
	}

	// Check database connection if using PostgreSQL
	if pgStore, ok := api.store.(*db.PostgresStore); ok {
		if err := pgStore.Ping(); err != nil {
			health["status"] = "unhealthy"
			health["database"] = "disconnected"
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(health)
			return
		}
		health["database"] = "connected"
	}

	api.respondJSON(w, health)
}

// GET /ready
func (api *APIServer) handleReady(w http.ResponseWriter, r *http.Request) {
	_, collected := api.store.Latest()
	ready := map[string]interface{}{
		"ready":      true,
		"collected":  collected,
		"kinds":      api.registry.Names(),
		"namespaces": api.namespaces.Get(),
	}
	api.respondJSON(w, ready)
}

func namespaceParam(r *http.Request) string {
	if ns := r.URL.Query().Get("namespace"); ns != "" {
		return ns
	}
	return "default"
}

func (api *APIServer) respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		api.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (api *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		api.logger.Debug("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (api *APIServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
