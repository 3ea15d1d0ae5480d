// Package handlers exposes the monitor over HTTP: a websocket event
// stream for the UI and a small REST surface for status and history.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"DROWSY_GUARD/go-monitor/internal/database"
	"DROWSY_GUARD/go-monitor/internal/scheduler"
	"DROWSY_GUARD/go-monitor/internal/services"
)

type API struct {
	hub     *Hub
	sched   *scheduler.Scheduler
	model   *services.ModelClient
	metrics *services.Metrics
	store   *database.Store // nil when persistence is unavailable
	origins string
	started time.Time
}

func NewAPI(hub *Hub, sched *scheduler.Scheduler, model *services.ModelClient, metrics *services.Metrics, store *database.Store, corsOrigins string) *API {
	return &API{
		hub:     hub,
		sched:   sched,
		model:   model,
		metrics: metrics,
		store:   store,
		origins: corsOrigins,
		started: time.Now(),
	}
}

func (a *API) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", a.hub.HandleWS)

	mux.HandleFunc("/api/health", a.cors(a.handleHealth))
	mux.HandleFunc("/api/status", a.cors(a.handleStatus))
	mux.HandleFunc("/api/metrics", a.cors(a.handleMetrics))
	mux.HandleFunc("/api/summaries", a.cors(a.handleSummaries))
}

func (a *API) cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", a.origins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// Обработчик REST API - Проверка здоровья
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Method not allowed",
		})
		return
	}

	modelReady := a.model.HealthCheck()
	status := "healthy"
	if !modelReady {
		status = "degraded"
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         status,
		"model_ready":    modelReady,
		"db_connected":   a.store != nil,
		"active_clients": a.hub.Count(),
		"uptime_sec":     int(time.Since(a.started).Seconds()),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// Обработчик REST API - Состояние цикла
func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Method not allowed",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(a.sched.Status())
}

// Обработчик REST API - Метрики
func (a *API) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Method not allowed",
		})
		return
	}

	snapshot := a.metrics.Snapshot()
	snapshot["active_clients"] = a.hub.Count()
	snapshot["timestamp"] = time.Now().Format(time.RFC3339)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(snapshot)
}

// Обработчик REST API - История окон
func (a *API) handleSummaries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Method not allowed",
		})
		return
	}

	if a.store == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Persistence is not available",
		})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	records, err := a.store.RecentSummaries(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to load summaries: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Failed to load summaries",
		})
		return
	}
	if records == nil {
		records = []database.SummaryRecord{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"summaries": records,
		"count":     len(records),
	})
}
