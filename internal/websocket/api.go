package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"
)

// MetricsProvider определяет методы для получения метрик хаба
type MetricsProvider interface {
	GetMetrics() map[string]interface{}
	ClientCount() int
}

// MetricsHandler отдает метрики хаба в JSON, а с ?format=prometheus в текстовом формате Prometheus
func MetricsHandler(provider MetricsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics := provider.GetMetrics()

		if r.URL.Query().Get("format") == "prometheus" {
			w.Header().Set("Content-Type", "text/plain; version=0.0.4")
			renderPrometheusMetrics(w, metrics)
			return
		}

		metrics["generated_at"] = time.Now().Format(time.RFC3339)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(metrics); err != nil {
			log.Printf("[WS API] Error encoding metrics: %v", err)
		}
	}
}

// HealthCheckHandler сообщает о состоянии хаба
func HealthCheckHandler(provider MetricsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		statusCode := http.StatusOK
		clientCount := 0

		if provider != nil {
			clientCount = provider.ClientCount()
		} else {
			status = "unavailable"
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"status":             status,
			"active_connections": clientCount,
			"timestamp":          time.Now().Format(time.RFC3339),
		}); err != nil {
			log.Printf("[WS API] Error encoding health check response: %v", err)
		}
	}
}

var metricDescriptions = map[string]struct {
	help string
	typ  string
}{
	"total_connections":  {"Total number of connections since server start", "counter"},
	"active_connections": {"Current number of active connections", "gauge"},
	"connected_users":    {"Current number of users with at least one connection", "gauge"},
	"messages_sent":      {"Total number of messages queued to clients", "counter"},
	"messages_dropped":   {"Total number of messages dropped on full buffers", "counter"},
	"messages_received":  {"Total number of messages received from clients", "counter"},
	"cluster_received":   {"Total number of events received from other instances", "counter"},
	"uptime_seconds":     {"Hub uptime in seconds", "gauge"},
}

// renderPrometheusMetrics форматирует метрики в формате Prometheus
func renderPrometheusMetrics(w http.ResponseWriter, metrics map[string]interface{}) {
	names := make([]string, 0, len(metricDescriptions))
	for name := range metricDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, ok := metrics[name]
		if !ok {
			continue
		}
		d := metricDescriptions[name]
		fmt.Fprintf(w, "# HELP websocket_%s %s\n", name, d.help)
		fmt.Fprintf(w, "# TYPE websocket_%s %s\n", name, d.typ)
		fmt.Fprintf(w, "websocket_%s %v\n", name, value)
	}
}
