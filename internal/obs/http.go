// Copyright 2025 James Ross
package obs

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"

    "github.com/flyingrobots/go-emit/internal/config"
    "github.com/flyingrobots/go-emit/internal/health"
    promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// StartHTTPServer exposes /metrics, /healthz and /readyz. readiness is a
// callback that should return nil when the app is ready; monitor, if
// non-nil, is rendered as JSON on /readyz alongside the readiness check so
// an operator can see why an adapter is considered unready without also
// scraping /metrics.
func StartHTTPServer(cfg *config.Config, readiness func(context.Context) error, monitor *health.Monitor) *http.Server {
    mux := http.NewServeMux()
    mux.Handle("/metrics", promhttp.Handler())
    mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
        // Liveness: if the process is up, return 200
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
        if readiness != nil {
            if err := readiness(r.Context()); err != nil {
                http.Error(w, fmt.Sprintf("not ready: %v", err), http.StatusServiceUnavailable)
                return
            }
        }
        w.Header().Set("Content-Type", "application/json")
        w.WriteHeader(http.StatusOK)
        if monitor == nil {
            _, _ = w.Write([]byte(`{"status":"ready"}`))
            return
        }
        _ = json.NewEncoder(w).Encode(monitor.Summary())
    })
    srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Observability.MetricsPort), Handler: mux}
    go func() { _ = srv.ListenAndServe() }()
    return srv
}
