package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/searchkit/termindex/pkg/health"
)

// StartServer serves /metrics plus the health probes on the given port
// and returns a shutdown function.
func StartServer(port int, checker *health.Checker) (shutdown func(context.Context) error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	if checker != nil {
		mux.HandleFunc("/healthz", checker.LiveHandler())
		mux.HandleFunc("/readyz", checker.ReadyHandler())
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()

	return server.Shutdown
}
