// cmd/match-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"jobmatch-workers/internal/bootstrap"
	"jobmatch-workers/internal/common/camunda"
	"jobmatch-workers/internal/common/config"
	"jobmatch-workers/internal/common/logger"
	"jobmatch-workers/internal/common/observability"
	"jobmatch-workers/internal/matching"

	cms "jobmatch-workers/internal/workers/matching/calculate-match-score"
	icm "jobmatch-workers/internal/workers/matching/invalidate-candidate-matches"
	sjl "jobmatch-workers/internal/workers/matching/score-job-listing"
)

type registrable interface {
	Register() error
	Close()
	GetTaskType() string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting match worker...",
		zap.String("environment", cfg.App.Environment),
		zap.String("jobSource", cfg.Matching.JobSource),
		zap.String("cacheDriver", cfg.Matching.CacheDriver),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	stores, err := bootstrap.ConnectStores(ctx, cfg, bootstrap.ConnectOptions{
		Attempts:     15,
		InitialDelay: 2 * time.Second,
	}, log)
	if err != nil {
		zapLog.Fatal("store connection failed", zap.Error(err))
	}
	defer stores.Close()

	service, err := bootstrap.NewMatchService(cfg.Matching, stores, log)
	if err != nil {
		zapLog.Fatal("match service init failed", zap.Error(err))
	}
	service.WithRecorder(obs)

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = bootstrap.RetryWithBackoff(ctx, func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: cfg.Camunda.Plaintext,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Workers ---
	handlers, err := newHandlers(cfg, zeebe, service, log, obs)
	if err != nil {
		zapLog.Fatal("worker init failed", zap.Error(err))
	}
	for _, h := range handlers {
		if err := h.Register(); err != nil {
			zapLog.Fatal("worker registration failed", zap.String("taskType", h.GetTaskType()), zap.Error(err))
		}
	}
	zapLog.Info("All matching workers registered", zap.Int("workers", len(handlers)))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Matching.MetricsAddress,
		Handler:           newMux(stores, zeebe),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, h := range handlers {
		h.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Health/Metrics server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Match worker stopped")
}

func newHandlers(cfg *config.Config, zeebe *camunda.Client, service *matching.Service, log logger.Logger, obs *observability.Observability) ([]registrable, error) {
	score, err := cms.NewHandler(cms.HandlerOptions{
		AppConfig:     cfg,
		Camunda:       zeebe,
		Service:       service,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		return nil, err
	}

	listing, err := sjl.NewHandler(sjl.HandlerOptions{
		AppConfig:     cfg,
		Camunda:       zeebe,
		Service:       service,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		return nil, err
	}

	invalidate, err := icm.NewHandler(icm.HandlerOptions{
		AppConfig:     cfg,
		Camunda:       zeebe,
		Service:       service,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		return nil, err
	}

	return []registrable{score, listing, invalidate}, nil
}

type readinessChecker interface {
	Ready(ctx context.Context) error
}

type brokerChecker interface {
	HealthCheck(ctx context.Context) error
}

func newMux(stores readinessChecker, broker brokerChecker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", "")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := stores.Ready(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err.Error())
			return
		}
		if err := broker.HealthCheck(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err.Error())
			return
		}
		writeStatus(w, http.StatusOK, "ready", "")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status, reason string) {
	body := map[string]string{"status": status}
	if reason != "" {
		body["reason"] = reason
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
