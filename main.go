package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rtsp-bridge/internal/boundary"
	"rtsp-bridge/internal/decoder"
	"rtsp-bridge/internal/handlers"
	"rtsp-bridge/internal/history"
	"rtsp-bridge/internal/logging"
	"rtsp-bridge/internal/metrics"
	"rtsp-bridge/internal/middleware"
	"rtsp-bridge/internal/session"
	"rtsp-bridge/internal/snapshot"
	"rtsp-bridge/internal/startup"

	"github.com/gorilla/mux"
)

// Background cadences. Idle reaping is cheap and keeps abandoned
// decoders short-lived; journal pruning touches the database and runs
// rarely.
const (
	idleReapInterval     = 10 * time.Second
	historyPruneInterval = 1 * time.Hour
	statsInterval        = 1 * time.Minute
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Verify the decoder toolchain
	startup.LogDecoderInit(config.FFmpegPath, config.FFprobePath)

	// Open the history journal; the relay runs without it
	journal := openJournal(config)
	if journal != nil {
		defer journal.Close()

		if config.HistoryRetention > 0 {
			go func() {
				ticker := time.NewTicker(historyPruneInterval)
				for range ticker.C {
					cutoff := time.Now().Add(-config.HistoryRetention)
					if _, err := journal.Prune(context.Background(), cutoff); err != nil {
						logging.Warn("History prune failed: %v", err)
					}
				}
			}()
		}
	}
	startup.LogHistoryInit(journal != nil, config.HistoryRetention)

	// Build the session registry
	registry := session.NewRegistry(sessionConfig(config), eventSink(journal))
	defer registry.Close()

	// Reap sessions nobody watches
	if config.IdleTimeout > 0 {
		go func() {
			ticker := time.NewTicker(idleReapInterval)
			for range ticker.C {
				registry.ReapIdle(config.IdleTimeout)
			}
		}()
	}

	// Prime metric label sets and start the gauge collector
	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	collector := metrics.NewCollector(registry, config.DatabasePath, statsInterval)
	collector.Start()

	// Initialize handlers
	h := handlers.New(registry, journal, snapshotService(config), config)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply metrics middleware
	metricsHandler := middleware.Metrics(middleware.DefaultMetricsConfig())(router)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(metricsHandler)

	// Apply compression middleware
	compressionConfig := middleware.DefaultCompressionConfig()
	handler := middleware.Compression(compressionConfig)(loggedHandler)

	// Create server. WriteTimeout stays zero: data-plane connections
	// live for as long as the client watches.
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Optional metrics listener
	metricsSrv := startMetricsServer(config, h)

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, h, registry, collector)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

// openJournal opens the history store when the database directory
// allows it. A failed open degrades the journal away rather than
// failing startup; the relay core needs no disk.
func openJournal(config *startup.Config) *history.Store {
	if !config.HistoryEnabled {
		return nil
	}
	journal, err := history.Open(context.Background(), config.DatabasePath)
	if err != nil {
		logging.Error("History journal unavailable: %v", err)
		return nil
	}
	return journal
}

// eventSink adapts the journal for the registry. The indirection keeps
// a nil *history.Store from turning into a non-nil interface.
func eventSink(journal *history.Store) session.EventSink {
	if journal == nil {
		return nil
	}
	return journal
}

func sessionConfig(config *startup.Config) session.Config {
	markers := make([][]byte, 0, len(config.BoundaryMarkers))
	for _, m := range config.BoundaryMarkers {
		markers = append(markers, []byte(m))
	}
	return session.Config{
		Decoder: decoder.Config{
			BinaryPath: config.FFmpegPath,
			ProbePath:  config.FFprobePath,
			ExtraArgs:  config.FFmpegExtraArgs,
		},
		Boundary: boundary.Config{
			Markers:      markers,
			MaxInitBytes: config.BoundaryMaxInitBytes,
			Timeout:      config.BoundaryTimeout,
		},
		ClientBacklogMax: config.ClientBacklogMax,
	}
}

func snapshotService(config *startup.Config) *snapshot.Service {
	return snapshot.New(snapshot.Config{
		BinaryPath: config.FFmpegPath,
		Timeout:    config.SnapshotTimeout,
		Quality:    config.SnapshotQuality,
	})
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Control plane
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/streams", h.StartStream).Methods("POST")
	api.HandleFunc("/streams", h.ListStreams).Methods("GET")
	api.HandleFunc("/streams/{id}", h.GetStream).Methods("GET")
	api.HandleFunc("/streams/{id}", h.StopStream).Methods("DELETE")
	api.HandleFunc("/streams/{id}/snapshot", h.GetSnapshot).Methods("GET")
	api.HandleFunc("/streams/{id}/history", h.GetStreamHistory).Methods("GET")
	api.HandleFunc("/history", h.GetHistory).Methods("GET")

	// Data plane
	r.HandleFunc("/ws/{id}", h.AttachStream).Methods("GET")

	return r
}

// startMetricsServer exposes Prometheus scrapes on their own port so
// the control plane's middleware never touches them. Returns nil when
// metrics are disabled.
func startMetricsServer(config *startup.Config, h *handlers.Handlers) *http.Server {
	if !config.MetricsEnabled {
		return nil
	}

	mm := http.NewServeMux()
	mm.Handle("/metrics", h.MetricsHandler())
	mm.HandleFunc("/health", h.LivenessCheck)

	srv := &http.Server{
		Addr:         ":" + config.MetricsPort,
		Handler:      mm,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

func handleShutdown(srv, metricsSrv *http.Server, h *handlers.Handlers, registry *session.Registry, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Refusing new work")
	h.MarkDraining()
	startup.LogShutdownStepComplete("Service draining")

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	// Closing the registry ends every session; the data-plane handlers
	// observe their queues closing and finish on their own.
	startup.LogShutdownStep("Stopping sessions")
	registry.Close()
	startup.LogShutdownStepComplete("Sessions stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
