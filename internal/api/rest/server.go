package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetops/fleet-management-backend/internal/infrastructure/config"
	"github.com/fleetops/fleet-management-backend/internal/infrastructure/database"
	authsvc "github.com/fleetops/fleet-management-backend/internal/service/auth"
	fleetsvc "github.com/fleetops/fleet-management-backend/internal/service/fleet"
	securitysvc "github.com/fleetops/fleet-management-backend/internal/service/security"
)

// Server is the API server. It owns the database pool, the wired services,
// and the background monitoring scheduler.
type Server struct {
	config     *config.Config
	httpServer *http.Server
	logger     *slog.Logger
	pool       *pgxpool.Pool
	scheduler  *securitysvc.Scheduler

	authHandler     *AuthHandler
	fleetHandler    *FleetHandler
	securityHandler *SecurityHandler
}

// NewServer connects the database and wires repositories, services, and the
// HTTP stack.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logRepo := database.NewActivityLogRepository(pool)
	incidentRepo := database.NewIncidentRepository(pool)
	userRepo := database.NewUserRepository(pool)
	driverRepo := database.NewDriverRepository(pool)
	vehicleRepo := database.NewVehicleRepository(pool)

	overrides := make([]securitysvc.ThresholdOverride, 0, len(cfg.Monitoring.Thresholds))
	for _, t := range cfg.Monitoring.Thresholds {
		overrides = append(overrides, securitysvc.ThresholdOverride{
			Action: t.Action,
			Count:  t.Count,
			Window: t.Window,
			Reason: t.Reason,
		})
	}
	catalog, err := securitysvc.CatalogFromConfig(overrides)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("invalid monitoring thresholds: %w", err)
	}

	detector := securitysvc.NewDetector(logRepo, incidentRepo, catalog, nil, logger)
	scheduler := securitysvc.NewScheduler(detector, cfg.Monitoring.GracePeriod, cfg.Monitoring.Interval, logger)
	recorder := securitysvc.NewActivityRecorder(logRepo, nil, logger)
	review := securitysvc.NewReviewService(incidentRepo, logRepo, nil, logger)
	simulator := securitysvc.NewAttackSimulator(logRepo, detector, nil, logger)

	authService := authsvc.NewService(
		userRepo,
		recorder,
		[]byte(cfg.Security.JWTSecret),
		cfg.Security.TokenExpiry,
		nil,
		logger,
	)
	fleetService := fleetsvc.NewService(driverRepo, vehicleRepo, nil)

	server := &Server{
		config:          cfg,
		logger:          logger,
		pool:            pool,
		scheduler:       scheduler,
		authHandler:     NewAuthHandler(authService),
		fleetHandler:    NewFleetHandler(fleetService),
		securityHandler: NewSecurityHandler(review, scheduler, simulator),
	}

	authMiddleware := NewAuthMiddleware(authService)
	activityMiddleware := NewActivityMiddleware(recorder)

	rateLimiter := newInMemoryRateLimiter(
		float64(cfg.Security.RateLimit.RequestsPerSecond),
		cfg.Security.RateLimit.BurstSize,
	)
	rateLimiter.cleanup()

	middlewares := []Middleware{
		requestIDMiddleware,
		loggingMiddleware(logger),
		metricsMiddleware,
		recoveryMiddleware(logger),
		rateLimitMiddleware(rateLimiter),
		timeoutMiddleware(cfg.Server.RequestTimeout),
		authMiddleware.Middleware(),
		activityMiddleware.Middleware(),
	}

	mux := server.setupRoutes()

	var h http.Handler = mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	server.httpServer = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        h,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	return server, nil
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", s.authHandler.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.authHandler.handleLogin)

	// Drivers
	mux.HandleFunc("POST /api/v1/drivers", s.fleetHandler.handleCreateDriver)
	mux.HandleFunc("GET /api/v1/drivers", s.fleetHandler.handleListDrivers)
	mux.HandleFunc("GET /api/v1/drivers/{id}", s.fleetHandler.handleGetDriver)
	mux.HandleFunc("PUT /api/v1/drivers/{id}", s.fleetHandler.handleUpdateDriver)
	mux.HandleFunc("DELETE /api/v1/drivers/{id}", s.fleetHandler.handleDeleteDriver)

	// Vehicles
	mux.HandleFunc("POST /api/v1/vehicles", s.fleetHandler.handleCreateVehicle)
	mux.HandleFunc("GET /api/v1/vehicles", s.fleetHandler.handleListVehicles)
	mux.HandleFunc("GET /api/v1/vehicles/{id}", s.fleetHandler.handleGetVehicle)
	mux.HandleFunc("PUT /api/v1/vehicles/{id}", s.fleetHandler.handleUpdateVehicle)
	mux.HandleFunc("DELETE /api/v1/vehicles/{id}", s.fleetHandler.handleDeleteVehicle)

	// Statistics
	mux.HandleFunc("GET /api/v1/statistics/fleet/by-brand", s.fleetHandler.handleFleetStatisticsByBrand)

	// Security monitoring. Everything except simulate-attack is admin-only.
	mux.HandleFunc("GET /api/v1/security/monitored-users", requireAdmin(s.securityHandler.handleListIncidents))
	mux.HandleFunc("PUT /api/v1/security/monitored-users/{id}", requireAdmin(s.securityHandler.handleReviewIncident))
	mux.HandleFunc("POST /api/v1/security/run-security-analysis", requireAdmin(s.securityHandler.handleRunAnalysis))
	mux.HandleFunc("POST /api/v1/security/simulate-attack", s.securityHandler.handleSimulateAttack)
	mux.HandleFunc("POST /api/v1/security/reset-monitoring", requireAdmin(s.securityHandler.handleResetMonitoring))
	mux.HandleFunc("GET /api/v1/security/activity-logs", requireAdmin(s.securityHandler.handleListActivityLogs))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.config.Version,
	})
}

// Start runs the server until it fails or receives SIGINT/SIGTERM.
func (s *Server) Start(ctx context.Context) error {
	if s.config.Monitoring.Enabled {
		s.scheduler.Start(ctx)
	}

	s.logger.Info("starting API server",
		"address", s.httpServer.Addr,
		"environment", s.config.Environment,
		"monitoring_enabled", s.config.Monitoring.Enabled,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown()
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown stops the scheduler, drains in-flight requests, and closes the
// database pool.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")

	s.scheduler.Stop()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown server", "error", err)
		return err
	}

	s.pool.Close()

	s.logger.Info("server shutdown complete")
	return nil
}
