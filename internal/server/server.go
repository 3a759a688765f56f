package server

import (
	"context"
	"log/slog"
	"net/http"

	appentities "github.com/PablitoTheChicken/ForReal-Server/internal/app/entities"
	appfixtures "github.com/PablitoTheChicken/ForReal-Server/internal/app/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/app/predictions"
	"github.com/PablitoTheChicken/ForReal-Server/internal/config"
	httpserver "github.com/PablitoTheChicken/ForReal-Server/internal/http"
	"github.com/PablitoTheChicken/ForReal-Server/internal/http/handlers"
	"github.com/PablitoTheChicken/ForReal-Server/internal/http/middleware"
	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
	"github.com/PablitoTheChicken/ForReal-Server/internal/metrics"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers/apifootball"
	"github.com/PablitoTheChicken/ForReal-Server/internal/sweeper"
)

var metricsSetup = metrics.Setup

// Sweeper runs background cache maintenance.
type Sweeper interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() sweeper.Status
}

// components are the upstream collaborators. Nil fields are built from
// config.
type components struct {
	fixtures  providers.FixtureProvider
	predictor predictions.Predictor
	entities  appentities.Source
}

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	caches        caches
	fixtures      *appfixtures.Resolver
	entities      *appentities.Resolver
	httpServer    httpServer
	metricsServer httpServer
	sweeper       Sweeper
	metricsStop   func(context.Context) error
}

// New constructs a server wired to the configured upstreams.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return newServerWithMetrics(cfg, logger, components{}, nil)
}

func newServerWithComponents(cfg config.Config, logger *slog.Logger, comps components) *Server {
	return newServerWithMetrics(cfg, logger, comps, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, comps components, recorder *metrics.Recorder) *Server {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	factory := newProviderFactory(cfg, logger, recorder)
	if comps.fixtures == nil {
		comps.fixtures = factory.fixtureProvider()
	} else {
		comps.fixtures = factory.wrapFixtures(comps.fixtures, apifootball.ProviderName)
	}
	if comps.predictor == nil {
		comps.predictor = factory.predictor()
	}
	if comps.entities == nil {
		comps.entities = factory.entitySource()
	}

	c := buildCaches(cfg.Cache, recorder)
	enricher := predictions.NewResolver(comps.predictor, logger, recorder, cfg.Inference.Timeout)
	fx := appfixtures.NewResolver(appfixtures.Config{
		Provider:     comps.fixtures,
		Configured:   cfg.APIFootball.Configured(),
		FixtureCache: c.fixtures,
		ScoreCache:   c.scores,
		Enricher:     enricher,
		Logger:       logger,
	})
	ent := appentities.NewResolver(comps.entities, c.games, logger)
	sw := sweeper.New(c.sweepables(), logger, recorder, cfg.Cache.SweepInterval)
	httpSrv := buildHTTPServer(cfg, fx, ent, logger, recorder, sw)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		caches:        c,
		fixtures:      fx,
		entities:      ent,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		sweeper:       sw,
		metricsStop:   metricsShutdown,
	}
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, httpSrv httpServer, sw Sweeper) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpSrv,
		sweeper:    sw,
	}
}

func buildHTTPServer(cfg config.Config, fx *appfixtures.Resolver, ent *appentities.Resolver, logger *slog.Logger, recorder *metrics.Recorder, sw Sweeper) httpServer {
	var statusFn func() sweeper.Status
	if sw != nil {
		statusFn = sw.Status
	}

	handler := handlers.NewHandler(fx, ent, logger, statusFn)
	router := httpserver.NewRouter(handler, cfg.CORSOrigins)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           wrapped,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeoutFor(cfg),
		IdleTimeout:       idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the sweeper and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.sweeper.Start(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if err := s.sweeper.Stop(shutdownCtx); err != nil {
		logging.Error(s.logger, "failed to stop cache sweeper", err)
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
