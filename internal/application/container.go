// Package application provides application-level services and dependency injection.
package application

import (
	"context"
	"fmt"

	"github.com/jbctechsolutions/modelrouter/internal/application/engine"
	"github.com/jbctechsolutions/modelrouter/internal/domain/routing"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/config"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/logging"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/storage"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/tokenizer"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/tracing"
)

// Container holds all application dependencies and provides a central
// point for dependency injection. It manages the lifecycle of services
// and ensures proper initialization order.
type Container struct {
	config  *config.Config
	verbose bool // Override log level to debug when true

	logger      *logging.Logger
	tracer      *tracing.Tracer
	decisionLog *storage.DecisionLog
	engine      *engine.Engine
}

// NewContainer creates a dependency injection container with all services
// initialized based on the provided configuration. The routing file is NOT
// loaded here; call LoadRouting (or engine.LoadFile directly) once the
// container is up so callers can decide how to handle a missing file.
func NewContainer(cfg *config.Config, verbose bool) (*Container, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	c := &Container{
		config:  cfg,
		verbose: verbose,
	}

	c.initLogging()

	if err := c.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := c.initDecisionLog(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize decision log: %w", err)
	}

	c.initEngine()

	return c, nil
}

// initLogging builds the structured logger from config. The verbose flag
// overrides the configured level down to debug.
func (c *Container) initLogging() {
	level := logging.LevelInfo
	switch c.config.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "info":
		level = logging.LevelInfo
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	if c.verbose {
		level = logging.LevelDebug
	}

	format := logging.FormatText
	if c.config.Logging.Format == "json" {
		format = logging.FormatJSON
	}

	c.logger = logging.New(logging.Config{
		Level:  level,
		Format: format,
	})
}

// initTracing builds the tracer, or a noop when tracing is disabled.
func (c *Container) initTracing() error {
	if !c.config.Tracing.Enabled {
		c.tracer = tracing.Noop()
		return nil
	}

	tracer, err := tracing.New(context.Background(), tracing.Config{
		Enabled:      true,
		ExporterType: tracing.ExporterType(c.config.Tracing.Exporter),
		OTLPEndpoint: c.config.Tracing.OTLPEndpoint,
		ServiceName:  "modelrouter",
		SampleRate:   c.config.Tracing.SampleRate,
	})
	if err != nil {
		return err
	}
	c.tracer = tracer
	return nil
}

// initDecisionLog opens the SQLite decision log when a path is configured.
func (c *Container) initDecisionLog() error {
	if c.config.DecisionLog == "" {
		return nil
	}

	log, err := storage.OpenDecisionLog(c.config.DecisionLog)
	if err != nil {
		return err
	}
	c.decisionLog = log
	return nil
}

// initEngine assembles the routing engine from the other services.
func (c *Container) initEngine() {
	opts := engine.Options{
		Registry: routing.NewRegistry(tokenizer.NewCounter()),
		Logger:   c.logger,
		Tracer:   c.tracer,
		Debounce: c.config.Watch.Debounce,
	}
	if c.decisionLog != nil {
		opts.Recorder = c.decisionLog
	}
	c.engine = engine.New(opts)
}

// LoadRouting loads the configured routing file into the engine.
func (c *Container) LoadRouting() error {
	return c.engine.LoadFile(c.config.RoutingFile)
}

// StartWatching begins hot-reloading the configured routing file.
func (c *Container) StartWatching() error {
	return c.engine.StartWatch(c.config.RoutingFile, nil)
}

// StopWatching stops the hot-reload watcher. Safe when not watching.
func (c *Container) StopWatching() error {
	return c.engine.StopWatch()
}

// Close releases all resources held by the container.
func (c *Container) Close() error {
	ctx := context.Background()

	if c.engine != nil {
		_ = c.engine.StopWatch()
	}
	if c.tracer != nil {
		_ = c.tracer.Shutdown(ctx)
	}
	if c.decisionLog != nil {
		return c.decisionLog.Close()
	}
	return nil
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Engine returns the routing engine.
func (c *Container) Engine() *engine.Engine {
	return c.engine
}

// Logger returns the structured logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Tracer returns the OpenTelemetry tracer.
func (c *Container) Tracer() *tracing.Tracer {
	return c.tracer
}

// DecisionLog returns the SQLite decision log.
// Returns nil when decision logging is not configured.
func (c *Container) DecisionLog() *storage.DecisionLog {
	return c.decisionLog
}
