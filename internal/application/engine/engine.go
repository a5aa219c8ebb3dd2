// Package engine provides the application-level routing engine: it wires the
// classifier, router, configuration source, and hot-reload watcher into one
// service object that request-handling callers hold by reference.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jbctechsolutions/modelrouter/internal/domain/routing"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/config"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/logging"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/storage"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/tokenizer"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/tracing"
	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/watch"
)

// DecisionRecorder receives classification outcomes. The SQLite decision log
// implements it; recording is best-effort and never blocks routing.
type DecisionRecorder interface {
	Record(ctx context.Context, d storage.Decision) error
}

// Options configures an Engine.
type Options struct {
	// Registry supplies rule constructors. Nil defaults to the built-in
	// registry backed by the shared tokenizer cache.
	Registry *routing.Registry

	// Logger for engine events. Nil discards.
	Logger *logging.Logger

	// Tracer for classify and reload spans. Nil disables tracing.
	Tracer *tracing.Tracer

	// Recorder optionally persists classification decisions.
	Recorder DecisionRecorder

	// Debounce is the hot-reload debounce window. Zero uses the default.
	Debounce time.Duration
}

// Engine classifies requests and resolves labels to routing targets.
//
// The engine is a single-writer, many-reader structure: Classify and the
// lookup methods are safe to call from any number of goroutines, while
// configuration loads (explicit or watcher-driven) are the only writer path.
// Both the classifier and the routing table are replaced wholesale by atomic
// swap, so readers never observe a half-applied configuration.
type Engine struct {
	registry *routing.Registry
	logger   *logging.Logger
	tracer   *tracing.Tracer
	recorder DecisionRecorder
	debounce time.Duration

	router     *routing.Router
	classifier atomic.Pointer[routing.Classifier]

	// applyMu serializes configuration applications. The watcher is already
	// single-threaded; this guards explicit Load calls racing with it.
	applyMu sync.Mutex

	watchMu sync.Mutex
	watcher *watch.Watcher
}

// New creates an Engine with an empty classifier and routing table.
// Call LoadFile or LoadBytes to publish an initial configuration.
func New(opts Options) *Engine {
	registry := opts.Registry
	if registry == nil {
		registry = routing.NewRegistry(tokenizer.NewCounter())
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.Noop()
	}

	e := &Engine{
		registry: registry,
		logger:   logger,
		tracer:   tracer,
		recorder: opts.Recorder,
		debounce: opts.Debounce,
		router:   routing.NewRouter(nil),
	}
	e.classifier.Store(routing.NewClassifier(nil, routing.Snapshot{}, logger.Underlying()))
	return e
}

// LoadFile loads and publishes the routing configuration from a file.
func (e *Engine) LoadFile(path string) error {
	cfg, err := config.LoadRoutingFile(path)
	if err != nil {
		return err
	}
	return e.apply(cfg)
}

// LoadBytes loads and publishes a routing configuration from raw YAML.
// This is the in-memory override path.
func (e *Engine) LoadBytes(data []byte) error {
	cfg, err := config.LoadRoutingFileFromBytes(data)
	if err != nil {
		return err
	}
	return e.apply(cfg)
}

// apply builds the routing table and rule bindings from a validated
// configuration and publishes both. The table is built first; if it fails,
// nothing is published and the previous state stays authoritative. A rule
// that fails to construct is skipped with a warning while the remaining
// bindings still load.
func (e *Engine) apply(cfg *config.RoutingFile) error {
	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	entries := make([]routing.Entry, len(cfg.Routes))
	for i, route := range cfg.Routes {
		entries[i] = routing.Entry{
			Label:    route.Label,
			Target:   route.Target,
			Metadata: route.Metadata,
		}
	}

	table, err := routing.BuildTable(entries)
	if err != nil {
		return fmt.Errorf("failed to build routing table: %w", err)
	}

	bindings := make([]routing.Binding, 0, len(cfg.Rules))
	for _, decl := range cfg.Rules {
		rule, err := e.registry.Build(decl.Type, decl.Params)
		if err != nil {
			logging.LogRuleSkipped(e.logger, decl.Label, decl.Type, err)
			continue
		}
		bindings = append(bindings, routing.Binding{Label: decl.Label, Rule: rule})
	}

	e.router.Swap(table)
	e.classifier.Store(routing.NewClassifier(bindings, routing.Snapshot{Table: table}, e.logger.Underlying()))

	e.logger.Debug("configuration published",
		"rules", len(bindings),
		"routes", table.Len(),
	)
	return nil
}

// Classify returns the label for a decoded request body.
// It never returns an error and never panics into the caller.
func (e *Engine) Classify(ctx context.Context, body any) string {
	label, _ := e.Route(ctx, body)
	return label
}

// Route classifies a request and resolves the label through the routing
// table in one step. The entry is nil only when the table is empty, in which
// case the caller should pass the original model through unrouted.
func (e *Engine) Route(ctx context.Context, body any) (string, *routing.Entry) {
	req, ok := routing.ParseRequest(body)

	var model string
	if ok {
		model = req.Model()
	}

	ctx, span := e.tracer.StartClassifySpan(ctx, model)
	defer span.End()

	var label string
	if ok {
		label = e.classifier.Load().ClassifyRequest(req)
	} else {
		label = routing.DefaultLabel
	}

	entry := e.router.Get(label)

	target := ""
	if entry != nil {
		target = entry.Target
	}
	span.SetDecision(label, target)
	logging.LogClassification(e.logger, model, label, target)

	if e.recorder != nil {
		d := storage.Decision{Model: model, Label: label, Target: target}
		if err := e.recorder.Record(ctx, d); err != nil {
			e.logger.Warn("failed to record decision", "error", err.Error())
		}
	}

	return label, entry
}

// ModelForLabel resolves a label through the fallback chain.
// Returns nil only when the table is empty.
func (e *Engine) ModelForLabel(label string) *routing.Entry {
	return e.router.Get(label)
}

// Labels returns the sorted labels of the current routing table.
func (e *Engine) Labels() []string {
	return e.router.Labels()
}

// GroupByTarget returns the current table's target-to-labels grouping.
func (e *Engine) GroupByTarget() map[string][]string {
	return e.router.GroupByTarget()
}

// Table returns the currently published routing table.
func (e *Engine) Table() *routing.Table {
	return e.router.Table()
}

// StartWatch begins watching the configuration file at path and reloading on
// change. onReload, if non-nil, is invoked after each successful reload so
// dependent caches can invalidate; it is not called for failed reloads.
func (e *Engine) StartWatch(path string, onReload func()) error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.watcher != nil {
		return fmt.Errorf("watch already started")
	}

	reload := func() error {
		return e.reloadFromFile(path, onReload)
	}

	w, err := watch.New(path, e.debounce, reload, e.logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	e.watcher = w
	return nil
}

// StopWatch stops the configuration watcher. Safe to call when no watch is
// active, and safe to call multiple times.
func (e *Engine) StopWatch() error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.watcher == nil {
		return nil
	}
	err := e.watcher.Stop()
	e.watcher = nil
	return err
}

// reloadFromFile performs one watcher-driven reload cycle.
func (e *Engine) reloadFromFile(path string, onReload func()) error {
	ctx, span := e.tracer.StartReloadSpan(context.Background(), path)
	_ = ctx

	start := time.Now()
	cfg, err := config.LoadRoutingFile(path)
	if err != nil {
		span.EndWithError(err)
		return err
	}
	if err := e.apply(cfg); err != nil {
		span.EndWithError(err)
		return err
	}

	span.SetCounts(len(cfg.Rules), len(cfg.Routes))
	span.End()
	logging.LogReloadSucceeded(e.logger, path, len(cfg.Rules), len(cfg.Routes), time.Since(start))

	if onReload != nil {
		onReload()
	}
	return nil
}
