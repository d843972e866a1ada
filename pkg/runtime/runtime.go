package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mash-protocol/mash-logic/pkg/bus"
	"github.com/mash-protocol/mash-logic/pkg/config"
	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/devices/registry"
	"github.com/mash-protocol/mash-logic/pkg/exchange"
	"github.com/mash-protocol/mash-logic/pkg/inspect"
	"github.com/mash-protocol/mash-logic/pkg/log"
	"github.com/mash-protocol/mash-logic/pkg/metrics"
	"github.com/mash-protocol/mash-logic/pkg/persistence"
	"github.com/mash-protocol/mash-logic/pkg/topology"
)

// Options carries what the configuration document does not.
type Options struct {
	// Registry provides device classes. Nil means registry.Default().
	Registry *registry.Registry

	// Logger is used for operational logging.
	Logger *slog.Logger

	// Tracer receives exchange trace events in addition to the trace file.
	Tracer log.Logger
}

// Runtime is one assembled run.
type Runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	runID  string

	set       *device.Set
	running   *topology.Running
	exchanger *exchange.Exchanger
	runner    *device.Runner

	sim  *bus.Simulated
	link *bus.Link

	traceFile *log.FileLogger
	store     *persistence.StateStore
	registry  *prometheus.Registry
}

// Build assembles a runtime from cfg. Device construction and connection
// problems are aggregated; connection resolution failures are returned as
// a *topology.ResolveError.
func Build(cfg *config.Config, opts Options) (_ *Runtime, err error) {
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	rt := &Runtime{
		cfg:      cfg,
		logger:   opts.Logger,
		runID:    uuid.NewString(),
		set:      device.NewSet(),
		registry: prometheus.NewRegistry(),
	}

	if cfg.Runtime.DataDir != "" {
		if err := os.MkdirAll(cfg.Runtime.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	rt.buildBus()
	defer func() {
		if err != nil {
			if closeErr := rt.Close(); closeErr != nil {
				rt.logger.Warn("releasing devices of a failed build", "error", closeErr)
			}
		}
	}()
	if err := rt.buildDevices(opts.Registry); err != nil {
		return nil, err
	}
	rt.restore()

	requested, err := rt.requested()
	if err != nil {
		return nil, err
	}
	rt.running, err = topology.Resolve(requested, topology.CollectEndpoints(rt.set))
	if err != nil {
		return nil, err
	}

	exMetrics, err := metrics.NewExchange(rt.registry)
	if err != nil {
		return nil, err
	}
	rtMetrics, err := metrics.NewRuntime(rt.registry)
	if err != nil {
		return nil, err
	}
	rt.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tracer, err := rt.tracer(opts.Tracer)
	if err != nil {
		return nil, err
	}

	rt.exchanger = exchange.New(rt.set, rt.running, exchange.Config{
		MaxRounds: cfg.Runtime.MaxRounds,
		RunID:     rt.runID,
		Logger:    opts.Logger,
		Tracer:    tracer,
		Metrics:   exMetrics,
	})
	rt.runner = device.NewRunner(rt.set, rt.exchanger.Run, device.RunnerConfig{
		ShutdownTimeout: cfg.Runtime.ShutdownTimeout,
		Logger:          opts.Logger,
		Metrics:         rtMetrics,
	})

	opts.Logger.Info("runtime built",
		"run_id", rt.runID,
		"devices", rt.set.Len(),
		"connections", rt.running.Len(),
		"bus", cfg.Bus.Kind)
	return rt, nil
}

func (rt *Runtime) buildBus() {
	if rt.cfg.Bus.Kind != config.BusSimulated {
		return
	}
	rt.sim = bus.NewSimulated(rt.cfg.Bus.Boards...)
	rt.link = bus.NewLink(rt.sim, bus.LinkConfig{
		Backoff:     rt.cfg.Bus.Backoff,
		OpenTimeout: rt.cfg.Bus.OpenTimeout,
		Logger:      rt.logger.With("component", "bus"),
	})
}

func (rt *Runtime) buildDevices(reg *registry.Registry) error {
	var b bus.Bus
	if rt.link != nil {
		b = rt.link
	}

	var errs []error
	for _, dc := range rt.cfg.Devices {
		dev, err := reg.Build(dc.Class, registry.Env{
			Name:    dc.Name,
			DataDir: rt.cfg.Runtime.DataDir,
			Bus:     b,
			Logger:  rt.logger.With("device", dc.Name),
		}, dc.Params)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := rt.set.Add(dc.Name, dev); err != nil {
			errs = append(errs, err)
			if c, ok := dev.(io.Closer); ok {
				_ = c.Close()
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases what a built runtime holds: files of devices that
// implement io.Closer and the trace file. Run does this itself; Close is for
// a runtime that is built but never run, such as a configuration check.
func (rt *Runtime) Close() error {
	var errs []error
	for _, e := range rt.set.Entries() {
		if c, ok := e.Device.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", e.Name, err))
			}
		}
	}
	if rt.traceFile != nil {
		if err := rt.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trace file: %w", err))
		}
		rt.traceFile = nil
	}
	return errors.Join(errs...)
}

// restore hands retained state to the devices that keep it. Problems are
// logged; a device that cannot restore starts fresh.
func (rt *Runtime) restore() {
	path := rt.cfg.Runtime.StatePath()
	if path == "" {
		return
	}
	rt.store = persistence.NewStateStore(path)
	state, err := rt.store.Load()
	if err != nil {
		rt.logger.Warn("retained state unreadable, starting fresh", "path", path, "error", err)
		return
	}

	for _, e := range rt.set.Entries() {
		r, ok := e.Device.(device.Retainer)
		if !ok {
			continue
		}
		values, ok := state.Lookup(e.Name, e.Device.Class())
		if !ok {
			continue
		}
		if err := r.Restore(values); err != nil {
			rt.logger.Warn("retained state rejected", "device", e.Name, "error", err)
		}
	}
}

// save collects retained state from the devices that keep it.
func (rt *Runtime) save() error {
	if rt.store == nil {
		return nil
	}
	state := &persistence.RuntimeState{RunID: rt.runID}
	for _, e := range rt.set.Entries() {
		if r, ok := e.Device.(device.Retainer); ok {
			state.Put(e.Name, e.Device.Class(), r.Retained())
		}
	}
	return rt.store.Save(state)
}

// requested parses the configured connections. Signal names are resolved
// against the built devices; a name that resolves to nothing becomes an
// unresolved ref, which topology.Resolve reports as a missing endpoint
// together with every other failure.
func (rt *Runtime) requested() (*topology.Requested, error) {
	req := topology.NewRequested()
	var errs []error

	ref := func(s string) (topology.Ref, bool) {
		p, err := inspect.ParsePath(s)
		if err != nil || p.IsPartial {
			if err == nil {
				err = fmt.Errorf("%w: %s: missing signal", inspect.ErrInvalidPath, s)
			}
			errs = append(errs, fmt.Errorf("connection %q: %w", s, err))
			return topology.Ref{}, false
		}
		r, err := p.Ref(rt.set)
		if err != nil {
			return topology.Unresolved(p.Device, p.SignalName), true
		}
		return r, true
	}

	for _, conn := range rt.cfg.Connections {
		from, ok := ref(conn.From)
		var targets []topology.Ref
		for _, to := range conn.To {
			if r, ok := ref(to); ok {
				targets = append(targets, r)
			}
		}
		if ok {
			req.Connect(from, targets...)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return req, nil
}

func (rt *Runtime) tracer(extra log.Logger) (log.Logger, error) {
	path := rt.cfg.Runtime.TraceFile
	if path == "" {
		if extra == nil {
			return nil, nil
		}
		return extra, nil
	}
	if !filepath.IsAbs(path) && rt.cfg.Runtime.DataDir != "" {
		path = filepath.Join(rt.cfg.Runtime.DataDir, path)
	}
	f, err := log.NewFileLogger(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	rt.traceFile = f
	return log.NewMultiLogger(f, extra), nil
}

// Run opens the bus, serves metrics if configured and runs every device and
// the exchanger until ctx is cancelled. Retained state is saved on the way
// out.
func (rt *Runtime) Run(ctx context.Context) error {
	if rt.link != nil {
		if err := rt.link.Open(ctx); err != nil {
			return fmt.Errorf("open bus: %w", err)
		}
		rt.link.Start()
		defer rt.link.Close()
	}

	if addr := rt.cfg.Runtime.MetricsAddr; addr != "" {
		srv := rt.serveMetrics(addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	err := rt.runner.Run(ctx)

	if saveErr := rt.save(); saveErr != nil {
		rt.logger.Error("saving retained state failed", "error", saveErr)
	}
	if rt.traceFile != nil {
		if closeErr := rt.traceFile.Close(); closeErr != nil {
			rt.logger.Error("closing trace file failed", "error", closeErr)
		}
	}
	return err
}

func (rt *Runtime) serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(rt.registry))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		rt.logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

// RunID returns the run ID stamped on traces and retained state.
func (rt *Runtime) RunID() string { return rt.runID }

// Set returns the devices.
func (rt *Runtime) Set() *device.Set { return rt.set }

// Running returns the resolved connections.
func (rt *Runtime) Running() *topology.Running { return rt.running }

// Exchanger returns the exchanger.
func (rt *Runtime) Exchanger() *exchange.Exchanger { return rt.exchanger }

// Inspector returns an inspector over the devices.
func (rt *Runtime) Inspector() *inspect.Inspector { return inspect.NewInspector(rt.set) }

// Simulated returns the simulated bus, or nil.
func (rt *Runtime) Simulated() *bus.Simulated { return rt.sim }

// Link returns the bus link, or nil.
func (rt *Runtime) Link() *bus.Link { return rt.link }

// Gatherer returns the metrics registry.
func (rt *Runtime) Gatherer() prometheus.Gatherer { return rt.registry }

// Pending returns the tasks still running during shutdown.
func (rt *Runtime) Pending() []string { return rt.runner.Pending() }
