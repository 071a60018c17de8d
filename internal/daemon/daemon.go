// Package daemon runs a compositor together with its device, demo
// applications, control socket, config watcher and watchdog.
package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/framewm/internal/alloc"
	"github.com/1broseidon/framewm/internal/apps"
	"github.com/1broseidon/framewm/internal/compositor"
	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/ipc"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/task"
)

// appGrace is how long Run waits for demo tasks after the compositor closed.
const appGrace = 2 * time.Second

// Options configures Run.
type Options struct {
	Config *config.Config
	// ConfigPath is watched for changes and re-read by RELOAD. Empty runs
	// on Config alone.
	ConfigPath string
	Device     platform.Device
	Logger     *slog.Logger
	// Socket is the control socket path. Empty disables the socket.
	Socket string
	Clock  task.Clock
	// WatchdogInterval defaults to one second.
	WatchdogInterval time.Duration
	// Override is applied to every reloaded config, so command line flags
	// keep winning over the file.
	Override func(*config.Config)
}

// Run composites to opts.Device until ctx ends, the device is closed by the
// user or a SHUTDOWN command arrives. Windows are shut down gracefully before
// it returns.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	budget := alloc.NewBudget(cfg.MemoryLimit(), logger)
	comp, err := compositor.New(compositor.Options{
		Config:    cfg,
		Device:    opts.Device,
		Allocator: budget,
		Clock:     opts.Clock,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	if src, ok := opts.Device.(platform.InputSource); ok {
		src.Attach(comp.Input())
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := &controller{
		comp:       comp,
		budget:     budget,
		configPath: opts.ConfigPath,
		started:    time.Now(),
		cancel:     cancel,
		override:   opts.Override,
		logger:     logger,
		cfg:        cfg,
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return comp.Run(gctx)
	})

	if r, ok := opts.Device.(platform.Runner); ok {
		g.Go(func() error {
			err := r.Run(gctx)
			if errors.Is(err, platform.ErrDeviceClosed) {
				logger.Info("output closed")
				cancel()
				return nil
			}
			return err
		})
	}

	if opts.ConfigPath != "" {
		w, err := config.NewWatcher(opts.ConfigPath, logger, func(res *config.LoadResult) {
			ctrl.apply(res.Config)
		})
		if err != nil {
			logger.Warn("config watcher disabled", "file", opts.ConfigPath, "error", err)
		} else {
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	if opts.Socket != "" {
		srv := ipc.NewServer(opts.Socket, ctrl, logger)
		g.Go(func() error { return srv.Serve(gctx) })
	}

	wd := NewWatchdog(WatchdogConfig{
		Interval:    opts.WatchdogInterval,
		MemoryLimit: cfg.MemoryLimit(),
		Logger:      logger,
	}, comp.Windows, budget.InUse)
	g.Go(func() error {
		wd.Run(gctx)
		return nil
	})

	// Demo tasks outlive gctx so they can answer the shutdown Destroy.
	appCtx, stopApps := context.WithCancel(context.Background())
	defer stopApps()
	tasks := startApps(appCtx, comp, cfg, logger)

	err = g.Wait()
	stopApps()
	waitApps(tasks, logger)

	logger.Info("daemon stopped", "memory", budget.String())
	return err
}

func startApps(ctx context.Context, comp *compositor.Compositor, cfg *config.Config, logger *slog.Logger) []*task.Task {
	var tasks []*task.Task
	for _, kind := range cfg.Demo.Windows {
		app, err := apps.New(kind, comp)
		if err != nil {
			logger.Warn("demo skipped", "kind", kind, "error", err)
			continue
		}
		t := task.Spawn(ctx, "app:"+kind, func(actx context.Context) error {
			return apps.Run(actx, comp, app, cfg.Tick())
		})
		tasks = append(tasks, t)
	}
	return tasks
}

func waitApps(tasks []*task.Task, logger *slog.Logger) {
	deadline := time.After(appGrace)
	for _, t := range tasks {
		select {
		case <-t.Done():
		case <-deadline:
			t.Kill()
			<-t.Done()
		}
		if err := t.Err(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("demo task ended", "task", t.String(), "error", err)
		}
	}
}
