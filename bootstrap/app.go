package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/scribekit/component"
	"github.com/kbukum/scribekit/logger"
)

// DefaultGracefulTimeout bounds shutdown when no option overrides it.
const DefaultGracefulTimeout = 15 * time.Second

// App runs components and a workload with a uniform lifecycle:
// start components, OnStart hooks, configure callbacks, ready check,
// OnReady hooks, work, OnStop hooks, stop components.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	opts        appOptions
	onConfigure []func(ctx context.Context, app *App[C]) error
	onStart     []Hook
	onReady     []Hook
	onStop      []Hook
}

// NewApp applies defaults to cfg, validates it and initializes logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	o := appOptions{gracefulTimeout: DefaultGracefulTimeout, summary: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	app := &App[C]{
		Name:       base.Name,
		Version:    base.Version,
		Cfg:        cfg,
		Components: component.NewRegistry(),
		Summary:    NewSummary(base.Name, base.Version),
		opts:       o,
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	return app, nil
}

// RegisterComponent adds c; components start in registration order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback run after components have started.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck fails if any component reports a non-healthy status.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		d := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			d += "(" + h.Message + ")"
		}
		bad = append(bad, d)
	}
	if len(bad) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(bad, ", "))
	}
	return nil
}

// Run starts the app and blocks until SIGINT/SIGTERM or ctx is done.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	a.Logger.Info("application ready")
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask starts the app, runs task and shuts down. SIGINT/SIGTERM cancel
// the task's context. The task error takes precedence over shutdown
// errors.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskErr := task(taskCtx)
	if taskCtx.Err() != nil && ctx.Err() == nil {
		a.Logger.Info("task interrupted by signal")
	}
	if err := a.stop(); err != nil && taskErr == nil {
		return err
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Debug("starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("start components: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		a.abort()
		return fmt.Errorf("onStart: %w", err)
	}
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			a.abort()
			return fmt.Errorf("configure: %w", err)
		}
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.MergeWithError(nil, err))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		a.abort()
		return fmt.Errorf("onReady: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	if !a.opts.quiet && a.opts.summary != nil {
		a.Summary.Write(ctx, a.opts.summary, a.Components)
	}
	return nil
}

// abort stops components after a failed startup.
func (a *App[C]) abort() {
	if err := a.stop(); err != nil {
		a.Logger.Warn("shutdown after failed startup", logger.MergeWithError(nil, err))
	}
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx is done.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)

	select {
	case sig := <-ch:
		a.Logger.Info("shutdown signal received", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		return nil
	}
}

// Shutdown runs OnStop hooks and stops components.
func (a *App[C]) Shutdown(context.Context) error {
	return a.stop()
}

func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.gracefulTimeout)
	defer cancel()

	var firstErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook failed", logger.MergeWithError(nil, err))
		firstErr = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("component shutdown failed", logger.MergeWithError(nil, err))
		if firstErr == nil {
			firstErr = err
		}
	}
	a.Logger.Debug("application stopped")
	return firstErr
}
