// Package bootstrap provides application lifecycle helpers.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// App runs a command and releases its resources in reverse order of acquisition.
type App struct {
	mu              sync.Mutex
	hooks           []hook
	shutdownTimeout time.Duration
}

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// New creates a new App. Shutdown hooks share a deadline of shutdownTimeout; zero means no deadline.
func New(shutdownTimeout time.Duration) *App {
	return &App{shutdownTimeout: shutdownTimeout}
}

// AddShutdownHook registers a function to call when the app stops.
// Hooks run in reverse order (LIFO). Thread-safe.
func (a *App) AddShutdownHook(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, hook{name: name, fn: fn})
}

// Run executes run until it returns or the process receives SIGINT or SIGTERM.
// Either way every shutdown hook is called once, and their errors are joined with the error of run.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down", "reason", context.Cause(ctx))
	case runErr = <-errCh:
	}
	return errors.Join(runErr, a.shutdown())
}

func (a *App) shutdown() error {
	ctx := context.Background()
	if a.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.shutdownTimeout)
		defer cancel()
	}

	a.mu.Lock()
	hooks := a.hooks
	a.hooks = nil
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(ctx); err != nil {
			slog.Error("shutdown hook failed", "hook", hooks[i].name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
