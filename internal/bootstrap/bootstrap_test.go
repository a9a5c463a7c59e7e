package bootstrap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Run(t *testing.T) {
	t.Run("run returns nil and hooks still run", func(t *testing.T) {
		app := New(0)
		hookCalled := false
		app.AddShutdownHook("close", func(ctx context.Context) error {
			hookCalled = true
			return nil
		})
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		assert.NoError(t, err)
		assert.True(t, hookCalled)
	})

	t.Run("run error is joined with hook errors", func(t *testing.T) {
		app := New(0)
		runErr := errors.New("run failed")
		hookErr := errors.New("close failed")
		app.AddShutdownHook("close", func(ctx context.Context) error {
			return hookErr
		})
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return runErr
		})
		assert.ErrorIs(t, err, runErr)
		assert.ErrorIs(t, err, hookErr)
	})

	t.Run("shutdown hooks run in LIFO order on context cancel", func(t *testing.T) {
		app := New(0)
		var mu sync.Mutex
		var order []string

		for _, name := range []string{"first", "second", "third"} {
			app.AddShutdownHook(name, func(ctx context.Context) error {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, name)
				return nil
			})
		}

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, order)
	})

	t.Run("hook registered from inside run callback", func(t *testing.T) {
		app := New(0)
		hookCalled := false

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			app.AddShutdownHook("late", func(ctx context.Context) error {
				hookCalled = true
				return nil
			})
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.True(t, hookCalled)
	})

	t.Run("hooks share the shutdown deadline", func(t *testing.T) {
		app := New(time.Minute)
		var deadline time.Time
		app.AddShutdownHook("drain", func(ctx context.Context) error {
			deadline, _ = ctx.Deadline()
			return nil
		})
		require.NoError(t, app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		}))
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
	})
}
