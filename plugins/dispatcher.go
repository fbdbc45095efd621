package plugins

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// CacheRebuilder is refreshed after every dispatched event.
type CacheRebuilder interface {
	Rebuild(ctx context.Context) error
}

// Dispatcher delivers lifecycle events to hooks in-process. A failing or
// panicking hook is logged and does not stop the others, and errors never
// reach the caller.
type Dispatcher struct {
	mu     sync.RWMutex
	hooks  []any
	cache  CacheRebuilder
	logger *zap.Logger
}

func NewDispatcher(cache CacheRebuilder, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{cache: cache, logger: logger.Named("plugin_events")}
}

// Subscribe adds a hook. h should implement at least one hook interface.
func (d *Dispatcher) Subscribe(h any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, h)
}

// Dispatch delivers ev and then rebuilds the enabled-plugin cache. It
// returns the number of hooks that failed.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) int {
	d.mu.RLock()
	hooks := append([]any(nil), d.hooks...)
	d.mu.RUnlock()

	failed := 0
	for _, h := range hooks {
		if err := d.deliver(ctx, h, ev); err != nil {
			failed++
			d.logger.Error("Plugin event hook failed",
				zap.String("plugin", ev.PluginName()),
				zap.String("event", fmt.Sprintf("%T", ev)),
				zap.Error(err))
		}
	}

	if d.cache != nil {
		if err := d.cache.Rebuild(ctx); err != nil {
			d.logger.Error("Failed to rebuild enabled plugins cache", zap.Error(err))
		}
	}
	return failed
}

func (d *Dispatcher) deliver(ctx context.Context, h any, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()

	switch e := ev.(type) {
	case Registered:
		if hook, ok := h.(RegisteredHook); ok {
			return hook.OnRegistered(ctx, e)
		}
	case Disabled:
		if hook, ok := h.(DisabledHook); ok {
			return hook.OnDisabled(ctx, e)
		}
	case Uninstalled:
		if hook, ok := h.(UninstalledHook); ok {
			return hook.OnUninstalled(ctx, e)
		}
	}
	return nil
}
