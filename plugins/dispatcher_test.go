package plugins

import (
	"context"
	"errors"
	"testing"

	"panel-rbac/models"
	"panel-rbac/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHook struct {
	registered []string
	disabled   []string
}

func (h *recordingHook) OnRegistered(_ context.Context, ev Registered) error {
	h.registered = append(h.registered, ev.Plugin)
	return nil
}

func (h *recordingHook) OnDisabled(_ context.Context, ev Disabled) error {
	h.disabled = append(h.disabled, ev.Plugin)
	return nil
}

type panickingHook struct{}

func (panickingHook) OnRegistered(context.Context, Registered) error { panic("boom") }

type erroringHook struct{}

func (erroringHook) OnDisabled(context.Context, Disabled) error { return errors.New("nope") }

type countingCache struct {
	rebuilds int
	err      error
}

func (c *countingCache) Rebuild(context.Context) error {
	c.rebuilds++
	return c.err
}

func TestDispatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("routes events to matching hooks", func(t *testing.T) {
		cache := &countingCache{}
		d := NewDispatcher(cache, zap.NewNop())
		rec := &recordingHook{}
		d.Subscribe(rec)
		d.Subscribe(struct{}{})

		assert.Zero(t, d.Dispatch(ctx, Registered{Plugin: "billing"}))
		assert.Zero(t, d.Dispatch(ctx, Disabled{Plugin: "billing"}))

		assert.Equal(t, []string{"billing"}, rec.registered)
		assert.Equal(t, []string{"billing"}, rec.disabled)
		assert.Equal(t, 2, cache.rebuilds)
	})

	t.Run("isolates failing hooks", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		cache := &countingCache{}
		d := NewDispatcher(cache, zap.New(core))
		rec := &recordingHook{}
		d.Subscribe(panickingHook{})
		d.Subscribe(erroringHook{})
		d.Subscribe(rec)

		assert.Equal(t, 1, d.Dispatch(ctx, Registered{Plugin: "billing"}))
		assert.Equal(t, 1, d.Dispatch(ctx, Disabled{Plugin: "billing"}))

		assert.Equal(t, []string{"billing"}, rec.registered)
		assert.Equal(t, []string{"billing"}, rec.disabled)
		assert.Equal(t, 2, cache.rebuilds)
		assert.Equal(t, 2, logs.FilterMessage("Plugin event hook failed").Len())
	})

	t.Run("cache failure is logged not returned", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		d := NewDispatcher(&countingCache{err: errors.New("disk full")}, zap.New(core))
		assert.Zero(t, d.Dispatch(ctx, Disabled{Plugin: "billing"}))
		assert.Equal(t, 1, logs.FilterMessage("Failed to rebuild enabled plugins cache").Len())
	})

	t.Run("end to end registration refreshes cache", func(t *testing.T) {
		f := newFixture(t)
		d := NewDispatcher(f.cache, zap.NewNop())
		d.Subscribe(NewCoordinator(f.perms, zap.NewNop(), nil))

		require.NoError(t, f.plugins.SetEnabled(ctx, "billing", true))
		assert.Zero(t, d.Dispatch(ctx, Registered{Plugin: "billing", Permissions: map[string]services.Declaration{
			"PLUGIN_BILLING_VIEW": {Name: "View Billing"},
		}}))

		snap, err := f.cache.Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"billing"}, snap.Plugins)

		active, err := f.perms.ListActive(ctx)
		require.NoError(t, err)
		assert.Contains(t, codes(active), "PLUGIN_BILLING_VIEW")

		require.NoError(t, f.plugins.SetEnabled(ctx, "billing", false))
		assert.Zero(t, d.Dispatch(ctx, Disabled{Plugin: "billing"}))

		active, err = f.perms.ListActive(ctx)
		require.NoError(t, err)
		assert.NotContains(t, codes(active), "PLUGIN_BILLING_VIEW")
	})

	t.Run("end to end uninstall drops permissions", func(t *testing.T) {
		f := newFixture(t)
		d := NewDispatcher(f.cache, zap.NewNop())
		d.Subscribe(NewCoordinator(f.perms, zap.NewNop(), nil))

		require.NoError(t, f.plugins.SetEnabled(ctx, "billing", true))
		require.Zero(t, d.Dispatch(ctx, Registered{Plugin: "billing", Permissions: map[string]services.Declaration{
			"PLUGIN_BILLING_VIEW": {Name: "View Billing"},
		}}))

		require.NoError(t, f.plugins.Remove(ctx, "billing"))
		assert.Zero(t, d.Dispatch(ctx, Uninstalled{Plugin: "billing"}))

		owned, err := f.perms.ListByPlugin(ctx, "billing")
		require.NoError(t, err)
		assert.Empty(t, owned)

		snap, err := f.cache.Load()
		require.NoError(t, err)
		assert.Empty(t, snap.Plugins)
	})
}

func codes(perms []models.Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.Code)
	}
	return out
}
