package plugins

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"panel-rbac/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnabledPluginCache(t *testing.T) {
	ctx := context.Background()

	t.Run("rebuild writes enabled plugins only", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.plugins.SetEnabled(ctx, "billing", true))
		require.NoError(t, f.plugins.SetEnabled(ctx, "backups", true))
		require.NoError(t, f.plugins.SetEnabled(ctx, "legacy", false))

		require.NoError(t, f.cache.Rebuild(ctx))

		snap, err := f.cache.Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"backups", "billing"}, snap.Plugins)
		assert.False(t, snap.GeneratedAt.IsZero())

		entries, err := os.ReadDir(filepath.Dir(f.cache.Path()))
		require.NoError(t, err)
		require.Len(t, entries, 1, "temp files must not be left behind")
		assert.Equal(t, CacheFileName, entries[0].Name())
	})

	t.Run("load reports absent snapshot", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cache.Load()
		assert.ErrorIs(t, err, apperrors.ErrCacheAbsent)
	})

	t.Run("corrupt snapshot counts as absent", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.WriteFile(f.cache.Path(), []byte("plugins: [unterminated"), 0o644))
		_, err := f.cache.Load()
		assert.ErrorIs(t, err, apperrors.ErrCacheAbsent)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.cache.Rebuild(ctx))
		require.NoError(t, f.cache.Clear())
		require.NoError(t, f.cache.Clear())
		_, err := os.Stat(f.cache.Path())
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("enabled plugins rebuilds missing snapshot", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.plugins.SetEnabled(ctx, "billing", true))

		names, err := f.cache.EnabledPlugins(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"billing"}, names)
		assert.FileExists(t, f.cache.Path())
	})

	t.Run("enabled plugins serves stale snapshot until rebuilt", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.cache.Rebuild(ctx))
		require.NoError(t, f.plugins.SetEnabled(ctx, "billing", true))

		names, err := f.cache.EnabledPlugins(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)

		require.NoError(t, f.cache.Rebuild(ctx))
		names, err = f.cache.EnabledPlugins(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"billing"}, names)
	})

	t.Run("unusable cache directory is a write failure", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "not-a-dir")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		c := NewEnabledPluginCache(blocker, &stubPlugins{enabled: []string{"billing"}}, zap.NewNop(), nil)
		err := c.Rebuild(ctx)
		assert.ErrorIs(t, err, apperrors.ErrCacheWriteFailure)
	})

	t.Run("failed replace keeps previous snapshot and no temp file", func(t *testing.T) {
		dir := t.TempDir()
		src := &stubPlugins{enabled: []string{"billing"}}
		c := NewEnabledPluginCache(dir, src, zap.NewNop(), nil)
		require.NoError(t, c.Rebuild(ctx))
		before, err := os.ReadFile(c.Path())
		require.NoError(t, err)

		var staged string
		c.rename = func(oldpath, _ string) error {
			staged = oldpath
			_, statErr := os.Stat(oldpath)
			require.NoError(t, statErr, "temp file exists when the replace fails")
			return errors.New("device busy")
		}
		src.enabled = []string{"backups", "billing"}

		err = c.Rebuild(ctx)
		assert.ErrorIs(t, err, apperrors.ErrCacheWriteFailure)
		require.NotEmpty(t, staged)

		after, err := os.ReadFile(c.Path())
		require.NoError(t, err)
		assert.Equal(t, before, after)
		snap, err := c.Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"billing"}, snap.Plugins)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, CacheFileName, entries[0].Name())
	})

	t.Run("snapshot path occupied by a directory", func(t *testing.T) {
		dir := t.TempDir()
		c := NewEnabledPluginCache(dir, &stubPlugins{enabled: []string{"billing"}}, zap.NewNop(), nil)
		require.NoError(t, os.MkdirAll(filepath.Join(c.Path(), "keep"), 0o755))

		err := c.Rebuild(ctx)
		assert.ErrorIs(t, err, apperrors.ErrCacheWriteFailure)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1, "temp file must be removed")
		assert.True(t, entries[0].IsDir())
		assert.DirExists(t, filepath.Join(c.Path(), "keep"))
	})

	t.Run("source failure keeps previous snapshot", func(t *testing.T) {
		dir := t.TempDir()
		src := &stubPlugins{enabled: []string{"billing"}}
		c := NewEnabledPluginCache(dir, src, zap.NewNop(), nil)
		require.NoError(t, c.Rebuild(ctx))

		src.err = errors.New("database is gone")
		require.Error(t, c.Rebuild(ctx))

		snap, err := c.Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"billing"}, snap.Plugins)
	})

	t.Run("falls back to source when snapshot cannot be written", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "not-a-dir")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		c := NewEnabledPluginCache(blocker, &stubPlugins{enabled: []string{"backups"}}, zap.NewNop(), nil)
		names, err := c.EnabledPlugins(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"backups"}, names)
	})
}
