package plugins

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"panel-rbac/apperrors"
	"panel-rbac/metrics"
	"panel-rbac/repositories"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// CacheFileName is the snapshot file inside the cache directory.
const CacheFileName = "enabled_plugins.yaml"

// Snapshot is the on-disk content of the enabled-plugin cache.
type Snapshot struct {
	GeneratedAt time.Time `yaml:"generated_at"`
	Plugins     []string  `yaml:"plugins"`
}

// EnabledPluginCache is a derived snapshot of which plugins are enabled,
// read by code that must not hit the database. The plugin table stays the
// source of truth; the snapshot can always be rebuilt from it.
type EnabledPluginCache struct {
	dir     string
	source  repositories.PluginRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
	// rename publishes the finished temp file; swapped in tests.
	rename func(oldpath, newpath string) error

	mu sync.Mutex
}

func NewEnabledPluginCache(dir string, source repositories.PluginRepository, logger *zap.Logger, m *metrics.Metrics) *EnabledPluginCache {
	return &EnabledPluginCache{
		dir:     dir,
		source:  source,
		logger:  logger.Named("plugin_cache"),
		metrics: m,
		rename:  os.Rename,
	}
}

func (c *EnabledPluginCache) Path() string {
	return filepath.Join(c.dir, CacheFileName)
}

// Rebuild rewrites the snapshot from the plugin table. The new file replaces
// the old one atomically; on failure the previous snapshot is left as is.
func (c *EnabledPluginCache) Rebuild(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	names, err := c.source.FindEnabledNames(ctx)
	if err != nil {
		c.metrics.ObserveCacheRebuild(false, 0)
		c.logger.Error("Failed to rebuild enabled plugins cache", zap.Error(err))
		return fmt.Errorf("reading enabled plugins: %w", err)
	}
	if names == nil {
		names = []string{}
	}

	if err := c.write(Snapshot{GeneratedAt: time.Now().UTC(), Plugins: names}); err != nil {
		c.metrics.ObserveCacheRebuild(false, 0)
		c.logger.Error("Failed to write enabled plugins cache", zap.String("file", c.Path()), zap.Error(err))
		return err
	}

	c.metrics.ObserveCacheRebuild(true, len(names))
	c.logger.Info("Enabled plugins cache updated",
		zap.String("file", c.Path()),
		zap.Int("count", len(names)),
		zap.Strings("plugins", names))
	return nil
}

func (c *EnabledPluginCache) write(snap Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return apperrors.CacheWriteFailure(err, "encoding snapshot")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return apperrors.CacheWriteFailure(err, "creating cache directory %s", c.dir)
	}

	tmp, err := os.CreateTemp(c.dir, ".enabled_plugins-*.tmp")
	if err != nil {
		return apperrors.CacheWriteFailure(err, "creating temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return apperrors.CacheWriteFailure(err, "writing temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return apperrors.CacheWriteFailure(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.CacheWriteFailure(err, "closing temp file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return apperrors.CacheWriteFailure(err, "setting snapshot mode")
	}
	if err := c.rename(tmpName, c.Path()); err != nil {
		return apperrors.CacheWriteFailure(err, "replacing snapshot")
	}
	tmpName = ""
	return nil
}

// Clear removes the snapshot. Clearing an absent snapshot succeeds.
func (c *EnabledPluginCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Error("Failed to clear enabled plugins cache", zap.Error(err))
		return fmt.Errorf("removing %s: %w", c.Path(), err)
	}
	if err == nil {
		c.logger.Info("Enabled plugins cache cleared")
	}
	return nil
}

// Load reads the snapshot. A missing or unreadable snapshot yields
// ErrCacheAbsent.
func (c *EnabledPluginCache) Load() (*Snapshot, error) {
	data, err := os.ReadFile(c.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.ErrCacheAbsent
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCacheAbsent, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: corrupt snapshot: %v", apperrors.ErrCacheAbsent, err)
	}
	return &snap, nil
}

// EnabledPlugins answers from the snapshot, rebuilding it when absent. If
// the rebuild fails too it falls back to the plugin table.
func (c *EnabledPluginCache) EnabledPlugins(ctx context.Context) ([]string, error) {
	snap, err := c.Load()
	if err == nil {
		return snap.Plugins, nil
	}
	if !errors.Is(err, apperrors.ErrCacheAbsent) {
		return nil, err
	}

	if rerr := c.Rebuild(ctx); rerr == nil {
		if snap, err := c.Load(); err == nil {
			return snap.Plugins, nil
		}
	}
	c.logger.Warn("Enabled plugins cache unavailable, reading plugin table")
	return c.source.FindEnabledNames(ctx)
}
