package dataset

import (
	"log/slog"
	"sync"
	"time"
)

// Cache keeps loaded files for the process lifetime, keyed by absolute path.
// Cached tables are immutable and shared by every caller.
type Cache struct {
	mu     sync.Mutex
	files  map[string]*File
	Logger *slog.Logger
}

// NewCache returns an empty cache.
func NewCache(logger *slog.Logger) *Cache {
	return &Cache{files: map[string]*File{}, Logger: logger}
}

var defaultCache = NewCache(nil)

// Cached loads path through the process-wide cache.
func Cached(path string, opt LoadOptions) (*File, error) {
	return defaultCache.Load(path, opt)
}

// Load returns the cached file for path, reading it on first use. Failed loads
// are not cached.
func (c *Cache) Load(path string, opt LoadOptions) (*File, error) {
	key := PathKey(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.files[key]; ok {
		c.logger().Debug("dataset cache hit", slog.String("path", key))
		return f, nil
	}
	start := time.Now()
	f, err := Load(path, opt)
	if err != nil {
		return nil, err
	}
	c.files[key] = f
	c.logger().Info("dataset loaded",
		slog.String("path", key),
		slog.Int("rows", f.Table.Len()),
		slog.String("checksum", f.Checksum),
		slog.Duration("elapsed", time.Since(start)))
	return f, nil
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.files)
}

func (c *Cache) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
