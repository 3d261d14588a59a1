package cache

import (
	"context"
	"strings"
)

// Open returns the cache named by location:
//   - "" or "file": the per-user file cache ([DefaultDir])
//   - "off" or "none": a [NullCache]
//   - "redis://..." or "rediss://...": a [RedisCache]
//   - anything else: a [FileCache] rooted at that directory
func Open(ctx context.Context, location string) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(location)) {
	case "", "file":
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		return openFile(dir)
	case "off", "none":
		return NewNullCache(), nil
	}
	if IsRedisURL(location) {
		c, err := OpenRedis(ctx, location)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return openFile(location)
}

func openFile(dir string) (Cache, error) {
	c, err := NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
