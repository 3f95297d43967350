// Package catalog resolves exercise ids to catalog entries through a
// read-through cache in front of the exercise store.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/coocood/freecache"
)

// UnknownExercise is the display name used for ids missing from the catalog.
const UnknownExercise = "Unknown Exercise"

const (
	megabyte = 1024 * 1024
	// cacheExpireSeconds bounds staleness if a write path forgets to invalidate.
	cacheExpireSeconds = 60 * 60
)

// Store is the exercise lookup the catalog reads through to.
type Store interface {
	GetExercise(ctx context.Context, id int64) (*models.Exercise, error)
}

// Catalog serves exercise lookups, caching hits as JSON.
type Catalog struct {
	store Store
	cache *freecache.Cache
	log   *slog.Logger
}

// New creates a catalog with a cache of cacheMB megabytes. freecache enforces
// its own minimum size.
func New(store Store, cacheMB int, log *slog.Logger) *Catalog {
	if cacheMB <= 0 {
		cacheMB = 1
	}
	return &Catalog{
		store: store,
		cache: freecache.NewCache(cacheMB * megabyte),
		log:   log,
	}
}

func cacheKey(id int64) []byte {
	return []byte(fmt.Sprintf("exercise::%d", id))
}

// GetExercise returns the exercise with the given id, or storage.ErrNotFound.
func (c *Catalog) GetExercise(ctx context.Context, id int64) (*models.Exercise, error) {
	key := cacheKey(id)
	if data, err := c.cache.Get(key); err == nil {
		var ex models.Exercise
		if err := json.Unmarshal(data, &ex); err == nil {
			return &ex, nil
		}
		c.log.Warn("dropping undecodable catalog cache entry", "exercise_id", id)
		c.cache.Del(key)
	}

	ex, err := c.store.GetExercise(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(ex)
	if err != nil {
		c.log.Error("encoding exercise for cache", "exercise_id", id, "error", err)
		return ex, nil
	}
	if err := c.cache.Set(key, data, cacheExpireSeconds); err != nil {
		c.log.Debug("exercise not cached", "exercise_id", id, "error", err)
	}
	return ex, nil
}

// Name returns the exercise's display name. Ids missing from the catalog
// resolve to UnknownExercise; other lookup errors are returned.
func (c *Catalog) Name(ctx context.Context, id int64) (string, error) {
	ex, err := c.GetExercise(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return UnknownExercise, nil
	}
	if err != nil {
		return "", err
	}
	return ex.Name, nil
}

// Invalidate drops the cached entry for id after an edit or delete.
func (c *Catalog) Invalidate(id int64) {
	c.cache.Del(cacheKey(id))
}
