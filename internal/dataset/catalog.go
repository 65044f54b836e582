// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package dataset

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/dataconsole/internal/cache"
	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/metrics"
	"github.com/tomtom215/dataconsole/internal/models"
)

// Fetcher loads a dataset descriptor from the backend.
type Fetcher interface {
	Dataset(ctx context.Context, id string) (*models.Dataset, error)
}

// Catalog fetches descriptors and keeps them for a short TTL. Concurrent
// lookups of the same id share one backend call.
type Catalog struct {
	fetcher Fetcher
	cache   *cache.Cache[*models.Dataset]
	sflight singleflight.Group
}

// NewCatalog returns a catalog over f. A non-positive ttl disables caching.
func NewCatalog(f Fetcher, ttl time.Duration) *Catalog {
	return &Catalog{
		fetcher: f,
		cache:   cache.New[*models.Dataset](ttl),
	}
}

// Get returns the descriptor for id. Callers must treat it as read-only.
func (c *Catalog) Get(ctx context.Context, id string) (*models.Dataset, error) {
	if ds, ok := c.cache.Get(id); ok {
		metrics.DatasetCacheHits.Inc()
		return ds, nil
	}
	metrics.DatasetCacheMisses.Inc()

	v, err, shared := c.sflight.Do(id, func() (interface{}, error) {
		ds, err := c.fetcher.Dataset(ctx, id)
		if err != nil {
			return nil, err
		}
		c.cache.Set(id, ds)
		return ds, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", id, err)
	}
	if shared {
		logging.Ctx(ctx).Debug().Str("dataset_id", id).Msg("Shared in-flight dataset fetch")
	}
	return v.(*models.Dataset), nil
}

// IsActive reports whether the dataset accepts queries.
func (c *Catalog) IsActive(ctx context.Context, id string) (bool, error) {
	ds, err := c.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return ds.IsActive, nil
}

// Invalidate drops id from the cache.
func (c *Catalog) Invalidate(id string) {
	c.cache.Delete(id)
}

// Stats returns the descriptor cache counters.
func (c *Catalog) Stats() cache.Stats {
	return c.cache.GetStats()
}
