// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package query

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/metrics"
	"github.com/tomtom215/dataconsole/internal/models"
	"github.com/tomtom215/dataconsole/internal/reldate"
)

// Backend posts assembled queries.
type Backend interface {
	QueryDataset(ctx context.Context, id string, q models.DatasetQuery) (*models.QueryResult, error)
}

// ActivityChecker reports whether a dataset accepts queries.
type ActivityChecker interface {
	IsActive(ctx context.Context, id string) (bool, error)
}

// Invalidator is implemented by activity checkers that cache. Execute drops
// the cached entry first so the gate sees the dataset as it is now.
type Invalidator interface {
	Invalidate(id string)
}

// Executor builds and runs dataset queries.
type Executor struct {
	backend  Backend
	activity ActivityChecker
	now      func() time.Time
}

// NewExecutor returns an executor posting to b and gating on a.
func NewExecutor(b Backend, a ActivityChecker) *Executor {
	return &Executor{backend: b, activity: a, now: time.Now}
}

// WithClock replaces the clock used to resolve relative-date tokens.
func (e *Executor) WithClock(now func() time.Time) *Executor {
	e.now = now
	return e
}

// Execute builds the query for opts and runs it against datasetID.
//
// Grouped and flat queries both check dataset activity first, bypassing any
// cached descriptor; an inactive dataset yields models.InactiveResult without calling the query endpoint.
// Relative-date tokens in the request are resolved against the executor's
// clock. The response body is returned unmodified. Errors from the activity
// lookup or the query call are wrapped and never retried.
func (e *Executor) Execute(ctx context.Context, base Query, opts Options, datasetID string) (*models.QueryResult, error) {
	q := Build(base, opts)
	grouped := opts.Grouped()
	log := logging.Ctx(ctx).With().Str("dataset_id", datasetID).Bool("grouped", grouped).Logger()

	if inv, ok := e.activity.(Invalidator); ok {
		inv.Invalidate(datasetID)
	}
	active, err := e.activity.IsActive(ctx, datasetID)
	if err != nil {
		metrics.RecordDatasetQuery(grouped, "error")
		return nil, fmt.Errorf("check dataset %s activity: %w", datasetID, err)
	}
	if !active {
		metrics.RecordDatasetQuery(grouped, "inactive")
		log.Debug().Msg("Dataset inactive, skipping query")
		return models.InactiveResult(), nil
	}

	if q.Request != nil {
		now := e.now()
		resolved := q.Request.Map(func(v any) any { return reldate.Walk(v, now) })
		q.Request = &resolved
	}

	res, err := e.backend.QueryDataset(ctx, datasetID, q)
	if err != nil {
		metrics.RecordDatasetQuery(grouped, "error")
		return nil, fmt.Errorf("query dataset %s: %w", datasetID, err)
	}
	metrics.RecordDatasetQuery(grouped, "success")
	log.Debug().Int("bytes", len(res.Data)).Msg("Dataset query complete")
	return res, nil
}
