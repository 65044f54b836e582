// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/dataconsole/internal/dataset"
	"github.com/tomtom215/dataconsole/internal/filter"
	"github.com/tomtom215/dataconsole/internal/query"
	"github.com/tomtom215/dataconsole/internal/router"
)

// maxParallelFetches bounds concurrent descriptor fetches.
const maxParallelFetches = 4

type datasetSummary struct {
	ID               string                      `json:"id"`
	Name             string                      `json:"name"`
	Active           bool                        `json:"active"`
	DateField        string                      `json:"date_field,omitempty"`
	Fields           []string                    `json:"fields"`
	SharedFields     []string                    `json:"shared_fields"`
	Filters          filter.Lookup               `json:"filters,omitempty"`
	ReferenceOptions map[string][]dataset.Option `json:"reference_options,omitempty"`
}

func datasetRoute(id string) router.Route {
	return router.Route{Name: "dataset", Path: "/datasets/" + id}
}

func newDatasetCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect dataset descriptors",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get ID...",
		Short: "Fetch one or more dataset descriptors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, opts, func(a *app) error {
				if err := a.navigate(ctx, router.Route{Name: "datasets", Path: "/datasets"}); err != nil {
					return err
				}
				summaries, err := fetchSummaries(ctx, a.catalog, args)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summaries)
			})
		},
	})
	return cmd
}

// fetchSummaries loads every id concurrently. The first failure cancels
// the rest.
func fetchSummaries(ctx context.Context, catalog *dataset.Catalog, ids []string) ([]datasetSummary, error) {
	out := make([]datasetSummary, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, id := range ids {
		g.Go(func() error {
			ds, err := catalog.Get(gctx, id)
			if err != nil {
				return fmt.Errorf("dataset %s: %w", id, err)
			}
			name := ds.DatasetDisplayName
			if name == "" {
				name = ds.DatasetName
			}
			out[i] = datasetSummary{
				ID:               ds.ID,
				Name:             name,
				Active:           ds.IsActive,
				DateField:        ds.DateField,
				Fields:           ds.FieldNames(),
				SharedFields:     dataset.SharedFields(ds),
				Filters:          dataset.ExtractFilters(ds),
				ReferenceOptions: dataset.ReferenceOptions(ds),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type queryFlags struct {
	filter    string
	rows      int
	page      int
	sortBy    string
	desc      bool
	groupBy   []string
	aggFunc   string
	aggField  string
	aggregate string
}

func (f *queryFlags) options() (query.Options, error) {
	opts := query.Options{
		RowsPerPage:       f.rows,
		Page:              f.page,
		Descending:        f.desc,
		AggregateFunction: f.aggFunc,
		AggregateField:    f.aggField,
	}
	if f.sortBy != "" {
		sortBy := f.sortBy
		opts.SortBy = &sortBy
	}
	if len(f.groupBy) > 0 {
		opts.GroupBy = f.groupBy
	}
	if f.aggregate != "" {
		var agg any
		if err := json.Unmarshal([]byte(f.aggregate), &agg); err != nil {
			return opts, fmt.Errorf("--aggregate: %w", err)
		}
		opts.Aggregate = agg
	}
	return opts, nil
}

// base returns the dataset's base query with the user filter ANDed in.
func (f *queryFlags) base(q query.Query) (query.Query, error) {
	q = q.Clone()
	if f.filter == "" {
		return q, nil
	}
	var extra filter.Tree
	if err := json.Unmarshal([]byte(f.filter), &extra); err != nil {
		return q, fmt.Errorf("--filter: %w", err)
	}
	if q.Request == nil || q.Request.IsZero() {
		q.Request = &extra
		return q, nil
	}
	combined := filter.And(*q.Request, extra)
	q.Request = &combined
	return q, nil
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var qf queryFlags

	cmd := &cobra.Command{
		Use:   "query DATASET",
		Short: "Run a query against a dataset",
		Long: `Run the dataset's base query with paging, sorting and grouping applied.

--filter takes a filter tree in the backend's JSON form and is combined with
the base query's own filter. Relative date tokens such as LAST_30_DAYS_BACK are
resolved before the query is sent. An inactive dataset is reported without
querying it.`,
		Example: `  dataconsole query visits --rows 10 --page 2 --sort date --desc
  dataconsole query visits --filter '{"region":{"$eq":"north"}}'
  dataconsole query visits --group-by region --agg-func sum --agg-field visits`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			qopts, err := qf.options()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withApp(ctx, opts, func(a *app) error {
				if err := a.navigate(ctx, datasetRoute(id)); err != nil {
					return err
				}
				ds, err := a.catalog.Get(ctx, id)
				if err != nil {
					return err
				}
				base, err := qf.base(ds.BaseQuery)
				if err != nil {
					return err
				}
				res, err := a.executor.Execute(ctx, base, qopts, id)
				if err != nil {
					return err
				}
				if res.Inactive() {
					fmt.Fprintf(cmd.ErrOrStderr(), "dataset %s is inactive\n", id)
				}
				return printRawJSON(cmd.OutOrStdout(), res.Data)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&qf.filter, "filter", "", "filter tree (JSON)")
	flags.IntVar(&qf.rows, "rows", 0, "rows per page")
	flags.IntVar(&qf.page, "page", 0, "1-based page, used with --rows")
	flags.StringVar(&qf.sortBy, "sort", "", "sort field")
	flags.BoolVar(&qf.desc, "desc", false, "sort descending")
	flags.StringSliceVar(&qf.groupBy, "group-by", nil, "group by these fields")
	flags.StringVar(&qf.aggFunc, "agg-func", query.AggregateRows, "aggregate function: rows, count, sum, min, max")
	flags.StringVar(&qf.aggField, "agg-field", "", "aggregated field")
	flags.StringVar(&qf.aggregate, "aggregate", "", "aggregate clause passed through on grouped queries (JSON)")
	return cmd
}
