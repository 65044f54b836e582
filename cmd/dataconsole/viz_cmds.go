// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/dataconsole/internal/dataset"
	"github.com/tomtom215/dataconsole/internal/validation"
	"github.com/tomtom215/dataconsole/internal/visualization"
)

func newVizCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Prepare visualization configurations",
	}
	cmd.AddCommand(newVizDefaultCmd(opts), newVizOptionsCmd())
	return cmd
}

type dateBounds struct {
	Start string `validate:"omitempty,dateortoken"`
	End   string `validate:"omitempty,dateortoken"`
}

func newVizDefaultCmd(opts *rootOptions) *cobra.Command {
	var start, end string
	var resolve bool

	cmd := &cobra.Command{
		Use:   "default DATASET",
		Short: "Print the default visualization config of a dataset",
		Long: `Print the default visualization config of a dataset: its base filters,
shared fields and a projection of every field.

--start and --end bound the dataset's date field. --resolve replaces
relative date tokens with dates as of now.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bounds := dateBounds{Start: start, End: end}
			if err := validation.Struct(&bounds); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			id := args[0]
			ctx := cmd.Context()
			return withApp(ctx, opts, func(a *app) error {
				if err := a.navigate(ctx, datasetRoute(id)); err != nil {
					return err
				}
				ds, err := a.catalog.Get(ctx, id)
				if err != nil {
					return err
				}

				cfg := visualization.BuildDefault(ds, dataset.ExtractFilters(ds), dataset.SharedFields(ds))
				cfg = visualization.OverrideDate(cfg, &start, &end)
				if resolve {
					cfg = visualization.ConvertLastNBack(cfg, time.Now())
				}
				return printJSON(cmd.OutOrStdout(), cfg)
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "lower date bound (date or LAST_N_DAYS_BACK token)")
	cmd.Flags().StringVar(&end, "end", "", "upper date bound (date or LAST_N_DAYS_BACK token)")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "resolve relative date tokens")
	return cmd
}

type vizCatalog struct {
	Types                []visualization.Choice `json:"types"`
	OverlayTypes         []visualization.Choice `json:"overlay_types"`
	AggregationFunctions []visualization.Choice `json:"aggregation_functions"`
	DetectionAlgorithms  []visualization.Choice `json:"detection_algorithms"`
	LastNBack            []visualization.Choice `json:"last_n_back"`
}

func newVizOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List visualization types and option choices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), vizCatalog{
				Types:                visualization.Types(),
				OverlayTypes:         visualization.OverlayTypes(),
				AggregationFunctions: visualization.AggregationFunctions(),
				DetectionAlgorithms:  visualization.DetectionAlgorithms(),
				LastNBack:            visualization.LastNBackOptions(),
			})
		},
	}
}
