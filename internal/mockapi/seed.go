// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package mockapi

import (
	"fmt"
	"time"

	"github.com/tomtom215/dataconsole/internal/models"
)

// Seeded fixtures.
const (
	ViewerUsername    = "viewer"
	ViewerPassword    = "viewer"
	VisitsDatasetID   = "visits"
	ArchiveDatasetID  = "archive"
	visitsSeedDays    = 60
	visitsSeedRegions = 3
)

var seedRegions = [visitsSeedRegions]string{"north", "south", "east"}

func (s *Server) seed() error {
	if _, err := s.AddUser(ViewerUsername, ViewerPassword, map[string]bool{
		"read_dashboards":      true,
		"read_visualizations":  true,
		"read_datasets_shared": true,
		"read_dataset_shared":  true,
	}); err != nil {
		return err
	}

	regionMap := "regions"
	fields := []models.Field{
		{DisplayName: "Date", DataFieldName: "date", DataFieldType: "date", DateGranularity: "day"},
		{DisplayName: "Region", DataFieldName: "region", DataFieldType: "string", RegionMapID: &regionMap,
			RegionMapMapping: map[string]string{"north": "N", "south": "S", "east": "E"}},
		{DisplayName: "Visits", DataFieldName: "visits", DataFieldType: "integer"},
	}

	// Days are counted back from the seed time so relative-date filters
	// always find rows.
	today := s.now().UTC().Truncate(24 * time.Hour)
	rows := make([]map[string]any, 0, visitsSeedDays*visitsSeedRegions)
	for d := range visitsSeedDays {
		day := today.AddDate(0, 0, -d).Format(time.DateOnly)
		for i, region := range seedRegions {
			rows = append(rows, map[string]any{
				"date":   day,
				"region": region,
				"visits": (d*7+i*13)%50 + 1,
			})
		}
	}

	if err := s.AddDataset(models.Dataset{
		ID:                 VisitsDatasetID,
		DatasetName:        "visits",
		DatasetDisplayName: "Clinic visits",
		Description:        "Daily visits per region",
		Fields:             fields,
		IsActive:           true,
		DateField:          "date",
	}, rows); err != nil {
		return fmt.Errorf("seed %s: %w", VisitsDatasetID, err)
	}

	if err := s.AddDataset(models.Dataset{
		ID:                 ArchiveDatasetID,
		DatasetName:        "archive",
		DatasetDisplayName: "Archived visits",
		Fields:             fields,
		IsActive:           false,
		DateField:          "date",
	}, rows[:visitsSeedRegions]); err != nil {
		return fmt.Errorf("seed %s: %w", ArchiveDatasetID, err)
	}
	return nil
}
