// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package mockapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/dataconsole/internal/models"
)

type dataset struct {
	desc models.Dataset
	rows []map[string]any
}

// AddDataset registers or replaces a dataset and its rows. Row values are
// normalised through JSON so they compare like decoded request values.
func (s *Server) AddDataset(desc models.Dataset, rows []map[string]any) error {
	if desc.ID == "" {
		return errors.New("dataset id is required")
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	var normalised []map[string]any
	if err := decodeNumbers(raw, &normalised); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[desc.ID] = &dataset{desc: desc, rows: normalised}
	return nil
}

// SetDatasetActive toggles a dataset's is_active flag.
func (s *Server) SetDatasetActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ds, ok := s.datasets[id]; ok {
		ds.desc.IsActive = active
	}
}

func (s *Server) lookupDataset(id string) (*dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasets[id]
	return ds, ok
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.lookupDataset(chi.URLParam(r, "datasetID"))
	if !ok {
		writeDetail(w, http.StatusNotFound, "Dataset not found")
		return
	}
	s.mu.Lock()
	desc := ds.desc
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, desc)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.lookupDataset(chi.URLParam(r, "datasetID"))
	if !ok {
		writeDetail(w, http.StatusNotFound, "Dataset not found")
		return
	}

	var q models.DatasetQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Malformed query")
		return
	}

	s.mu.Lock()
	active := ds.desc.IsActive
	rows := ds.rows
	s.mu.Unlock()
	if !active {
		writeDetail(w, http.StatusBadRequest, "Dataset is not active")
		return
	}

	result, err := evaluate(q, rows)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, []models.QueryRows{result})
}
