// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dataconsole/internal/models"
)

// Dataset fetches a dataset descriptor.
func (c *Client) Dataset(ctx context.Context, id string) (*models.Dataset, error) {
	var ds models.Dataset
	if err := c.do(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "/dataset/" + url.PathEscape(id),
		endpoint: "/dataset/{id}",
	}, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// QueryDataset posts q and returns the response body unmodified.
func (c *Client) QueryDataset(ctx context.Context, id string, q models.DatasetQuery) (*models.QueryResult, error) {
	resp, err := c.execute(ctx, &requestConfig{
		method:   http.MethodPost,
		path:     "/dataset/" + url.PathEscape(id) + "/query",
		endpoint: "/dataset/{id}/query",
		body:     q,
	})
	if err != nil {
		return nil, err
	}
	return &models.QueryResult{Data: json.RawMessage(resp.body)}, nil
}
