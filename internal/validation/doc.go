// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

// Package validation provides struct validation using go-playground/validator v10.
//
// One validator instance serves configuration loading, API request bodies and
// CLI flag structs. Struct returns Errors, one short message per failed field.
//
// # Custom Tags
//
//   - dateortoken: a YYYY-MM-DD date or a relative-date token (LAST_30_DAYS_BACK)
//
// # Usage
//
//	type override struct {
//	    Start string `validate:"omitempty,dateortoken"`
//	    End   string `validate:"omitempty,dateortoken"`
//	}
//
//	if err := validation.Struct(&override{Start: "LAST_7_DAYS_BACK"}); err != nil {
//	    return fmt.Errorf("invalid flags: %w", err)
//	}
package validation
