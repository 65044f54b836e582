// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/dataconsole/internal/reldate"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// Errors lists every failed rule of one struct, in field order.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Message
	}
	return strings.Join(msgs, "; ")
}

// Validator returns the shared validator with the dateortoken tag registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Registration only fails on an empty tag or nil func.
		_ = validate.RegisterValidation("dateortoken", isDateOrToken)
	})
	return validate
}

// IsDateOrToken reports whether s is a YYYY-MM-DD date or a relative-date
// token.
func IsDateOrToken(s string) bool {
	if _, ok := reldate.Resolve(s, time.Now()); ok {
		return true
	}
	_, err := time.Parse(reldate.DateLayout, s)
	return err == nil
}

func isDateOrToken(fl validator.FieldLevel) bool {
	return IsDateOrToken(fl.Field().String())
}

// Struct validates s. It returns nil or an Errors value; anything the
// validator rejects before checking fields, such as a non-struct, comes back
// as a single FieldError named "unknown".
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "unknown", Tag: "unknown", Message: err.Error()}}
	}
	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		}
	}
	return out
}

var messages = map[string]string{
	"required":      "%s is required",
	"url":           "%s must be a valid URL",
	"http_url":      "%s must be a valid http(s) URL",
	"hostname_port": "%s must be host:port",
	"dateortoken":   "%s must be a YYYY-MM-DD date or a LAST_N_DAYS_BACK token",
}

var paramMessages = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func message(fe validator.FieldError) string {
	if tmpl, ok := messages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field())
	}
	if tmpl, ok := paramMessages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
	}

	unit := ""
	if fe.Kind().String() == "string" {
		unit = " characters"
	}
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", fe.Field(), fe.Param(), unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", fe.Field(), fe.Param(), unit)
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
