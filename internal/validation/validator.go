// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

// Package validation wraps go-playground/validator v10 behind a
// thread-safe singleton. API request structs declare their rules with
// `validate` tags and handlers call ValidateStruct before acting.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Error carries one failed field rule.
type Error struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Errors aggregates all failed rules for a struct.
type Errors struct {
	fields []Error
}

func (e *Errors) Error() string {
	msgs := make([]string, len(e.fields))
	for i, f := range e.fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the individual field errors.
func (e *Errors) Fields() []Error {
	return e.fields
}

// ValidateStruct validates s against its `validate` tags. A nil
// return means valid; otherwise the error is *Errors.
func ValidateStruct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Errors{fields: make([]Error, 0, len(verrs))}
	for _, fe := range verrs {
		out.fields = append(out.fields, Error{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation rule %s", fe.Field(), fe.Tag())
	}
}
