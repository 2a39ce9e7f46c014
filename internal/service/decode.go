package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"doccompare/internal/model"
)

// ParseError means the model output was not JSON at all.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("AI response was not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RejectedError carries the model's own refusal, typically because one of the
// inputs is not a contract-like document.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return e.Reason }

// ValidationError means the output was JSON but not a comparison result.
type ValidationError struct {
	Raw string
	Err error
}

func (e *ValidationError) Error() string {
	return "AI response did not match the expected format."
}

func (e *ValidationError) Unwrap() error { return e.Err }

// modelOutput mirrors the response schema. Pointers tell a missing field from an empty one.
type modelOutput struct {
	ExecutiveSummary *string   `json:"executiveSummary" validate:"required"`
	Agreements       *[]string `json:"agreements" validate:"required"`
	Disputes         *[]string `json:"disputes" validate:"required"`
	UniqueDoc1       *[]string `json:"uniqueDoc1" validate:"required"`
	UniqueDoc2       *[]string `json:"uniqueDoc2" validate:"required"`
	Error            string    `json:"error"`
}

var outputValidator = validator.New(validator.WithRequiredStructEnabled())

// decodeComparison turns raw model text into a result. A populated "error" field wins
// over any shape problem.
func decodeComparison(raw string) (*model.ComparisonResult, error) {
	var out modelOutput
	err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out)

	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if out.Error != "" {
		return nil, &RejectedError{Reason: out.Error}
	}
	if err != nil {
		return nil, &ValidationError{Raw: raw, Err: err}
	}
	if err := outputValidator.Struct(out); err != nil {
		return nil, &ValidationError{Raw: raw, Err: err}
	}

	res := &model.ComparisonResult{
		ExecutiveSummary: *out.ExecutiveSummary,
		Agreements:       *out.Agreements,
		Disputes:         *out.Disputes,
		UniqueDoc1:       *out.UniqueDoc1,
		UniqueDoc2:       *out.UniqueDoc2,
	}
	res.Normalize()
	return res, nil
}
