// Package errors defines the error taxonomy for the mast-planner pipeline.
//
// Every failure belongs to one of three stages: parsing the TRIX input,
// aggregating the measurement rows, or selecting the optimal mast(s). All
// errors are terminal for the current run; there are no retries and no
// partial recovery.
package errors

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline stage that produced an error.
type Stage string

const (
	StageParse     Stage = "parse"
	StageAggregate Stage = "aggregate"
	StageSelect    Stage = "select"
)

// PipelineError is a structured error carrying the failing stage, a stable
// error code and a human-readable message.
type PipelineError struct {
	Stage   Stage
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// Unwrap returns the wrapped error, if any
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ParseError reports malformed, empty or missing-column TRIX input.
type ParseError struct {
	PipelineError
}

// AggregationError reports inconsistent derived state during aggregation.
type AggregationError struct {
	PipelineError
}

// SelectionError reports that too few entities exist to select from.
type SelectionError struct {
	PipelineError
}

// NewParseError creates a ParseError with the given code and message
func NewParseError(code, message string) *ParseError {
	return &ParseError{PipelineError{Stage: StageParse, Code: code, Message: message}}
}

// NewParseErrorWrap creates a ParseError wrapping an underlying cause
func NewParseErrorWrap(code, message string, err error) *ParseError {
	return &ParseError{PipelineError{Stage: StageParse, Code: code, Message: message, Err: err}}
}

// NewAggregationError creates an AggregationError with the given code and message
func NewAggregationError(code, message string) *AggregationError {
	return &AggregationError{PipelineError{Stage: StageAggregate, Code: code, Message: message}}
}

// NewSelectionError creates a SelectionError with the given code and message
func NewSelectionError(code, message string) *SelectionError {
	return &SelectionError{PipelineError{Stage: StageSelect, Code: code, Message: message}}
}

// Stable error codes surfaced to the caller alongside the message.
const (
	CodeFileOpen      = "FILE_OPEN_FAILED"
	CodeNoData        = "NO_DATA_ROWS"
	CodeMissingColumn = "MISSING_COLUMN"
	CodeNoHeader      = "NO_HEADER_ROW"
	CodeNoRows        = "NO_INPUT_ROWS"
	CodeEmptyGroup    = "EMPTY_MAST_GROUP"
	CodeNoMasts       = "NO_MASTS"
	CodeTooFewMasts   = "TOO_FEW_MASTS"
	CodeNoTurbines    = "NO_TURBINES"
)

// IsParseError reports whether err is or wraps a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsAggregationError reports whether err is or wraps an AggregationError
func IsAggregationError(err error) bool {
	var ae *AggregationError
	return errors.As(err, &ae)
}

// IsSelectionError reports whether err is or wraps a SelectionError
func IsSelectionError(err error) bool {
	var se *SelectionError
	return errors.As(err, &se)
}
