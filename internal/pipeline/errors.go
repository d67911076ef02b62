package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	ErrRetrieval   = errors.New("retrieval failed")
	ErrParse       = errors.New("parse failed")
	ErrJoinSkipped = errors.New("join skipped: an input is missing")
)

// Source names the report an error came from.
type Source string

// Report sources.
const (
	SourcePriceChange Source = "price_change"
	SourceStockReport Source = "stock_report"
)

// RetrievalError reports that a report could not be downloaded.
// StatusCode is zero when no HTTP response was received.
type RetrievalError struct {
	Source     Source
	URL        string
	StatusCode int
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s retrieval: status %d from %s", e.Source, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("%s retrieval from %s: %v", e.Source, e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Is matches ErrRetrieval.
func (e *RetrievalError) Is(target error) bool { return target == ErrRetrieval }

// ParseError reports malformed CSV or a schema mismatch.
// Line is 1-based and zero when not tied to a line; Column is empty when not tied to a column.
type ParseError struct {
	Source Source
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s parse", e.Source)
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

func parseErr(src Source, line int, column string, format string, args ...any) *ParseError {
	return &ParseError{Source: src, Line: line, Column: column, Err: fmt.Errorf(format, args...)}
}
