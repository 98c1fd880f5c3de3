package scheduler

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidExpression is matched by every *ParseError via errors.Is.
	ErrInvalidExpression = errors.New("invalid cron expression")
	// ErrNoMatch is matched by every *ComputeError via errors.Is.
	ErrNoMatch = errors.New("no matching time")
)

// ParseErrorKind classifies why an expression was rejected.
type ParseErrorKind int

const (
	// FieldCount means the expression did not have exactly five fields.
	FieldCount ParseErrorKind = iota + 1
	// Syntax means a field contained a token that could not be read.
	Syntax
	// OutOfRange means a value fell outside its field's domain.
	OutOfRange
)

func (k ParseErrorKind) String() string {
	switch k {
	case FieldCount:
		return "field count"
	case Syntax:
		return "syntax"
	case OutOfRange:
		return "out of range"
	default:
		return fmt.Sprintf("ParseErrorKind(%d)", int(k))
	}
}

// ParseError reports an expression that could not be parsed. Field and
// Token are empty for FieldCount errors.
type ParseError struct {
	Kind   ParseErrorKind
	Field  string
	Token  string
	Detail string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return "cron: " + e.Detail
	}
	return fmt.Sprintf("cron: %s field %q: %s", e.Field, e.Token, e.Detail)
}

func (e *ParseError) Unwrap() error { return ErrInvalidExpression }

// ComputeErrorKind classifies a failure to produce an occurrence.
type ComputeErrorKind int

const (
	// NoMatchFound means nothing matched within the lookahead horizon.
	NoMatchFound ComputeErrorKind = iota + 1
)

func (k ComputeErrorKind) String() string {
	if k == NoMatchFound {
		return "no match found"
	}
	return fmt.Sprintf("ComputeErrorKind(%d)", int(k))
}

// ComputeError reports a syntactically valid expression that has no
// occurrence within LookaheadYears of From.
type ComputeError struct {
	Kind       ComputeErrorKind
	Expression string
	From       time.Time
}

func (e *ComputeError) Error() string {
	if e.Expression == "" {
		return "cron: no expressions to schedule after " + e.From.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("cron: no time matching %q within %d years after %s",
		e.Expression, LookaheadYears, e.From.UTC().Format(time.RFC3339))
}

func (e *ComputeError) Unwrap() error { return ErrNoMatch }
