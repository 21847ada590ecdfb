package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrExecutionNotFound is returned when a stored execution does not exist.
	ErrExecutionNotFound = errors.New("execution not found")
	// ErrCacheMiss is returned by view caches when no entry exists for a key.
	ErrCacheMiss = errors.New("cache miss")
	// ErrCyclic is returned when a graph cannot be topologically sorted.
	ErrCyclic = errors.New("graph is not acyclic")
)

// ConstructionError reports input that cannot be turned into a graph. The
// caller is expected to discard any partial result.
type ConstructionError struct {
	// Index is the zero-based (log, timestamp) pair index, or -1.
	Index int
	// Line is the one-based input line number, or 0.
	Line int
	Msg  string
	Err  error
}

func (e *ConstructionError) Error() string {
	var loc string
	switch {
	case e.Index >= 0 && e.Line > 0:
		loc = fmt.Sprintf(" at pair %d (line %d)", e.Index, e.Line)
	case e.Index >= 0:
		loc = fmt.Sprintf(" at pair %d", e.Index)
	case e.Line > 0:
		loc = fmt.Sprintf(" on line %d", e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("construction failed%s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("construction failed%s: %s", loc, e.Msg)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

func eventError(ev LogEvent, format string, args ...any) *ConstructionError {
	return &ConstructionError{
		Index: -1,
		Line:  ev.Line,
		Msg:   fmt.Sprintf(format, args...) + fmt.Sprintf(" (event %q, clock %s)", ev.Text, ev.Timestamp),
	}
}
