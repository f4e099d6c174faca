// Package apperr implements the error taxonomy spec.md §7 describes:
// kinds, not types. Every operation inside the cryptographic and storage
// core returns a plain Go error; the ones that need to cross the HTTP
// boundary get wrapped in an *Error carrying a Kind, and the server
// package's single translation point (see server/httperror.go) maps Kind
// to a status code exactly once, at the outer boundary. This mirrors the
// original implementation's inspire-server/src/error.rs ServerError enum
// without introducing a structured-error library — the teacher's packages
// (core/rlwe, ring) use plain fmt.Errorf("...: %w", err) and errors.Is,
// which is the idiom this package extends with just enough structure to
// carry a Kind across a function boundary.
package apperr

import "fmt"

// Kind names one of the taxonomy's error categories.
type Kind int

const (
	// KindLaneNotLoaded: the queried lane has no snapshot. Recoverable via
	// reload. Surfaced as HTTP 503.
	KindLaneNotLoaded Kind = iota
	// KindInvalidQuery: parameter-version mismatch, index out of bounds,
	// shard-count disagreement, or a malformed request. Surfaced as 400.
	KindInvalidQuery
	// KindPirError: a cryptographic invariant was violated (e.g. a shard
	// multiply against an incompatible NTT state). Always a bug; 500.
	KindPirError
	// KindConfigMismatch: the config file's entry count disagrees with the
	// loaded database. Fatal for that lane only.
	KindConfigMismatch
	// KindParamsVersionMismatch: CRS metadata names a different parameter
	// version than the one compiled into this binary. Fatal for that lane.
	KindParamsVersionMismatch
	// KindIO: a disk or format error during load. That lane is marked
	// unloaded; the server may still serve the other one.
	KindIO
)

// String names a Kind, used in structured log fields.
func (k Kind) String() string {
	switch k {
	case KindLaneNotLoaded:
		return "lane_not_loaded"
	case KindInvalidQuery:
		return "invalid_query"
	case KindPirError:
		return "pir_error"
	case KindConfigMismatch:
		return "config_mismatch"
	case KindParamsVersionMismatch:
		return "params_version_mismatch"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a Kind-tagged error, unwrapped via errors.Unwrap/errors.Is like
// any other wrapped Go error.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "respond", "load_lane"
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err (which may be nil) with a Kind and the operation name.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
