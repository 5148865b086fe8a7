package webhook

import "fmt"

// IllegalStateError reports a violated accumulation/composition invariant:
// Finalize called twice, Finalize called with no fragments, or Ask/Close after
// Finalize. It always indicates a caller bug, not bad platform input.
type IllegalStateError struct {
	Reason string
}

func (e *IllegalStateError) Error() string {
	return "illegal conversation state: " + e.Reason
}

// ValidationError reports a composed response the platform would reject:
// structured content without a spoken/displayed companion item. Fragment names
// the offending fragment kind.
type ValidationError struct {
	Fragment string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid response (%s): %s", e.Fragment, e.Reason)
}

// NormalizationError reports a request body whose protocol shape could not be
// recognized. Normalization prefers permissive defaults for missing optional
// fields; this error is reserved for bodies that match no supported shape at
// all.
type NormalizationError struct {
	Reason string
}

func (e *NormalizationError) Error() string {
	return "cannot normalize request: " + e.Reason
}

func illegalStatef(format string, args ...any) error {
	return &IllegalStateError{Reason: fmt.Sprintf(format, args...)}
}
