// Package lilypond converts between the LilyPond syntax tree and the
// common score tree, in both directions.
package lilypond

import "errors"

// Error types for the lilypond package.
var (
	// ErrDanglingSpan is returned when a span would reference a note or
	// chord identity that was never emitted.
	ErrDanglingSpan = errors.New("span references an identity that was never emitted")

	// ErrUnbalancedScope is returned when a scope end marker arrives with
	// no matching open scope.
	ErrUnbalancedScope = errors.New("scope end without matching start")

	// ErrEmptySpan is returned when a block closes without having emitted
	// any duration event to anchor its span.
	ErrEmptySpan = errors.New("span closed with no events emitted")

	// ErrNoPreviousChord is returned when a chord repetition appears
	// before any chord.
	ErrNoPreviousChord = errors.New("chord repetition with no preceding chord")
)
