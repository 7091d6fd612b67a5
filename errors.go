package uniregex

import "fmt"

// MatchErrorKind enumerates the match-time error taxonomy of spec §7,
// distinct from the Result enum: these are conditions that prevent an
// attempt from running at all, not match-time outcomes.
type MatchErrorKind uint8

const (
	// ErrNotCompiled reports a call through the zero value of *Pattern,
	// which was never produced by Compile.
	ErrNotCompiled MatchErrorKind = iota
	// ErrNotEnoughMatches reports a caller-provided capture count smaller
	// than the pattern's highest positional back-reference target.
	ErrNotEnoughMatches
	// ErrNoStorageForNamedBrackets reports a pattern with named groups
	// matched against a Captures that cannot record named spans.
	ErrNoStorageForNamedBrackets
)

var matchErrorKindNames = [...]string{
	"not-compiled", "not-enough-matches", "no-storage-for-named-brackets",
}

func (k MatchErrorKind) String() string {
	if int(k) < len(matchErrorKindNames) {
		return matchErrorKindNames[k]
	}
	return "unknown"
}

// MatchError reports a condition that prevented a match attempt from
// running, as distinct from Result's no-match/matched/canceled outcomes
// (spec §7). uniregex's Captures always auto-sizes and every pattern
// always carries its own named-group storage, so ErrNotEnoughMatches and
// ErrNoStorageForNamedBrackets are part of the taxonomy for API parity
// with spec §7 but are not reachable through this package's entry points;
// only ErrNotCompiled (a zero-value *Pattern) can actually occur.
type MatchError struct {
	Kind MatchErrorKind
}

// Error implements the error interface.
func (e *MatchError) Error() string {
	return fmt.Sprintf("uniregex: %s", e.Kind)
}
