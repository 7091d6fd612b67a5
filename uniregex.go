// Package uniregex implements a Perl-flavored Unicode regular-expression
// engine over UTF-16 (`[]uint16`) text: a compiler from pattern text to an
// opcode program (package compiler), a backtracking matcher executing that
// program (package vm), and an optional optimizer pass (package optimize)
// that proves a minimum match length, a first-character set, and a literal
// Aho-Corasick prefilter so Search can skip positions that cannot match.
//
// Basic usage:
//
//	pat, err := uniregex.Compile(`\d+`, uniregex.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	caps := uniregex.NewCaptures()
//	text := utf16.Encode([]rune("age: 42"))
//	result, err := pat.Search(text, 0, len(text), caps)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result == uniregex.Matched {
//	    start, end, _ := caps.Group(0)
//	    fmt.Println(start, end) // 5 7
//	}
package uniregex

import (
	"github.com/farregex/uniregex/compiler"
	"github.com/farregex/uniregex/optimize"
	"github.com/farregex/uniregex/vm"
)

// Options controls compile-time behavior: case sensitivity, dot/anchor
// line semantics, extended whitespace, escape strictness, and whether the
// optimizer runs. Re-exported from compiler so callers never need to
// import that package directly.
type Options = compiler.Options

// DefaultOptions returns case-sensitive, non-extended options with the
// optimizer enabled.
func DefaultOptions() Options {
	return compiler.DefaultOptions()
}

// ParseDelimited parses a Perl-style delimited pattern of the form
// "/body/flags" into its body and decoded Options (spec §6, §9).
func ParseDelimited(text string) (body string, opts Options, err error) {
	body, opts, cerr := compiler.ParseDelimited(text)
	if cerr != nil {
		return "", Options{}, cerr
	}
	return body, opts, nil
}

// Result is the match-time outcome of Match/Search: a distinct type from
// error, per spec §7's explicit "not errors" carve-out for no-match,
// matched, and observer-canceled outcomes.
type Result uint8

const (
	// NoMatch reports that no match was found (not an error).
	NoMatch Result = iota
	// Matched reports a successful match; caps holds its captures.
	Matched
	// Canceled reports that the attempt's Observer returned vm.Cancel
	// mid-match; caps is left unmodified.
	Canceled
)

// String names the result for logging and test failure messages.
func (r Result) String() string {
	switch r {
	case NoMatch:
		return "no-match"
	case Matched:
		return "matched"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Pattern is a compiled, immutable regular expression: the opcode program
// (compiler.Pattern), the optimizer's proven metadata (min length, first
// set, literal prefilter), and the vm.Machine that executes it. A *Pattern
// is safe for concurrent Match/Search calls as long as each caller supplies
// its own *Captures (spec §6's concurrency model) — the one exception is
// SetObserver, which must not race with an in-flight match.
type Pattern struct {
	compiled *compiler.Pattern
	machine  *vm.Machine
	prefix   *optimize.LiteralPrefilter
	source   string
	obs      vm.Observer
}

// Compile compiles pattern under opts into a *Pattern ready for matching.
// Syntax is Perl-flavored: literals, character classes with the six
// built-in types, greedy/lazy quantifiers, alternation, positional and
// named capture groups, positional and named back-references, the four
// lookaround variants, `\Q…\E` quoting, and `\xHH` hex escapes.
func Compile(pattern string, opts Options) (*Pattern, error) {
	compiled, cerr := compiler.Compile(pattern, opts)
	if cerr != nil {
		return nil, cerr
	}
	if opts.Optimize {
		optimize.Run(compiled)
	}
	p := &Pattern{
		compiled: compiled,
		machine:  vm.New(compiled),
		source:   pattern,
	}
	if len(compiled.Literals) > 0 {
		if pf, ok := optimize.BuildLiteralPrefilter(compiled.Literals); ok {
			p.prefix = pf
		}
	}
	return p, nil
}

// MustCompile compiles pattern under opts and panics if it fails. Useful
// for patterns known to be valid at package init time.
func MustCompile(pattern string, opts Options) *Pattern {
	p, err := Compile(pattern, opts)
	if err != nil {
		panic("uniregex: Compile(" + pattern + "): " + err.Error())
	}
	return p
}

// String returns the source text the pattern was compiled from.
func (p *Pattern) String() string {
	return p.source
}

// NumSubexp returns the number of positional capture groups, not
// counting the implicit whole-match group 0. Named groups are not
// counted; SubexpNames lists them.
func (p *Pattern) NumSubexp() int {
	return p.compiled.CaptureCount
}

// SubexpNames returns the name of every named group in declaration order.
// Positional-only groups are not included; use Captures.Named to look up a
// named group's span after a match.
func (p *Pattern) SubexpNames() []string {
	out := make([]string, len(p.compiled.NamedGroups))
	copy(out, p.compiled.NamedGroups)
	return out
}

// SetObserver installs obs as the bracket-observer consulted at every
// capturing-group close and rollback (spec §6's "optional bracket
// observer", the only supported cancellation side channel). A nil obs
// clears it. Must not be called concurrently with an in-flight Match or
// Search on the same Pattern.
func (p *Pattern) SetObserver(obs vm.Observer) {
	p.obs = obs
}

// Match attempts an anchored match of the pattern starting exactly at
// start, considering only text[:end] (spec's "match" entry point). On
// Matched, caps holds the match's captures; otherwise caps is left
// unmodified.
func (p *Pattern) Match(text []uint16, start, end int, caps *Captures) (Result, error) {
	return p.MatchExtended(text, start, end, caps)
}

// MatchExtended is Match with a separate zero-width origin: dataOrigin is
// the full buffer anchors (`^`, `$`, `\A`, `\Z`) and lookbehind measure
// against, while textStart is where the anchored attempt itself begins and
// end bounds how much of dataOrigin is visible to it. Passing dataOrigin
// itself as both the buffer and the match text (Match's behavior) is the
// common case; MatchExtended exists for callers matching a sub-window of a
// larger buffer without shifting its anchor semantics.
func (p *Pattern) MatchExtended(dataOrigin []uint16, textStart, end int, caps *Captures) (Result, error) {
	if p.machine == nil {
		return NoMatch, &MatchError{Kind: ErrNotCompiled}
	}
	if end > len(dataOrigin) {
		end = len(dataOrigin)
	}
	window := dataOrigin[:end]
	if textStart > end {
		return NoMatch, nil
	}
	obs := &cancelTrackingObserver{inner: p.obs}
	if p.machine.MatchAt(window, textStart, caps.inner(), obs) {
		return Matched, nil
	}
	if obs.canceled {
		return Canceled, nil
	}
	return NoMatch, nil
}

// Search scans text[start:end] for the first position at which the
// pattern matches, considering only text[:end] as visible to anchors
// (spec's "search" entry point). It consults the optimizer's literal
// prefilter and first-character set, when available, to skip positions
// that provably cannot start a match.
func (p *Pattern) Search(text []uint16, start, end int, caps *Captures) (Result, error) {
	return p.SearchExtended(text, start, end, caps)
}

// SearchExtended is Search with a separate zero-width origin, analogous to
// MatchExtended.
func (p *Pattern) SearchExtended(dataOrigin []uint16, textStart, end int, caps *Captures) (Result, error) {
	if p.machine == nil {
		return NoMatch, &MatchError{Kind: ErrNotCompiled}
	}
	if end > len(dataOrigin) {
		end = len(dataOrigin)
	}
	if textStart > end {
		return NoMatch, nil
	}
	window := dataOrigin[:end]
	obs := &cancelTrackingObserver{inner: p.obs}

	minLen := p.compiled.MinLength
	if minLen < 0 {
		minLen = 0
	}
	bound := optimize.TailBound(p.compiled, window)

	for pos := textStart; pos <= len(window); pos++ {
		if pos > bound {
			break
		}
		if len(window)-pos < minLen {
			break
		}
		if p.prefix != nil {
			litStart, _, ok := p.prefix.Find(window, pos)
			if !ok {
				break
			}
			pos = litStart
		} else if p.compiled.FirstSet != nil {
			pos = optimize.ScanStride(p.compiled.FirstSet, window, pos)
			if pos >= len(window) {
				break
			}
		}
		if p.machine.MatchAt(window, pos, caps.inner(), obs) {
			return Matched, nil
		}
		if obs.canceled {
			return Canceled, nil
		}
	}
	return NoMatch, nil
}

// cancelTrackingObserver wraps a caller's Observer (which may be nil) so
// SearchExtended's scan loop can tell "this attempt failed to match" apart
// from "this attempt was canceled by the observer" without MatchAt's bool
// return collapsing the distinction.
type cancelTrackingObserver struct {
	inner    vm.Observer
	canceled bool
}

func (o *cancelTrackingObserver) Observe(ev vm.Event) vm.Signal {
	if o.inner == nil {
		return vm.Continue
	}
	sig := o.inner.Observe(ev)
	if sig == vm.Cancel {
		o.canceled = true
	}
	return sig
}
