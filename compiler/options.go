package compiler

// MaxBracketDepth is the hard nesting-depth limit on ( [ { enforced by
// both the sizer and the compiler (spec §4.3).
const MaxBracketDepth = 256

// Options controls compile-time behavior (spec §6). The zero value is
// valid and behaves like Perl's default (case-sensitive, multi-line dot
// off, ^$ anchor to data start/end only, whitespace significant).
type Options struct {
	// CaseInsensitive enables the 'i' flag: literal comparisons and
	// back-references fold case.
	CaseInsensitive bool

	// SingleLine enables the 's' flag: '.' also matches line terminators.
	SingleLine bool

	// Multiline enables the 'm' flag: ^ and $ also match at internal line
	// boundaries (CR/LF), not just data start/end.
	Multiline bool

	// Extended enables the 'x' flag: unescaped ASCII whitespace in the
	// pattern text is insignificant and dropped during compilation.
	Extended bool

	// StrictEscape rejects unknown \<letter> escapes with ErrInvalidEscape
	// instead of treating the letter as a literal.
	StrictEscape bool

	// Optimize enables the optimizer passes (first-set, min-length,
	// tail-trim) on the compiled pattern.
	Optimize bool

	// Quote is the quote/delimiter character in effect (default '/').
	Quote byte

	// Escape is the escape character in effect (default '\\').
	Escape byte
}

// DefaultOptions returns case-sensitive, non-extended options with the
// standard '/' quote and '\' escape characters and the optimizer enabled.
func DefaultOptions() Options {
	return Options{Quote: '/', Escape: '\\', Optimize: true}
}

// withDelimiters fills in Quote/Escape defaults if unset.
func (o Options) withDelimiters() Options {
	if o.Quote == 0 {
		o.Quote = '/'
	}
	if o.Escape == 0 {
		o.Escape = '\\'
	}
	return o
}

// ParseDelimited parses a Perl-style delimited pattern of the form
// "/body/flags" (or, in swapped-delimiter mode, "\body\flags" with '/'
// as the escape character). Flag letters are any of "ismxo" (spec §6):
// i=CaseInsensitive, s=SingleLine, m=Multiline, x=Extended, o=Optimize.
//
// Returns the pattern body (with the surrounding delimiters removed) and
// the Options decoded from the flag tail.
func ParseDelimited(text string) (body string, opts Options, err *CompileError) {
	if len(text) < 2 {
		return "", Options{}, newError(ErrSyntax, 0)
	}

	delim := text[0]
	var escape byte
	switch delim {
	case '/':
		escape = '\\'
	case '\\':
		escape = '/'
	default:
		return "", Options{}, newError(ErrSyntax, 0)
	}

	// Find the closing, unescaped delimiter.
	end := -1
	for i := 1; i < len(text); i++ {
		if text[i] == escape && i+1 < len(text) {
			i++
			continue
		}
		if text[i] == delim {
			end = i
			break
		}
	}
	if end == -1 {
		return "", Options{}, newError(ErrBrackets, len(text))
	}

	body = text[1:end]
	opts = Options{Quote: delim, Escape: escape}

	for i := end + 1; i < len(text); i++ {
		switch text[i] {
		case 'i':
			opts.CaseInsensitive = true
		case 's':
			opts.SingleLine = true
		case 'm':
			opts.Multiline = true
		case 'x':
			opts.Extended = true
		case 'o':
			opts.Optimize = true
		default:
			return "", Options{}, newError(ErrOptions, i)
		}
	}

	return body, opts, nil
}
