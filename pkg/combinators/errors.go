package combinators

import "fmt"

// Kind classifies a parse failure.
type Kind int

// Failure kinds. The set is closed.
const (
	// KindUnexpectedEOF reports a scan that ran off the end of the input
	// without finding the marker it required.
	KindUnexpectedEOF Kind = iota + 1
	// KindDetailed reports any other failure with a descriptive message.
	KindDetailed
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedEOF:
		return "unexpected end of input"
	case KindDetailed:
		return "detailed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error returned by every matcher and combinator in this package.
type Error struct {
	Kind    Kind
	Message string
}

var (
	// ErrUnexpectedEOF matches any error of kind KindUnexpectedEOF.
	ErrUnexpectedEOF = &Error{Kind: KindUnexpectedEOF}
	// ErrDetailed matches any error of kind KindDetailed.
	ErrDetailed = &Error{Kind: KindDetailed}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return "combinators: " + e.Kind.String()
	}
	return "combinators: " + e.Message
}

// Is reports whether target is one of the kind sentinels and e has the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" {
		return false
	}
	return t.Kind == e.Kind
}

func detailed(format string, args ...any) *Error {
	return &Error{Kind: KindDetailed, Message: fmt.Sprintf(format, args...)}
}
