// Package combinators is a small zero-copy parser combinator toolkit.
//
// A Parser consumes a prefix of its input and returns the parsed value together
// with the unconsumed remainder, which is always a suffix of the input. Parsers
// hold no state and are safe for concurrent use. Grammars are built by composing
// the primitive matchers in this file with the combinators in combinators.go.
package combinators

import "strings"

// Parser parses a prefix of input, returning the value and the remainder.
type Parser[T any] func(input string) (value T, rest string, err error)

const (
	alphaSet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	wsSet    = " \t\n"
)

var (
	// Alpha consumes a run of ASCII letters. It never fails.
	Alpha Parser[string] = InSet(alphaSet)

	// WS consumes a run of spaces, tabs and newlines. It never fails.
	WS Parser[string] = InSet(wsSet)

	// Rest consumes the whole input.
	Rest Parser[string] = func(input string) (string, string, error) {
		return input, "", nil
	}
)

// Tag matches lit byte-for-byte at the start of the input.
func Tag(lit string) Parser[string] {
	return func(input string) (string, string, error) {
		if !strings.HasPrefix(input, lit) {
			return "", input, detailed("missing tag %q", lit)
		}
		return input[:len(lit)], input[len(lit):], nil
	}
}

// InSet consumes the longest prefix made only of runes in set.
// It may consume nothing.
func InSet(set string) Parser[string] {
	return func(input string) (string, string, error) {
		for i, r := range input {
			if !strings.ContainsRune(set, r) {
				return input[:i], input[i:], nil
			}
		}
		return input, "", nil
	}
}

// NotInSet consumes the longest prefix made only of runes outside set.
// A rune of set must occur somewhere in the input, otherwise the parse fails
// with ErrUnexpectedEOF.
func NotInSet(set string) Parser[string] {
	return func(input string) (string, string, error) {
		for i, r := range input {
			if strings.ContainsRune(set, r) {
				return input[:i], input[i:], nil
			}
		}
		return "", input, ErrUnexpectedEOF
	}
}

// Delimited matches start, then everything up to the first following end.
// The value is the span strictly between the two markers; end is consumed.
func Delimited(start, end string) Parser[string] {
	if end == "" {
		panic("combinators: Delimited with empty end marker")
	}
	return func(input string) (string, string, error) {
		if !strings.HasPrefix(input, start) {
			return "", input, detailed("expected delimited value starting with %q", start)
		}
		inner := input[len(start):]
		i := scan(inner, end)
		if i < 0 {
			return "", input, ErrUnexpectedEOF
		}
		return inner[:i], inner[i+len(end):], nil
	}
}

// Until matches everything up to the first occurrence of marker and consumes
// the marker too.
func Until(marker string) Parser[string] {
	if marker == "" {
		panic("combinators: Until with empty marker")
	}
	return func(input string) (string, string, error) {
		i := scan(input, marker)
		if i < 0 {
			return "", input, ErrUnexpectedEOF
		}
		return input[:i], input[i+len(marker):], nil
	}
}

// scan returns the byte offset of the first occurrence of marker in input,
// or -1. The first marker byte is compared before probing the full match.
func scan(input, marker string) int {
	first := marker[0]
	for i := 0; i < len(input); i++ {
		if input[i] == first && strings.HasPrefix(input[i:], marker) {
			return i
		}
	}
	return -1
}
