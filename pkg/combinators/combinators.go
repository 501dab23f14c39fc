package combinators

// Option is the value produced by Opt.
type Option[T any] struct {
	Value T
	Ok    bool
}

// Tuple is the value produced by Pair.
type Tuple[A, B any] struct {
	First  A
	Second B
}

// Opt never fails. When p fails the result is absent and the input is
// returned untouched.
func Opt[T any](p Parser[T]) Parser[Option[T]] {
	return func(input string) (Option[T], string, error) {
		v, rest, err := p(input)
		if err != nil {
			return Option[T]{}, input, nil
		}
		return Option[T]{Value: v, Ok: true}, rest, nil
	}
}

// Many0 applies p until the input is exhausted or p fails, collecting values.
// A successful application that does not shrink the remainder aborts the
// whole parse with a no-progress error.
func Many0[T any](p Parser[T]) Parser[[]T] {
	return func(input string) ([]T, string, error) {
		var out []T
		rest := input
		for len(rest) > 0 {
			v, next, err := p(rest)
			if err != nil {
				break
			}
			if len(next) >= len(rest) {
				return nil, input, detailed("many0 made no progress")
			}
			out = append(out, v)
			rest = next
		}
		return out, rest, nil
	}
}

// Many1 is Many0 that requires at least one match.
func Many1[T any](p Parser[T]) Parser[[]T] {
	many := Many0(p)
	return func(input string) ([]T, string, error) {
		out, rest, err := many(input)
		if err != nil {
			return nil, input, err
		}
		if len(out) == 0 {
			return nil, input, detailed("expected at least one item")
		}
		return out, rest, nil
	}
}

// MinTimes applies p exactly n times. Unlike Many0 it does not check for
// progress; p must consume input on every call. A negative n always fails.
func MinTimes[T any](n int, p Parser[T]) Parser[[]T] {
	return func(input string) ([]T, string, error) {
		if n < 0 {
			return nil, input, detailed("negative repeat count %d", n)
		}
		out := make([]T, 0, n)
		rest := input
		for i := 0; i < n; i++ {
			v, next, err := p(rest)
			if err != nil {
				return nil, input, err
			}
			out = append(out, v)
			rest = next
		}
		return out, rest, nil
	}
}

// Pair runs a then b on the remainder of a.
func Pair[A, B any](a Parser[A], b Parser[B]) Parser[Tuple[A, B]] {
	return func(input string) (Tuple[A, B], string, error) {
		va, rest, err := a(input)
		if err != nil {
			return Tuple[A, B]{}, input, err
		}
		vb, rest, err := b(rest)
		if err != nil {
			return Tuple[A, B]{}, input, err
		}
		return Tuple[A, B]{First: va, Second: vb}, rest, nil
	}
}

// Between runs open, content and closing in order and keeps only the content.
func Between[O, T, C any](open Parser[O], content Parser[T], closing Parser[C]) Parser[T] {
	return func(input string) (T, string, error) {
		var zero T
		_, rest, err := open(input)
		if err != nil {
			return zero, input, err
		}
		v, rest, err := content(rest)
		if err != nil {
			return zero, input, err
		}
		_, rest, err = closing(rest)
		if err != nil {
			return zero, input, err
		}
		return v, rest, nil
	}
}

// Map transforms the value of p. The remainder is unchanged.
func Map[T, U any](p Parser[T], fn func(T) U) Parser[U] {
	return func(input string) (U, string, error) {
		v, rest, err := p(input)
		if err != nil {
			var zero U
			return zero, input, err
		}
		return fn(v), rest, nil
	}
}

// Alt returns the result of the first alternative that succeeds. Every
// alternative sees the original input.
func Alt[T any](ps ...Parser[T]) Parser[T] {
	return func(input string) (T, string, error) {
		var zero T
		err := error(detailed("no alternatives"))
		for _, p := range ps {
			var (
				v    T
				rest string
			)
			v, rest, err = p(input)
			if err == nil {
				return v, rest, nil
			}
		}
		return zero, input, err
	}
}

// Parse runs p on input and discards the remainder.
func Parse[T any](p Parser[T], input string) (T, error) {
	v, _, err := p(input)
	return v, err
}
