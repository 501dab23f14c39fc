package parser

import (
	"errors"
	"fmt"
)

// Frontmatter and date failures. Each is a distinct case callers can match with errors.Is.
var (
	ErrInvalidDate           = errors.New("parser: invalid date")
	ErrMissingDivider        = errors.New("parser: frontmatter must start with ---")
	ErrMissingSecondDivider  = errors.New("parser: frontmatter is missing its closing ---")
	ErrInvalidLineFormat     = errors.New("parser: frontmatter line is not of the form key: value")
	ErrIncorrectLinePosition = errors.New("parser: frontmatter line out of position")
	ErrMissingTitle          = errors.New("parser: frontmatter is missing the title line")
	ErrMissingDescription    = errors.New("parser: frontmatter is missing the description line")
	ErrMissingTags           = errors.New("parser: frontmatter is missing the tags line")
	ErrBadTagsFormat         = errors.New("parser: tags must be written as [a, b, ...]")
)

// DateError reports a date literal that could not be parsed. It does not say
// which component was wrong.
type DateError struct {
	Input string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("parser: invalid date %q", e.Input)
}

// Is matches ErrInvalidDate.
func (e *DateError) Is(target error) bool {
	return target == ErrInvalidDate
}

// LinePositionError reports a frontmatter line whose key is not the one
// expected at that position.
type LinePositionError struct {
	Expected string
	Got      string
}

func (e *LinePositionError) Error() string {
	return fmt.Sprintf("parser: frontmatter line out of position: expected %q, got %q", e.Expected, e.Got)
}

// Is matches ErrIncorrectLinePosition.
func (e *LinePositionError) Is(target error) bool {
	return target == ErrIncorrectLinePosition
}
