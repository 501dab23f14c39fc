package parser

import (
	"fmt"
	"strconv"

	"github.com/mcpar-land/quill/pkg/combinators"
)

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Date is a calendar date taken from a post's file name.
type Date struct {
	Year  uint16 `json:"year"`
	Month uint16 `json:"month"`
	Day   uint16 `json:"day"`
}

// <year>-<month>-<day>, split on the first and second '-'.
var dateLiteral = combinators.Pair(
	combinators.Until("-"),
	combinators.Pair(combinators.Until("-"), combinators.Rest),
)

// NewDate builds a Date without validation.
func NewDate(year, month, day uint16) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses "<year>-<month>-<day>". The month must be in [1, 12]; year
// and day are accepted as any unsigned 16-bit value.
func ParseDate(s string) (Date, error) {
	invalid := &DateError{Input: s}

	parts, err := combinators.Parse(dateLiteral, s)
	if err != nil {
		return Date{}, invalid
	}
	yearText, monthText, dayText := parts.First, parts.Second.First, parts.Second.Second

	month, err := strconv.ParseUint(monthText, 10, 16)
	if err != nil || month < 1 || month > 12 {
		return Date{}, invalid
	}
	year, err := strconv.ParseUint(yearText, 10, 16)
	if err != nil {
		return Date{}, invalid
	}
	day, err := strconv.ParseUint(dayText, 10, 16)
	if err != nil {
		return Date{}, invalid
	}

	return Date{Year: uint16(year), Month: uint16(month), Day: uint16(day)}, nil
}

// MonthName returns the English month name, or "" for a month outside 1..12.
func (d Date) MonthName() string {
	if d.Month < 1 || int(d.Month) > len(monthNames) {
		return ""
	}
	return monthNames[d.Month-1]
}

// Pretty renders "April 15, 2023".
func (d Date) Pretty() string {
	return fmt.Sprintf("%s %d, %d", d.MonthName(), d.Day, d.Year)
}

// PrettyNoDay renders "April 2023".
func (d Date) PrettyNoDay() string {
	return fmt.Sprintf("%s %d", d.MonthName(), d.Year)
}

// ISO8601 renders "2023-4-15". Components are not zero-padded.
func (d Date) ISO8601() string {
	return fmt.Sprintf("%d-%d-%d", d.Year, d.Month, d.Day)
}

// RFC2822 renders "15 Apr 2023 00:00:00 -0700".
func (d Date) RFC2822() string {
	short := d.MonthName()
	if len(short) > 3 {
		short = short[:3]
	}
	return fmt.Sprintf("%d %s %d 00:00:00 -0700", d.Day, short, d.Year)
}

// Compare orders dates by year, then month, then day.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpUint(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpUint(d.Month, other.Month)
	default:
		return cmpUint(d.Day, other.Day)
	}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// String implements fmt.Stringer using the ISO form.
func (d Date) String() string {
	return d.ISO8601()
}

func cmpUint(a, b uint16) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
