package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO 8601 calendar date layout used on the wire and in storage.
const DateLayout = "2006-01-02"

// BirthDate is a calendar date with no time-of-day component.
// The zero value is not a valid date; use ParseBirthDate or DateOf.
type BirthDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseBirthDate parses an ISO "YYYY-MM-DD" string.
// Invalid calendar dates (Feb 30, day 32) are rejected rather than normalised.
func ParseBirthDate(s string) (BirthDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return BirthDate{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD calendar date", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// NewBirthDate builds a BirthDate from its parts, rejecting impossible dates.
func NewBirthDate(year int, month time.Month, day int) (BirthDate, error) {
	d := BirthDate{Year: year, Month: month, Day: day}
	if !d.Valid() {
		return BirthDate{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, int(month), day)
	}
	return d, nil
}

// MustBirthDate is like ParseBirthDate but panics on error. Intended for tests
// and constants.
func MustBirthDate(s string) BirthDate {
	d, err := ParseBirthDate(s)
	if err != nil {
		// ALLOW-PANIC: Must-style constructor
		panic(err)
	}
	return d
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) BirthDate {
	y, m, d := t.Date()
	return BirthDate{Year: y, Month: m, Day: d}
}

// Today returns the current UTC calendar date.
func Today() BirthDate {
	return DateOf(time.Now().UTC())
}

// Valid reports whether d names a real Gregorian calendar date.
func (d BirthDate) Valid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	y, m, day := t.Date()
	return y == d.Year && m == d.Month && day == d.Day
}

// IsZero reports whether d is the zero value.
func (d BirthDate) IsZero() bool {
	return d == BirthDate{}
}

// Time returns midnight UTC of d.
func (d BirthDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to
// or after other.
func (d BirthDate) Compare(other BirthDate) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Before reports whether d is strictly earlier than other.
func (d BirthDate) Before(other BirthDate) bool {
	return d.Compare(other) < 0
}

// After reports whether d is strictly later than other.
func (d BirthDate) After(other BirthDate) bool {
	return d.Compare(other) > 0
}

// String formats d as YYYY-MM-DD.
func (d BirthDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes d as a "YYYY-MM-DD" string.
func (d BirthDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *BirthDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: expected a string", ErrInvalidDate)
	}
	parsed, err := ParseBirthDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer so a BirthDate can be bound to a DATE column.
func (d BirthDate) Value() (driver.Value, error) {
	return d.Time(), nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *BirthDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		parsed, err := ParseBirthDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("%w: cannot scan %T into BirthDate", ErrInvalidDate, src)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
