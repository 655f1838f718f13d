package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the wire format of every calendar date exchanged with the backend.
const DateLayout = "2006-01-02"

// Date is a calendar date anchored at UTC midnight.
// The zero value means "absent": it marshals to null and never takes part in arithmetic.
type Date struct {
	t time.Time
}

// NewDate builds a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the UTC calendar day of t.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// ParseDate parses a YYYY-MM-DD string as UTC midnight.
// Full RFC 3339 timestamps are accepted and reduced to their UTC calendar day.
// Blank or malformed input yields the zero Date and false.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
		return Date{t: t}, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), true
	}
	return Date{}, false
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, ok := ParseDate(s)
	if !ok {
		panic("domain: invalid date literal " + s)
	}
	return d
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Time returns the date as UTC midnight.
func (d Date) Time() time.Time { return d.t }

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// Equal reports whether both dates are the same calendar day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// String renders YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Ptr returns a pointer to the formatted date, or nil when absent.
// Used for request payloads where the backend rejects null dates.
func (d Date) Ptr() *string {
	if d.IsZero() {
		return nil
	}
	s := d.String()
	return &s
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
// null, "" and unparseable strings all decode to the zero Date without error.
func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*d = Date{}
		return nil
	}
	parsed, _ := ParseDate(s)
	*d = parsed
	return nil
}
