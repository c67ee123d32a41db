package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the ISO-8601 calendar date layout used on the wire and in storage.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day or zone component.
// The zero value is January 1, year 1.
type Date struct {
	t time.Time
}

// NewDate returns the date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// MustParseDate is like ParseDate but panics on malformed input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return d.t
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// Ptr returns a pointer to a copy of d, for optional date fields.
func (d Date) Ptr() *Date {
	return &d
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML renders the date as a plain YYYY-MM-DD scalar.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML accepts a YYYY-MM-DD scalar, quoted or not.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("date must be a scalar, got YAML kind %d", value.Kind)
	}
	parsed, err := ParseDate(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType maps Date onto a DATE column.
func (Date) GormDataType() string {
	return "date"
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner. SQLite hands back DATE columns either as
// text or, when the driver recognises the declared type, as time.Time.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		// Some drivers return a full timestamp for DATE columns.
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
