// Package nnduration provides JSON-compatible non-negative duration types.
package nnduration

import (
	"encoding"
	"strconv"
	"strings"
	"time"
)

type nnd interface {
	encoding.TextUnmarshaler
	Duration() time.Duration
}

func parse(input string, unit time.Duration) (uint64, error) {
	if d, e := time.ParseDuration(input); e == nil && d >= 0 {
		return uint64(d / unit), nil
	}
	return strconv.ParseUint(input, 10, 64)
}

func parseText(input string, unit time.Duration) (uint64, error) {
	return parse(strings.Trim(input, `"`), unit)
}

// Microseconds is a duration in microseconds unit.
// In JSON or text, it can be either a non-negative integer in this unit,
// or a duration string recognized by time.ParseDuration.
type Microseconds uint64

var _ nnd = (*Microseconds)(nil)

// UnmarshalText implements encoding.TextUnmarshaler interface.
func (d *Microseconds) UnmarshalText(p []byte) error {
	v, e := parseText(string(p), time.Microsecond)
	*d = Microseconds(v)
	return e
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (d *Microseconds) UnmarshalJSON(p []byte) error {
	return d.UnmarshalText(p)
}

// MarshalJSON implements json.Marshaler interface.
// It encodes this value as an integer.
func (d Microseconds) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(d), 10)), nil
}

// Duration converts this to time.Duration.
func (d Microseconds) Duration() time.Duration {
	return time.Duration(d) * time.Microsecond
}

func (d Microseconds) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// Milliseconds is a duration in milliseconds unit.
// In JSON or text, it can be either a non-negative integer in this unit,
// or a duration string recognized by time.ParseDuration.
type Milliseconds uint64

var _ nnd = (*Milliseconds)(nil)

// UnmarshalText implements encoding.TextUnmarshaler interface.
func (d *Milliseconds) UnmarshalText(p []byte) error {
	v, e := parseText(string(p), time.Millisecond)
	*d = Milliseconds(v)
	return e
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (d *Milliseconds) UnmarshalJSON(p []byte) error {
	return d.UnmarshalText(p)
}

// MarshalJSON implements json.Marshaler interface.
// It encodes this value as an integer.
func (d Milliseconds) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(d), 10)), nil
}

// Duration converts this to time.Duration.
func (d Milliseconds) Duration() time.Duration {
	return time.Duration(d) * time.Millisecond
}

func (d Milliseconds) String() string {
	return strconv.FormatUint(uint64(d), 10)
}
