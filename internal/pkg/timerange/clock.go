package timerange

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// ClockTime is a wall-clock time of day that may be absent.
// The zero value is NoPunch.
type ClockTime struct {
	seconds int
	valid   bool
}

// NoPunch marks a missing punch or an unset boundary.
var NoPunch = ClockTime{}

// Clock builds a present ClockTime. Midnight is a legitimate value here.
func Clock(hour, minute, second int) ClockTime {
	return ClockTime{seconds: hour*3600 + minute*60 + second, valid: true}
}

// ClockFromSeconds builds a ClockTime from seconds since midnight.
func ClockFromSeconds(s int) ClockTime {
	s %= secondsPerDay
	if s < 0 {
		s += secondsPerDay
	}
	return ClockTime{seconds: s, valid: true}
}

// ParseClock parses "HH:MM:SS" or "HH:MM". Empty input yields NoPunch.
func ParseClock(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoPunch, nil
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Clock(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return NoPunch, fmt.Errorf("invalid clock time %q: expected HH:MM:SS", s)
}

// ParsePunch parses a raw punch value. Biometric exports and legacy rows
// write "00:00:00" for a missing punch, so midnight is read as NoPunch.
func ParsePunch(s string) (ClockTime, error) {
	c, err := ParseClock(s)
	if err != nil {
		return NoPunch, err
	}
	if c.valid && c.seconds == 0 {
		return NoPunch, nil
	}
	return c, nil
}

// MustParseClock is ParseClock for literals.
func MustParseClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) Valid() bool { return c.valid }

// Seconds returns seconds since midnight; zero when absent.
func (c ClockTime) Seconds() int { return c.seconds }

func (c ClockTime) Before(o ClockTime) bool {
	return c.valid && o.valid && c.seconds < o.seconds
}

func (c ClockTime) String() string {
	if !c.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.seconds/3600, (c.seconds%3600)/60, c.seconds%60)
}

// Ptr returns nil for NoPunch, used by DTOs and nullable columns.
func (c ClockTime) Ptr() *string {
	if !c.valid {
		return nil
	}
	s := c.String()
	return &s
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	if !c.valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = NoPunch
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
