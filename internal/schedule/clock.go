package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// ClockTime is a schedule time of day measured from the start of the service
// day. Values of 24:00:00 and later describe service after midnight.
type ClockTime time.Duration

// ParseClock parses "H:MM:SS" or "HH:MM" schedule times. Hours may exceed 23.
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid schedule time %q", s)
	}
	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid schedule time %q", s)
		}
		fields[i] = n
	}
	if fields[1] > 59 || fields[2] > 59 {
		return 0, fmt.Errorf("invalid schedule time %q", s)
	}
	d := time.Duration(fields[0])*time.Hour + time.Duration(fields[1])*time.Minute + time.Duration(fields[2])*time.Second
	return ClockTime(d), nil
}

// Hour returns the raw hour component, which can be 24 or more.
func (c ClockTime) Hour() int {
	return int(time.Duration(c) / time.Hour)
}

// Minute returns the minute component.
func (c ClockTime) Minute() int {
	return int(time.Duration(c)%time.Hour) / int(time.Minute)
}

// Second returns the second component.
func (c ClockTime) Second() int {
	return int(time.Duration(c)%time.Minute) / int(time.Second)
}

// Normalize folds the time into a single day, so 25:30:00 becomes 01:30:00.
func (c ClockTime) Normalize() ClockTime {
	return ClockTime(time.Duration(c) % day)
}

// On returns the instant on the calendar day of ref (in ref's location) at
// which the normalized clock time occurs.
func (c ClockTime) On(ref time.Time) time.Time {
	n := c.Normalize()
	y, m, d := ref.Date()
	return time.Date(y, m, d, n.Hour(), n.Minute(), n.Second(), 0, ref.Location())
}

// Next returns the first occurrence of the normalized clock time strictly
// after now, rolling to the following day when today's occurrence has passed.
func (c ClockTime) Next(now time.Time) time.Time {
	t := c.On(now)
	if !t.After(now) {
		y, m, d := t.Date()
		n := c.Normalize()
		t = time.Date(y, m, d+1, n.Hour(), n.Minute(), n.Second(), 0, t.Location())
	}
	return t
}

// Add shifts the clock time, keeping it non-negative.
func (c ClockTime) Add(d time.Duration) ClockTime {
	r := time.Duration(c) + d
	for r < 0 {
		r += day
	}
	return ClockTime(r)
}

// HHMM formats the normalized time as "15:04".
func (c ClockTime) HHMM() string {
	n := c.Normalize()
	return fmt.Sprintf("%02d:%02d", n.Hour(), n.Minute())
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}
