package arrivals

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
	"time"

	"bdeb.transit/board/internal/logging"
)

// DateLayout is the format of no-service day entries.
const DateLayout = "2006-01-02"

// ServiceCalendar tells whether rail service runs on a date: never on
// weekends, never on listed holidays.
type ServiceCalendar struct {
	closed map[string]bool
}

// NewServiceCalendar returns a calendar with the given closed dates
// (YYYY-MM-DD). Invalid dates are ignored.
func NewServiceCalendar(days ...string) *ServiceCalendar {
	cal := &ServiceCalendar{closed: make(map[string]bool, len(days))}
	for _, d := range days {
		if t, err := time.Parse(DateLayout, strings.TrimSpace(d)); err == nil {
			cal.closed[t.Format(DateLayout)] = true
		}
	}
	return cal
}

// LoadServiceCalendar reads one date per line. Blank lines and lines starting
// with '#' are ignored; unparseable lines are logged and skipped.
func LoadServiceCalendar(r io.Reader, logger *slog.Logger) (*ServiceCalendar, error) {
	logger = logging.Component(logger, "service_calendar")
	cal := NewServiceCalendar()

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		t, err := time.Parse(DateLayout, text)
		if err != nil {
			logger.Warn("skipping invalid no-service day",
				slog.Int("line", line),
				slog.String("value", text))
			continue
		}
		cal.closed[t.Format(DateLayout)] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cal, nil
}

// HasService reports whether trains run on the calendar date of t, in t's location.
func (c *ServiceCalendar) HasService(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if c == nil {
		return true
	}
	return !c.closed[t.Format(DateLayout)]
}

// Len returns the number of listed closed dates.
func (c *ServiceCalendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.closed)
}
