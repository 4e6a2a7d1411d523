package models

import "time"

// Custom message lifecycle states.
const (
	MessageStatusPending = "pending"
	MessageStatusActive  = "active"
)

// AlertRecord is a normalized alert shown on the board.
type AlertRecord struct {
	Header      string `json:"header"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Routes      string `json:"routes"`
	Stop        string `json:"stop"`

	// Only set on operator messages.
	ID            string `json:"id,omitempty"`
	Status        string `json:"status,omitempty"`
	ScheduledTime string `json:"scheduledTime,omitempty"`
}

// CustomMessage is an operator supplied message as stored in custom_messages.json.
type CustomMessage struct {
	ID            string `json:"id,omitempty"`
	Header        string `json:"header" validate:"required"`
	Description   string `json:"description"`
	Severity      string `json:"severity,omitempty"`
	Routes        string `json:"routes,omitempty"`
	Stop          string `json:"stop,omitempty"`
	Status        string `json:"status,omitempty" validate:"omitempty,oneof=pending active"`
	ScheduledTime string `json:"scheduledTime,omitempty"`
}

// Pending reports whether the message is still waiting for its scheduled
// time. A message without a parseable scheduledTime is never pending.
func (m CustomMessage) Pending(now time.Time) bool {
	if m.Status != MessageStatusPending || m.ScheduledTime == "" {
		return false
	}
	at, err := ParseScheduledTime(m.ScheduledTime, now.Location())
	if err != nil {
		return false
	}
	return at.After(now)
}

// AlertRecord converts the message to the board shape.
func (m CustomMessage) AlertRecord() AlertRecord {
	severity := m.Severity
	if severity == "" {
		severity = "custom"
	}
	return AlertRecord{
		Header:        m.Header,
		Description:   m.Description,
		Severity:      severity,
		Routes:        m.Routes,
		Stop:          m.Stop,
		ID:            m.ID,
		Status:        m.Status,
		ScheduledTime: m.ScheduledTime,
	}
}

var scheduledTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseScheduledTime parses an ISO 8601 timestamp. Values without an offset
// are read in loc.
func ParseScheduledTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	var err error
	for _, layout := range scheduledTimeLayouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
