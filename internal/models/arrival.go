package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Sentinels shown in place of live data.
const (
	// NoTripID marks a record that was not built from a live trip.
	NoTripID = "N/A"
	// ArrivalUnavailable is shown when neither live nor scheduled data exists.
	ArrivalUnavailable = "Indisponible"
	// NoServiceArrival replaces the arrival time on days without rail service.
	NoServiceArrival = "N/A"
	// NoServiceText accompanies NoServiceArrival.
	NoServiceText = "Aucun service aujourd'hui"
)

// Record sources.
const (
	SourceRealtime = "realtime"
	SourceSchedule = "schedule"
)

// Arrival is either a whole number of minutes until the vehicle reaches the
// stop or a preformatted label (absolute clock time or a sentinel).
type Arrival struct {
	minutes int
	label   string
	numeric bool
}

// MinutesArrival builds a numeric arrival. Negative values are kept as is.
func MinutesArrival(minutes int) Arrival {
	return Arrival{minutes: minutes, numeric: true}
}

// LabelArrival builds a non-numeric arrival.
func LabelArrival(label string) Arrival {
	return Arrival{label: label}
}

// Minutes reports the numeric value and whether there is one.
func (a Arrival) Minutes() (int, bool) {
	return a.minutes, a.numeric
}

// IsNumeric reports whether the arrival carries a minute count.
func (a Arrival) IsNumeric() bool {
	return a.numeric
}

func (a Arrival) String() string {
	if a.numeric {
		return strconv.Itoa(a.minutes)
	}
	return a.label
}

// SoonerThan implements the closest-wins comparator: only two numeric
// arrivals compare, and only a strictly smaller value wins.
func (a Arrival) SoonerThan(other Arrival) bool {
	return a.numeric && other.numeric && a.minutes < other.minutes
}

// MarshalJSON encodes a numeric arrival as a JSON number and a label as a string.
func (a Arrival) MarshalJSON() ([]byte, error) {
	if a.numeric {
		return json.Marshal(a.minutes)
	}
	return json.Marshal(a.label)
}

// UnmarshalJSON accepts either a number or a string.
func (a *Arrival) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*a = MinutesArrival(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("arrival must be a number or a string: %w", err)
	}
	*a = LabelArrival(s)
	return nil
}

// ArrivalRecord is one row of the departure board.
type ArrivalRecord struct {
	RouteID              string   `json:"route_id"`
	TripID               string   `json:"trip_id"`
	StopID               string   `json:"stop_id"`
	Direction            string   `json:"direction"`
	Location             string   `json:"location"`
	ArrivalTime          Arrival  `json:"arrival_time"`
	MinutesRemaining     *int     `json:"minutes_remaining,omitempty"`
	OriginalArrivalTime  string   `json:"original_arrival_time,omitempty"`
	Occupancy            string   `json:"occupancy"`
	AtStop               bool     `json:"at_stop"`
	DelayedText          *string  `json:"delayed_text"`
	EarlyText            *string  `json:"early_text"`
	WheelchairAccessible bool     `json:"wheelchair_accessible"`
	BikesAllowed         *bool    `json:"bikes_allowed,omitempty"`
	Lat                  *float64 `json:"lat,omitempty"`
	Lon                  *float64 `json:"lon,omitempty"`
	Badge                string   `json:"badge,omitempty"`
	Canceled             bool     `json:"canceled,omitempty"`
	NoServiceText        string   `json:"no_service_text,omitempty"`
	Source               string   `json:"source"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
