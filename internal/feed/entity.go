package feed

import "time"

// Entity is one decoded feed entity: a *TripUpdate, a *VehiclePosition or
// an *Alert. Consumers type-switch on it.
type Entity interface {
	EntityID() string
	isEntity()
}

// StopTimeEvent is a predicted arrival or departure. Both fields are optional.
type StopTimeEvent struct {
	Time  *int64 // POSIX seconds
	Delay *int32 // seconds, positive when late
}

// StopTimeUpdate is the prediction for one stop of a trip.
type StopTimeUpdate struct {
	StopID    string
	Arrival   *StopTimeEvent
	Departure *StopTimeEvent
}

// ArrivalTime returns the predicted arrival epoch when present and non-zero.
func (u StopTimeUpdate) ArrivalTime() (int64, bool) {
	if u.Arrival == nil || u.Arrival.Time == nil || *u.Arrival.Time == 0 {
		return 0, false
	}
	return *u.Arrival.Time, true
}

// ArrivalDelay returns the explicit arrival delay in seconds, zero when absent.
func (u StopTimeUpdate) ArrivalDelay() int32 {
	if u.Arrival == nil || u.Arrival.Delay == nil {
		return 0
	}
	return *u.Arrival.Delay
}

// TripUpdate carries per-stop predictions for one trip.
type TripUpdate struct {
	ID          string
	TripID      string
	RouteID     string
	DirectionID *uint32
	StopUpdates []StopTimeUpdate
}

func (t *TripUpdate) EntityID() string { return t.ID }
func (*TripUpdate) isEntity()          {}

// VehicleStatus mirrors the GTFS-Realtime VehicleStopStatus values.
type VehicleStatus int32

const (
	IncomingAt  VehicleStatus = 0
	StoppedAt   VehicleStatus = 1
	InTransitTo VehicleStatus = 2
)

func (s VehicleStatus) String() string {
	switch s {
	case IncomingAt:
		return "INCOMING_AT"
	case StoppedAt:
		return "STOPPED_AT"
	case InTransitTo:
		return "IN_TRANSIT_TO"
	default:
		return "UNKNOWN"
	}
}

// VehiclePosition is the last reported state of a vehicle. Everything but
// the trip identifiers is optional.
type VehiclePosition struct {
	ID        string
	VehicleID string
	TripID    string
	RouteID   string
	Lat       *float64
	Lon       *float64
	StopID    *string
	Status    *VehicleStatus
	Occupancy *int32
}

func (v *VehiclePosition) EntityID() string { return v.ID }
func (*VehiclePosition) isEntity()          {}

// Translation is one language variant of a text.
type Translation struct {
	Language string
	Text     string
}

// Translations is a multi-language text.
type Translations []Translation

// In returns the text for a language.
func (ts Translations) In(lang string) (string, bool) {
	for _, t := range ts {
		if t.Language == lang {
			return t.Text, true
		}
	}
	return "", false
}

// InformedEntity selects what an alert applies to. Empty strings are absent fields.
type InformedEntity struct {
	RouteID        string
	RouteShortName string
	DirectionID    string
	StopID         string
	StopCode       string
}

// Alert is a service alert from either the protobuf or the JSON feed.
type Alert struct {
	ID               string
	Header           Translations
	Description      Translations
	Effect           string
	InformedEntities []InformedEntity
}

func (a *Alert) EntityID() string { return a.ID }
func (*Alert) isEntity()          {}

// Snapshot is the ordered result of one fetch. It is discarded after one cycle.
type Snapshot struct {
	Timestamp time.Time
	Entities  []Entity
}

// Empty reports whether the snapshot holds no entity.
func (s Snapshot) Empty() bool {
	return len(s.Entities) == 0
}

// TripUpdates returns the trip update entities in feed order.
func (s Snapshot) TripUpdates() []*TripUpdate {
	var out []*TripUpdate
	for _, e := range s.Entities {
		if tu, ok := e.(*TripUpdate); ok {
			out = append(out, tu)
		}
	}
	return out
}

// Vehicles returns the vehicle position entities in feed order.
func (s Snapshot) Vehicles() []*VehiclePosition {
	var out []*VehiclePosition
	for _, e := range s.Entities {
		if v, ok := e.(*VehiclePosition); ok {
			out = append(out, v)
		}
	}
	return out
}

// Alerts returns the alert entities in feed order.
func (s Snapshot) Alerts() []*Alert {
	var out []*Alert
	for _, e := range s.Entities {
		if a, ok := e.(*Alert); ok {
			out = append(out, a)
		}
	}
	return out
}
