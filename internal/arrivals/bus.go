package arrivals

import (
	"fmt"
	"time"

	"bdeb.transit/board/internal/feed"
	"bdeb.transit/board/internal/models"
	"bdeb.transit/board/internal/occupancy"
)

// FallbackClockLayout formats scheduled-only bus arrivals.
const FallbackClockLayout = "03:04 PM"

// Combo is a tracked (route, stop) pair. Direction is implied by the stop.
type Combo struct {
	Route     string
	Stop      string
	Direction string
	Location  string
}

func (c Combo) key() Key {
	return Key(c.Route + "|" + c.Stop)
}

// BusStrategy matches live predictions per stop and derives the delay by
// comparing the prediction with the scheduled time.
type BusStrategy struct {
	combos        []Combo
	byKey         map[Key]Combo
	routes        map[string]bool
	atStopMinutes int
	occupancy     occupancy.Normalizer
}

// NewBusStrategy returns a strategy tracking combos in order. A combo
// repeated with the same route and stop is kept once. atStopMinutes <= 0
// selects DefaultAtStopMinutes.
func NewBusStrategy(combos []Combo, atStopMinutes int) *BusStrategy {
	if atStopMinutes <= 0 {
		atStopMinutes = DefaultAtStopMinutes
	}
	s := &BusStrategy{
		byKey:         make(map[Key]Combo, len(combos)),
		routes:        make(map[string]bool),
		atStopMinutes: atStopMinutes,
		occupancy:     occupancy.NewNormalizer(occupancy.STM),
	}
	for _, c := range combos {
		if _, dup := s.byKey[c.key()]; dup {
			continue
		}
		s.combos = append(s.combos, c)
		s.byKey[c.key()] = c
		s.routes[c.Route] = true
	}
	return s
}

func (s *BusStrategy) Mode() string { return "bus" }

func (s *BusStrategy) Slots() []Key {
	keys := make([]Key, len(s.combos))
	for i, c := range s.combos {
		keys[i] = c.key()
	}
	return keys
}

// Combos returns the tracked combinations in display order.
func (s *BusStrategy) Combos() []Combo {
	return append([]Combo(nil), s.combos...)
}

func (s *BusStrategy) Candidates(c Cycle) []Candidate {
	vehicles := c.Vehicles.Vehicles()
	nowUnix := c.Now.Unix()

	var out []Candidate
	for _, tu := range c.Updates.TripUpdates() {
		if !s.routes[tu.RouteID] || !c.Index.ValidTrip(tu.TripID, tu.RouteID) {
			continue
		}
		vehicle := vehicleFor(vehicles, tu.TripID, tu.RouteID)

		for _, su := range tu.StopUpdates {
			combo, tracked := s.byKey[Combo{Route: tu.RouteID, Stop: su.StopID}.key()]
			if !tracked {
				continue
			}
			predicted, ok := su.ArrivalTime()
			if !ok {
				continue
			}

			minutes := floorMinutes(nowUnix, predicted)
			rec := models.ArrivalRecord{
				RouteID:              combo.Route,
				TripID:               tu.TripID,
				StopID:               combo.Stop,
				Direction:            combo.Direction,
				Location:             combo.Location,
				ArrivalTime:          models.MinutesArrival(minutes),
				Occupancy:            string(occupancy.Unknown),
				AtStop:               minutes < s.atStopMinutes,
				WheelchairAccessible: c.Index.TripAccessible(tu.TripID),
				Source:               models.SourceRealtime,
			}

			if scheduled, ok := c.Index.ScheduledTime(tu.TripID, combo.Stop); ok {
				due := scheduled.On(c.Now)
				at := time.Unix(predicted, 0)
				switch {
				case at.After(due):
					rec.DelayedText = models.StringPtr(fmt.Sprintf("En retard (prévu à %s)", scheduled.HHMM()))
				case at.Before(due):
					rec.EarlyText = models.StringPtr(fmt.Sprintf("En avance (prévu à %s)", scheduled.HHMM()))
				}
			}

			if vehicle != nil {
				rec.Occupancy = string(s.occupancy.Normalize(vehicle.Occupancy))
				rec.Lat, rec.Lon = vehicle.Lat, vehicle.Lon
				if vehicle.Status != nil && *vehicle.Status == feed.StoppedAt &&
					vehicle.StopID != nil && *vehicle.StopID == combo.Stop {
					rec.AtStop = true
				}
			}

			out = append(out, Candidate{Key: combo.key(), Rank: rec.ArrivalTime, Record: rec})
		}
	}
	return out
}

// Fallback reports the next scheduled passage of the combo's route at its
// stop, or the unavailable sentinel.
func (s *BusStrategy) Fallback(c Cycle, key Key) (models.ArrivalRecord, bool) {
	combo, ok := s.byKey[key]
	if !ok {
		return models.ArrivalRecord{}, false
	}

	rec := models.ArrivalRecord{
		RouteID:     combo.Route,
		TripID:      models.NoTripID,
		StopID:      combo.Stop,
		Direction:   combo.Direction,
		Location:    combo.Location,
		ArrivalTime: models.LabelArrival(models.ArrivalUnavailable),
		Occupancy:   string(occupancy.Unknown),
		Source:      models.SourceSchedule,
	}

	var next time.Time
	for _, st := range c.Index.StopTimesAt(combo.Stop) {
		if route, _ := c.Index.TripRoute(st.TripID); route != combo.Route {
			continue
		}
		if at := st.Arrival.Next(c.Now); next.IsZero() || at.Before(next) {
			next = at
		}
	}
	if !next.IsZero() {
		rec.ArrivalTime = models.LabelArrival(next.Format(FallbackClockLayout))
	}
	return rec, true
}

func (s *BusStrategy) Finish(_ Cycle, records []models.ArrivalRecord) []models.ArrivalRecord {
	return records
}
