package arrivals

import (
	"fmt"
	"time"

	"bdeb.transit/board/internal/models"
	"bdeb.transit/board/internal/occupancy"
	"bdeb.transit/board/internal/schedule"
)

// RailConfig describes the tracked rail stops.
type RailConfig struct {
	// Stops in display order.
	Stops []string
	// Directions maps route id, then direction id, to a direction name. Trips
	// outside this table are ignored.
	Directions map[string]map[string]string
	// RouteLabels maps route ids to the number shown to riders.
	RouteLabels map[string]string
	// StopNames maps stop ids to station names.
	StopNames map[string]string
	// Calendar decides whether trains run today. Nil means weekdays only.
	Calendar *ServiceCalendar
	// AtStopMinutes <= 0 selects DefaultAtStopMinutes.
	AtStopMinutes int
}

// RailStrategy walks the static departures at each tracked stop and shifts
// them by the explicit per-stop delay of the trip update.
type RailStrategy struct {
	cfg       RailConfig
	occupancy occupancy.Normalizer
}

// NewRailStrategy returns a rail strategy for cfg.
func NewRailStrategy(cfg RailConfig) *RailStrategy {
	if cfg.AtStopMinutes <= 0 {
		cfg.AtStopMinutes = DefaultAtStopMinutes
	}
	return &RailStrategy{cfg: cfg, occupancy: occupancy.NewNormalizer(occupancy.Exo)}
}

func (s *RailStrategy) Mode() string { return "rail" }

func (s *RailStrategy) Slots() []Key {
	keys := make([]Key, len(s.cfg.Stops))
	for i, stop := range s.cfg.Stops {
		keys[i] = Key(stop)
	}
	return keys
}

type tripStopKey struct {
	trip, stop string
}

// delays reads arrival.delay per (trip, stop), in whole minutes truncated
// toward zero. A stop update without an arrival counts as on time.
func delays(c Cycle) map[tripStopKey]int {
	out := make(map[tripStopKey]int)
	for _, tu := range c.Updates.TripUpdates() {
		for _, su := range tu.StopUpdates {
			out[tripStopKey{tu.TripID, su.StopID}] = int(su.ArrivalDelay()) / 60
		}
	}
	return out
}

func (s *RailStrategy) Candidates(c Cycle) []Candidate {
	live := delays(c)
	vehicles := c.Vehicles.Vehicles()

	var out []Candidate
	for _, stop := range s.cfg.Stops {
		for _, st := range c.Index.StopTimesAt(stop) {
			trip, ok := c.Index.Trip(st.TripID)
			if !ok {
				continue
			}
			direction, ok := s.cfg.Directions[trip.RouteID][trip.DirectionID]
			if !ok {
				continue
			}

			delay, realtime := live[tripStopKey{trip.ID, stop}]
			adjusted := st.Departure.Add(time.Duration(delay) * time.Minute)
			minutes := minutesUntil(adjusted, c.Now)

			rec := models.ArrivalRecord{
				RouteID:              s.routeLabel(trip.RouteID),
				TripID:               trip.ID,
				StopID:               stop,
				Direction:            direction,
				Location:             s.cfg.StopNames[stop],
				ArrivalTime:          models.LabelArrival(adjusted.HHMM()),
				MinutesRemaining:     &minutes,
				OriginalArrivalTime:  st.Departure.HHMM(),
				Occupancy:            string(occupancy.Unknown),
				AtStop:               minutes < s.cfg.AtStopMinutes,
				WheelchairAccessible: trip.WheelchairAccessible,
				BikesAllowed:         boolPtr(trip.BikesAllowed),
				Source:               models.SourceSchedule,
			}
			if realtime {
				rec.Source = models.SourceRealtime
			}
			switch {
			case delay > 0:
				rec.DelayedText = models.StringPtr(fmt.Sprintf("En retard (+%dmin)", delay))
			case delay < 0:
				rec.EarlyText = models.StringPtr(fmt.Sprintf("En avance (%dmin)", -delay))
			}
			if v := vehicleFor(vehicles, trip.ID, ""); v != nil {
				rec.Occupancy = string(s.occupancy.Normalize(v.Occupancy))
			}

			out = append(out, Candidate{Key: Key(stop), Rank: models.MinutesArrival(minutes), Record: rec})
		}
	}
	return out
}

// Fallback omits the stop: every rail candidate already comes from the
// static schedule, so an unfilled stop has no data at all.
func (s *RailStrategy) Fallback(Cycle, Key) (models.ArrivalRecord, bool) {
	return models.ArrivalRecord{}, false
}

// Finish blanks every record on days without service.
func (s *RailStrategy) Finish(c Cycle, records []models.ArrivalRecord) []models.ArrivalRecord {
	if s.cfg.Calendar.HasService(c.Now) {
		return records
	}
	for i := range records {
		records[i].ArrivalTime = models.LabelArrival(models.NoServiceArrival)
		records[i].NoServiceText = models.NoServiceText
		records[i].DelayedText = nil
		records[i].EarlyText = nil
		records[i].AtStop = false
	}
	return records
}

func (s *RailStrategy) routeLabel(routeID string) string {
	if label, ok := s.cfg.RouteLabels[routeID]; ok {
		return label
	}
	return routeID
}

// minutesUntil projects a clock time onto today, or tomorrow once it has
// passed, and returns the whole minutes left.
func minutesUntil(at schedule.ClockTime, now time.Time) int {
	t := at.On(now)
	if t.Before(now) {
		t = t.AddDate(0, 0, 1)
	}
	return int(t.Sub(now) / time.Minute)
}

func boolPtr(b bool) *bool {
	return &b
}
