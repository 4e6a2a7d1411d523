// Package arrivals merges live feed snapshots with the static schedule into
// one "next arrival" record per tracked slot.
//
// The merge is a single fold shared by every agency. What differs between
// agencies (how live entities map to slots, where delays come from, what a
// slot shows when nothing live matched) lives in a Strategy.
package arrivals

import (
	"log/slog"
	"time"

	"bdeb.transit/board/internal/feed"
	"bdeb.transit/board/internal/logging"
	"bdeb.transit/board/internal/models"
	"bdeb.transit/board/internal/schedule"
)

// DefaultAtStopMinutes is the minute count below which a vehicle is shown as
// arriving.
const DefaultAtStopMinutes = 2

// Cycle is the input of one reconciliation pass.
type Cycle struct {
	Index    *schedule.Index
	Updates  feed.Snapshot
	Vehicles feed.Snapshot
	Now      time.Time
}

// Key identifies a result slot.
type Key string

// Candidate is one possible record for a slot. Rank orders candidates; it is
// usually the record's own arrival.
type Candidate struct {
	Key    Key
	Rank   models.Arrival
	Record models.ArrivalRecord
}

// Strategy adapts the fold to one agency's feed shape.
type Strategy interface {
	// Mode labels the records ("bus", "rail").
	Mode() string
	// Slots returns the output keys in display order.
	Slots() []Key
	// Candidates produces every live or scheduled candidate of the cycle.
	Candidates(c Cycle) []Candidate
	// Fallback builds the record of a slot no candidate filled. Returning
	// false omits the slot.
	Fallback(c Cycle, key Key) (models.ArrivalRecord, bool)
	// Finish adjusts the ordered records once the fold is complete.
	Finish(c Cycle, records []models.ArrivalRecord) []models.ArrivalRecord
}

// Engine runs strategies.
type Engine struct {
	logger *slog.Logger
}

// NewEngine returns an Engine logging through logger.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logging.Component(logger, "arrivals_engine")}
}

// Run reconciles one cycle. It never fails: missing data degrades to
// fallback records. The result is never nil.
func (e *Engine) Run(s Strategy, c Cycle) []models.ArrivalRecord {
	if c.Index == nil {
		c.Index = schedule.Empty()
	}

	best := make(map[Key]Candidate)
	for _, cand := range s.Candidates(c) {
		cur, filled := best[cand.Key]
		if !filled || beats(cand.Rank, cur.Rank) {
			best[cand.Key] = cand
		}
	}

	records := make([]models.ArrivalRecord, 0, len(s.Slots()))
	live := 0
	for _, key := range s.Slots() {
		if cand, ok := best[key]; ok {
			records = append(records, cand.Record)
			live++
			continue
		}
		if rec, ok := s.Fallback(c, key); ok {
			records = append(records, rec)
		}
	}

	e.logger.Debug("reconciled arrivals",
		slog.String("mode", s.Mode()),
		slog.Int("records", len(records)),
		slog.Int("matched", live))

	return s.Finish(c, records)
}

// beats is the closest-wins comparator. A numeric arrival replaces a label,
// a smaller numeric arrival replaces a larger one, and ties keep the first.
func beats(cand, cur models.Arrival) bool {
	if !cand.IsNumeric() {
		return false
	}
	if !cur.IsNumeric() {
		return true
	}
	return cand.SoonerThan(cur)
}

// floorMinutes is floor((to - from) / 60s) on epoch seconds.
func floorMinutes(from, to int64) int {
	d := to - from
	if d >= 0 {
		return int(d / 60)
	}
	return -int((-d + 59) / 60)
}

func vehicleFor(vehicles []*feed.VehiclePosition, tripID, routeID string) *feed.VehiclePosition {
	for _, v := range vehicles {
		if v.TripID != tripID {
			continue
		}
		if routeID == "" || v.RouteID == "" || v.RouteID == routeID {
			return v
		}
	}
	return nil
}
