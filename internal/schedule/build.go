package schedule

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from a table header.
var ErrMissingColumn = errors.New("missing required column")

// Sources are the static tables an Index is built from. Routes is optional;
// when present, internal route ids are replaced by route_short_name at load
// time so consumers only ever see display names.
type Sources struct {
	Trips     io.Reader
	StopTimes io.Reader
	Routes    io.Reader
}

// Build reads each table once and returns the finished Index.
func Build(src Sources) (*Index, error) {
	if src.Trips == nil || src.StopTimes == nil {
		return nil, errors.New("trips and stop_times tables are required")
	}
	idx := newIndex()

	if src.Routes != nil {
		if err := readRoutes(src.Routes, idx); err != nil {
			return nil, fmt.Errorf("routes.txt: %w", err)
		}
	}
	if err := readTrips(src.Trips, idx); err != nil {
		return nil, fmt.Errorf("trips.txt: %w", err)
	}
	if err := readStopTimes(src.StopTimes, idx); err != nil {
		return nil, fmt.Errorf("stop_times.txt: %w", err)
	}
	return idx, nil
}

// table wraps a csv.Reader with header based column lookup.
type table struct {
	r    *csv.Reader
	cols map[string]int
}

func openTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty table: %w", ErrMissingColumn)
		}
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return &table{r: cr, cols: cols}, nil
}

func (t *table) has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// next advances to the following row, returning false at end of input.
func (t *table) next() ([]string, bool, error) {
	rec, err := t.r.Read()
	if errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (t *table) get(rec []string, name, def string) string {
	i, ok := t.cols[name]
	if !ok || i >= len(rec) {
		return def
	}
	v := strings.TrimSpace(rec[i])
	if v == "" {
		return def
	}
	return v
}

func readRoutes(r io.Reader, idx *Index) error {
	t, err := openTable(r, "route_id", "route_short_name")
	if err != nil {
		return err
	}
	for {
		rec, ok, err := t.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		id := t.get(rec, "route_id", "")
		if id == "" {
			continue
		}
		idx.routes[id] = t.get(rec, "route_short_name", "")
	}
}

func readTrips(r io.Reader, idx *Index) error {
	t, err := openTable(r, "trip_id", "route_id")
	if err != nil {
		return err
	}
	for {
		rec, ok, err := t.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		id := t.get(rec, "trip_id", "")
		if id == "" {
			continue
		}
		idx.trips[id] = Trip{
			ID:                   id,
			RouteID:              idx.RouteDisplayName(t.get(rec, "route_id", "")),
			DirectionID:          t.get(rec, "direction_id", "0"),
			ServiceID:            t.get(rec, "service_id", ""),
			WheelchairAccessible: t.get(rec, "wheelchair_accessible", "0") == "1",
			BikesAllowed:         t.get(rec, "bikes_allowed", "0") == "1",
		}
	}
}

func readStopTimes(r io.Reader, idx *Index) error {
	t, err := openTable(r, "trip_id", "stop_id")
	if err != nil {
		return err
	}
	if !t.has("arrival_time") && !t.has("departure_time") {
		return fmt.Errorf("%w: arrival_time or departure_time", ErrMissingColumn)
	}
	for {
		rec, ok, err := t.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		st, ok := parseStopTime(t, rec)
		if !ok {
			continue
		}
		idx.addStopTime(st)
	}
}

// parseStopTime reads one row. A missing arrival takes the departure and vice
// versa; rows with neither are skipped.
func parseStopTime(t *table, rec []string) (StopTime, bool) {
	tripID := t.get(rec, "trip_id", "")
	stopID := t.get(rec, "stop_id", "")
	if tripID == "" || stopID == "" {
		return StopTime{}, false
	}
	arr, arrErr := ParseClock(t.get(rec, "arrival_time", ""))
	dep, depErr := ParseClock(t.get(rec, "departure_time", ""))
	switch {
	case arrErr != nil && depErr != nil:
		return StopTime{}, false
	case arrErr != nil:
		arr = dep
	case depErr != nil:
		dep = arr
	}
	return StopTime{TripID: tripID, StopID: stopID, Arrival: arr, Departure: dep}, true
}
