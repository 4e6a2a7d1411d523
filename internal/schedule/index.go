// Package schedule holds the static schedule index shared by every
// reconciliation cycle. An Index is built once and never mutated, so it can be
// read from many goroutines without locking.
package schedule

// Trip is the static metadata of one scheduled trip.
type Trip struct {
	ID                   string
	RouteID              string
	DirectionID          string
	ServiceID            string
	WheelchairAccessible bool
	BikesAllowed         bool
}

// StopTime is the scheduled passage of a trip at a stop.
type StopTime struct {
	TripID    string
	StopID    string
	Arrival   ClockTime
	Departure ClockTime
}

type tripStop struct {
	tripID string
	stopID string
}

// Index is the read-only lookup structure built from the static tables.
type Index struct {
	trips     map[string]Trip
	stopTimes map[tripStop]StopTime
	byStop    map[string][]StopTime
	routes    map[string]string
}

func newIndex() *Index {
	return &Index{
		trips:     make(map[string]Trip),
		stopTimes: make(map[tripStop]StopTime),
		byStop:    make(map[string][]StopTime),
		routes:    make(map[string]string),
	}
}

// Empty returns an index with no data.
func Empty() *Index {
	return newIndex()
}

func (idx *Index) addStopTime(st StopTime) {
	key := tripStop{st.TripID, st.StopID}
	if _, dup := idx.stopTimes[key]; dup {
		// Loop trips can visit a stop twice; the first visit is kept.
		return
	}
	idx.stopTimes[key] = st
	idx.byStop[st.StopID] = append(idx.byStop[st.StopID], st)
}

// Trip returns the metadata of a trip.
func (idx *Index) Trip(tripID string) (Trip, bool) {
	t, ok := idx.trips[tripID]
	return t, ok
}

// TripRoute returns the (display) route id of a trip.
func (idx *Index) TripRoute(tripID string) (string, bool) {
	t, ok := idx.trips[tripID]
	return t.RouteID, ok
}

// TripDirection returns the direction id of a trip.
func (idx *Index) TripDirection(tripID string) (string, bool) {
	t, ok := idx.trips[tripID]
	return t.DirectionID, ok
}

// TripAccessible reports whether the trip is wheelchair accessible. Unknown
// trips are not.
func (idx *Index) TripAccessible(tripID string) bool {
	return idx.trips[tripID].WheelchairAccessible
}

// ValidTrip reports whether the index records tripID as belonging to routeID.
func (idx *Index) ValidTrip(tripID, routeID string) bool {
	t, ok := idx.trips[tripID]
	return ok && t.RouteID == routeID
}

// ScheduledTime returns the scheduled arrival of a trip at a stop.
func (idx *Index) ScheduledTime(tripID, stopID string) (ClockTime, bool) {
	st, ok := idx.stopTimes[tripStop{tripID, stopID}]
	return st.Arrival, ok
}

// ScheduledDeparture returns the scheduled departure of a trip at a stop.
func (idx *Index) ScheduledDeparture(tripID, stopID string) (ClockTime, bool) {
	st, ok := idx.stopTimes[tripStop{tripID, stopID}]
	return st.Departure, ok
}

// StopTimesAt returns every scheduled passage at a stop in load order. The
// returned slice is shared and must not be modified.
func (idx *Index) StopTimesAt(stopID string) []StopTime {
	return idx.byStop[stopID]
}

// RouteDisplayName resolves an internal route id to its short name. Ids with
// no short name resolve to themselves.
func (idx *Index) RouteDisplayName(routeID string) string {
	if name, ok := idx.routes[routeID]; ok && name != "" {
		return name
	}
	return routeID
}

// Stats describes the size of the index.
type Stats struct {
	Trips     int `json:"trips"`
	StopTimes int `json:"stopTimes"`
	Stops     int `json:"stops"`
	Routes    int `json:"routes"`
}

// Stats returns the number of loaded rows per table.
func (idx *Index) Stats() Stats {
	return Stats{
		Trips:     len(idx.trips),
		StopTimes: len(idx.stopTimes),
		Stops:     len(idx.byStop),
		Routes:    len(idx.routes),
	}
}
