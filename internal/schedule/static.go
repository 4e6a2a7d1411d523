package schedule

import (
	"time"

	"github.com/jamespfennell/gtfs"
)

// StaticOptions control how a parsed GTFS feed is folded into an Index.
type StaticOptions struct {
	// UseRouteShortName stores route_short_name as the trip's route id.
	UseRouteShortName bool
}

// FromStatic builds an Index from a feed parsed by gtfs.ParseStatic.
func FromStatic(static *gtfs.Static, opts StaticOptions) *Index {
	idx := newIndex()
	if static == nil {
		return idx
	}

	for i := range static.Routes {
		route := &static.Routes[i]
		idx.routes[route.Id] = route.ShortName
	}

	for i := range static.Trips {
		trip := &static.Trips[i]
		routeID := ""
		if trip.Route != nil {
			routeID = trip.Route.Id
			if opts.UseRouteShortName && trip.Route.ShortName != "" {
				routeID = trip.Route.ShortName
			}
		}
		serviceID := ""
		if trip.Service != nil {
			serviceID = trip.Service.Id
		}
		idx.trips[trip.ID] = Trip{
			ID:                   trip.ID,
			RouteID:              routeID,
			DirectionID:          directionID(trip.DirectionId),
			ServiceID:            serviceID,
			WheelchairAccessible: trip.WheelchairAccessible == gtfs.WheelchairBoarding_Possible,
			BikesAllowed:         trip.BikesAllowed == gtfs.BikesAllowed_Allowed,
		}

		for _, st := range trip.StopTimes {
			if st.Stop == nil {
				continue
			}
			idx.addStopTime(StopTime{
				TripID:    trip.ID,
				StopID:    st.Stop.Id,
				Arrival:   ClockTime(st.ArrivalTime.Truncate(time.Second)),
				Departure: ClockTime(st.DepartureTime.Truncate(time.Second)),
			})
		}
	}
	return idx
}

// directionID maps the parsed direction back to the GTFS column value.
func directionID(d gtfs.DirectionID) string {
	switch d {
	case gtfs.DirectionID_True:
		return "1"
	default:
		return "0"
	}
}
