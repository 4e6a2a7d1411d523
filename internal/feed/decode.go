package feed

import (
	"fmt"
	"time"

	gtfsrt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"
)

// Upstream feeds routinely omit proto2 required fields, so partial messages
// are accepted and unknown extensions dropped.
var unmarshalOptions = proto.UnmarshalOptions{AllowPartial: true, DiscardUnknown: true}

// DecodeProtobuf decodes a GTFS-Realtime FeedMessage into a Snapshot.
// Deleted entities and entities carrying none of the three payloads are skipped.
func DecodeProtobuf(b []byte) (Snapshot, error) {
	msg := &gtfsrt.FeedMessage{}
	if err := unmarshalOptions.Unmarshal(b, msg); err != nil {
		return Snapshot{}, fmt.Errorf("decoding gtfs-realtime feed: %w", err)
	}

	snap := Snapshot{Entities: make([]Entity, 0, len(msg.GetEntity()))}
	if ts := msg.GetHeader().GetTimestamp(); ts > 0 {
		snap.Timestamp = time.Unix(int64(ts), 0)
	}

	for _, e := range msg.GetEntity() {
		if e.GetIsDeleted() {
			continue
		}
		id := e.GetId()
		if tu := e.GetTripUpdate(); tu != nil {
			snap.Entities = append(snap.Entities, convertTripUpdate(id, tu))
		}
		if v := e.GetVehicle(); v != nil {
			snap.Entities = append(snap.Entities, convertVehicle(id, v))
		}
		if a := e.GetAlert(); a != nil {
			snap.Entities = append(snap.Entities, convertAlert(id, a))
		}
	}
	return snap, nil
}

func convertTripUpdate(id string, tu *gtfsrt.TripUpdate) *TripUpdate {
	trip := tu.GetTrip()
	out := &TripUpdate{
		ID:      id,
		TripID:  trip.GetTripId(),
		RouteID: trip.GetRouteId(),
	}
	if trip != nil && trip.DirectionId != nil {
		d := trip.GetDirectionId()
		out.DirectionID = &d
	}

	out.StopUpdates = make([]StopTimeUpdate, 0, len(tu.GetStopTimeUpdate()))
	for _, stu := range tu.GetStopTimeUpdate() {
		out.StopUpdates = append(out.StopUpdates, StopTimeUpdate{
			StopID:    stu.GetStopId(),
			Arrival:   convertEvent(stu.GetArrival()),
			Departure: convertEvent(stu.GetDeparture()),
		})
	}
	return out
}

func convertEvent(ev *gtfsrt.TripUpdate_StopTimeEvent) *StopTimeEvent {
	if ev == nil {
		return nil
	}
	out := &StopTimeEvent{}
	if ev.Time != nil {
		t := ev.GetTime()
		out.Time = &t
	}
	if ev.Delay != nil {
		d := ev.GetDelay()
		out.Delay = &d
	}
	return out
}

func convertVehicle(id string, v *gtfsrt.VehiclePosition) *VehiclePosition {
	out := &VehiclePosition{
		ID:        id,
		VehicleID: v.GetVehicle().GetId(),
		TripID:    v.GetTrip().GetTripId(),
		RouteID:   v.GetTrip().GetRouteId(),
	}
	if pos := v.GetPosition(); pos != nil {
		lat := float64(pos.GetLatitude())
		lon := float64(pos.GetLongitude())
		out.Lat, out.Lon = &lat, &lon
	}
	if v.StopId != nil {
		stop := v.GetStopId()
		out.StopID = &stop
	}
	if v.CurrentStatus != nil {
		status := VehicleStatus(v.GetCurrentStatus())
		out.Status = &status
	}
	if v.OccupancyStatus != nil {
		occ := int32(v.GetOccupancyStatus())
		out.Occupancy = &occ
	}
	return out
}

func convertAlert(id string, a *gtfsrt.Alert) *Alert {
	out := &Alert{
		ID:          id,
		Header:      convertTranslations(a.GetHeaderText()),
		Description: convertTranslations(a.GetDescriptionText()),
	}
	if a.Effect != nil {
		out.Effect = a.GetEffect().String()
	}
	for _, ie := range a.GetInformedEntity() {
		sel := InformedEntity{
			RouteID: ie.GetRouteId(),
			StopID:  ie.GetStopId(),
		}
		if ie.DirectionId != nil {
			sel.DirectionID = fmt.Sprint(ie.GetDirectionId())
		}
		if sel.RouteID == "" {
			sel.RouteID = ie.GetTrip().GetRouteId()
		}
		out.InformedEntities = append(out.InformedEntities, sel)
	}
	return out
}

func convertTranslations(ts *gtfsrt.TranslatedString) Translations {
	if ts == nil {
		return nil
	}
	out := make(Translations, 0, len(ts.GetTranslation()))
	for _, t := range ts.GetTranslation() {
		out = append(out, Translation{Language: t.GetLanguage(), Text: t.GetText()})
	}
	return out
}
