package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamespfennell/gtfs"
	gtfsrt "github.com/jamespfennell/gtfs/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"bdeb.transit/board/internal/feed"
	"bdeb.transit/board/internal/schedule"
)

// The realtime decoder and the static zip parser share one set of protobuf
// registrations; a second copy of the bindings panics at init.
func TestRealtimeAndStaticDecodersShareBindings(t *testing.T) {
	zip, err := os.ReadFile(filepath.Join("..", "..", "testdata", "exo.zip"))
	require.NoError(t, err)
	static, err := gtfs.ParseStatic(zip, gtfs.ParseStaticOptions{})
	require.NoError(t, err)
	idx := schedule.FromStatic(static, schedule.StaticOptions{})

	b, err := proto.Marshal(&gtfsrt.FeedMessage{
		Header: &gtfsrt.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfsrt.FeedEntity{{
			Id: proto.String("1"),
			TripUpdate: &gtfsrt.TripUpdate{
				Trip: &gtfsrt.TripDescriptor{TripId: proto.String("E1"), RouteId: proto.String("4")},
				StopTimeUpdate: []*gtfsrt.TripUpdate_StopTimeUpdate{{
					StopId:  proto.String("MTL7D"),
					Arrival: &gtfsrt.TripUpdate_StopTimeEvent{Delay: proto.Int32(180)},
				}},
			},
		}},
	})
	require.NoError(t, err)

	snap, err := feed.DecodeProtobuf(b)
	require.NoError(t, err)
	updates := snap.TripUpdates()
	require.Len(t, updates, 1)

	assert.True(t, idx.ValidTrip(updates[0].TripID, updates[0].RouteID))
	assert.Equal(t, int32(180), updates[0].StopUpdates[0].ArrivalDelay())
}
