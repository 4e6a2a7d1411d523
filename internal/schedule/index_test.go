package schedule

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamespfennell/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFixture(t *testing.T, parts ...string) *os.File {
	t.Helper()
	f, err := os.Open(filepath.Join(append([]string{"..", "..", "testdata"}, parts...)...))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func buildBusIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Build(Sources{
		Trips:     openFixture(t, "stm", "trips.txt"),
		StopTimes: openFixture(t, "stm", "stop_times.txt"),
		Routes:    openFixture(t, "stm", "routes.txt"),
	})
	require.NoError(t, err)
	return idx
}

func TestBuildResolvesDisplayRouteNames(t *testing.T) {
	idx := buildBusIndex(t)

	route, ok := idx.TripRoute("T1")
	require.True(t, ok)
	assert.Equal(t, "171", route)

	route, ok = idx.TripRoute("T3")
	require.True(t, ok)
	assert.Equal(t, "180", route)

	assert.True(t, idx.ValidTrip("T4", "164"))
	assert.False(t, idx.ValidTrip("T4", "3"), "internal ids are not exposed")
	assert.False(t, idx.ValidTrip("missing", "171"))
	assert.Equal(t, "171", idx.RouteDisplayName("1"))
	assert.Equal(t, "999", idx.RouteDisplayName("999"))
}

func TestBuildTripMetadata(t *testing.T) {
	idx := buildBusIndex(t)

	assert.True(t, idx.TripAccessible("T1"))
	assert.False(t, idx.TripAccessible("T2"))
	assert.False(t, idx.TripAccessible("unknown"))

	dir, ok := idx.TripDirection("T2")
	require.True(t, ok)
	assert.Equal(t, "1", dir)

	trip, ok := idx.Trip("T1")
	require.True(t, ok)
	assert.Equal(t, "SEM", trip.ServiceID)
}

func TestBuildStopTimes(t *testing.T) {
	idx := buildBusIndex(t)

	at, ok := idx.ScheduledTime("T1", "50270")
	require.True(t, ok)
	assert.Equal(t, "14:05:00", at.String())

	at, ok = idx.ScheduledTime("T2", "62374")
	require.True(t, ok)
	assert.Equal(t, 25, at.Hour())

	dep, ok := idx.ScheduledDeparture("T4", "50270")
	require.True(t, ok)
	assert.Equal(t, "23:50:00", dep.String(), "missing departure falls back to arrival")

	_, ok = idx.ScheduledTime("T4", "62374")
	assert.False(t, ok, "rows without any time are skipped")

	assert.Len(t, idx.StopTimesAt("50270"), 3)
	assert.Len(t, idx.StopTimesAt("62374"), 2)

	stats := idx.Stats()
	assert.Equal(t, 4, stats.Trips)
	assert.Equal(t, 5, stats.StopTimes)
	assert.Equal(t, 3, stats.Routes)
}

func TestBuildWithoutRoutesKeepsRawIDs(t *testing.T) {
	idx, err := Build(Sources{
		Trips:     openFixture(t, "exo", "trips.txt"),
		StopTimes: openFixture(t, "exo", "stop_times.txt"),
	})
	require.NoError(t, err)

	route, ok := idx.TripRoute("E1")
	require.True(t, ok)
	assert.Equal(t, "4", route)

	trip, _ := idx.Trip("E3")
	assert.True(t, trip.BikesAllowed)
	assert.Equal(t, "1", trip.DirectionID)

	dep, ok := idx.ScheduledDeparture("E1", "MTL7D")
	require.True(t, ok)
	assert.Equal(t, "07:12:00", dep.String())
}

func TestBuildErrors(t *testing.T) {
	t.Run("missing required column", func(t *testing.T) {
		_, err := Build(Sources{
			Trips:     strings.NewReader("trip_id,direction_id\nT1,0\n"),
			StopTimes: strings.NewReader("trip_id,stop_id,arrival_time\n"),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingColumn)
		assert.Contains(t, err.Error(), "route_id")
	})

	t.Run("stop_times without any time column", func(t *testing.T) {
		_, err := Build(Sources{
			Trips:     strings.NewReader("trip_id,route_id\nT1,171\n"),
			StopTimes: strings.NewReader("trip_id,stop_id\nT1,50270\n"),
		})
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := Build(Sources{
			Trips:     strings.NewReader(""),
			StopTimes: strings.NewReader("trip_id,stop_id,arrival_time\n"),
		})
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("nil sources", func(t *testing.T) {
		_, err := Build(Sources{})
		assert.Error(t, err)
	})
}

func TestBuildDefaultsOptionalColumns(t *testing.T) {
	idx, err := Build(Sources{
		Trips:     strings.NewReader("trip_id,route_id\nT9,171\n"),
		StopTimes: strings.NewReader("trip_id,stop_id,arrival_time\nT9,50270,10:00:00\nT9,50270,11:00:00\n"),
	})
	require.NoError(t, err)

	trip, ok := idx.Trip("T9")
	require.True(t, ok)
	assert.Equal(t, "0", trip.DirectionID)
	assert.False(t, trip.WheelchairAccessible)
	assert.False(t, trip.BikesAllowed)

	at, ok := idx.ScheduledTime("T9", "50270")
	require.True(t, ok)
	assert.Equal(t, "10:00:00", at.String(), "first visit of a stop wins")
}

func TestFromStatic(t *testing.T) {
	b, err := os.ReadFile(filepath.Join("..", "..", "testdata", "exo.zip"))
	require.NoError(t, err)
	static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	require.NoError(t, err)

	t.Run("raw route ids", func(t *testing.T) {
		idx := FromStatic(static, StaticOptions{})

		route, ok := idx.TripRoute("E2")
		require.True(t, ok)
		assert.Equal(t, "4", route)

		dir, _ := idx.TripDirection("E2")
		assert.Equal(t, "1", dir)
		dir, _ = idx.TripDirection("E1")
		assert.Equal(t, "0", dir)

		trip, _ := idx.Trip("E1")
		assert.True(t, trip.BikesAllowed)
		assert.Equal(t, "S", trip.ServiceID)

		dep, ok := idx.ScheduledDeparture("E4", "MTL59C")
		require.True(t, ok)
		assert.Equal(t, "10:02:00", dep.String())

		late, ok := idx.ScheduledTime("E5", "MTL7D")
		require.True(t, ok)
		assert.Equal(t, 24, late.Hour())
	})

	t.Run("short names", func(t *testing.T) {
		idx := FromStatic(static, StaticOptions{UseRouteShortName: true})
		assert.True(t, idx.ValidTrip("E3", "15"))
	})

	t.Run("nil feed", func(t *testing.T) {
		assert.Equal(t, Stats{}, FromStatic(nil, StaticOptions{}).Stats())
	})
}
