package gtfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bdeb.transit/board/internal/schedule"
)

func fixturePath(t *testing.T, parts ...string) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join(append([]string{"..", "..", "testdata"}, parts...)...))
	require.NoError(t, err)
	return p
}

type scheduleRecorder struct {
	mu    sync.Mutex
	trips map[string]int
}

func (r *scheduleRecorder) ObserveSchedule(agency string, stats schedule.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.trips == nil {
		r.trips = map[string]int{}
	}
	r.trips[agency] = stats.Trips
}

func TestManagerLoadsDirectoriesAndZips(t *testing.T) {
	rec := &scheduleRecorder{}
	manager, err := InitGTFSManager(context.Background(), Config{
		Sources: []Source{
			{Agency: "stm", Dir: fixturePath(t, "stm"), UseRouteShortName: true},
			{Agency: "exo", Zip: fixturePath(t, "exo.zip")},
		},
		Observer: rec,
	})
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)

	bus := manager.Index("stm")
	require.NotNil(t, bus)
	assert.True(t, bus.ValidTrip("T1", "171"), "routes.txt short names replace route ids")

	rail := manager.Index("exo")
	require.NotNil(t, rail)
	dep, ok := rail.ScheduledDeparture("E1", "MTL7D")
	require.True(t, ok)
	assert.Equal(t, "07:12:00", dep.String())

	assert.Nil(t, manager.Index("unknown"))
	assert.Equal(t, map[string]int{"stm": 4, "exo": 5}, rec.trips)

	stats := manager.Statistics()
	require.Len(t, stats, 2)
	assert.Equal(t, "exo", stats[0].Agency)
	assert.Equal(t, 5, stats[0].Stats.Trips)
	assert.False(t, stats[1].LastUpdated.IsZero())
}

func TestManagerDownloadsRemoteZip(t *testing.T) {
	body, err := os.ReadFile(fixturePath(t, "exo.zip"))
	require.NoError(t, err)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	manager, err := InitGTFSManager(context.Background(), Config{
		Sources: []Source{{Agency: "exo", Zip: srv.URL + "/gtfs.zip", UseRouteShortName: true}},
	})
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)

	assert.True(t, manager.Index("exo").ValidTrip("E3", "15"))
	assert.EqualValues(t, 1, hits.Load())

	require.NoError(t, manager.Reload(context.Background(), "exo"))
	assert.EqualValues(t, 2, hits.Load())
}

func TestManagerReloadFailureKeepsPreviousIndex(t *testing.T) {
	body, err := os.ReadFile(fixturePath(t, "exo.zip"))
	require.NoError(t, err)

	var broken atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if broken.Load() {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	manager, err := InitGTFSManager(context.Background(), Config{
		Sources: []Source{{Agency: "exo", Zip: srv.URL}},
	})
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)
	before := manager.Index("exo")

	broken.Store(true)
	assert.Error(t, manager.Reload(context.Background(), "exo"))
	assert.Same(t, before, manager.Index("exo"))
}

func TestManagerInitErrors(t *testing.T) {
	tests := []struct {
		name    string
		sources []Source
	}{
		{"missing directory", []Source{{Agency: "stm", Dir: filepath.Join(t.TempDir(), "nope")}}},
		{"missing zip", []Source{{Agency: "exo", Zip: filepath.Join(t.TempDir(), "nope.zip")}}},
		{"no location", []Source{{Agency: "exo"}}},
		{"duplicate agency", []Source{
			{Agency: "stm", Dir: fixturePath(t, "stm")},
			{Agency: "stm", Dir: fixturePath(t, "stm")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitGTFSManager(context.Background(), Config{Sources: tt.sources})
			assert.Error(t, err)
		})
	}
}

func TestManagerDirectoryWithoutRoutes(t *testing.T) {
	manager, err := InitGTFSManager(context.Background(), Config{
		Sources: []Source{{Agency: "exo", Dir: fixturePath(t, "exo")}},
	})
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)

	assert.True(t, manager.Index("exo").ValidTrip("E1", "4"))
}

func TestManagerDirectoryKeepsRouteIDs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"trips.txt", "stop_times.txt"} {
		b, err := os.ReadFile(fixturePath(t, "exo", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
	}
	routes := "route_id,route_short_name\n4,exo2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routes.txt"), []byte(routes), 0o644))

	manager, err := InitGTFSManager(context.Background(), Config{
		Sources: []Source{
			{Agency: "exo", Dir: dir},
			{Agency: "exo-short", Dir: dir, UseRouteShortName: true},
		},
	})
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)

	route, ok := manager.Index("exo").TripRoute("E1")
	require.True(t, ok)
	assert.Equal(t, "4", route)

	route, ok = manager.Index("exo-short").TripRoute("E1")
	require.True(t, ok)
	assert.Equal(t, "exo2", route)
}

func TestManagerReloadUnknownAgency(t *testing.T) {
	manager, err := InitGTFSManager(context.Background(), Config{})
	require.NoError(t, err)
	assert.Error(t, manager.Reload(context.Background(), "stm"))
}

func TestConcurrentIndexAccessDuringReload(t *testing.T) {
	manager, err := InitGTFSManager(context.Background(), Config{
		Sources: []Source{{Agency: "stm", Dir: fixturePath(t, "stm")}},
	})
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				idx := manager.Index("stm")
				assert.NotNil(t, idx)
				_, _ = idx.ScheduledTime("T1", "50270")
			}
		}()
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, manager.Reload(context.Background(), "stm"))
	}
	wg.Wait()
}
