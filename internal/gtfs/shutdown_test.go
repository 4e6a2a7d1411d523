package gtfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerShutdown(t *testing.T) {
	manager, err := InitGTFSManager(context.Background(), Config{
		Sources: []Source{{Agency: "exo", Zip: fixturePath(t, "exo.zip")}},
	})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		manager.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown took too long")
	}
}

func TestManagerShutdownWithRefreshLoop(t *testing.T) {
	body, err := os.ReadFile(fixturePath(t, "exo.zip"))
	require.NoError(t, err)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	manager, err := InitGTFSManager(context.Background(), Config{
		Sources: []Source{{Agency: "exo", Zip: srv.URL, Refresh: 20 * time.Millisecond}},
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return hits.Load() >= 3 }, 5*time.Second, 10*time.Millisecond,
		"refresh loop should keep reloading the remote feed")

	done := make(chan struct{})
	go func() {
		manager.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown took too long")
	}
	assert.NotNil(t, manager.Index("exo"))
}

func TestManagerShutdownIdempotent(t *testing.T) {
	manager, err := InitGTFSManager(context.Background(), Config{
		Sources: []Source{{Agency: "stm", Dir: fixturePath(t, "stm")}},
	})
	require.NoError(t, err)

	manager.Shutdown()
	manager.Shutdown()
}
