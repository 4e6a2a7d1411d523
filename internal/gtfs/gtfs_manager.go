// Package gtfs loads the static schedule of every agency and keeps one
// immutable index per agency, swapping it atomically when a remote feed is
// refreshed.
package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bdeb.transit/board/internal/logging"
	"bdeb.transit/board/internal/schedule"
)

type loaded struct {
	index       *schedule.Index
	lastUpdated time.Time
}

// Manager owns the schedule indexes.
type Manager struct {
	sources  map[string]Source
	client   *http.Client
	logger   *slog.Logger
	observer Observer

	mu      sync.RWMutex
	indexes map[string]loaded

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// InitGTFSManager loads every source in parallel and starts the refresh
// loops of remote sources. Any load failure fails the whole start.
func InitGTFSManager(ctx context.Context, config Config) (*Manager, error) {
	manager := &Manager{
		sources:      make(map[string]Source, len(config.Sources)),
		client:       config.HTTPClient,
		logger:       logging.Component(config.Logger, "gtfs_manager"),
		observer:     config.Observer,
		indexes:      make(map[string]loaded, len(config.Sources)),
		shutdownChan: make(chan struct{}),
	}
	if manager.client == nil {
		manager.client = &http.Client{Timeout: 2 * time.Minute}
	}
	for _, src := range config.Sources {
		if _, dup := manager.sources[src.Agency]; dup {
			return nil, fmt.Errorf("duplicate static source for agency %s", src.Agency)
		}
		manager.sources[src.Agency] = src
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range config.Sources {
		g.Go(func() error {
			return manager.Reload(gctx, src.Agency)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, src := range config.Sources {
		if src.isRemote() && src.Refresh > 0 {
			manager.wg.Add(1)
			go manager.refreshPeriodically(src)
		}
	}
	return manager, nil
}

// Reload rebuilds the index of agency from its source. The previous index
// stays in place when loading fails.
func (manager *Manager) Reload(ctx context.Context, agency string) error {
	src, ok := manager.sources[agency]
	if !ok {
		return fmt.Errorf("unknown agency %q", agency)
	}

	start := time.Now()
	idx, err := manager.loadIndex(ctx, src)
	if err != nil {
		return fmt.Errorf("loading %s schedule: %w", agency, err)
	}

	manager.mu.Lock()
	manager.indexes[agency] = loaded{index: idx, lastUpdated: time.Now()}
	manager.mu.Unlock()

	stats := idx.Stats()
	if manager.observer != nil {
		manager.observer.ObserveSchedule(agency, stats)
	}
	logging.LogOperation(manager.logger, "schedule_loaded",
		slog.String("agency", agency),
		slog.Int("trips", stats.Trips),
		slog.Int("stop_times", stats.StopTimes),
		slog.Int("stops", stats.Stops),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Index returns the current index of agency, or nil when none is loaded.
func (manager *Manager) Index(agency string) *schedule.Index {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.indexes[agency].index
}

// AgencyStatus summarizes one loaded index.
type AgencyStatus struct {
	Agency      string         `json:"agency"`
	Source      string         `json:"source"`
	LastUpdated time.Time      `json:"lastUpdated"`
	Stats       schedule.Stats `json:"stats"`
}

// Statistics lists the loaded indexes ordered by agency.
func (manager *Manager) Statistics() []AgencyStatus {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	out := make([]AgencyStatus, 0, len(manager.indexes))
	for agency, l := range manager.indexes {
		src := manager.sources[agency]
		location := src.Dir
		if location == "" {
			location = src.Zip
		}
		out = append(out, AgencyStatus{
			Agency:      agency,
			Source:      location,
			LastUpdated: l.lastUpdated,
			Stats:       l.index.Stats(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Agency < out[j].Agency })
	return out
}

// Shutdown stops the refresh loops. Safe to call more than once.
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
	})
}
