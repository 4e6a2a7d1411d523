// Package board runs one fetch, reconcile and assemble cycle and keeps the
// last board for the debug page.
package board

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bdeb.transit/board/internal/alerts"
	"bdeb.transit/board/internal/arrivals"
	"bdeb.transit/board/internal/feed"
	"bdeb.transit/board/internal/logging"
	"bdeb.transit/board/internal/models"
	"bdeb.transit/board/internal/schedule"
)

// Agency identifiers used for schedule lookups and metric labels.
const (
	AgencyBus  = "stm"
	AgencyRail = "exo"
)

// Feeds lists the upstream sources. A source without URL is skipped.
type Feeds struct {
	BusTripUpdates  feed.Source
	BusVehicles     feed.Source
	BusAlerts       feed.Source
	RailTripUpdates feed.Source
	RailVehicles    feed.Source
	RailAlerts      feed.Source
}

// Fetcher downloads one snapshot.
type Fetcher interface {
	Fetch(ctx context.Context, src feed.Source) (feed.Snapshot, error)
}

// Schedules resolves the static index of an agency.
type Schedules interface {
	Index(agency string) *schedule.Index
}

// WeatherSource provides current conditions and the weather alert count.
type WeatherSource interface {
	Current(ctx context.Context) (models.Weather, error)
	AlertCount(ctx context.Context) (int, error)
}

// MessageSource provides the operator messages to show at a given time.
type MessageSource interface {
	Active(now time.Time) []models.CustomMessage
}

// Observer records assembled boards.
type Observer interface {
	ObserveBoard(b models.Board, elapsed time.Duration)
}

// Options wires an Assembler. Weather, Messages and Observer are optional.
type Options struct {
	Fetcher   Fetcher
	Feeds     Feeds
	Schedules Schedules
	Engine    *arrivals.Engine
	Bus       arrivals.Strategy
	Rail      arrivals.Strategy
	Alerts    *alerts.Filter
	Weather   WeatherSource
	Messages  MessageSource
	Observer  Observer
	Clock     func() time.Time
	Location  *time.Location
	Logger    *slog.Logger
}

// Assembler produces boards. It holds no state between cycles apart from the
// last board, kept for inspection.
type Assembler struct {
	opts   Options
	logger *slog.Logger

	mu   sync.RWMutex
	last *models.Board
}

// NewAssembler returns an Assembler.
func NewAssembler(opts Options) *Assembler {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Engine == nil {
		opts.Engine = arrivals.NewEngine(opts.Logger)
	}
	return &Assembler{opts: opts, logger: logging.Component(opts.Logger, "board_assembler")}
}

type fetched struct {
	snap feed.Snapshot
	err  error
}

// Assemble runs one cycle. Upstream failures never fail the cycle: a failed
// rail trip-update fetch empties the rail list, every other failure degrades
// to an empty snapshot.
func (a *Assembler) Assemble(ctx context.Context) models.Board {
	start := time.Now()
	now := a.opts.Clock().In(a.opts.Location)

	var (
		busUpdates, busVehicles, busAlerts    fetched
		railUpdates, railVehicles, railAlerts fetched
		weather                               models.Weather
		weatherAlerts                         int
	)

	g, gctx := errgroup.WithContext(ctx)
	a.fetch(gctx, g, a.opts.Feeds.BusTripUpdates, &busUpdates)
	a.fetch(gctx, g, a.opts.Feeds.BusVehicles, &busVehicles)
	a.fetch(gctx, g, a.opts.Feeds.BusAlerts, &busAlerts)
	a.fetch(gctx, g, a.opts.Feeds.RailTripUpdates, &railUpdates)
	a.fetch(gctx, g, a.opts.Feeds.RailVehicles, &railVehicles)
	a.fetch(gctx, g, a.opts.Feeds.RailAlerts, &railAlerts)
	if a.opts.Weather != nil {
		g.Go(func() error {
			var err error
			if weather, err = a.opts.Weather.Current(gctx); err != nil {
				logging.LogError(a.logger, "Error loading weather conditions", err)
			}
			if weatherAlerts, err = a.opts.Weather.AlertCount(gctx); err != nil {
				logging.LogError(a.logger, "Error loading weather alerts", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	b := models.NewBoard(now)
	b.Weather = weather

	if a.opts.Bus != nil {
		b.Buses = a.opts.Engine.Run(a.opts.Bus, arrivals.Cycle{
			Index:    a.index(AgencyBus),
			Updates:  busUpdates.snap,
			Vehicles: busVehicles.snap,
			Now:      now,
		})
	}
	if a.opts.Rail != nil && railUpdates.err == nil {
		b.NextTrains = a.opts.Engine.Run(a.opts.Rail, arrivals.Cycle{
			Index:    a.index(AgencyRail),
			Updates:  railUpdates.snap,
			Vehicles: railVehicles.snap,
			Now:      now,
		})
	}

	if a.opts.Alerts != nil {
		var messages []models.CustomMessage
		if a.opts.Messages != nil {
			messages = a.opts.Messages.Active(now)
		}
		res := a.opts.Alerts.Apply(alerts.Inputs{
			Bus:           busAlerts.snap.Alerts(),
			Rail:          railAlerts.snap.Alerts(),
			WeatherAlerts: weatherAlerts,
			Messages:      messages,
		}, now)
		b.Alerts = res.All
		alerts.ApplyBadges(b.Buses, res.Bus)
	}

	elapsed := time.Since(start)
	if a.opts.Observer != nil {
		a.opts.Observer.ObserveBoard(b, elapsed)
	}
	logging.LogOperation(a.logger, "board_assembled",
		slog.Int("buses", len(b.Buses)),
		slog.Int("trains", len(b.NextTrains)),
		slog.Int("alerts", len(b.Alerts)),
		slog.Duration("duration", elapsed))

	a.mu.Lock()
	a.last = &b
	a.mu.Unlock()
	return b
}

// Last returns the most recent board.
func (a *Assembler) Last() (models.Board, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.last == nil {
		return models.Board{}, false
	}
	return *a.last, true
}

func (a *Assembler) fetch(ctx context.Context, g *errgroup.Group, src feed.Source, out *fetched) {
	if !src.Enabled() || a.opts.Fetcher == nil {
		return
	}
	g.Go(func() error {
		snap, err := a.opts.Fetcher.Fetch(ctx, src)
		if err != nil {
			logging.LogFeedError(a.logger, src.Agency, src.Kind, src.RedactedURL(), err)
			snap = feed.Snapshot{}
		}
		*out = fetched{snap: snap, err: err}
		return nil
	})
}

func (a *Assembler) index(agency string) *schedule.Index {
	if a.opts.Schedules == nil {
		return nil
	}
	return a.opts.Schedules.Index(agency)
}
