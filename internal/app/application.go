package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"bdeb.transit/board/internal/alerts"
	"bdeb.transit/board/internal/appconf"
	"bdeb.transit/board/internal/arrivals"
	"bdeb.transit/board/internal/board"
	"bdeb.transit/board/internal/feed"
	"bdeb.transit/board/internal/gtfs"
	"bdeb.transit/board/internal/logging"
	"bdeb.transit/board/internal/metrics"
	"bdeb.transit/board/internal/weather"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config      appconf.Config
	Logger      *slog.Logger
	GtfsManager *gtfs.Manager
	Assembler   *board.Assembler
	Messages    *alerts.MessageStore
	Metrics     *metrics.Collector
	Clock       func() time.Time
}

// New loads the static schedules and wires every component from cfg.
func New(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	collector := metrics.NewCollector()

	manager, err := gtfs.InitGTFSManager(ctx, gtfs.Config{
		Sources:  cfg.StaticSources(),
		Logger:   logger,
		Observer: collector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GTFS manager: %w", err)
	}

	calendar, err := loadCalendar(cfg.Rail.NoServiceFile, logger)
	if err != nil {
		manager.Shutdown()
		return nil, err
	}

	fetcher := feed.NewFetcher(feed.Options{
		Client:     &http.Client{Timeout: cfg.FetchTimeout()},
		Logger:     logger,
		Observer:   collector,
		MaxRetries: cfg.Fetch.MaxRetries,
	})
	messages := alerts.NewMessageStore(cfg.MessagesFile, cfg.Location, logger)

	opts := board.Options{
		Fetcher:   fetcher,
		Feeds:     cfg.Feeds(),
		Schedules: manager,
		Engine:    arrivals.NewEngine(logger),
		Bus:       arrivals.NewBusStrategy(cfg.BusCombos(), cfg.Bus.AtStopMinutes),
		Rail:      arrivals.NewRailStrategy(cfg.RailStrategy(calendar)),
		Alerts:    cfg.AlertFilter(),
		Messages:  messages,
		Observer:  collector,
		Location:  cfg.Location,
		Logger:    logger,
	}
	if wc := weather.NewClient(cfg.WeatherClient(), nil, nil, logger); wc.Enabled() {
		opts.Weather = wc
	} else {
		logger.Warn("weather disabled, no API key configured", slog.String("env", appconf.EnvWeatherAPIKey))
	}

	app := &Application{
		Config:      cfg,
		Logger:      logger,
		GtfsManager: manager,
		Messages:    messages,
		Metrics:     collector,
		Clock:       time.Now,
	}
	opts.Clock = app.Now
	app.Assembler = board.NewAssembler(opts)
	return app, nil
}

// Now is the current time in the service time zone.
func (app *Application) Now() time.Time {
	clock := app.Clock
	if clock == nil {
		clock = time.Now
	}
	if app.Config.Location == nil {
		return clock()
	}
	return clock().In(app.Config.Location)
}

// Shutdown stops the background schedule refresh.
func (app *Application) Shutdown() {
	if app.GtfsManager != nil {
		app.GtfsManager.Shutdown()
	}
}

// loadCalendar reads the no-service days. A missing file means weekdays only.
func loadCalendar(path string, logger *slog.Logger) (*arrivals.ServiceCalendar, error) {
	logger = logging.Component(logger, "application")
	if path == "" {
		return arrivals.NewServiceCalendar(), nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("no-service day list not found, assuming weekday service", slog.String("path", path))
		return arrivals.NewServiceCalendar(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening no-service days: %w", err)
	}
	defer logging.SafeCloseWithLogging(f, logger, "no_service_days")

	cal, err := arrivals.LoadServiceCalendar(f, logger)
	if err != nil {
		return nil, fmt.Errorf("reading no-service days: %w", err)
	}
	return cal, nil
}
