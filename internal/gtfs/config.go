package gtfs

import (
	"log/slog"
	"net/http"
	"time"

	"bdeb.transit/board/internal/schedule"
)

// Source locates the static feed of one agency. Exactly one of Dir or Zip
// is set; Zip is a local path or an http(s) URL.
type Source struct {
	Agency string
	Dir    string
	Zip    string
	// UseRouteShortName replaces route ids with route_short_name. Directory
	// sources without routes.txt keep their ids either way.
	UseRouteShortName bool
	// Refresh reloads remote zips on this period. Zero disables it.
	Refresh time.Duration
}

func (s Source) isRemote() bool {
	return isURL(s.Zip)
}

// Observer receives the size of every index that is loaded.
type Observer interface {
	ObserveSchedule(agency string, stats schedule.Stats)
}

// Config configures a Manager.
type Config struct {
	Sources    []Source
	HTTPClient *http.Client
	Logger     *slog.Logger
	Observer   Observer
}
