package appconf

import (
	"time"

	"bdeb.transit/board/internal/alerts"
	"bdeb.transit/board/internal/arrivals"
	"bdeb.transit/board/internal/board"
	"bdeb.transit/board/internal/feed"
	"bdeb.transit/board/internal/gtfs"
	"bdeb.transit/board/internal/weather"
)

// BusCombos returns the tracked bus combinations in display order.
func (c Config) BusCombos() []arrivals.Combo {
	out := make([]arrivals.Combo, len(c.Bus.Combos))
	for i, combo := range c.Bus.Combos {
		out[i] = arrivals.Combo{
			Route:     combo.Route,
			Stop:      combo.Stop,
			Direction: combo.Direction,
			Location:  combo.Location,
		}
	}
	return out
}

// RailStrategy returns the rail strategy settings with the given calendar.
func (c Config) RailStrategy(cal *arrivals.ServiceCalendar) arrivals.RailConfig {
	return arrivals.RailConfig{
		Stops:         c.Rail.Stops,
		Directions:    c.Rail.Directions,
		RouteLabels:   c.Rail.RouteLabels,
		StopNames:     c.Rail.StopNames,
		Calendar:      cal,
		AtStopMinutes: c.Rail.AtStopMinutes,
	}
}

// AlertFilter builds the bus and rail alert filters.
func (c Config) AlertFilter() *alerts.Filter {
	return alerts.NewFilter(
		alerts.NewBusFilter(alerts.BusConfig{
			Routes:     c.Bus.Alerts.Routes,
			Directions: c.Bus.Alerts.Directions,
			StopCodes:  c.Bus.Alerts.StopCodes,
			StopNames:  c.Bus.Alerts.StopNames,
		}),
		alerts.NewRailFilter(c.Rail.AlertLabels),
	)
}

// Feeds returns the six upstream sources with credentials attached.
func (c Config) Feeds() board.Feeds {
	bus := sources(board.AgencyBus, c.Bus.Feeds, c.Secrets.STMAPIKey)
	rail := sources(board.AgencyRail, c.Rail.Feeds, c.Secrets.ExoToken)
	return board.Feeds{
		BusTripUpdates:  bus[0],
		BusVehicles:     bus[1],
		BusAlerts:       bus[2],
		RailTripUpdates: rail[0],
		RailVehicles:    rail[1],
		RailAlerts:      rail[2],
	}
}

func sources(agency string, f AgencyFeeds, secret string) [3]feed.Source {
	mk := func(kind, url string, format feed.Format) feed.Source {
		return feed.Source{
			Agency:     agency,
			Kind:       kind,
			URL:        url,
			Format:     format,
			AuthHeader: f.Auth.Header,
			AuthQuery:  f.Auth.Query,
			AuthValue:  secret,
		}
	}
	alertsFormat := feed.Format(f.AlertsFormat)
	if alertsFormat == "" {
		alertsFormat = feed.FormatProtobuf
	}
	return [3]feed.Source{
		mk(feed.KindTripUpdates, f.TripUpdates, feed.FormatProtobuf),
		mk(feed.KindVehiclePositions, f.VehiclePositions, feed.FormatProtobuf),
		mk(feed.KindAlerts, f.Alerts, alertsFormat),
	}
}

// StaticSources returns the static feed locations. Bus route ids are
// replaced with their short names so they match the tracked combinations.
func (c Config) StaticSources() []gtfs.Source {
	return []gtfs.Source{
		{
			Agency:            board.AgencyBus,
			Dir:               c.Bus.Static.Dir,
			Zip:               c.Bus.Static.Zip,
			UseRouteShortName: true,
			Refresh:           c.Bus.Static.Refresh,
		},
		{
			Agency:  board.AgencyRail,
			Dir:     c.Rail.Static.Dir,
			Zip:     c.Rail.Static.Zip,
			Refresh: c.Rail.Static.Refresh,
		},
	}
}

// WeatherClient returns the weather client settings.
func (c Config) WeatherClient() weather.Config {
	return weather.Config{
		BaseURL: c.Weather.BaseURL,
		APIKey:  c.Secrets.WeatherAPIKey,
		Query:   c.Weather.Query,
		Lang:    c.Weather.Lang,
		TTL:     time.Duration(c.Weather.TTLSeconds) * time.Second,
	}
}
