// Package alerts turns raw agency alerts into board alerts and merges in the
// weather placeholder and operator messages.
package alerts

import (
	"sort"
	"strings"
	"time"

	"bdeb.transit/board/internal/feed"
	"bdeb.transit/board/internal/models"
)

// Language is the translation shown on the board.
const Language = "fr"

const (
	busHeader           = "🚍 Info Bus"
	busNoRoutes         = "Non spécifié"
	busNoStops          = "Inconnu"
	busDefaultSeverity  = "alert"
	railHeader          = "🚨🚊 Info Train"
	railNoDescription   = "Description non disponible en français"
	railDefaultSeverity = "UNKNOWN_EFFECT"
	weatherHeader       = "🚨 Avertissement météorologique"
	weatherDescription  = "Retards possibles en raison des conditions météo. Vérifiez l’horaire avant de partir."
	weatherSeverity     = "weather_alert"
	weatherRoutes       = "Tous"
	weatherStop         = "STM et Exo"
)

// BusConfig lists what a bus alert must reference to be shown.
type BusConfig struct {
	Routes     []string
	Directions []string
	StopCodes  []string
	// StopNames maps stop codes to the names used in the alert's stop field.
	StopNames map[string]string
}

// BusFilter keeps bus alerts that reference a tracked route, a tracked
// direction and a tracked stop, all three.
type BusFilter struct {
	routes     map[string]bool
	directions map[string]bool
	stops      map[string]bool
	stopNames  map[string]string
}

// NewBusFilter builds a filter from cfg.
func NewBusFilter(cfg BusConfig) *BusFilter {
	return &BusFilter{
		routes:     set(cfg.Routes),
		directions: set(cfg.Directions),
		stops:      set(cfg.StopCodes),
		stopNames:  cfg.StopNames,
	}
}

// Filter returns the matching alerts in feed order.
func (f *BusFilter) Filter(alerts []*feed.Alert) []models.AlertRecord {
	out := []models.AlertRecord{}
	for _, a := range alerts {
		routes := map[string]bool{}
		directionMatch := false
		stops := map[string]bool{}
		for _, ie := range a.InformedEntities {
			if r := strings.TrimSpace(ie.RouteShortName); f.routes[r] {
				routes[r] = true
			}
			if f.directions[strings.TrimSpace(ie.DirectionID)] {
				directionMatch = true
			}
			if s := strings.TrimSpace(ie.StopCode); f.stops[s] {
				stops[s] = true
			}
		}
		if len(routes) == 0 || !directionMatch || len(stops) == 0 {
			continue
		}

		header := busHeader
		if h, _ := a.Header.In(Language); h != "" {
			header = busHeader + ": " + h
		}
		description, _ := a.Description.In(Language)
		severity := a.Effect
		if severity == "" {
			severity = busDefaultSeverity
		}

		out = append(out, models.AlertRecord{
			Header:      header,
			Description: description,
			Severity:    severity,
			Routes:      joinOr(sortedKeys(routes), busNoRoutes),
			Stop:        joinOr(f.friendly(sortedKeys(stops)), busNoStops),
		})
	}
	return out
}

func (f *BusFilter) friendly(codes []string) []string {
	names := make([]string, len(codes))
	for i, c := range codes {
		if name, ok := f.stopNames[c]; ok {
			names[i] = name
		} else {
			names[i] = c
		}
	}
	return names
}

// RailFilter keeps rail alerts that reference a tracked stop and labels them
// with the stop's route and direction.
type RailFilter struct {
	labels map[string]string
}

// NewRailFilter returns a filter tracking the stops of labels.
func NewRailFilter(labels map[string]string) *RailFilter {
	return &RailFilter{labels: labels}
}

// Filter emits one record per alert and tracked stop it references.
func (f *RailFilter) Filter(alerts []*feed.Alert) []models.AlertRecord {
	out := []models.AlertRecord{}
	for _, a := range alerts {
		description, _ := a.Description.In(Language)
		if description == "" {
			description = railNoDescription
		}
		severity := a.Effect
		if severity == "" {
			severity = railDefaultSeverity
		}

		seen := map[string]bool{}
		for _, ie := range a.InformedEntities {
			label, tracked := f.labels[ie.StopID]
			if !tracked || seen[ie.StopID] {
				continue
			}
			seen[ie.StopID] = true
			out = append(out, models.AlertRecord{
				Header:      railHeader,
				Description: description,
				Severity:    severity,
				Routes:      label,
				Stop:        ie.StopID,
			})
		}
	}
	return out
}

// WeatherPlaceholder is the single record shown while weather alerts are active.
func WeatherPlaceholder() models.AlertRecord {
	return models.AlertRecord{
		Header:      weatherHeader,
		Description: weatherDescription,
		Severity:    weatherSeverity,
		Routes:      weatherRoutes,
		Stop:        weatherStop,
	}
}

// Inputs gathers everything one alert pass consumes.
type Inputs struct {
	Bus           []*feed.Alert
	Rail          []*feed.Alert
	WeatherAlerts int
	Messages      []models.CustomMessage
}

// Result separates the bus records, which also drive the arrival badges,
// from the full ordered list.
type Result struct {
	Bus []models.AlertRecord
	All []models.AlertRecord
}

// Filter combines the bus and rail filters.
type Filter struct {
	bus  *BusFilter
	rail *RailFilter
}

// NewFilter returns a Filter.
func NewFilter(bus *BusFilter, rail *RailFilter) *Filter {
	return &Filter{bus: bus, rail: rail}
}

// Apply returns bus alerts, rail alerts, the weather placeholder and the
// active custom messages, in that order.
func (f *Filter) Apply(in Inputs, now time.Time) Result {
	bus := f.bus.Filter(in.Bus)
	rail := f.rail.Filter(in.Rail)

	all := make([]models.AlertRecord, 0, len(bus)+len(rail)+1+len(in.Messages))
	all = append(all, bus...)
	all = append(all, rail...)
	if in.WeatherAlerts > 0 {
		all = append(all, WeatherPlaceholder())
	}
	for _, m := range Active(in.Messages, now) {
		all = append(all, m.AlertRecord())
	}
	return Result{Bus: bus, All: all}
}

// Active drops the messages still pending at now. Order is preserved.
func Active(messages []models.CustomMessage, now time.Time) []models.CustomMessage {
	out := make([]models.CustomMessage, 0, len(messages))
	for _, m := range messages {
		if m.Pending(now) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func set(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinOr(values []string, empty string) string {
	if len(values) == 0 {
		return empty
	}
	return strings.Join(values, ", ")
}
