package alerts

import (
	"strings"

	"bdeb.transit/board/internal/models"
)

type badgeRule struct {
	keyword  string
	badge    string
	canceled bool
}

// Checked in order; the first keyword found wins.
var badgeRules = []badgeRule{
	{keyword: "déplacé", badge: "Arrêt déplacé"},
	{keyword: "relocalisé", badge: "Arrêt relocalisé"},
	{keyword: "annulé", badge: "Arrêt annulé", canceled: true},
}

// ApplyBadges marks bus records affected by a stop alert. An alert applies
// to a record when its route list names the record's route and its stop field
// mentions the record's location. The first applicable alert carrying a
// keyword decides the badge. Records are updated in place.
func ApplyBadges(records []models.ArrivalRecord, busAlerts []models.AlertRecord) {
	for i := range records {
		rec := &records[i]
		route := strings.TrimSpace(rec.RouteID)
		location := strings.TrimSpace(rec.Location)
		if route == "" || location == "" {
			continue
		}
		for _, a := range busAlerts {
			if !hasRoute(a.Routes, route) || !strings.Contains(a.Stop, location) {
				continue
			}
			if rule, ok := matchBadge(a.Description); ok {
				rec.Badge = rule.badge
				rec.Canceled = rule.canceled
				break
			}
		}
	}
}

// hasRoute reports whether the comma separated list names route exactly.
func hasRoute(routes, route string) bool {
	for _, r := range strings.Split(routes, ",") {
		if strings.TrimSpace(r) == route {
			return true
		}
	}
	return false
}

func matchBadge(description string) (badgeRule, bool) {
	desc := strings.ToLower(description)
	for _, rule := range badgeRules {
		if strings.Contains(desc, rule.keyword) {
			return rule, true
		}
	}
	return badgeRule{}, false
}
