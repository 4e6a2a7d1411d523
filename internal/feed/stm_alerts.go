package feed

import (
	"encoding/json"
	"fmt"
)

// The bus agency serves its service alerts as JSON rather than protobuf.
type stmAlertsDocument struct {
	Alerts []stmAlert `json:"alerts"`
}

type stmAlert struct {
	ID               string           `json:"id"`
	Effect           string           `json:"effect"`
	HeaderTexts      []stmTranslation `json:"header_texts"`
	DescriptionTexts []stmTranslation `json:"description_texts"`
	InformedEntities []stmEntity      `json:"informed_entities"`
}

type stmTranslation struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

type stmEntity struct {
	RouteShortName flexString `json:"route_short_name"`
	DirectionID    flexString `json:"direction_id"`
	StopCode       flexString `json:"stop_code"`
}

// flexString accepts both "171" and 171.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// DecodeSTMAlerts decodes the bus agency's JSON alert document.
func DecodeSTMAlerts(b []byte) (Snapshot, error) {
	var doc stmAlertsDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("decoding stm alerts: %w", err)
	}

	snap := Snapshot{Entities: make([]Entity, 0, len(doc.Alerts))}
	for i, a := range doc.Alerts {
		id := a.ID
		if id == "" {
			id = fmt.Sprintf("stm-alert-%d", i)
		}
		alert := &Alert{
			ID:          id,
			Effect:      a.Effect,
			Header:      stmTranslations(a.HeaderTexts),
			Description: stmTranslations(a.DescriptionTexts),
		}
		for _, ie := range a.InformedEntities {
			alert.InformedEntities = append(alert.InformedEntities, InformedEntity{
				RouteShortName: string(ie.RouteShortName),
				DirectionID:    string(ie.DirectionID),
				StopCode:       string(ie.StopCode),
			})
		}
		snap.Entities = append(snap.Entities, alert)
	}
	return snap, nil
}

func stmTranslations(in []stmTranslation) Translations {
	out := make(Translations, 0, len(in))
	for _, t := range in {
		out = append(out, Translation{Language: t.Language, Text: t.Text})
	}
	return out
}
