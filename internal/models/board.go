package models

import "time"

// CurrentTimeLayout formats Board.CurrentTime, e.g. "03:04:05 PM".
const CurrentTimeLayout = "03:04:05 PM"

// Weather holds the current conditions shown next to the clock.
type Weather struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
	Temp *int   `json:"temp"`
}

// Board is the aggregate produced by one reconciliation cycle.
type Board struct {
	Buses       []ArrivalRecord `json:"buses"`
	NextTrains  []ArrivalRecord `json:"next_trains"`
	Alerts      []AlertRecord   `json:"alerts"`
	CurrentTime string          `json:"current_time"`
	Weather     Weather         `json:"weather"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// NewBoard returns a board with non-nil slices so that empty lists encode as [].
func NewBoard(now time.Time) Board {
	return Board{
		Buses:       []ArrivalRecord{},
		NextTrains:  []ArrivalRecord{},
		Alerts:      []AlertRecord{},
		CurrentTime: now.Format(CurrentTimeLayout),
		GeneratedAt: now,
	}
}
