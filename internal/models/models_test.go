package models

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrivalJSON(t *testing.T) {
	t.Run("numeric arrival encodes as a number", func(t *testing.T) {
		b, err := json.Marshal(MinutesArrival(-1))
		require.NoError(t, err)
		assert.Equal(t, "-1", string(b))
	})

	t.Run("label arrival encodes as a string", func(t *testing.T) {
		b, err := json.Marshal(LabelArrival("02:15 PM"))
		require.NoError(t, err)
		assert.Equal(t, `"02:15 PM"`, string(b))
	})

	t.Run("decodes both shapes", func(t *testing.T) {
		var a Arrival
		require.NoError(t, json.Unmarshal([]byte("9"), &a))
		m, ok := a.Minutes()
		assert.True(t, ok)
		assert.Equal(t, 9, m)

		require.NoError(t, json.Unmarshal([]byte(`"Indisponible"`), &a))
		assert.False(t, a.IsNumeric())
		assert.Equal(t, ArrivalUnavailable, a.String())

		assert.Error(t, json.Unmarshal([]byte(`{}`), &a))
	})
}

func TestArrivalSoonerThan(t *testing.T) {
	assert.True(t, MinutesArrival(3).SoonerThan(MinutesArrival(4)))
	assert.False(t, MinutesArrival(4).SoonerThan(MinutesArrival(4)))
	assert.False(t, MinutesArrival(5).SoonerThan(MinutesArrival(4)))
	assert.False(t, LabelArrival("x").SoonerThan(MinutesArrival(4)))
	assert.False(t, MinutesArrival(1).SoonerThan(LabelArrival("x")))
	assert.False(t, LabelArrival("x").SoonerThan(LabelArrival("x")))
}

func TestArrivalRecordJSON(t *testing.T) {
	rec := ArrivalRecord{
		RouteID:     "171",
		TripID:      NoTripID,
		StopID:      "50270",
		ArrivalTime: LabelArrival(ArrivalUnavailable),
		Occupancy:   "Unknown",
		Source:      SourceSchedule,
	}

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "Indisponible", out["arrival_time"])
	assert.Nil(t, out["delayed_text"])
	assert.Contains(t, out, "early_text")
	assert.NotContains(t, out, "minutes_remaining")
	assert.NotContains(t, out, "bikes_allowed")
}

func TestCustomMessagePending(t *testing.T) {
	loc, err := time.LoadLocation("America/Montreal")
	require.NoError(t, err)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, loc)

	tests := []struct {
		name    string
		msg     CustomMessage
		pending bool
	}{
		{"future pending", CustomMessage{Status: "pending", ScheduledTime: "2025-03-10T13:00:00"}, true},
		{"past pending", CustomMessage{Status: "pending", ScheduledTime: "2025-03-10T11:59"}, false},
		{"pending with offset", CustomMessage{Status: "pending", ScheduledTime: "2025-03-10T18:00:00Z"}, true},
		{"pending without time", CustomMessage{Status: "pending"}, false},
		{"pending with garbage time", CustomMessage{Status: "pending", ScheduledTime: "tomorrow"}, false},
		{"active in future", CustomMessage{Status: "active", ScheduledTime: "2025-03-11T00:00:00"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pending, tt.msg.Pending(now))
		})
	}
}

func TestCustomMessageAlertRecord(t *testing.T) {
	rec := CustomMessage{ID: "m1", Header: "Fermeture", Description: "Porte B"}.AlertRecord()
	assert.Equal(t, "custom", rec.Severity)
	assert.Equal(t, "m1", rec.ID)
	assert.Equal(t, "Fermeture", rec.Header)
}

func TestNewBoard(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)
	board := NewBoard(now)

	assert.Equal(t, "03:04:05 PM", board.CurrentTime)
	b, err := json.Marshal(board)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"buses":[]`)
	assert.Contains(t, string(b), `"next_trains":[]`)
	assert.Contains(t, string(b), `"alerts":[]`)
}

func TestNewResponse(t *testing.T) {
	before := time.Now().UnixMilli()
	response := NewResponse(http.StatusCreated, map[string]string{"key": "value"}, "Created")
	after := time.Now().UnixMilli()

	assert.Equal(t, http.StatusCreated, response.Code)
	assert.Equal(t, "Created", response.Text)
	assert.Equal(t, 2, response.Version)
	assert.GreaterOrEqual(t, response.CurrentTime, before)
	assert.LessOrEqual(t, response.CurrentTime, after)

	ok := NewOKResponse("x")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "OK", ok.Text)
}

func TestNewCurrentTimeModel(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 10, 0, 0, time.UTC)
	m := NewCurrentTimeModel(now)

	assert.Equal(t, now.UnixMilli(), m.Time)
	assert.Equal(t, "2025-03-10T00:10:00Z", m.ReadableTime)
	assert.Equal(t, "12:10:00 AM", m.Display)
	assert.Equal(t, "UTC", m.TimeZone)
}
