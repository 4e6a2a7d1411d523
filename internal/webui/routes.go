package webui

import (
	"github.com/julienschmidt/httprouter"

	"bdeb.transit/board/internal/gtfs"
	"bdeb.transit/board/internal/models"
	"bdeb.transit/board/internal/schedule"
)

// Schedules exposes the loaded indexes.
type Schedules interface {
	Index(agency string) *schedule.Index
	Statistics() []gtfs.AgencyStatus
}

// Boards exposes the last assembled board.
type Boards interface {
	Last() (models.Board, bool)
}

// WebUI serves the debug pages.
type WebUI struct {
	schedules Schedules
	boards    Boards
}

// New returns a WebUI. Either source may be nil.
func New(schedules Schedules, boards Boards) *WebUI {
	return &WebUI{schedules: schedules, boards: boards}
}

func (webUI *WebUI) SetRoutes(router *httprouter.Router) {
	router.HandlerFunc("GET", "/debug/", webUI.debugIndexHandler)
}
