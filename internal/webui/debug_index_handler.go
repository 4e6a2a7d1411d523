package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"bdeb.transit/board/internal/board"
	"bdeb.transit/board/internal/models"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "schedules":
		title = "Static schedules"
		if webUI.schedules != nil {
			data = webUI.schedules.Statistics()
		}
	case "bus":
		title = "Bus - schedule index and last records"
		data = webUI.section(board.AgencyBus, func(b models.Board) interface{} { return b.Buses })
	case "rail":
		title = "Rail - schedule index and last records"
		data = webUI.section(board.AgencyRail, func(b models.Board) interface{} { return b.NextTrains })
	case "board":
		title = "Last assembled board"
		if webUI.boards != nil {
			if b, ok := webUI.boards.Last(); ok {
				data = b
			}
		}
	default:
		data = map[string]string{
			"error": "Please use one of the following: schedules, bus, rail, board.",
		}
		title = "Choose a data type"
	}

	if data == nil {
		data = "no data yet"
	}
	writeDebugData(w, title, data)
}

// section pairs an agency index with its records from the last board.
func (webUI *WebUI) section(agency string, records func(models.Board) interface{}) interface{} {
	out := map[string]interface{}{}
	if webUI.schedules != nil {
		if idx := webUI.schedules.Index(agency); idx != nil {
			out["schedule"] = idx
		}
	}
	if webUI.boards != nil {
		if b, ok := webUI.boards.Last(); ok {
			out["records"] = records(b)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
