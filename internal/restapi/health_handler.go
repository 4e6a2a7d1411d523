package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"bdeb.transit/board/internal/gtfs"
)

type healthBody struct {
	Status    string              `json:"status"`
	Schedules []gtfs.AgencyStatus `json:"schedules"`
}

// healthHandler reports ready once every agency has a schedule index.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body := healthBody{Status: "ok", Schedules: []gtfs.AgencyStatus{}}
	status := http.StatusOK
	if api.GtfsManager == nil {
		body.Status = "starting"
		status = http.StatusServiceUnavailable
	} else {
		body.Schedules = api.GtfsManager.Statistics()
	}
	api.sendJSON(w, status, body)
}
