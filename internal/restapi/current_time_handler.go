package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"bdeb.transit/board/internal/models"
)

func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.sendJSON(w, http.StatusOK, models.NewOKResponse(models.NewCurrentTimeModel(api.Now())))
}
