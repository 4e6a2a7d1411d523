package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// dataHandler runs one reconciliation cycle and returns the board. Upstream
// failures degrade the board, they never fail the request.
func (api *RestAPI) dataHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Cache-Control", "no-store")
	api.sendJSON(w, http.StatusOK, api.Assembler.Assemble(r.Context()))
}
