package restapi

import (
	"encoding/json"
	"net/http"

	"bdeb.transit/board/internal/logging"
)

// sendJSON writes v with the given status.
func (api *RestAPI) sendJSON(w http.ResponseWriter, status int, v any) {
	setJSONResponseType(&w)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.LogError(api.Logger, "failed to encode response", err)
	}
}

func setJSONResponseType(w *http.ResponseWriter) {
	(*w).Header().Set("Content-Type", "application/json")
}
