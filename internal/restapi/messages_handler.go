package restapi

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"bdeb.transit/board/internal/alerts"
	"bdeb.transit/board/internal/models"
)

const maxMessagesBody = 1 << 20

// listMessagesHandler returns the stored operator messages, pending ones
// included. A store that was never written answers 404 with an empty list.
func (api *RestAPI) listMessagesHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	msgs, err := api.Messages.List()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		api.sendJSON(w, http.StatusNotFound, []models.CustomMessage{})
	case err != nil:
		api.serverErrorResponse(w, r, err)
	default:
		api.sendJSON(w, http.StatusOK, msgs)
	}
}

// replaceMessagesHandler swaps the whole message list.
func (api *RestAPI) replaceMessagesHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if api.RequestHasInvalidAPIKey(r) {
		api.invalidAPIKeyResponse(w, r)
		return
	}

	var msgs []models.CustomMessage
	dec := json.NewDecoder(io.LimitReader(r.Body, maxMessagesBody))
	if err := dec.Decode(&msgs); err != nil {
		api.badRequestResponse(w, r, errors.New("body must be a JSON array of messages"))
		return
	}

	_, err := api.Messages.Replace(msgs)
	switch {
	case errors.Is(err, alerts.ErrInvalidMessages):
		api.badRequestResponse(w, r, err)
		return
	case err != nil:
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
