package app

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader carries the admin key on write requests.
const APIKeyHeader = "X-API-Key"

// RequestHasInvalidAPIKey checks the admin key sent in the X-API-Key header
// or, failing that, the key query parameter.
func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	key := r.Header.Get(APIKeyHeader)
	if key == "" {
		key = r.URL.Query().Get("key")
	}
	return app.IsInvalidAPIKey(key)
}

func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}

	for _, validKey := range app.Config.Secrets.AdminAPIKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(validKey)) == 1 {
			return false
		}
	}

	return true
}
