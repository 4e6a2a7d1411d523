package restapi

import (
	"bdeb.transit/board/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.Server.RateLimit, app.Config.Server.RateBurst),
	}
}

// Close stops the background work of the middlewares.
func (api *RestAPI) Close() {
	api.rateLimiter.Stop()
}
