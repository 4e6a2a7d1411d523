package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"bdeb.transit/board/internal/webui"
)

// Routes returns the full handler: router wrapped in rate limiting,
// compression, security headers and request logging.
func (api *RestAPI) Routes() http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(api.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowedResponse)
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		api.serverErrorResponse(w, r, panicError{v})
	}

	router.GET("/api/data", api.dataHandler)
	router.GET("/api/messages", api.listMessagesHandler)
	router.POST("/api/messages", api.replaceMessagesHandler)
	router.GET("/api/current-time", api.currentTimeHandler)
	router.GET("/healthz", api.healthHandler)
	if api.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", api.Metrics.Handler())
	}
	var schedules webui.Schedules
	if api.GtfsManager != nil {
		schedules = api.GtfsManager
	}
	var boards webui.Boards
	if api.Assembler != nil {
		boards = api.Assembler
	}
	webui.New(schedules, boards).SetRoutes(router)

	var handler http.Handler = router
	handler = api.rateLimiter.Handler(handler)
	handler = NewCompressionMiddleware(DefaultCompressionConfig())(handler)
	handler = securityHeaders(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	return handler
}
