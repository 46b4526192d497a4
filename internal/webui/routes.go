package webui

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/julienschmidt/httprouter"
)

func (ui *WebUI) routes() *httprouter.Router {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/", ui.dashboardHandler)
	router.HandlerFunc(http.MethodPost, "/upload", ui.uploadHandler)

	router.HandlerFunc(http.MethodGet, "/routes", ui.routesHandler)
	router.HandlerFunc(http.MethodPost, "/routes/delete/:id", ui.deleteRouteHandler)
	router.HandlerFunc(http.MethodGet, "/routes/export.csv", ui.exportHandler)

	router.HandlerFunc(http.MethodGet, "/create", ui.newRouteHandler)
	router.HandlerFunc(http.MethodPost, "/create", ui.submitRouteHandler)
	router.HandlerFunc(http.MethodPost, "/create/stops", ui.addStopHandler)
	router.HandlerFunc(http.MethodPost, "/create/stops/remove", ui.removeStopHandler)
	router.HandlerFunc(http.MethodPost, "/create/window", ui.windowHandler)

	api := ui.corsHandler()
	router.Handler(http.MethodGet, "/api/maps/:id", api(http.HandlerFunc(ui.mapViewHandler)))
	router.Handler(http.MethodOptions, "/api/maps/:id", api(http.HandlerFunc(noContent)))

	router.HandlerFunc(http.MethodGet, "/debug", ui.debugIndexHandler)
	router.HandlerFunc(http.MethodGet, "/healthz", ui.healthHandler)

	router.ServeFiles("/static/*filepath", staticFiles())

	return router
}

func (ui *WebUI) corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: ui.Config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         86400,
	})
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
