package webui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"busdash.astana.transit/internal/creator"
	"busdash.astana.transit/internal/logging"
	"busdash.astana.transit/internal/routeapi"
)

func (ui *WebUI) newRouteHandler(w http.ResponseWriter, r *http.Request) {
	ui.renderCreate(w, r, http.StatusOK, creator.NewDraft(), "")
}

func (ui *WebUI) addStopHandler(w http.ResponseWriter, r *http.Request) {
	draft, err := draftFromForm(r)
	if err != nil {
		ui.renderCreate(w, r, http.StatusUnprocessableEntity, draft, err.Error())
		return
	}

	lat, latErr := strconv.ParseFloat(r.PostFormValue("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.PostFormValue("lng"), 64)
	if latErr != nil || lngErr != nil {
		ui.renderCreate(w, r, http.StatusUnprocessableEntity, draft, msgNoClick)
		return
	}

	if _, err := draft.AddStop(lat, lng); err != nil {
		ui.renderCreate(w, r, http.StatusUnprocessableEntity, draft, err.Error())
		return
	}

	ui.renderCreate(w, r, http.StatusOK, draft, "")
}

func (ui *WebUI) removeStopHandler(w http.ResponseWriter, r *http.Request) {
	draft, err := draftFromForm(r)
	if err != nil {
		ui.renderCreate(w, r, http.StatusUnprocessableEntity, draft, err.Error())
		return
	}

	if !draft.RemoveStop(r.PostFormValue("stop_id")) {
		ui.renderCreate(w, r, http.StatusUnprocessableEntity, draft, msgStopNotFound)
		return
	}

	ui.renderCreate(w, r, http.StatusOK, draft, "")
}

// windowHandler applies the start and end time; draftFromForm does the work.
func (ui *WebUI) windowHandler(w http.ResponseWriter, r *http.Request) {
	draft, err := draftFromForm(r)
	if err != nil {
		ui.renderCreate(w, r, http.StatusUnprocessableEntity, draft, err.Error())
		return
	}

	ui.renderCreate(w, r, http.StatusOK, draft, "")
}

// submitRouteHandler posts the draft to the route service. On failure the form
// is shown again with the draft intact.
func (ui *WebUI) submitRouteHandler(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	draft, err := draftFromForm(r)
	if err != nil {
		ui.renderCreate(w, r, http.StatusUnprocessableEntity, draft, err.Error())
		return
	}

	err = draft.Submit(context.WithoutCancel(r.Context()), ui.Routes)
	switch {
	case err == nil:
		logging.LogOperation(logger, "route_created",
			slog.String("name", draft.Request().Name),
			slog.Int("stop_count", len(draft.Stops)))
		http.Redirect(w, r, "/routes", http.StatusSeeOther)
	case errors.Is(err, creator.ErrIncomplete):
		ui.renderCreate(w, r, http.StatusUnprocessableEntity, draft, msgIncomplete)
	default:
		logging.LogError(logger, "failed to create route", err)
		if serverErr, ok := routeapi.IsServerError(err); ok {
			ui.renderCreate(w, r, http.StatusUnprocessableEntity, draft, serverErr.Message)
			return
		}
		var fetchErr *routeapi.FetchError
		if errors.As(err, &fetchErr) {
			ui.renderCreate(w, r, http.StatusBadGateway, draft, msgCreateFailed)
			return
		}
		ui.renderCreate(w, r, http.StatusUnprocessableEntity, draft, err.Error())
	}
}

// draftFromForm restores the draft from the hidden field and applies the
// visible name and time fields. The returned draft is usable even on error.
func draftFromForm(r *http.Request) (*creator.Draft, error) {
	if err := r.ParseForm(); err != nil {
		return creator.NewDraft(), err
	}

	draft, err := creator.DecodeDraft(r.PostFormValue("draft"))
	if err != nil {
		return creator.NewDraft(), err
	}

	if names, ok := r.PostForm["name"]; ok && len(names) > 0 {
		draft.Name = names[0]
	}

	start, end := r.PostFormValue("start_time"), r.PostFormValue("end_time")
	if start == "" {
		start = draft.StartTime
	}
	if end == "" {
		end = draft.EndTime
	}
	if start != draft.StartTime || end != draft.EndTime {
		if err := draft.SetWindow(start, end); err != nil {
			return draft, err
		}
	}

	return draft, nil
}

func (ui *WebUI) renderCreate(w http.ResponseWriter, r *http.Request, status int, draft *creator.Draft, message string) {
	page, err := ui.createPage(draft, message)
	if err != nil {
		ui.serverError(w, r, err)
		return
	}
	ui.render(w, r, status, "create", page)
}
