package webui

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busdash.astana.transit/internal/export"
	"busdash.astana.transit/internal/logging"
	"busdash.astana.transit/internal/models"
	"busdash.astana.transit/internal/routeapi"
)

func TestRoutesPage(t *testing.T) {
	t.Run("lists routes with actions", func(t *testing.T) {
		ui := createTestUI(t, &fakeAPI{routes: []models.Route{lineOne(), lineTwo()}})

		resp := get(t, ui, "/routes")
		require.Equal(t, http.StatusOK, resp.Code)
		body := resp.Body.String()
		assert.Contains(t, body, `action="/routes/delete/r1"`)
		assert.Contains(t, body, `action="/routes/delete/r2"`)
		assert.Contains(t, body, `href="/routes/export.csv"`)
		assert.Contains(t, body, `href="/create"`)
	})

	t.Run("selection renders the map", func(t *testing.T) {
		ui := createTestUI(t, &fakeAPI{routes: []models.Route{lineOne(), lineTwo()}})

		resp := get(t, ui, "/routes?route=r2")
		require.Equal(t, http.StatusOK, resp.Code)
		body := resp.Body.String()
		assert.Contains(t, body, "data-view=")
		assert.Contains(t, body, `name="selected" value="r2"`)
	})

	t.Run("export is disabled without routes", func(t *testing.T) {
		ui := createTestUI(t, &fakeAPI{})

		resp := get(t, ui, "/routes")
		require.Equal(t, http.StatusOK, resp.Code)
		body := resp.Body.String()
		assert.NotContains(t, body, `href="/routes/export.csv"`)
		assert.Contains(t, body, "No routes found.")
	})
}

func TestDeleteRoute(t *testing.T) {
	tests := []struct {
		name     string
		selected string
		deleted  string
		location string
	}{
		{"deleting the selected route clears the selection", "r1", "r1", "/routes"},
		{"deleting another route keeps the selection", "r1", "r2", "/routes?route=r1"},
		{"nothing selected", "", "r2", "/routes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{routes: []models.Route{lineOne(), lineTwo()}}
			ui := createTestUI(t, api)

			resp := postForm(t, ui, "/routes/delete/"+tt.deleted, url.Values{"selected": {tt.selected}})

			assert.Equal(t, http.StatusSeeOther, resp.Code)
			assert.Equal(t, tt.location, resp.Header().Get("Location"))
			assert.Equal(t, []string{tt.deleted}, api.deleted)
		})
	}
}

func TestDeleteRouteFailure(t *testing.T) {
	t.Run("server error keeps the page and selection", func(t *testing.T) {
		api := &fakeAPI{
			routes:    []models.Route{lineOne()},
			deleteErr: &routeapi.ServerError{Op: "delete route", Message: "Route is in use"},
		}
		ui := createTestUI(t, api)

		resp := postForm(t, ui, "/routes/delete/r1", url.Values{"selected": {"r1"}})

		assert.Equal(t, http.StatusBadGateway, resp.Code)
		body := resp.Body.String()
		assert.Contains(t, body, "Failed to delete route: Route is in use")
		assert.Contains(t, body, "data-view=")
	})

	t.Run("transport failure", func(t *testing.T) {
		api := &fakeAPI{deleteErr: errUnreachable}
		ui := createTestUI(t, api)

		resp := postForm(t, ui, "/routes/delete/r1", nil)

		assert.Equal(t, http.StatusBadGateway, resp.Code)
		assert.Contains(t, resp.Body.String(), msgDeleteFailed)
	})
}

func TestExportCSV(t *testing.T) {
	ui := createTestUI(t, &fakeAPI{routes: []models.Route{lineOne(), lineTwo()}})

	resp := get(t, ui, "/routes/export.csv")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), export.Filename)

	lines := strings.Split(strings.TrimSpace(resp.Body.String()), "\n")
	require.Len(t, lines, 4, "header plus one line per stop")
	assert.Equal(t, strings.Join(export.Header, ","), strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "r1,Line 1,s1,Central Station,"))
	assert.True(t, strings.HasPrefix(lines[3], "r2,Line 2,s3,Khan Shatyr,"))
}

func TestExportCSVLogsRowCount(t *testing.T) {
	var logs bytes.Buffer
	ui := createTestUI(t, &fakeAPI{routes: []models.Route{lineOne(), lineTwo()}})
	ui.Logger = logging.NewStructuredLogger(&logs, slog.LevelInfo)

	resp := get(t, ui, "/routes/export.csv")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, logs.String(), `"routes_exported"`)
	assert.Contains(t, logs.String(), `"routes":2`)
	assert.Contains(t, logs.String(), `"rows":3`)
}

func TestExportCSVFetchFailure(t *testing.T) {
	ui := createTestUI(t, &fakeAPI{listErr: errUnreachable})

	resp := get(t, ui, "/routes/export.csv")
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Contains(t, resp.Body.String(), msgFetchFailed)
}
