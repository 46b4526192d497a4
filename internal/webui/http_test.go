package webui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"busdash.astana.transit/internal/app"
	"busdash.astana.transit/internal/logging"
	"busdash.astana.transit/internal/mapview"
	"busdash.astana.transit/internal/models"
	"busdash.astana.transit/internal/routeapi"
)

// fakeAPI stands in for the route service.
type fakeAPI struct {
	mu sync.Mutex

	routes    []models.Route
	listErr   error
	uploadErr error
	createErr error
	deleteErr error

	uploadedName string
	uploadedBody string
	created      []routeapi.CreateRouteRequest
	deleted      []string
}

func (f *fakeAPI) ListRoutes(ctx context.Context) ([]models.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return models.NormalizeRoutes(f.routes), nil
}

func (f *fakeAPI) Upload(ctx context.Context, filename string, body io.Reader) ([]models.Route, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadedName = filename
	f.uploadedBody = string(data)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return models.NormalizeRoutes(f.routes), nil
}

func (f *fakeAPI) CreateRoute(ctx context.Context, req routeapi.CreateRouteRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return f.createErr
}

func (f *fakeAPI) DeleteRoute(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func lineOne() models.Route {
	return models.NewRoute("r1", "Line 1", []models.Stop{
		models.NewStop("s1", "Central Station", "06:00", 51.1605, 71.4704),
		models.NewStop("s2", "Baiterek", "06:10", 51.1283, 71.4305),
	}, []models.Segment{})
}

func lineTwo() models.Route {
	return models.NewRoute("r2", "Line 2", []models.Stop{
		models.NewStop("s3", "Khan Shatyr", "07:00", 51.1324, 71.4036),
	}, nil)
}

func testConfig() app.Config {
	cfg := app.DefaultConfig()
	cfg.Env = "test"
	cfg.RateLimit = 0
	return cfg
}

func createTestUI(t *testing.T, api routeapi.API) *WebUI {
	return createTestUIWithConfig(t, api, testConfig())
}

func createTestUIWithConfig(t *testing.T, api routeapi.API, cfg app.Config) *WebUI {
	t.Helper()

	maps, err := mapview.NewRenderer(cfg.Map)
	require.NoError(t, err)

	ui, err := New(&app.Application{
		Config: cfg,
		Logger: logging.NewStructuredLogger(io.Discard, slog.LevelError),
		Routes: api,
		Maps:   maps,
	})
	require.NoError(t, err)
	t.Cleanup(ui.Close)

	return ui
}

func serve(t *testing.T, ui *WebUI, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	ui.Handler().ServeHTTP(recorder, req)
	return recorder
}

func get(t *testing.T, ui *WebUI, target string) *httptest.ResponseRecorder {
	return serve(t, ui, httptest.NewRequest(http.MethodGet, target, nil))
}

func postForm(t *testing.T, ui *WebUI, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return serve(t, ui, req)
}

func postFile(t *testing.T, ui *WebUI, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return serve(t, ui, req)
}

var errUnreachable = &routeapi.FetchError{
	Op:  "list routes",
	URL: "http://localhost:8000/api/routes",
	Err: errors.New("connection refused"),
}
