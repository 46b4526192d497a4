package routeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"busdash.astana.transit/internal/logging"
	"busdash.astana.transit/internal/models"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes bounds how much of a route service answer is read.
	maxResponseBytes = 32 << 20
)

// API is the subset of the route service the dashboard views depend on.
type API interface {
	ListRoutes(ctx context.Context) ([]models.Route, error)
	Upload(ctx context.Context, filename string, body io.Reader) ([]models.Route, error)
	CreateRoute(ctx context.Context, req CreateRouteRequest) error
	DeleteRoute(ctx context.Context, id string) error
}

// Config holds the connection settings for the route service.
type Config struct {
	BaseURL string        `yaml:"baseURL" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// CreateStop is one stop of a route submitted from the creation view.
type CreateStop struct {
	Name          string  `json:"name" validate:"required"`
	Latitude      float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64 `json:"longitude" validate:"gte=-180,lte=180"`
	ScheduledTime string  `json:"scheduled_time" validate:"required"`
}

// CreateRouteRequest is the body of POST /api/routes/create.
type CreateRouteRequest struct {
	Name  string       `json:"name" validate:"required"`
	Stops []CreateStop `json:"stops" validate:"min=2,dive"`
}

// Client talks to the external route service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the route service at cfg.BaseURL.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "route_client")),
	}
}

// ListRoutes fetches all routes. Routes without segments get derived ones.
func (c *Client) ListRoutes(ctx context.Context) ([]models.Route, error) {
	var response models.RoutesResponse
	if err := c.do(ctx, "list_routes", http.MethodGet, "/api/routes", nil, "", &response); err != nil {
		return nil, err
	}
	return c.validRoutes("list_routes", response.Routes), nil
}

// Upload posts a route file as the multipart field "file" and returns the routes
// the service parsed from it.
func (c *Client) Upload(ctx context.Context, filename string, body io.Reader) ([]models.Route, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("copy upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	var response struct {
		Routes *[]models.Route `json:"routes"`
	}
	if err := c.do(ctx, "upload", http.MethodPost, "/api/upload", &buf, mw.FormDataContentType(), &response); err != nil {
		return nil, err
	}
	if response.Routes == nil {
		return nil, ErrNoRoutes
	}
	return c.validRoutes("upload", *response.Routes), nil
}

// validRoutes normalizes routes and drops the ones whose stops or segments are
// inconsistent, so the views never render or encode them.
func (c *Client) validRoutes(operation string, routes []models.Route) []models.Route {
	normalized := models.NormalizeRoutes(routes)
	valid := make([]models.Route, 0, len(normalized))
	for _, route := range normalized {
		if err := route.Validate(); err != nil {
			logging.LogError(c.logger, "Skipping invalid route", err,
				slog.String("operation", operation),
				slog.String("route_id", route.ID))
			continue
		}
		valid = append(valid, route)
	}
	return valid
}

// CreateRoute submits a new route.
func (c *Client) CreateRoute(ctx context.Context, req CreateRouteRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode create route request: %w", err)
	}
	return c.do(ctx, "create_route", http.MethodPost, "/api/routes/create", bytes.NewReader(body), "application/json", nil)
}

// DeleteRoute removes the route with the given id.
func (c *Client) DeleteRoute(ctx context.Context, id string) error {
	return c.do(ctx, "delete_route", http.MethodDelete, "/api/routes/"+url.PathEscape(id), nil, "", nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	start := time.Now()
	endpoint := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &FetchError{Op: op, URL: endpoint, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.LogError(c.logger, "route service request failed", err,
			slog.String("operation", op),
			slog.String("url", endpoint))
		return &FetchError{Op: op, URL: endpoint, Err: err}
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, op+"_response_body")

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &FetchError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if message := errorMessage(data); message != "" {
		logging.LogOperation(c.logger, "route service reported error",
			slog.String("operation", op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", message))
		return &ServerError{Op: op, Message: message}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &FetchError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &FetchError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	logging.LogOperation(c.logger, "route service request",
		slog.String("operation", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// errorMessage extracts the "error" field of a JSON object body, if any.
func errorMessage(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var envelope models.ErrorResponse
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return ""
	}
	return envelope.Error
}
