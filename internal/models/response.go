package models

// RoutesResponse is the envelope returned by the route service for both the
// route listing and the upload endpoint. Error is set instead of Routes when the
// service rejected the request.
type RoutesResponse struct {
	Routes []Route `json:"routes,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// ErrorResponse is the envelope of a failed mutation.
type ErrorResponse struct {
	Error string `json:"error,omitempty"`
}
