package chi

import (
	"encoding/json"
	"net/http"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/pipeline"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest   ErrorCode = "bad_request"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeBadGateway   ErrorCode = "bad_gateway"
	ErrorCodeInternal     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response except search results.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SearchResponse is the body of GET /v1/search.
type SearchResponse struct {
	Data   []Place          `json:"data"`
	Meta   map[string]any   `json:"meta"`
	Errors []string         `json:"errors,omitempty"`
	Debug  []map[string]any `json:"debug,omitempty"`
}

// Place is a single search hit.
type Place struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Properties map[string]string `json:"properties"`
}

func searchResponseFrom(req *pipeline.Request) SearchResponse {
	data := make([]Place, 0, len(req.Response.Data))
	for i := range req.Response.Data {
		data = append(data, placeFrom(&req.Response.Data[i]))
	}

	var debug []map[string]any
	if entries := req.Debug().Entries(); len(entries) > 0 {
		debug = make([]map[string]any, 0, len(entries))
		for _, e := range entries {
			debug = append(debug, map[string]any{e.Key: e.Value})
		}
	}

	meta := req.Response.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	return SearchResponse{
		Data:   data,
		Meta:   meta,
		Errors: req.Errors,
		Debug:  debug,
	}
}

func placeFrom(d *domain.Document) Place {
	props := d.Source
	if props == nil {
		props = map[string]string{}
	}
	return Place{ID: d.ID, Score: d.Score, Properties: props}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
