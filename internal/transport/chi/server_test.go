package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/pipeline"
	"github.com/kailas-cloud/docsearch/internal/render"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

// --- Mocks ---

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type indexCheckerFunc func(ctx context.Context, index string) (bool, error)

func (f indexCheckerFunc) IndexExists(ctx context.Context, index string) (bool, error) {
	return f(ctx, index)
}

func newTestRouter(search pipeline.HandlerFunc, health *healthuc.Service) http.Handler {
	if health == nil {
		health = healthuc.New(pingerFunc(func(context.Context) error { return nil }), nil, "")
	}
	r := chi.NewRouter()
	NewServer(search, health, nil).WithMaxSize(20).Routes(r)
	return r
}

func doGet(t *testing.T, h http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// --- Tests ---

func TestSearch_OK(t *testing.T) {
	var got *pipeline.Request
	h := newTestRouter(func(_ context.Context, req *pipeline.Request) {
		got = req
		req.Response.Data = []domain.Document{{ID: "1", Score: 1.5, Source: map[string]string{"name": "Berlin"}}}
		req.Response.Meta["query_type"] = "search_fulltext"
	}, nil)

	rr := doGet(t, h, "/v1/search?text=berlin&size=5&layers=locality,county&boundary.country=deu", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got == nil {
		t.Fatal("pipeline not called")
	}
	if got.Clean.String(render.ParamText) != "berlin" {
		t.Errorf("expected cleaned text, got %v", got.Clean)
	}
	if got.Clean.Int(render.ParamSize, 0) != 5 {
		t.Errorf("expected size 5, got %v", got.Clean[render.ParamSize])
	}
	if got.Clean.String(render.ParamCountry) != "DEU" {
		t.Errorf("expected DEU, got %v", got.Clean[render.ParamCountry])
	}
	if layers := got.Clean.Strings(render.ParamLayers); len(layers) != 2 {
		t.Errorf("expected 2 layers, got %v", layers)
	}

	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "1" || resp.Data[0].Properties["name"] != "Berlin" {
		t.Errorf("unexpected data: %+v", resp.Data)
	}
	if resp.Meta["query_type"] != "search_fulltext" {
		t.Errorf("unexpected meta: %v", resp.Meta)
	}
	if resp.Debug != nil {
		t.Errorf("debug trail should be absent, got %v", resp.Debug)
	}
}

func TestSearch_BadGatewayWhenOnlyErrors(t *testing.T) {
	h := newTestRouter(func(_ context.Context, req *pipeline.Request) {
		req.AddError("FT.SEARCH: Timeout limit was reached")
	}, nil)

	rr := doGet(t, h, "/v1/search?text=berlin", nil)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", resp.Errors)
	}
}

func TestSearch_PartialDataWithErrorsIsOK(t *testing.T) {
	h := newTestRouter(func(_ context.Context, req *pipeline.Request) {
		req.Response.Data = []domain.Document{{ID: "1"}}
		req.AddError("boom")
	}, nil)

	rr := doGet(t, h, "/v1/search?text=berlin", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}

func TestSearch_InvalidParams(t *testing.T) {
	called := false
	h := newTestRouter(func(context.Context, *pipeline.Request) { called = true }, nil)

	for _, target := range []string{
		"/v1/search",
		"/v1/search?text=%20",
		"/v1/search?text=a&size=0",
		"/v1/search?text=a&size=21",
		"/v1/search?text=a&size=ten",
		"/v1/search?text=a&layers=planet",
		"/v1/search?text=a&sources=bing",
		"/v1/search?text=a&boundary.country=DEUT",
		"/v1/search?text=a&boundary.country=D1",
		"/v1/search?text=a&boundary.circle.lat=91&boundary.circle.lon=0",
		"/v1/search?text=a&boundary.circle.lat=1",
		"/v1/search?text=a&boundary.circle.radius=5",
		"/v1/search?text=a&boundary.circle.lat=1&boundary.circle.lon=2&boundary.circle.radius=-1",
		"/v1/search?text=a&debug=maybe",
	} {
		rr := doGet(t, h, target, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rr.Code)
			continue
		}
		var errResp ErrorResponse
		if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if errResp.Code != ErrorCodeBadRequest {
			t.Errorf("%s: expected code %s, got %s", target, ErrorCodeBadRequest, errResp.Code)
		}
	}
	if called {
		t.Error("pipeline must not run for invalid parameters")
	}
}

func TestSearch_DebugAndDNT(t *testing.T) {
	var got *pipeline.Request
	h := newTestRouter(func(_ context.Context, req *pipeline.Request) {
		got = req
		req.Debug().Push("backend_req", "FT.SEARCH")
	}, nil)

	rr := doGet(t, h, "/v1/search?text=berlin&debug=true", map[string]string{"DNT": "1"})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !got.DoNotTrack {
		t.Error("expected DoNotTrack")
	}
	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Debug) != 1 || resp.Debug[0]["backend_req"] != "FT.SEARCH" {
		t.Errorf("unexpected debug: %v", resp.Debug)
	}
}

func TestSearch_CircleParams(t *testing.T) {
	var got *pipeline.Request
	h := newTestRouter(func(_ context.Context, req *pipeline.Request) { got = req }, nil)

	rr := doGet(t, h, "/v1/search?text=cafe&boundary.circle.lat=52.5&boundary.circle.lon=13.4&boundary.circle.radius=3", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if lat, ok := got.Clean.Float(render.ParamCircleLat); !ok || lat != 52.5 {
		t.Errorf("unexpected lat: %v", got.Clean[render.ParamCircleLat])
	}
	if r, ok := got.Clean.Float(render.ParamCircleRadius); !ok || r != 3 {
		t.Errorf("unexpected radius: %v", got.Clean[render.ParamCircleRadius])
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		exists     bool
		wantStatus int
		wantBody   string
	}{
		{"healthy", nil, true, http.StatusOK, "ok"},
		{"index missing", nil, false, http.StatusServiceUnavailable, "degraded"},
		{"db down", errors.New("down"), true, http.StatusServiceUnavailable, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health := healthuc.New(
				pingerFunc(func(context.Context) error { return tt.pingErr }),
				indexCheckerFunc(func(context.Context, string) (bool, error) { return tt.exists, nil }),
				"places",
			)
			h := newTestRouter(func(context.Context, *pipeline.Request) {}, health)

			rr := doGet(t, h, "/health", nil)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("expected status %q, got %q", tt.wantBody, resp.Status)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(func(context.Context, *pipeline.Request) {}, nil)

	rr := doGet(t, h, "/metrics", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}
