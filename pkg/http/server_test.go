package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	applogger "titandash/pkg/logger"
)

func newPingServer(t *testing.T, opts ...ServerOption) *Server {
	t.Helper()

	h := HandlerFunc(func(e *echo.Echo) {
		e.GET("/ping", func(c echo.Context) error {
			return SuccessResponse(c, map[string]string{"pong": "ok"})
		})
		e.GET("/boom", func(c echo.Context) error {
			return InternalServerErrorResponse(c, "boom")
		})
	})

	return NewServer(h, applogger.Nop(), opts...)
}

func TestServerServesRegisteredRoutes(t *testing.T) {
	srv := newPingServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	srv.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Status int `json:"status"`
		Data   map[string]string
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != http.StatusOK {
		t.Errorf("envelope status = %d, want %d", body.Status, http.StatusOK)
	}
	if body.Data["pong"] != "ok" {
		t.Errorf("data = %v, want pong=ok", body.Data)
	}
}

func TestServerErrorEnvelopeStatus(t *testing.T) {
	srv := newPingServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	srv.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestServerCORSPreflight(t *testing.T) {
	srv := newPingServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	srv.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q, want request origin", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "300" {
		t.Errorf("Max-Age = %q, want 300", got)
	}
}

func TestServerCORSDisabled(t *testing.T) {
	srv := newPingServer(t, WithCORS(false))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	srv.Echo().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty when CORS disabled", got)
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	srv := newPingServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want %d", rec.Code, http.StatusOK)
	}
}
