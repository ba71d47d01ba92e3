package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type recordedRequest struct {
	method string
	route  string
	status int
}

type mockHTTPRecorder struct {
	requests []recordedRequest
}

func (m *mockHTTPRecorder) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.requests = append(m.requests, recordedRequest{method: method, route: route, status: statusCode})
}

// パス中のIDではなくルートパターンがラベルになることを検証
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	recorder := &mockHTTPRecorder{}
	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(recorder))
	r.Get("/api/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/api/jobs/1", "/api/jobs/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if len(recorder.requests) != 3 {
		t.Fatalf("recorded = %d, want 3", len(recorder.requests))
	}
	for _, got := range recorder.requests[:2] {
		if got.route != "/api/jobs/{id}" || got.status != http.StatusOK || got.method != http.MethodGet {
			t.Errorf("recorded = %+v", got)
		}
	}
	if got := recorder.requests[2]; got.route != unmatchedRoute || got.status != http.StatusNotFound {
		t.Errorf("unmatched = %+v", got)
	}
}
