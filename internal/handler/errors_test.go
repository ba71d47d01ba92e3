package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KC-99/workmatch/internal/middleware"
	"github.com/KC-99/workmatch/internal/model"
)

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *model.APIError
		want int
	}{
		{model.NewValidationError("Invalid input"), http.StatusBadRequest},
		{model.NewInvalidIDError("job"), http.StatusBadRequest},
		{model.NewConflictError(model.ErrCodeAlreadyApplied, "dup"), http.StatusBadRequest},
		{model.NewUnauthenticatedError(), http.StatusUnauthorized},
		{model.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{model.NewForbiddenError("no"), http.StatusForbidden},
		{model.NewNotFoundError("Job posting"), http.StatusNotFound},
		{&model.APIError{Code: "X", Category: "unknown"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := mapAPIErrorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

// ラップされたAPIErrorもカテゴリに応じたステータスになることを検証
func TestHandleServiceError_WrappedAPIError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/jobs/1", nil)
	handleServiceError(w, r, fmt.Errorf("lookup: %w", model.NewNotFoundError("Job posting")))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Message != "Job posting not found" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestHandleServiceError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	handleServiceError(w, r, errors.New("pq: password authentication failed for user admin"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "pq:") {
		t.Errorf("internal detail leaked: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Server error") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		JobID int64  `json:"jobId"`
		Note  string `json:"note"`
	}

	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantField string
	}{
		{"正常", `{"jobId": 3, "note": "hi"}`, false, ""},
		{"空のボディ", ``, false, ""},
		{"不正なJSON", `{"jobId":`, true, "body"},
		{"型の不一致", `{"jobId": "three"}`, true, "jobId"},
		{"サイズ超過", `{"note": "` + strings.Repeat("a", maxRequestBodyBytes) + `"}`, true, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst payload
			err := decodeJSON(w, r, &dst)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("decodeJSON: %v", err)
				}
				return
			}

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *model.APIError, got %v", err)
			}
			if apiErr.Category != model.CategoryValidation {
				t.Errorf("category = %q", apiErr.Category)
			}
			if len(apiErr.Errors) != 1 || apiErr.Errors[0].Field != tt.wantField {
				t.Errorf("errors = %+v, want field %q", apiErr.Errors, tt.wantField)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1.5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseID(tt.raw, "job")
			if tt.wantErr {
				var apiErr *model.APIError
				if !errors.As(err, &apiErr) || apiErr.Message != "Invalid job ID" {
					t.Errorf("err = %v, want Invalid job ID", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("parseID(%q) = %d, %v", tt.raw, got, err)
			}
		})
	}
}
