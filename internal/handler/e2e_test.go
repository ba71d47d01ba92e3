package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/KC-99/workmatch/internal/application"
	"github.com/KC-99/workmatch/internal/auth"
	"github.com/KC-99/workmatch/internal/job"
	"github.com/KC-99/workmatch/internal/profile"
	"github.com/KC-99/workmatch/internal/repository"
	"github.com/KC-99/workmatch/internal/security"
	"github.com/KC-99/workmatch/internal/session"
)

// newTestServer はインメモリストアで全ルートを構成したテストサーバーを起動する。
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := repository.NewMemoryStore().Store()
	sessions := session.NewManager(repository.NewMemorySessionRepo(), store.Users, session.Config{MaxAge: time.Hour})
	sanitizer := security.NewTextSanitizer()

	router := NewRouter(&RouterDeps{
		SessionResolver:    sessions,
		HealthChecker:      store.Health,
		AuthService:        auth.NewService(store.Users, sessions, nil, auth.ServiceConfig{BcryptCost: bcrypt.MinCost}),
		AuthConfig:         AuthHandlerConfig{SessionMaxAge: 3600},
		ProfileService:     profile.NewService(store.WorkerProfiles, store.EmployerProfiles, sanitizer, nil),
		JobService:         job.NewService(store.JobPostings, sanitizer, nil),
		ApplicationService: application.NewService(store.JobApplications, store.JobPostings, sanitizer, nil),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// testClient はCookieを保持するブラウザ相当のクライアント。
type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestClient(t *testing.T, srv *httptest.Server) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &testClient{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

// do はJSONリクエストを送信し、ステータスコードとボディを返す。
func (c *testClient) do(method, path string, body any) (int, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, b
}

// expect はステータスコードを検証し、ボディをoutにデコードする。outはnilでもよい。
func (c *testClient) expect(method, path string, body any, wantStatus int, out any) {
	c.t.Helper()
	status, b := c.do(method, path, body)
	if status != wantStatus {
		c.t.Fatalf("%s %s: status = %d, want %d, body = %s", method, path, status, wantStatus, b)
	}
	if out != nil {
		if err := json.Unmarshal(b, out); err != nil {
			c.t.Fatalf("%s %s: failed to decode body %s: %v", method, path, b, err)
		}
	}
}

func (c *testClient) register(username, userType string) userResponse {
	c.t.Helper()
	var u userResponse
	c.expect(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"password": "password",
		"email":    username + "@example.com",
		"name":     strings.ToUpper(username[:1]) + username[1:],
		"userType": userType,
	}, http.StatusCreated, &u)
	return u
}

func (c *testClient) postJob(title string) jobPostingResponse {
	c.t.Helper()
	var j jobPostingResponse
	c.expect(http.MethodPost, "/api/jobs", map[string]any{
		"title":       title,
		"company":     "Acme Builders",
		"location":    "Remote",
		"rate":        "$50/hr",
		"type":        "Contract",
		"skills":      []string{"Go", "SQL"},
		"description": "Build and maintain backend services for our platform.",
	}, http.StatusCreated, &j)
	return j
}

func TestE2E_ScenarioA_WorkerProfile(t *testing.T) {
	srv := newTestServer(t)
	alice := newTestClient(t, srv)

	u := alice.register("alice", "worker")
	if u.UserType != "worker" {
		t.Errorf("userType = %q", u.UserType)
	}

	alice.expect(http.MethodPost, "/api/profiles/worker", map[string]any{
		"title":        "Designer",
		"skills":       []string{"CSS"},
		"hourlyRate":   30,
		"availability": "Immediate",
	}, http.StatusCreated, nil)

	var p workerProfileResponse
	alice.expect(http.MethodGet, "/api/profiles/worker", nil, http.StatusOK, &p)
	if p.UserID != u.ID || p.Title != "Designer" || p.HourlyRate != 30 || p.Availability != "Immediate" {
		t.Errorf("profile = %+v", p)
	}
	if len(p.Skills) != 1 || p.Skills[0] != "CSS" {
		t.Errorf("skills = %v", p.Skills)
	}
	if p.Rating != 0 || p.ReviewCount != 0 {
		t.Errorf("rating = %v, reviewCount = %d, want 0", p.Rating, p.ReviewCount)
	}

	// 同じユーザーの2件目は入力に関係なく400
	alice.expect(http.MethodPost, "/api/profiles/worker", map[string]any{}, http.StatusBadRequest, nil)

	// 公開エンドポイントからも参照できる
	anon := newTestClient(t, srv)
	anon.expect(http.MethodGet, fmt.Sprintf("/api/profiles/worker/%d", u.ID), nil, http.StatusOK, nil)
}

func TestE2E_ScenarioB_ShortDescriptionRejected(t *testing.T) {
	srv := newTestServer(t)
	acme := newTestClient(t, srv)
	acme.register("acme", "employer")

	var before []jobPostingResponse
	acme.expect(http.MethodGet, "/api/jobs", nil, http.StatusOK, &before)

	status, b := acme.do(http.MethodPost, "/api/jobs", map[string]any{
		"title":       "Backend Engineer",
		"company":     "Acme Builders",
		"location":    "Remote",
		"rate":        "$50/hr",
		"type":        "Contract",
		"skills":      []string{"Go"},
		"description": "Too short",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", status, b)
	}
	var errBody struct {
		Message string `json:"message"`
		Errors  []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(b, &errBody); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if len(errBody.Errors) != 1 || errBody.Errors[0].Field != "description" {
		t.Errorf("errors = %+v", errBody.Errors)
	}

	var after []jobPostingResponse
	acme.expect(http.MethodGet, "/api/jobs", nil, http.StatusOK, &after)
	if len(after) != len(before) {
		t.Errorf("jobs = %d, want %d", len(after), len(before))
	}
}

func TestE2E_ScenarioC_ApplyAndAccept(t *testing.T) {
	srv := newTestServer(t)
	acme := newTestClient(t, srv)
	bob := newTestClient(t, srv)
	acme.register("acme", "employer")
	w := bob.register("bob", "worker")

	j := acme.postJob("Backend Engineer")

	var app jobApplicationResponse
	bob.expect(http.MethodPost, "/api/applications", map[string]any{
		"jobId":       j.ID,
		"coverLetter": "Hi",
	}, http.StatusCreated, &app)
	if app.Status != "pending" || app.WorkerID != w.ID || app.JobID != j.ID {
		t.Errorf("application = %+v", app)
	}

	// 掲載者は応募一覧を閲覧できる
	var list []jobApplicationResponse
	acme.expect(http.MethodGet, fmt.Sprintf("/api/applications/job/%d", j.ID), nil, http.StatusOK, &list)
	if len(list) != 1 {
		t.Fatalf("applications = %d, want 1", len(list))
	}

	acme.expect(http.MethodPatch, fmt.Sprintf("/api/applications/%d/status", app.ID),
		map[string]string{"status": "accepted"}, http.StatusOK, nil)

	var own []jobApplicationResponse
	bob.expect(http.MethodGet, "/api/applications/worker", nil, http.StatusOK, &own)
	if len(own) != 1 || own[0].Status != "accepted" {
		t.Fatalf("own applications = %+v", own)
	}
	if own[0].CoverLetter == nil || *own[0].CoverLetter != "Hi" {
		t.Errorf("coverLetter = %v", own[0].CoverLetter)
	}

	// 無効なステータスは400
	acme.expect(http.MethodPatch, fmt.Sprintf("/api/applications/%d/status", app.ID),
		map[string]string{"status": "hired"}, http.StatusBadRequest, nil)
}

func TestE2E_ListJobsIsIdempotent(t *testing.T) {
	srv := newTestServer(t)
	acme := newTestClient(t, srv)
	acme.register("acme", "employer")
	acme.postJob("Backend Engineer")
	acme.postJob("Frontend Engineer")

	anon := newTestClient(t, srv)
	_, first := anon.do(http.MethodGet, "/api/jobs", nil)
	_, second := anon.do(http.MethodGet, "/api/jobs", nil)
	if !bytes.Equal(first, second) {
		t.Errorf("responses differ:\n%s\n%s", first, second)
	}

	var jobs []jobPostingResponse
	if err := json.Unmarshal(first, &jobs); err != nil {
		t.Fatalf("failed to decode jobs: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID >= jobs[1].ID {
		t.Errorf("jobs = %+v, want creation order", jobs)
	}
}

func TestE2E_JobOwnership(t *testing.T) {
	srv := newTestServer(t)
	acme := newTestClient(t, srv)
	globex := newTestClient(t, srv)
	acme.register("acme", "employer")
	globex.register("globex", "employer")

	j := acme.postJob("Backend Engineer")
	path := fmt.Sprintf("/api/jobs/%d", j.ID)

	// 他のemployerは更新・削除できない
	globex.expect(http.MethodPatch, path, map[string]string{"title": "Hijacked title"}, http.StatusForbidden, nil)
	globex.expect(http.MethodDelete, path, nil, http.StatusForbidden, nil)

	// 存在しない求人の更新は404
	acme.expect(http.MethodPatch, "/api/jobs/9999", map[string]string{"title": "Nothing here"}, http.StatusNotFound, nil)

	var updated jobPostingResponse
	acme.expect(http.MethodPatch, path, map[string]string{"title": "Senior Backend Engineer"}, http.StatusOK, &updated)
	if updated.Title != "Senior Backend Engineer" || updated.Company != "Acme Builders" {
		t.Errorf("updated = %+v", updated)
	}

	acme.expect(http.MethodDelete, path, nil, http.StatusOK, nil)
	acme.expect(http.MethodGet, path, nil, http.StatusNotFound, nil)
}

func TestE2E_DuplicateRegistration(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv)
	first := c.register("alice", "worker")
	second := newTestClient(t, srv).register("bob", "worker")
	if second.ID <= first.ID {
		t.Errorf("ids = %d, %d, want increasing", first.ID, second.ID)
	}

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"同じユーザー名", "alice", "other@example.com"},
		{"同じメールアドレス", "alice2", "alice@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newTestClient(t, srv).expect(http.MethodPost, "/api/auth/register", map[string]string{
				"username": tt.username,
				"password": "password",
				"email":    tt.email,
				"name":     "Someone",
				"userType": "worker",
			}, http.StatusBadRequest, nil)
		})
	}
}

func TestE2E_ApplicationConflicts(t *testing.T) {
	srv := newTestServer(t)
	acme := newTestClient(t, srv)
	bob := newTestClient(t, srv)
	acme.register("acme", "employer")
	bob.register("bob", "worker")
	j := acme.postJob("Backend Engineer")

	bob.expect(http.MethodPost, "/api/applications", map[string]any{"jobId": j.ID}, http.StatusCreated, nil)
	bob.expect(http.MethodPost, "/api/applications", map[string]any{"jobId": j.ID}, http.StatusBadRequest, nil)
	bob.expect(http.MethodPost, "/api/applications", map[string]any{"jobId": 9999}, http.StatusNotFound, nil)

	// employerは応募できない
	acme.expect(http.MethodPost, "/api/applications", map[string]any{"jobId": j.ID}, http.StatusForbidden, nil)
}

func TestE2E_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	alice := newTestClient(t, srv)

	alice.expect(http.MethodGet, "/api/auth/me", nil, http.StatusUnauthorized, nil)
	alice.expect(http.MethodGet, "/api/applications/worker", nil, http.StatusUnauthorized, nil)
	alice.expect(http.MethodPost, "/api/auth/logout", nil, http.StatusUnauthorized, nil)

	alice.register("alice", "worker")

	status, b := alice.do(http.MethodGet, "/api/auth/me", nil)
	if status != http.StatusOK {
		t.Fatalf("me: status = %d", status)
	}
	if strings.Contains(strings.ToLower(string(b)), "password") {
		t.Errorf("password leaked in user response: %s", b)
	}

	alice.expect(http.MethodPost, "/api/auth/logout", nil, http.StatusOK, nil)
	alice.expect(http.MethodGet, "/api/auth/me", nil, http.StatusUnauthorized, nil)

	// ログインで新しいセッションが発行される
	var u userResponse
	alice.expect(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password",
	}, http.StatusOK, &u)
	if u.Username != "alice" {
		t.Errorf("username = %q", u.Username)
	}
	alice.expect(http.MethodGet, "/api/auth/me", nil, http.StatusOK, nil)

	newTestClient(t, srv).expect(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	}, http.StatusUnauthorized, nil)
}

func TestE2E_Health(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	newTestClient(t, srv).expect(http.MethodGet, "/health", nil, http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestE2E_UnknownRouteReturnsJSON404(t *testing.T) {
	srv := newTestServer(t)
	status, b := newTestClient(t, srv).do(http.MethodGet, "/api/nothing", nil)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(string(b), `"code":"NOT_FOUND"`) {
		t.Errorf("body = %s", b)
	}
}

// サニタイズで空になる本文は文字数不足として拒否されることを検証
func TestE2E_ScriptOnlyDescriptionRejected(t *testing.T) {
	srv := newTestServer(t)
	acme := newTestClient(t, srv)
	acme.register("acme", "employer")

	acme.expect(http.MethodPost, "/api/jobs", map[string]any{
		"title":       "Backend Engineer",
		"company":     "Acme Builders",
		"location":    "Remote",
		"rate":        "$50/hr",
		"type":        "Contract",
		"skills":      []string{"Go"},
		"description": "<script>aaaaaaaaaaaaaaaaaaaaaaaaa</script>",
	}, http.StatusBadRequest, nil)

	var jobs []jobPostingResponse
	acme.expect(http.MethodGet, "/api/jobs", nil, http.StatusOK, &jobs)
	if len(jobs) != 0 {
		t.Errorf("jobs = %d, want 0", len(jobs))
	}
}

// ロール違反・所有者違反はボディの形式エラーより優先されることを検証
func TestE2E_AccessChecksBeforeBodyErrors(t *testing.T) {
	srv := newTestServer(t)
	acme := newTestClient(t, srv)
	globex := newTestClient(t, srv)
	alice := newTestClient(t, srv)
	acme.register("acme", "employer")
	globex.register("globex", "employer")
	alice.register("alice", "worker")

	acme.expect(http.MethodPost, "/api/profiles/worker", map[string]any{"hourlyRate": "x"}, http.StatusForbidden, nil)
	alice.expect(http.MethodPost, "/api/jobs", map[string]any{"title": 1}, http.StatusForbidden, nil)
	alice.expect(http.MethodPost, "/api/profiles/employer", map[string]any{"companyName": 1}, http.StatusForbidden, nil)

	j := acme.postJob("Backend Engineer")
	path := fmt.Sprintf("/api/jobs/%d", j.ID)
	globex.expect(http.MethodPatch, path, map[string]any{"title": 1}, http.StatusForbidden, nil)
	acme.expect(http.MethodPatch, "/api/jobs/9999", map[string]any{"title": 1}, http.StatusNotFound, nil)
	acme.expect(http.MethodPatch, path, map[string]any{"title": 1}, http.StatusBadRequest, nil)
}
