package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/noobLue/fullstack5pw/internal/domain/repository"
	"github.com/noobLue/fullstack5pw/internal/infra/memory"
	usecaseAccount "github.com/noobLue/fullstack5pw/internal/usecase/account"
	usecaseAdmin "github.com/noobLue/fullstack5pw/internal/usecase/admin"
	usecaseBlog "github.com/noobLue/fullstack5pw/internal/usecase/blog"
	usecaseRanking "github.com/noobLue/fullstack5pw/internal/usecase/ranking"
)

const testAPIBasePath = "/api"

func apiPath(route string) string {
	return testAPIBasePath + route
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServer wraps httptest.Server for integration testing.
type testServer struct {
	*httptest.Server
	router http.Handler
}

// newTestServer creates a test HTTP server with the given handlers.
func newTestServer(cfg RouterConfig) *testServer {
	if cfg.APIBasePath == "" {
		cfg.APIBasePath = testAPIBasePath
	}
	router := NewRouter(cfg)
	srv := httptest.NewServer(router)
	return &testServer{
		Server: srv,
		router: router,
	}
}

// get performs a GET request to the test server.
func (ts *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodGet, path, "", nil)
}

// do sends a request with an optional bearer token and JSON body.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build %s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// decodeJSON decodes response body as JSON.
func decodeJSON(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
}

// assertStatus checks HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewReader(body))
		t.Errorf("status = %d, want %d (body: %s)", resp.StatusCode, want, body)
	}
}

// assertContentType checks Content-Type header.
func assertContentType(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	got := resp.Header.Get("Content-Type")
	if got != want {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
}

// assertErrorCode checks the error envelope.
func assertErrorCode(t *testing.T, resp *http.Response, wantStatus int, wantCode string) {
	t.Helper()
	assertStatus(t, resp, wantStatus)
	var body errorResponse
	decodeJSON(t, resp, &body)
	if body.Error != wantCode {
		t.Errorf("error code = %q, want %q (message: %q)", body.Error, wantCode, body.Message)
	}
}

// mockHealthChecker is a mock implementation of health checker.
type mockHealthChecker struct {
	healthCheckFunc func(ctx context.Context) error
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) error {
	if m.healthCheckFunc != nil {
		return m.healthCheckFunc(ctx)
	}
	return nil
}

// testApp is the full handler stack over in-memory stores.
type testApp struct {
	*testServer
	accounts *usecaseAccount.Service
}

type testAppOptions struct {
	adminGuard func(http.Handler) http.Handler
	loginLimit func(http.Handler) http.Handler
	// resetters are wiped by /testing/reset after the stores.
	resetters []repository.Resetter
}

func newTestApp(t *testing.T, opts testAppOptions) *testApp {
	t.Helper()
	logger := discardLogger()

	accountRepo := memory.NewAccountRepository()
	sessions := memory.NewSessionStore()
	blogRepo := memory.NewBlogRepository()

	accounts, err := usecaseAccount.NewService(accountRepo, sessions, usecaseAccount.Options{
		BcryptCost: bcrypt.MinCost,
	}, logger)
	if err != nil {
		t.Fatalf("account service: %v", err)
	}
	blogs := usecaseBlog.NewService(blogRepo, nil, nil, logger)
	ranking := usecaseRanking.NewService(blogRepo, nil, logger)
	resetters := append([]repository.Resetter{blogRepo, sessions, accountRepo}, opts.resetters...)
	admin := usecaseAdmin.NewService(logger, resetters...)

	ts := newTestServer(RouterConfig{
		UserHandler:    NewUserHandler(accounts, logger),
		SessionHandler: NewSessionHandler(accounts, CookieConfig{}, opts.loginLimit, logger),
		BlogHandler:    NewBlogHandler(blogs, ranking, logger),
		TestingHandler: NewTestingHandler(admin, opts.adminGuard, logger),
		HealthHandler:  NewHealthHandler(),
		Callers:        accounts,
	})
	t.Cleanup(ts.Close)
	return &testApp{testServer: ts, accounts: accounts}
}

// register creates an account through the API.
func (a *testApp) register(t *testing.T, username, name, password string) accountResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, apiPath("/users"), "", map[string]string{
		"username": username,
		"name":     name,
		"password": password,
	})
	assertStatus(t, resp, http.StatusCreated)
	var out accountResponse
	decodeJSON(t, resp, &out)
	return out
}

// login returns the session token for the account.
func (a *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, apiPath("/login"), "", map[string]string{
		"username": username,
		"password": password,
	})
	assertStatus(t, resp, http.StatusOK)
	var out loginResponse
	decodeJSON(t, resp, &out)
	if out.Token == "" {
		t.Fatal("login returned empty token")
	}
	return out.Token
}

func (a *testApp) createBlog(t *testing.T, token, title, author, url string) blogResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, apiPath("/blogs"), token, map[string]string{
		"title":  title,
		"author": author,
		"url":    url,
	})
	assertStatus(t, resp, http.StatusCreated)
	var out blogResponse
	decodeJSON(t, resp, &out)
	return out
}

func (a *testApp) listBlogs(t *testing.T) []blogResponse {
	t.Helper()
	resp := a.get(t, apiPath("/blogs"))
	assertStatus(t, resp, http.StatusOK)
	var out []blogResponse
	decodeJSON(t, resp, &out)
	return out
}
