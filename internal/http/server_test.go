package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	todohttp "github.com/jaekwang-park/todo-web/internal/http"
	"github.com/jaekwang-park/todo-web/internal/middleware"
	"github.com/jaekwang-park/todo-web/internal/ratelimit"
)

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}
	defer l.Close()
	_, port, _ := net.SplitHostPort(l.Addr().String())
	return port
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, port string, authCfg middleware.AuthConfig, limiter *ratelimit.Store) *todohttp.Server {
	t.Helper()
	auth, err := middleware.NewAuth(authCfg)
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	return todohttp.NewServer(todohttp.ServerConfig{
		Port:   port,
		Logger: discardLogger(),
		Auth:   auth,
		RateLimit: middleware.RateLimitConfig{
			Store:      limiter,
			PathPrefix: "/api/auth/",
		},
	}, newTestRouter(t))
}

func TestServer_StartAndShutdown(t *testing.T) {
	port := freePort(t)
	srv := newTestServer(t, port, middleware.AuthConfig{DevMode: true}, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	addr := fmt.Sprintf("http://localhost:%s/health", port)
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, _ = http.Get(addr)
		if resp != nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if resp == nil {
		t.Fatal("server did not start in time")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID on response")
	}

	var result map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", result["status"])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if err := <-errCh; err != http.ErrServerClosed {
		t.Errorf("expected ErrServerClosed, got %v", err)
	}
}

func TestServer_SessionGate(t *testing.T) {
	authCfg := middleware.AuthConfig{
		JWKSClient:   middleware.NewJWKSClient("http://127.0.0.1:1/jwks"),
		UserResolver: resolverFunc(func(ctx context.Context, sub string) (string, error) { return sub, nil }),
	}
	ts := httptest.NewServer(newTestServer(t, "0", authCfg, nil).Handler())
	t.Cleanup(ts.Close)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	tests := []struct {
		name         string
		method       string
		path         string
		htmx         bool
		wantStatus   int
		wantLocation string
		wantHXRedir  string
	}{
		{name: "home is public", method: http.MethodGet, path: "/", wantStatus: http.StatusOK},
		{name: "signin page is public", method: http.MethodGet, path: "/signin", wantStatus: http.StatusOK},
		{name: "todo page redirects", method: http.MethodGet, path: "/todos", wantStatus: http.StatusSeeOther, wantLocation: "/signin"},
		{name: "api answers 401", method: http.MethodGet, path: "/api/todos", wantStatus: http.StatusUnauthorized},
		{name: "htmx gets client redirect", method: http.MethodDelete, path: "/api/todos/1", htmx: true, wantStatus: http.StatusUnauthorized, wantHXRedir: "/signin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if got := resp.Header.Get("Location"); got != tt.wantLocation {
				t.Errorf("Location: got %q, want %q", got, tt.wantLocation)
			}
			if got := resp.Header.Get("HX-Redirect"); got != tt.wantHXRedir {
				t.Errorf("HX-Redirect: got %q, want %q", got, tt.wantHXRedir)
			}
		})
	}
}

func TestServer_DevModeTodoFlow(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, "0", middleware.AuthConfig{DevMode: true}, nil).Handler())
	t.Cleanup(ts.Close)

	resp, err := http.PostForm(ts.URL+"/api/todos", url.Values{"text": {"Buy milk"}})
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/todos")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"text":"Buy milk","completed":false`) {
		t.Errorf("expected new todo in list, got %s", body)
	}
}

func TestServer_RateLimitsAuthEndpoints(t *testing.T) {
	limiter := ratelimit.NewStore(0.001, 1)
	ts := httptest.NewServer(newTestServer(t, "0", middleware.AuthConfig{DevMode: true}, limiter).Handler())
	t.Cleanup(ts.Close)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := http.Post(ts.URL+"/api/auth/signin", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("post failed: %v", err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	if codes[0] == http.StatusTooManyRequests || codes[1] != http.StatusTooManyRequests {
		t.Errorf("expected only the second attempt to be throttled, got %v", codes)
	}
}

type resolverFunc func(ctx context.Context, sub string) (string, error)

func (f resolverFunc) ResolveUserID(ctx context.Context, sub string) (string, error) {
	return f(ctx, sub)
}
