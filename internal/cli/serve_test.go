package cli

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/ghautomation/testpage/internal/config"
	"github.com/ghautomation/testpage/internal/handlers"
	"github.com/ghautomation/testpage/internal/metrics"
	"github.com/ghautomation/testpage/internal/models"
	"github.com/ghautomation/testpage/internal/services"
)

// pageDeps wires the real dummy page handler set against the repo templates.
// withHistory registers the runs API backed by a service without a database.
func pageDeps(t *testing.T, port string, withHistory bool) ServerDependencies {
	t.Helper()

	cfg := config.ServerConfig{Port: port, TemplatesDir: "../../templates", StaticDir: "../../static"}
	m := metrics.New()

	page, err := handlers.NewDummyPageHandler(cfg.TemplatePath("page.html"), models.DefaultDummyPage(), m)
	if err != nil {
		t.Fatalf("Failed to create page handler: %v", err)
	}

	deps := ServerDependencies{
		ServerConfig:   cfg,
		PageHandler:    page,
		HealthHandler:  handlers.HealthHandler(),
		MetricsHandler: m.Handler(),
	}
	if withHistory {
		deps.RunsHandler = handlers.NewRunsHandler(services.NewRunService(nil, m))
	}
	return deps
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestNewRouter(t *testing.T) {
	tests := []struct {
		name        string
		withHistory bool
		path        string
		wantStatus  int
		wantBody    string
	}{
		{"dummy page", false, "/", http.StatusOK, `data-testid="dummy-text"`},
		{"page script", false, "/static/js/page.js", http.StatusOK, "window.alert"},
		{"missing asset", false, "/static/js/missing.js", http.StatusNotFound, ""},
		{"health", false, "/healthz", http.StatusOK, "ok"},
		{"metrics", false, "/metrics", http.StatusOK, "go_goroutines"},
		{"unknown path", false, "/checkout", http.StatusNotFound, ""},
		{"runs without history", false, "/api/runs", http.StatusNotFound, ""},
		{"run without history", false, "/api/runs/6f1c2d7e-7c55-4c1e-9a7e-0a4a3c1d2e3f", http.StatusNotFound, ""},
		{"runs with history", true, "/api/runs", http.StatusServiceUnavailable, "Failed to list runs"},
		{"run with history", true, "/api/runs/6f1c2d7e-7c55-4c1e-9a7e-0a4a3c1d2e3f", http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			mux := NewRouter(pageDeps(t, "0", tt.withHistory))

			// WHEN
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			// THEN
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("Expected body to contain %q, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestNewRouter_MetricsCountRenders(t *testing.T) {
	// GIVEN
	mux := NewRouter(pageDeps(t, "0", false))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// WHEN
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// THEN
	if !strings.Contains(w.Body.String(), `testpage_page_renders_total{outcome="ok"} 1`) {
		t.Errorf("Expected one successful render in exposition, got:\n%s", w.Body.String())
	}
}

func TestStartServer_ServesDummyPage(t *testing.T) {
	// GIVEN
	deps := pageDeps(t, "0", false)

	// WHEN
	listener, server, err := StartServer(deps)
	if err != nil {
		t.Fatalf("StartServer() unexpected error: %v", err)
	}
	defer server.Close()
	defer listener.Close()

	// THEN
	status, body := get(t, fmt.Sprintf("http://%s/", listener.Addr()))
	if status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if !strings.Contains(body, "<title>GH Automation Setup and Testing Page</title>") {
		t.Errorf("Expected page title in body, got %q", body)
	}
}

func TestStartServer_ListenErrors(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to reserve a port: %v", err)
	}
	defer busy.Close()

	tests := map[string]string{
		"port out of range": "99999",
		"port in use":       fmt.Sprintf("%d", busy.Addr().(*net.TCPAddr).Port),
	}

	for name, port := range tests {
		t.Run(name, func(t *testing.T) {
			// GIVEN
			deps := pageDeps(t, port, false)

			// WHEN
			listener, server, err := StartServer(deps)

			// THEN
			if err == nil {
				listener.Close()
				server.Close()
				t.Fatal("Expected listen error, got nil")
			}
			if !strings.Contains(err.Error(), "failed to create listener") {
				t.Errorf("Expected wrapped listener error, got %v", err)
			}
		})
	}
}

func TestRunServe_ListenError(t *testing.T) {
	// GIVEN
	deps := pageDeps(t, "99999", false)

	// WHEN
	err := RunServe(deps)

	// THEN
	if err == nil {
		t.Error("Expected error for unusable port, got nil")
	}
}

func TestWaitForShutdown_DrainsPageRequest(t *testing.T) {
	for _, sig := range []os.Signal{syscall.SIGTERM, syscall.SIGINT} {
		t.Run(sig.String(), func(t *testing.T) {
			// GIVEN a page render that is still in flight
			deps := pageDeps(t, "0", false)
			page := deps.PageHandler
			started := make(chan struct{})
			deps.PageHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				close(started)
				time.Sleep(150 * time.Millisecond)
				page.ServeHTTP(w, r)
			})

			listener, server, err := StartServer(deps)
			if err != nil {
				t.Fatalf("StartServer() unexpected error: %v", err)
			}
			defer listener.Close()
			url := fmt.Sprintf("http://%s/", listener.Addr())

			statusCh := make(chan int, 1)
			go func() {
				resp, err := http.Get(url)
				if err != nil {
					statusCh <- 0
					return
				}
				resp.Body.Close()
				statusCh <- resp.StatusCode
			}()
			<-started

			// WHEN
			shutdown := make(chan os.Signal, 1)
			shutdown <- sig
			err = WaitForShutdown(server, shutdown)

			// THEN
			if err != nil {
				t.Errorf("Expected nil error, got: %v", err)
			}
			if status := <-statusCh; status != http.StatusOK {
				t.Errorf("Expected in-flight page to complete with 200, got %d", status)
			}
			if _, err := http.Get(url); err == nil {
				t.Error("Expected server to refuse requests after shutdown")
			}
		})
	}
}

func TestWaitForShutdownWithTimeout_ForcesClose(t *testing.T) {
	// GIVEN a request that outlives the shutdown timeout
	deps := pageDeps(t, "0", false)
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	deps.PageHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	})

	listener, server, err := StartServer(deps)
	if err != nil {
		t.Fatalf("StartServer() unexpected error: %v", err)
	}
	defer listener.Close()

	go http.Get(fmt.Sprintf("http://%s/", listener.Addr()))
	<-started

	// WHEN
	shutdown := make(chan os.Signal, 1)
	shutdown <- syscall.SIGTERM
	start := time.Now()
	err = WaitForShutdownWithTimeout(server, shutdown, 50*time.Millisecond)

	// THEN
	if err != nil {
		t.Errorf("Expected forced close to succeed, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected shutdown to give up after the timeout, took %s", elapsed)
	}
}
