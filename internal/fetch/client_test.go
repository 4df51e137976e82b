package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-github/v72/github"
	"github.com/klimeurt/pages-collector/internal/config"
)

func newTestClient(t *testing.T, token, apiURL string, probeTimeout time.Duration) *Client {
	t.Helper()
	c, err := New(&config.Config{
		GitHubToken:  token,
		GitHubAPIURL: apiURL,
		ProbeTimeout: probeTimeout,
	})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	return c
}

func TestGetJSONSuccess(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		if r.Method != http.MethodGet {
			t.Errorf("Method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/users/octocat/repos" {
			t.Errorf("Path = %s, want /users/octocat/repos", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"repo1","stargazers_count":3}]`))
	}))
	defer server.Close()

	tests := []struct {
		name     string
		token    string
		wantAuth string
	}{
		{name: "unauthenticated", token: "", wantAuth: ""},
		{name: "authenticated", token: "token123", wantAuth: "Bearer token123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.token, server.URL, time.Second)

			var repos []*github.Repository
			err := c.GetJSON(context.Background(), "users/octocat/repos", map[string]string{"X-Test": "yes"}, &repos)
			if err != nil {
				t.Fatalf("GetJSON() unexpected error: %v", err)
			}

			if len(repos) != 1 || repos[0].GetName() != "repo1" || repos[0].GetStargazersCount() != 3 {
				t.Errorf("GetJSON() decoded %+v", repos)
			}
			if got := gotHeaders.Get("User-Agent"); got != UserAgent {
				t.Errorf("User-Agent = %q, want %q", got, UserAgent)
			}
			if got := gotHeaders.Get("Accept"); !strings.Contains(got, "application/vnd.github") {
				t.Errorf("Accept = %q, want versioned GitHub media type", got)
			}
			if got := gotHeaders.Get("X-Test"); got != "yes" {
				t.Errorf("X-Test = %q, want %q", got, "yes")
			}
			if got := gotHeaders.Get("Authorization"); got != tt.wantAuth {
				t.Errorf("Authorization = %q, want %q", got, tt.wantAuth)
			}
		})
	}
}

func TestGetJSONHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	c := newTestClient(t, "", server.URL, time.Second)

	var out map[string]any
	err := c.GetJSON(context.Background(), "repos/octocat/missing/pages", nil, &out)
	if err == nil {
		t.Fatal("GetJSON() expected error, got nil")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("GetJSON() error = %T, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, http.StatusNotFound)
	}
	if !strings.Contains(httpErr.Body, "Not Found") {
		t.Errorf("Body = %q, want to contain %q", httpErr.Body, "Not Found")
	}
}

func TestGetJSONParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name": "broken"`))
	}))
	defer server.Close()

	c := newTestClient(t, "", server.URL, time.Second)

	var repos []*github.Repository
	err := c.GetJSON(context.Background(), "users/octocat/repos", nil, &repos)
	if err == nil {
		t.Fatal("GetJSON() expected error, got nil")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("GetJSON() error = %T (%v), want *ParseError", err, err)
	}
}

func TestGetJSONNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	apiURL := server.URL
	server.Close()

	c := newTestClient(t, "", apiURL, time.Second)

	var out map[string]any
	err := c.GetJSON(context.Background(), "users/octocat/repos", nil, &out)
	if err == nil {
		t.Fatal("GetJSON() expected error, got nil")
	}

	var httpErr *HTTPError
	var parseErr *ParseError
	if errors.As(err, &httpErr) || errors.As(err, &parseErr) {
		t.Errorf("GetJSON() error = %T, want a transport error", err)
	}
}

func TestProbe(t *testing.T) {
	var mu sync.Mutex
	var gotMethod, gotAgent, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotMethod = r.Method
		gotAgent = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		mu.Unlock()
		switch r.URL.Path {
		case "/ok/":
			w.WriteHeader(http.StatusOK)
		case "/moved":
			http.Redirect(w, r, "/moved/", http.StatusMovedPermanently)
		case "/slow/":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(t, "token123", "", 100*time.Millisecond)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "success status", path: "/ok/", want: true},
		{name: "redirect counts as existing", path: "/moved", want: true},
		{name: "not found", path: "/missing/", want: false},
		{name: "timeout", path: "/slow/", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Probe(context.Background(), server.URL+tt.path); got != tt.want {
				t.Errorf("Probe(%s) = %v, want %v", tt.path, got, tt.want)
			}

			mu.Lock()
			defer mu.Unlock()
			if gotMethod != http.MethodHead {
				t.Errorf("Method = %s, want HEAD", gotMethod)
			}
			if gotAgent != UserAgent {
				t.Errorf("User-Agent = %q, want %q", gotAgent, UserAgent)
			}
			if gotAuth != "" {
				t.Errorf("Authorization = %q, probe must not send credentials", gotAuth)
			}
		})
	}
}

func TestProbeUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL + "/repo/"
	server.Close()

	c := newTestClient(t, "", "", time.Second)
	if c.Probe(context.Background(), target) {
		t.Error("Probe() = true for unreachable host, want false")
	}
}

func TestSetBaseURLAddsTrailingSlash(t *testing.T) {
	c := newTestClient(t, "", "", time.Second)
	if err := c.SetBaseURL("https://ghe.example.com/api/v3"); err != nil {
		t.Fatalf("SetBaseURL() unexpected error: %v", err)
	}
	if got := c.ghClient.BaseURL.String(); got != "https://ghe.example.com/api/v3/" {
		t.Errorf("BaseURL = %s, want trailing slash", got)
	}
}
