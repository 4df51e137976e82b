package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v72/github"
	"github.com/klimeurt/pages-collector/internal/config"
	"golang.org/x/oauth2"
)

// UserAgent identifies the collector on every outgoing request
const UserAgent = "pages-collector"

// Client performs GitHub API and Pages host requests
type Client struct {
	ghClient     *github.Client
	probeClient  *http.Client
	probeTimeout time.Duration
}

// New creates a new Client. The bearer token is only attached when one is configured.
func New(cfg *config.Config) (*Client, error) {
	httpClient := &http.Client{}
	if cfg.GitHubToken != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.GitHubToken},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	ghClient := github.NewClient(httpClient)
	ghClient.UserAgent = UserAgent

	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = config.DefaultProbeTimeout
	}

	c := &Client{
		ghClient: ghClient,
		probeClient: &http.Client{
			// A redirect already proves the site exists
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		probeTimeout: probeTimeout,
	}

	if cfg.GitHubAPIURL != "" {
		if err := c.SetBaseURL(cfg.GitHubAPIURL); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// SetBaseURL points the API client at a different REST root
func (c *Client) SetBaseURL(rawURL string) error {
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse GitHub API URL %s: %w", rawURL, err)
	}
	c.ghClient.BaseURL = u
	return nil
}

// GetJSON issues a GET against path (relative to the API root) and decodes the JSON body into v
func (c *Client) GetJSON(ctx context.Context, path string, headers map[string]string, v any) error {
	req, err := c.ghClient.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := c.ghClient.Do(ctx, req, v)
	if err == nil {
		return nil
	}

	// 202 is still a success, go-github hands the payload back in the error
	var accepted *github.AcceptedError
	if errors.As(err, &accepted) {
		if v == nil || len(accepted.Raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(accepted.Raw, v); err != nil {
			return &ParseError{Err: err}
		}
		return nil
	}

	return classify(resp, err)
}

// Probe reports whether a HEAD request to rawURL answers with a status in [200,400).
// Network errors and timeouts count as "does not exist".
func (c *Client) Probe(ctx context.Context, rawURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func classify(resp *github.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &ParseError{Err: err}
	}
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       responseBody(resp.Response, err),
		Err:        err,
	}
}

// responseBody returns the raw error body. go-github re-populates it after
// building its ErrorResponse.
func responseBody(resp *http.Response, err error) string {
	if resp.Body == nil {
		return err.Error()
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil || len(data) == 0 {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Message != "" {
			return errResp.Message
		}
		return err.Error()
	}
	return string(data)
}
