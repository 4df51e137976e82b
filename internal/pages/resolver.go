package pages

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/go-github/v72/github"
	"github.com/klimeurt/pages-collector/internal/fetch"
)

// Detection methods reported in Result.Method
const (
	MethodAPI      = "api"
	MethodProbe    = "direct url check"
	MethodPattern  = "pattern match"
	MethodNotFound = "not found"
)

// Outcome is the answer of a single detection tier
type Outcome int

const (
	// Skipped means the tier's preconditions were not met
	Skipped Outcome = iota
	NotDetected
	Detected
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case NotDetected:
		return "not detected"
	case Detected:
		return "detected"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// API is the JSON side of the fetch client
type API interface {
	GetJSON(ctx context.Context, path string, headers map[string]string, v any) error
}

// Prober checks whether a URL answers
type Prober interface {
	Probe(ctx context.Context, url string) bool
}

// Tier is one detection strategy. Tiers never return errors.
type Tier interface {
	Method() string
	Detect(ctx context.Context, repo string) Outcome
}

// Result is the resolver's verdict for one repository
type Result struct {
	HasPages bool
	Method   string
}

// Resolver runs its tiers in order and stops at the first detection
type Resolver struct {
	tiers []Tier
}

// New creates the standard three-tier resolver. The API tier is skipped when token is empty.
func New(account, token string, api API, prober Prober) *Resolver {
	return NewWithTiers(
		&apiTier{account: account, enabled: token != "", api: api},
		&probeTier{account: account, prober: prober},
		&patternTier{account: account},
	)
}

// NewWithTiers creates a resolver over an explicit tier list
func NewWithTiers(tiers ...Tier) *Resolver {
	return &Resolver{tiers: tiers}
}

// Resolve decides whether repo has a published Pages site
func (r *Resolver) Resolve(ctx context.Context, repo string) Result {
	for _, tier := range r.tiers {
		if tier.Detect(ctx, repo) == Detected {
			return Result{HasPages: true, Method: tier.Method()}
		}
	}
	return Result{HasPages: false, Method: MethodNotFound}
}

// SiteURL returns the project site URL for repo
func SiteURL(account, repo string) string {
	return fmt.Sprintf("https://%s.github.io/%s/", account, repo)
}

// RootURL returns the account's user site URL
func RootURL(account string) string {
	return fmt.Sprintf("https://%s.github.io/", account)
}

// apiTier asks the Pages configuration endpoint, which needs a token
type apiTier struct {
	account string
	enabled bool
	api     API
}

func (t *apiTier) Method() string { return MethodAPI }

func (t *apiTier) Detect(ctx context.Context, repo string) Outcome {
	if !t.enabled {
		return Skipped
	}

	var info github.Pages
	path := fmt.Sprintf("repos/%s/%s/pages", t.account, repo)
	if err := t.api.GetJSON(ctx, path, nil, &info); err != nil {
		// 404 is the normal "not configured" answer
		var httpErr *fetch.HTTPError
		if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
			log.Printf("Pages API check for %s/%s failed, treating as not detected: %v", t.account, repo, err)
		}
		return NotDetected
	}

	return Detected
}

// probeTier sends a HEAD request to the expected project site URL
type probeTier struct {
	account string
	prober  Prober
}

func (t *probeTier) Method() string { return MethodProbe }

func (t *probeTier) Detect(ctx context.Context, repo string) Outcome {
	if t.prober.Probe(ctx, SiteURL(t.account, repo)) {
		return Detected
	}
	return NotDetected
}

// patternTier guesses from the repository name alone
type patternTier struct {
	account string
}

func (t *patternTier) Method() string { return MethodPattern }

func (t *patternTier) Detect(_ context.Context, repo string) Outcome {
	if _, ok := MatchPattern(t.account, repo); ok {
		return Detected
	}
	return NotDetected
}

// nameSuffixes are checked in order after the user site name
var nameSuffixes = []string{
	"-homepage",
	"-portfolio",
	"-website",
	"-site",
	"-demo",
	"-docs",
}

// MatchPattern returns the first naming pattern repo matches. Matching is case-sensitive.
func MatchPattern(account, repo string) (string, bool) {
	if userSite := account + ".github.io"; repo == userSite {
		return userSite, true
	}
	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(repo, suffix) {
			return suffix, true
		}
	}
	return "", false
}
