package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sort"

	"github.com/google/go-github/v72/github"
	"github.com/klimeurt/pages-collector/internal/config"
	"github.com/klimeurt/pages-collector/internal/fetch"
	"github.com/klimeurt/pages-collector/internal/pages"
	"github.com/klimeurt/pages-collector/internal/publish"
)

// Scanner handles the GitHub scanning operations
type Scanner struct {
	config   *config.Config
	client   *fetch.Client
	resolver *pages.Resolver
	filter   Filter
	sinks    []publish.Sink
	natsSink *publish.NATSSink
}

// New creates a new Scanner instance
func New(cfg *config.Config) (*Scanner, error) {
	client, err := fetch.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	s := &Scanner{
		config:   cfg,
		client:   client,
		resolver: pages.New(cfg.GitHubUser, cfg.GitHubToken, client, client),
		filter:   NewFilter(cfg),
		sinks:    []publish.Sink{publish.NewFileSink(cfg.OutputPath)},
	}

	// NATS output is optional
	if cfg.NATSUrl != "" {
		natsSink, err := publish.NewNATSSink(cfg.NATSUrl, cfg.NATSSubject)
		if err != nil {
			return nil, err
		}
		s.natsSink = natsSink
		s.sinks = append(s.sinks, natsSink)
	}

	return s, nil
}

// ScanRepositories collects the Pages projects and writes them to every sink.
// Nothing is written when the scan fails.
func (s *Scanner) ScanRepositories(ctx context.Context) error {
	projects, err := s.Collect(ctx)
	if err != nil {
		return err
	}

	data, err := Render(projects)
	if err != nil {
		return err
	}

	for _, sink := range s.sinks {
		if err := sink.Write(ctx, data); err != nil {
			return fmt.Errorf("failed to write to %s: %w", sink.Name(), err)
		}
		log.Printf("Wrote %d projects to %s", len(projects), sink.Name())
	}

	return nil
}

// Collect fetches the user's repositories and returns the ones with a Pages site, sorted
func (s *Scanner) Collect(ctx context.Context) ([]Project, error) {
	user := s.config.GitHubUser
	log.Printf("Starting repository scan for user: %s", user)

	// Only the first page: the 100 most recently updated repositories
	var repos []*github.Repository
	path := fmt.Sprintf("users/%s/repos?per_page=100&type=owner&sort=updated", url.PathEscape(user))
	if err := s.client.GetJSON(ctx, path, nil, &repos); err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	log.Printf("Found %d repositories", len(repos))

	projects := []Project{}
	filtered := 0
	detected := make(map[string]int)
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan interrupted: %w", err)
		}

		if ok, reason := s.filter.Accept(repo); !ok {
			log.Printf("Skipping repository %s: %s", repo.GetName(), reason)
			filtered++
			continue
		}

		result := s.resolver.Resolve(ctx, repo.GetName())
		if !result.HasPages {
			log.Printf("No Pages site found for %s", repo.GetName())
			continue
		}

		log.Printf("Found Pages site for %s via %s", repo.GetName(), result.Method)
		detected[result.Method]++
		projects = append(projects, NewProject(user, repo))
	}

	SortProjects(projects)

	log.Printf("Scan complete: %d repositories, %d filtered out, %d with Pages (api: %d, direct url check: %d, pattern match: %d)",
		len(repos), filtered, len(projects),
		detected[pages.MethodAPI], detected[pages.MethodProbe], detected[pages.MethodPattern])
	return projects, nil
}

// SortProjects orders by stars, then most recently updated
func SortProjects(projects []Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].Stars != projects[j].Stars {
			return projects[i].Stars > projects[j].Stars
		}
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
}

// Render serializes projects as a two-space indented JSON array
func Render(projects []Project) ([]byte, error) {
	if projects == nil {
		projects = []Project{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(projects); err != nil {
		return nil, fmt.Errorf("failed to marshal projects: %w", err)
	}
	return buf.Bytes(), nil
}

// Close cleanly shuts down the scanner
func (s *Scanner) Close() {
	if s.natsSink != nil {
		s.natsSink.Close()
	}
}
