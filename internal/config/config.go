package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultGitHubUser   = "klimeurt"
	DefaultGitHubAPIURL = "https://api.github.com/"
	DefaultOutputPath   = "./projects.json"
	DefaultProbeTimeout = 5 * time.Second
	DefaultCronSchedule = "0 6 * * *" // Daily at 06:00
	DefaultNATSSubject  = "github.pages.projects"
)

// Config holds the application configuration
type Config struct {
	GitHubUser   string
	GitHubToken  string
	GitHubAPIURL string
	OutputPath   string
	// Repository filter
	ExcludeForks    bool
	ExcludeArchived bool
	MinStars        int
	// Pages detection
	ProbeTimeout time.Duration
	// Scheduling
	CronSchedule string
	RunOnStartup bool
	RunOnce      bool
	// Optional NATS output, disabled when NATSUrl is empty
	NATSUrl     string
	NATSSubject string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		GitHubUser:   os.Getenv("GITHUB_USERNAME"),
		GitHubToken:  os.Getenv("GITHUB_TOKEN"),
		GitHubAPIURL: os.Getenv("GITHUB_API_URL"),
		OutputPath:   os.Getenv("OUTPUT_PATH"),
		CronSchedule: os.Getenv("CRON_SCHEDULE"),
		NATSUrl:      os.Getenv("NATS_URL"),
		NATSSubject:  os.Getenv("NATS_SUBJECT"),
	}

	// Set defaults
	if cfg.GitHubUser == "" {
		cfg.GitHubUser = DefaultGitHubUser
	}
	if cfg.GitHubAPIURL == "" {
		cfg.GitHubAPIURL = DefaultGitHubAPIURL
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath
	}
	if cfg.CronSchedule == "" {
		cfg.CronSchedule = DefaultCronSchedule
	}
	if cfg.NATSSubject == "" {
		cfg.NATSSubject = DefaultNATSSubject
	}

	// Filters are on unless explicitly disabled
	cfg.ExcludeForks = os.Getenv("EXCLUDE_FORKS") != "false"
	cfg.ExcludeArchived = os.Getenv("EXCLUDE_ARCHIVED") != "false"

	if v := os.Getenv("MIN_STARS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("MIN_STARS must be an integer: %w", err)
		}
		if n < 0 {
			return nil, fmt.Errorf("MIN_STARS must not be negative, got %d", n)
		}
		cfg.MinStars = n
	}

	cfg.ProbeTimeout = DefaultProbeTimeout
	if v := os.Getenv("PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PROBE_TIMEOUT must be a duration: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("PROBE_TIMEOUT must be positive, got %s", d)
		}
		cfg.ProbeTimeout = d
	}

	if os.Getenv("RUN_ON_STARTUP") == "true" {
		cfg.RunOnStartup = true
	}
	if os.Getenv("RUN_ONCE") == "true" {
		cfg.RunOnce = true
	}

	return cfg, nil
}
