package collector

import (
	"fmt"

	"github.com/google/go-github/v72/github"
	"github.com/klimeurt/pages-collector/internal/config"
)

// Filter decides which repositories are worth checking for Pages
type Filter struct {
	ExcludeForks    bool
	ExcludeArchived bool
	MinStars        int
}

// NewFilter builds a Filter from the configuration
func NewFilter(cfg *config.Config) Filter {
	return Filter{
		ExcludeForks:    cfg.ExcludeForks,
		ExcludeArchived: cfg.ExcludeArchived,
		MinStars:        cfg.MinStars,
	}
}

// Accept reports whether repo is eligible, and why not when it isn't
func (f Filter) Accept(repo *github.Repository) (bool, string) {
	if f.ExcludeForks && repo.GetFork() {
		return false, "fork"
	}
	if f.ExcludeArchived && repo.GetArchived() {
		return false, "archived"
	}
	if stars := repo.GetStargazersCount(); stars < f.MinStars {
		return false, fmt.Sprintf("%d stars, minimum is %d", stars, f.MinStars)
	}
	return true, ""
}
