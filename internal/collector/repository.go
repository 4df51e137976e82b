package collector

import (
	"strings"
	"time"

	"github.com/google/go-github/v72/github"
	"github.com/klimeurt/pages-collector/internal/pages"
)

// Placeholders used when GitHub has no value
const (
	NoDescription   = "No description available"
	UnknownLanguage = "Unknown"
)

// Project is a repository with a published Pages site, as written to the output document
type Project struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	GitHubURL   string    `json:"githubUrl"`
	Language    string    `json:"language"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	UpdatedAt   time.Time `json:"updatedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	Topics      []string  `json:"topics"`
	Homepage    *string   `json:"homepage"`
}

// NewProject converts a GitHub repository into a Project.
// The site URL is derived from the name and is not checked against the tier that detected it.
func NewProject(account string, repo *github.Repository) Project {
	name := repo.GetName()

	url := pages.SiteURL(account, name)
	if strings.Contains(name, account+".github.io") {
		url = pages.RootURL(account)
	}

	description := repo.GetDescription()
	if description == "" {
		description = NoDescription
	}
	language := repo.GetLanguage()
	if language == "" {
		language = UnknownLanguage
	}

	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	return Project{
		Name:        name,
		Description: description,
		URL:         url,
		GitHubURL:   repo.GetHTMLURL(),
		Language:    language,
		Stars:       repo.GetStargazersCount(),
		Forks:       repo.GetForksCount(),
		UpdatedAt:   repo.GetUpdatedAt().Time,
		CreatedAt:   repo.GetCreatedAt().Time,
		Topics:      topics,
		Homepage:    repo.Homepage,
	}
}
