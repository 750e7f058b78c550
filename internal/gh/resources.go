package gh

import (
	"encoding/base64"
	"strings"
	"time"
)

// Organization is the subset of org metadata the engine consumes.
type Organization struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PublicRepos int    `json:"public_repos"`
	HTMLURL     string `json:"html_url"`
}

// Repository describes one candidate repository.
type Repository struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Stars         int       `json:"stargazers_count"`
	Language      string    `json:"language"`
	Fork          bool      `json:"fork"`
	Archived      bool      `json:"archived"`
	PushedAt      time.Time `json:"pushed_at"`
	DefaultBranch string    `json:"default_branch"`
	HTMLURL       string    `json:"html_url"`
}

// Branch is a ref with its head commit SHA.
type Branch struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// Commit carries the message and committer date used by the commit and
// branch scan steps.
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message   string `json:"message"`
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// PullRequest is the subset of PR metadata the PR scan consumes.
type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	HTMLURL   string    `json:"html_url"`
	Head      struct {
		Ref string `json:"ref"`
	} `json:"head"`
}

// PullRequestFile is one changed file in a PR diff.
type PullRequestFile struct {
	Filename string `json:"filename"`
}

// ContentEntry is a file or directory returned by the contents API.
type ContentEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"` // "file" or "dir"
	Size     int    `json:"size"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
	HTMLURL  string `json:"html_url"`
}

// Decode returns the entry's raw bytes for base64-encoded file content.
func (e *ContentEntry) Decode() ([]byte, error) {
	if e.Encoding != "base64" {
		return []byte(e.Content), nil
	}
	cleaned := strings.ReplaceAll(e.Content, "\n", "")
	return base64.StdEncoding.DecodeString(cleaned)
}

// SearchUsersResult is the envelope of /search/users.
type SearchUsersResult struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Login string `json:"login"`
	} `json:"items"`
}
