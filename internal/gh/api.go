package gh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// GetOrganization fetches organization metadata by login.
func (c *Client) GetOrganization(ctx context.Context, login string) (*Organization, error) {
	var org Organization
	if err := c.GetJSON(ctx, "/orgs/"+url.PathEscape(login), nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// SearchOrganizations searches for organizations matching a free-form name.
func (c *Client) SearchOrganizations(ctx context.Context, name string, perPage int) (*SearchUsersResult, error) {
	params := url.Values{}
	params.Set("q", name+" type:org")
	params.Set("per_page", strconv.Itoa(perPage))
	var result SearchUsersResult
	if err := c.GetJSON(ctx, "/search/users", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListRepositories fetches one page of an organization's repositories,
// sorted by most recent push.
func (c *Client) ListRepositories(ctx context.Context, login string, page, perPage int) ([]Repository, error) {
	params := url.Values{}
	params.Set("type", "all")
	params.Set("sort", "pushed")
	params.Set("direction", "desc")
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	var repos []Repository
	if err := c.GetJSON(ctx, fmt.Sprintf("/orgs/%s/repos", url.PathEscape(login)), params, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// ListBranches fetches up to perPage branches of a repository.
func (c *Client) ListBranches(ctx context.Context, owner, repo string, perPage int) ([]Branch, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(perPage))
	var branches []Branch
	if err := c.GetJSON(ctx, repoPath(owner, repo, "branches"), params, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// ListCommits fetches the newest commits on a ref.
func (c *Client) ListCommits(ctx context.Context, owner, repo, ref string, perPage int) ([]Commit, error) {
	params := url.Values{}
	if ref != "" {
		params.Set("sha", ref)
	}
	params.Set("per_page", strconv.Itoa(perPage))
	var commits []Commit
	if err := c.GetJSON(ctx, repoPath(owner, repo, "commits"), params, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

// GetCommit fetches a single commit by SHA.
func (c *Client) GetCommit(ctx context.Context, owner, repo, sha string) (*Commit, error) {
	var commit Commit
	if err := c.GetJSON(ctx, repoPath(owner, repo, "commits/"+url.PathEscape(sha)), nil, &commit); err != nil {
		return nil, err
	}
	return &commit, nil
}

// ListPullRequests fetches PRs in the given state, newest first.
func (c *Client) ListPullRequests(ctx context.Context, owner, repo, state string, perPage int) ([]PullRequest, error) {
	params := url.Values{}
	params.Set("state", state)
	params.Set("sort", "created")
	params.Set("direction", "desc")
	params.Set("per_page", strconv.Itoa(perPage))
	var prs []PullRequest
	if err := c.GetJSON(ctx, repoPath(owner, repo, "pulls"), params, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

// ListPullRequestFiles fetches the changed files of one PR.
func (c *Client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]PullRequestFile, error) {
	params := url.Values{}
	params.Set("per_page", "100")
	var files []PullRequestFile
	path := repoPath(owner, repo, fmt.Sprintf("pulls/%d/files", number))
	if err := c.GetJSON(ctx, path, params, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// GetFile fetches a single file's content entry. Returns ErrNotFound when
// the path does not exist or is a directory.
func (c *Client) GetFile(ctx context.Context, owner, repo, path string) (*ContentEntry, error) {
	var entry ContentEntry
	if err := c.GetJSON(ctx, contentsPath(owner, repo, path), nil, &entry); err != nil {
		return nil, err
	}
	if entry.Type != "" && entry.Type != "file" {
		return nil, fmt.Errorf("%s is not a file: %w", path, ErrNotFound)
	}
	return &entry, nil
}

// ListDirectory fetches a directory listing. Returns ErrNotFound when the
// path does not exist or is a regular file (the contents API answers with an
// object instead of an array then).
func (c *Client) ListDirectory(ctx context.Context, owner, repo, path string) ([]ContentEntry, error) {
	body, err := c.Get(ctx, contentsPath(owner, repo, path), nil)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%s is not a directory: %w", path, ErrNotFound)
	}
	var entries []ContentEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return entries, nil
}

func repoPath(owner, repo, tail string) string {
	return fmt.Sprintf("/repos/%s/%s/%s", url.PathEscape(owner), url.PathEscape(repo), tail)
}

func contentsPath(owner, repo, path string) string {
	return fmt.Sprintf("/repos/%s/%s/contents/%s", url.PathEscape(owner), url.PathEscape(repo), path)
}
