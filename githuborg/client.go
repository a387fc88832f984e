// Package githuborg is a small client for the public parts of the GitHub
// organizations API.
package githuborg

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public GitHub API.
const DefaultBaseURL = "https://api.github.com"

// Org is the subset of the organization payload the client relies on.
type Org struct {
	Login       string `json:"login"`
	ID          int64  `json:"id,omitempty"`
	URL         string `json:"url,omitempty"`
	ReposURL    string `json:"repos_url,omitempty"`
	Description string `json:"description,omitempty"`
}

// License identifies a repository license by its SPDX-like key.
type License struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// Repo is one entry of the repositories payload. License is nil when GitHub
// reports no license.
type Repo struct {
	Name     string   `json:"name"`
	FullName string   `json:"full_name,omitempty"`
	Private  bool     `json:"private,omitempty"`
	License  *License `json:"license"`
}

// OrgURL returns the organization endpoint under baseURL.
func OrgURL(baseURL, org string) string {
	return fmt.Sprintf("%s/orgs/%s", strings.TrimRight(baseURL, "/"), org)
}

// Client reads one organization. The organization and repository payloads
// are fetched at most once per Client; failed fetches are retried on the
// next call.
type Client struct {
	org     string
	baseURL string
	fetcher Fetcher
	logger  zerolog.Logger

	mu          sync.Mutex
	cachedOrg   *Org
	cachedRepos []Repo
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithFetcher(f Fetcher) ClientOption {
	return func(c *Client) {
		c.fetcher = f
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the named organization. Without
// WithFetcher it talks to the API over plain HTTP.
func NewClient(org string, opts ...ClientOption) *Client {
	c := &Client{
		org:     org,
		baseURL: DefaultBaseURL,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = NewHTTPFetcher(nil, c.logger)
	}
	c.logger = c.logger.With().Str("component", "GithubOrgClient").Str("org", org).Logger()
	return c
}

// Org returns the organization payload.
func (c *Client) Org(ctx context.Context) (Org, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orgLocked(ctx)
}

func (c *Client) orgLocked(ctx context.Context) (Org, error) {
	if c.cachedOrg != nil {
		return *c.cachedOrg, nil
	}
	var org Org
	if err := GetJSON(ctx, c.fetcher, OrgURL(c.baseURL, c.org), &org); err != nil {
		return Org{}, fmt.Errorf("failed to fetch organization %s: %w", c.org, err)
	}
	c.cachedOrg = &org
	return org, nil
}

// PublicReposURL returns the repos_url advertised by the organization.
func (c *Client) PublicReposURL(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.publicReposURLLocked(ctx)
}

func (c *Client) publicReposURLLocked(ctx context.Context) (string, error) {
	org, err := c.orgLocked(ctx)
	if err != nil {
		return "", err
	}
	if org.ReposURL == "" {
		return "", fmt.Errorf("%s: %w", c.org, ErrNoReposURL)
	}
	return org.ReposURL, nil
}

// ReposPayload returns every repository listed at the repos URL. The result
// is a copy; changing it does not affect later calls.
func (c *Client) ReposPayload(ctx context.Context) ([]Repo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cachedRepos != nil {
		return cloneRepos(c.cachedRepos), nil
	}
	url, err := c.publicReposURLLocked(ctx)
	if err != nil {
		return nil, err
	}
	var repos []Repo
	if err := GetJSON(ctx, c.fetcher, url, &repos); err != nil {
		return nil, fmt.Errorf("failed to fetch repositories of %s: %w", c.org, err)
	}
	if repos == nil {
		repos = []Repo{}
	}
	c.cachedRepos = repos
	c.logger.Debug().Int("repos", len(repos)).Msg("Repositories loaded")
	return cloneRepos(repos), nil
}

func cloneRepos(repos []Repo) []Repo {
	out := slices.Clone(repos)
	for i := range out {
		if out[i].License != nil {
			l := *out[i].License
			out[i].License = &l
		}
	}
	return out
}

// PublicRepos returns repository names in payload order. A non-empty
// license keeps only repositories carrying that license key.
func (c *Client) PublicRepos(ctx context.Context, license string) ([]string, error) {
	repos, err := c.ReposPayload(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		if license == "" || HasLicense(repo, license) {
			names = append(names, repo.Name)
		}
	}
	return names, nil
}

// HasLicense reports whether repo is licensed under licenseKey. Repositories
// without license information and an empty key never match.
func HasLicense(repo Repo, licenseKey string) bool {
	if licenseKey == "" || repo.License == nil {
		return false
	}
	return repo.License.Key == licenseKey
}
