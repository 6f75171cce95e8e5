// Package githubapi proxies the GitHub repository listing used on public
// profile pages.
package githubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
)

var (
	// ErrUserNotFound means GitHub has no such user.
	ErrUserNotFound = errors.New("githubapi: no such user")
	// ErrUpstream covers every other upstream failure: non-2xx answers,
	// timeouts, transport errors.
	ErrUpstream = errors.New("githubapi: upstream unavailable")
)

type Repo struct {
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	CreatedAt   string `json:"created_at"`
}

type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	cache        *cache.Cache
}

// NewClient builds a GitHub client with a bounded request timeout and a
// short-lived per-username response cache.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		baseURL:      "https://api.github.com",
		clientID:     clientID,
		clientSecret: clientSecret,
		cache:        cache.New(10*time.Minute, 15*time.Minute),
	}
}

// NewClientWithBase is NewClient pointed at a different upstream, for tests.
func NewClientWithBase(baseURL string) *Client {
	c := NewClient("", "")
	c.baseURL = baseURL
	return c
}

// ListRepos returns the user's five most recently created public repos.
func (c *Client) ListRepos(ctx context.Context, username string) ([]Repo, error) {
	if repos, ok := c.cache.Get(username); ok {
		return repos.([]Repo), nil
	}

	q := url.Values{}
	q.Set("per_page", "5")
	q.Set("sort", "created:asc")
	if c.clientID != "" {
		q.Set("client_id", c.clientID)
		q.Set("client_secret", c.clientSecret)
	}

	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, ErrUpstream
	}
	req.Header.Set("User-Agent", "devconnect")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrUpstream
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, ErrUpstream
	}

	var repos []Repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, ErrUpstream
	}

	c.cache.Set(username, repos, cache.DefaultExpiration)
	return repos, nil
}
