package github

import (
	"context"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const requestTimeout = 30 * time.Second

// Client wraps the go-github client with the two calls the fetcher needs.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub API client authenticated with a static access
// token. Works for both PAT and OAuth access tokens. The client is safe for
// concurrent use by multiple ingestion runs.
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = requestTimeout

	return &Client{gh: gh.NewClient(tc)}
}

// GetTree fetches the full repository tree at ref in one recursive call.
func (c *Client) GetTree(ctx context.Context, owner, repo, ref string) (*gh.Tree, error) {
	tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// GetBlob fetches a blob (file content) by its SHA. Content is returned in
// the host's transport encoding, usually base64.
func (c *Client) GetBlob(ctx context.Context, owner, repo, sha string) (*gh.Blob, error) {
	blob, _, err := c.gh.Git.GetBlob(ctx, owner, repo, sha)
	if err != nil {
		return nil, err
	}
	return blob, nil
}
