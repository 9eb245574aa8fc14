package repourl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidRepoURL is returned when a repository URL does not look like
// http(s)://github.com/{owner}/{repo}.
var ErrInvalidRepoURL = errors.New("invalid github repository url")

// Ref identifies a repository by owner and name.
type Ref struct {
	Owner string
	Repo  string
}

// Parse extracts the owner and repository name from a GitHub URL.
// Accepts an optional trailing slash, a trailing .git suffix and deeper
// path segments (e.g. /tree/main). No network access is performed.
func Parse(raw string) (Ref, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %s", ErrInvalidRepoURL, raw)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return Ref{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidRepoURL, u.Scheme)
	}
	if u.Host != "github.com" {
		return Ref{}, fmt.Errorf("%w: host %q is not github.com", ErrInvalidRepoURL, u.Host)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, fmt.Errorf("%w: missing owner or repository segment", ErrInvalidRepoURL)
	}

	return Ref{
		Owner: parts[0],
		Repo:  strings.TrimSuffix(parts[1], ".git"),
	}, nil
}

// Namespace derives the storage partition key for this repository.
// It is a pure function of (owner, repo): lower-cased, with dashes folded
// to underscores, so re-ingesting the same repository always lands in the
// same partition.
func (r Ref) Namespace() string {
	return "github_" + normalize(r.Owner) + "_" + normalize(r.Repo)
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "-", "_")
}
