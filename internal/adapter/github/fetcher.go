package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	gh "github.com/google/go-github/v80/github"

	"libscribe/internal/document"
)

// DefaultConcurrency bounds the per-file content fetch fan-out.
const DefaultConcurrency = 10

// TreeSource is the slice of the GitHub API the fetcher consumes.
type TreeSource interface {
	GetTree(ctx context.Context, owner, repo, ref string) (*gh.Tree, error)
	GetBlob(ctx context.Context, owner, repo, sha string) (*gh.Blob, error)
}

// FetchError reports a repository-level failure: the tree listing itself
// could not be retrieved. Per-file failures never produce a FetchError.
type FetchError struct {
	Owner  string
	Repo   string
	Branch string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch repository %s/%s@%s: %v", e.Owner, e.Repo, e.Branch, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves file content for every path accepted by the file filter.
type Fetcher struct {
	client      TreeSource
	concurrency int
}

func NewFetcher(client TreeSource, concurrency int) *Fetcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Fetcher{client: client, concurrency: concurrency}
}

// FetchRepository lists the repository tree at branch and returns a Document
// for every accepted, non-empty, decodable file. Individual file failures
// are logged and skipped; only the top-level listing failure is returned,
// wrapped in a FetchError. The result is sorted by path ascending so output
// order is independent of fetch concurrency.
func (f *Fetcher) FetchRepository(ctx context.Context, owner, repo, branch, language string) ([]document.Document, error) {
	tree, err := f.client.GetTree(ctx, owner, repo, branch)
	if err != nil {
		return nil, &FetchError{Owner: owner, Repo: repo, Branch: branch, Err: err}
	}

	filter := NewFileFilter(language)

	var candidates []*gh.TreeEntry
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		if !filter.ShouldFetch(entry.GetPath()) {
			continue
		}
		candidates = append(candidates, entry)
	}

	var (
		mu      sync.Mutex
		docs    []document.Document
		skipped int
	)

	jobs := make(chan *gh.TreeEntry)
	var wg sync.WaitGroup

	workers := f.concurrency
	if workers > len(candidates) {
		workers = len(candidates)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				doc, ok := f.fetchOne(ctx, owner, repo, entry)
				mu.Lock()
				if ok {
					docs = append(docs, doc)
				} else {
					skipped++
				}
				mu.Unlock()
			}
		}()
	}

	for _, entry := range candidates {
		jobs <- entry
	}
	close(jobs)
	wg.Wait()

	if skipped > 0 {
		slog.InfoContext(ctx, "skipped files during fetch",
			"owner", owner, "repo", repo, "skipped", skipped, "fetched", len(docs))
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// fetchOne retrieves and decodes a single blob. Any failure (fetch, decode,
// non-UTF8 content) or empty result skips the file without aborting the run.
func (f *Fetcher) fetchOne(ctx context.Context, owner, repo string, entry *gh.TreeEntry) (document.Document, bool) {
	path := entry.GetPath()

	blob, err := f.client.GetBlob(ctx, owner, repo, entry.GetSHA())
	if err != nil {
		slog.WarnContext(ctx, "skipping file: blob fetch failed", "path", path, "error", err)
		return document.Document{}, false
	}

	raw := blob.GetContent()
	data := []byte(raw)
	if blob.GetEncoding() == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw, "\n", ""))
		if err != nil {
			slog.WarnContext(ctx, "skipping file: base64 decode failed", "path", path, "error", err)
			return document.Document{}, false
		}
		data = decoded
	}

	if !utf8.Valid(data) {
		slog.WarnContext(ctx, "skipping file: content is not valid utf-8", "path", path)
		return document.Document{}, false
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		slog.DebugContext(ctx, "skipping empty file", "path", path)
		return document.Document{}, false
	}

	return document.Document{
		ID:   entry.GetSHA(),
		Text: text,
		Path: path,
	}, true
}
