package document

// Document is the normalized unit of ingestible content. Text is always
// non-empty: the fetcher never materializes a Document from an empty or
// whitespace-only file.
type Document struct {
	// ID is the source host's content hash for the file (blob SHA).
	// Used as the upsert key downstream; empty means the store assigns one.
	ID string

	Text string

	// Path is the file path inside the repository, / separated.
	Path string

	Metadata map[string]any
}

// Normalize attaches provenance metadata to every document. Standard fields
// (path, owner, repo, branch, namespace) are applied first, then extra, so
// caller-supplied keys win on collision. The input slice is not modified.
func Normalize(docs []Document, owner, repo, branch, namespace string, extra map[string]any) []Document {
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		meta := map[string]any{
			"path":      doc.Path,
			"owner":     owner,
			"repo":      repo,
			"branch":    branch,
			"namespace": namespace,
		}
		for k, v := range extra {
			meta[k] = v
		}
		doc.Metadata = meta
		out = append(out, doc)
	}
	return out
}
