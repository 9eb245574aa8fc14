package github

import (
	"log/slog"
	"path"
	"strings"
)

// Directory names that are never worth indexing: CI configs, editor
// settings, package manager caches.
var ignoredDirectories = map[string]struct{}{
	".github":      {},
	".circleci":    {},
	".gitlab":      {},
	".azure":       {},
	"workflows":    {},
	"node_modules": {},
	"CONTRIBUTING": {},
	".vscode":      {},
	".idea":        {},
	".yarn":        {},
}

// Documentation and configuration formats included regardless of language.
var commonExtensions = map[string]struct{}{
	".md":   {},
	".mdx":  {},
	".rst":  {},
	".txt":  {},
	".json": {},
	".yaml": {},
	".yml":  {},
	".ini":  {},
	".toml": {},
}

var languageExtensions = map[string]map[string]struct{}{
	"python": {
		".py":    {},
		".pyi":   {},
		".pyx":   {},
		".ipynb": {},
	},
	"typescript": {
		".ts":   {},
		".tsx":  {},
		".d.ts": {},
	},
	"javascript": {
		".js":  {},
		".jsx": {},
		".mjs": {},
	},
	"java": {
		".java": {},
		".jar":  {},
	},
	"go": {
		".go": {},
	},
	"rust": {
		".rs": {},
	},
	"c": {
		".c": {},
		".h": {},
	},
	"cpp": {
		".cpp": {},
		".hpp": {},
		".cc":  {},
		".hh":  {},
	},
}

// FileFilter decides, per file path, whether a file should be ingested.
// The allow-list is fixed at construction; decisions are pure and stateless.
type FileFilter struct {
	allowed map[string]struct{}
}

// NewFileFilter builds a filter scoped to a language. An empty language
// allows every known language; an unrecognized one falls back to the common
// documentation/config extensions only (logged, not an error).
func NewFileFilter(language string) *FileFilter {
	allowed := make(map[string]struct{}, len(commonExtensions))
	for ext := range commonExtensions {
		allowed[ext] = struct{}{}
	}

	switch {
	case language == "":
		for _, exts := range languageExtensions {
			for ext := range exts {
				allowed[ext] = struct{}{}
			}
		}
	default:
		exts, ok := languageExtensions[strings.ToLower(language)]
		if !ok {
			slog.Warn("unknown language, defaulting to common extensions only", "language", language)
			break
		}
		for ext := range exts {
			allowed[ext] = struct{}{}
		}
	}

	return &FileFilter{allowed: allowed}
}

// ShouldFetch reports whether the file at the given / separated path passes
// the directory exclusion and extension allow-list checks.
func (f *FileFilter) ShouldFetch(filePath string) bool {
	for _, segment := range strings.Split(filePath, "/") {
		if _, ignored := ignoredDirectories[segment]; ignored {
			return false
		}
	}

	_, ok := f.allowed[path.Ext(filePath)]
	return ok
}
