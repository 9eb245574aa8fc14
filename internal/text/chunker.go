package text

import (
	"path"
	"regexp"
	"strings"
)

// Approximate characters per token, used to translate token budgets into
// byte budgets without pulling in a tokenizer.
const charsPerToken = 4

var fenceRe = regexp.MustCompile("(?s)```([a-zA-Z0-9_]+)?[[:space:]]*\\n(.*?)\\n[[:space:]]*```")

var headerRe = regexp.MustCompile(`(?m)^#{1,6}\s`)

var markdownExts = map[string]struct{}{
	".md":  {},
	".mdx": {},
	".rst": {},
}

// Chunk splits file content into embedding-sized pieces. Markdown-like files
// are split fence-aware so code blocks stay intact; everything else is split
// by lines with a small overlap. Content that fits the budget passes through
// as a single chunk. Empty chunks are never returned.
func Chunk(content, filePath string, maxTokens, overlap int) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	maxChars := maxTokens * charsPerToken
	if len(content) <= maxChars {
		return []string{content}
	}

	if _, ok := markdownExts[strings.ToLower(path.Ext(filePath))]; ok {
		return chunkMarkdown(content, maxChars)
	}
	return chunkLines(content, maxChars, overlap)
}

// chunkMarkdown separates fenced code blocks from prose and chunks each on
// its own. Code blocks keep their fences so the embedding sees the language
// tag.
func chunkMarkdown(content string, maxChars int) []string {
	var chunks []string

	lastIndex := 0
	for _, match := range fenceRe.FindAllStringSubmatchIndex(content, -1) {
		if match[0] > lastIndex {
			chunks = append(chunks, chunkProse(content[lastIndex:match[0]], maxChars)...)
		}

		lang := ""
		if match[2] != -1 {
			lang = content[match[2]:match[3]]
		}
		block := content[match[4]:match[5]]

		if len(block) > maxChars {
			for _, piece := range chunkLines(block, maxChars, 0) {
				chunks = append(chunks, "```"+lang+"\n"+piece+"\n```")
			}
		} else {
			chunks = append(chunks, "```"+lang+"\n"+block+"\n```")
		}

		lastIndex = match[1]
	}

	if lastIndex < len(content) {
		chunks = append(chunks, chunkProse(content[lastIndex:], maxChars)...)
	}

	return chunks
}

// chunkProse splits prose respecting structure: headers, then paragraphs.
// Oversized paragraphs fall back to line splitting.
func chunkProse(content string, maxChars int) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var sections []string
	lastIdx := 0
	for _, loc := range headerRe.FindAllStringIndex(content, -1) {
		if loc[0] > lastIdx {
			sections = append(sections, content[lastIdx:loc[0]])
		}
		lastIdx = loc[0]
	}
	if lastIdx < len(content) {
		sections = append(sections, content[lastIdx:])
	}

	var chunks []string
	for _, section := range sections {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		if len(section) <= maxChars {
			chunks = append(chunks, section)
			continue
		}

		var current strings.Builder
		for _, para := range strings.Split(section, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			if current.Len()+len(para)+2 <= maxChars {
				if current.Len() > 0 {
					current.WriteString("\n\n")
				}
				current.WriteString(para)
				continue
			}
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			if len(para) > maxChars {
				chunks = append(chunks, chunkLines(para, maxChars, 0)...)
			} else {
				current.WriteString(para)
			}
		}
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
		}
	}

	return chunks
}

// chunkLines splits content into line groups under the byte budget, carrying
// overlap lines between consecutive chunks for continuity.
func chunkLines(content string, maxChars, overlapLines int) []string {
	lines := strings.Split(content, "\n")

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		chunk := strings.TrimRight(strings.Join(current, "\n"), "\n")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		if overlapLines > 0 && overlapLines < len(current) {
			current = append([]string(nil), current[len(current)-overlapLines:]...)
		} else {
			current = nil
		}
		currentLen = 0
		for _, l := range current {
			currentLen += len(l) + 1
		}
	}

	for _, line := range lines {
		lineLen := len(line) + 1
		if currentLen+lineLen > maxChars && currentLen > 0 {
			flush()
		}
		current = append(current, line)
		currentLen += lineLen
	}
	flush()

	return chunks
}
