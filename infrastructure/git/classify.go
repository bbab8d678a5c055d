package git

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/fluxkit/precedent/domain/pattern"
)

// conventionalRe matches conventional-commit subjects: type(scope)?: subject.
var conventionalRe = regexp.MustCompile(
	`^(feat|fix|docs|style|refactor|perf|test|chore|build|ci)(\([^)]+\))?: (.+)$`,
)

// automatedMarkers identifies commits produced by tooling rather than a
// person. Matching commits carry no reusable intent and are skipped.
var automatedMarkers = []string{
	"Merge pull request",
	"Merge branch",
	"Auto-generated",
	"Automated commit",
	"Version bump",
	"[skip ci]",
	"[ci skip]",
}

// languageByExt maps file extensions to language tags.
var languageByExt = map[string]string{
	".rs":   "rust",
	".py":   "python",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".go":   "go",
	".java": "java",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
}

// ParseMessage classifies a commit message by its conventional-commit
// prefix and returns the change type plus the bare subject. Messages
// without a recognized prefix land in ChangeUnclassified with the whole
// first line as subject.
func ParseMessage(message string) (pattern.ChangeType, string) {
	firstLine, _, _ := strings.Cut(message, "\n")
	firstLine = strings.TrimSpace(firstLine)

	if captures := conventionalRe.FindStringSubmatch(firstLine); captures != nil {
		return pattern.ChangeType(captures[1]), captures[3]
	}
	return pattern.ChangeUnclassified, firstLine
}

// IsAutomated reports whether a commit message looks machine-generated.
func IsAutomated(message string) bool {
	for _, marker := range automatedMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

// Describe synthesizes the pattern description from the classified type
// and subject. Deterministic: the same commit always yields the same
// description, which keeps derived pattern ids stable.
func Describe(changeType pattern.ChangeType, subject string) string {
	if changeType == pattern.ChangeUnclassified {
		return subject
	}
	return fmt.Sprintf("%s: %s", changeType, subject)
}

// LanguageTags derives language and framework tags from file paths.
// The result is sorted and deduplicated.
func LanguageTags(paths []string) []string {
	seen := map[string]struct{}{}

	for _, path := range paths {
		if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
			seen[lang] = struct{}{}
		}

		if strings.Contains(path, "react") || strings.HasSuffix(path, ".jsx") || strings.HasSuffix(path, ".tsx") {
			seen["react"] = struct{}{}
		}
		if strings.Contains(path, "fastapi") || (strings.Contains(path, "api") && strings.HasSuffix(path, ".py")) {
			seen["fastapi"] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
