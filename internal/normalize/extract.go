package normalize

import (
	"regexp"
	"strings"

	"github.com/argus-ci/argus/internal/analysis"
)

// Noise markers: captured text containing these literals is discarded as an
// echo of our own boilerplate.
const (
	markerAIDetected    = "AI-detected"
	markerAIGenerated   = "AI-generated"
	markerNoDescription = "No description"
)

const (
	minIssueLen      = 11
	minSuggestionLen = 16
)

var (
	// Scan 1: lines beginning with a severity keyword, optionally bulleted.
	severityLineRe = regexp.MustCompile(`(?im)^\s*(?:[-*+]\s+)?(?:warning|error|issue|problem)\s*:\s*(.+)$`)
	// Scan 2: lines beginning with an emoji marker.
	emojiLineRe = regexp.MustCompile(`(?m)^\s*(?:⚠️|❌|🚨)\s*(.+)$`)
	// Scan 3: lines mentioning a file or line reference.
	fileLineRe = regexp.MustCompile(`(?im)^.*\b(?:file|line)\s*:\s*(.+)$`)

	// Bulleted or numbered list items.
	listItemRe = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+[.)])\s+(.+)$`)
	// Lines beginning with an imperative verb.
	imperativeRe = regexp.MustCompile(`(?im)^\s*((?:suggest|recommend|consider|improve|you should|it would be better|try to)\b.*)$`)

	// List items that restate a severity keyword belong to the issue scans.
	issueKeywordPrefixRe = regexp.MustCompile(`(?i)^(?:warning|error|issue|problem)\s*:`)
)

// extractIssues runs the three issue scans over text. The scans are
// independent and additive; a line can contribute to more than one. The
// second return value is the severity-marker scan's own match count, which
// feeds Summary.IssuesFound and is allowed to differ from the total.
func extractIssues(text string) ([]analysis.Issue, int) {
	var issues []analysis.Issue
	severityMatches := 0

	for _, m := range severityLineRe.FindAllStringSubmatch(text, -1) {
		severityMatches++
		if issue, ok := buildIssue(m[1]); ok {
			issues = append(issues, issue)
		}
	}
	for _, m := range emojiLineRe.FindAllStringSubmatch(text, -1) {
		if issue, ok := buildIssue(m[1]); ok {
			issues = append(issues, issue)
		}
	}
	for _, m := range fileLineRe.FindAllStringSubmatch(text, -1) {
		// Skip lines the severity scan already owns.
		if severityLineRe.MatchString(m[0]) {
			continue
		}
		if issue, ok := buildIssue(m[1]); ok {
			issues = append(issues, issue)
		}
	}

	return issues, severityMatches
}

func buildIssue(captured string) (analysis.Issue, bool) {
	captured = strings.TrimSpace(captured)
	if len(captured) < minIssueLen || strings.Contains(captured, markerAIDetected) {
		return analysis.Issue{}, false
	}
	return analysis.Issue{
		Severity: analysis.SeverityWarning,
		Message:  captured,
		File:     "Detected from analysis",
		Line:     1,
	}, true
}

// extractSuggestions scans for list items and imperative-verb lines.
func extractSuggestions(kind analysis.Kind, text string) []analysis.Suggestion {
	var suggestions []analysis.Suggestion
	seen := make(map[string]bool)

	add := func(captured string) {
		captured = strings.TrimSpace(captured)
		if len(captured) < minSuggestionLen {
			return
		}
		if strings.Contains(captured, markerAIGenerated) || strings.Contains(captured, markerNoDescription) {
			return
		}
		if seen[captured] {
			return
		}
		seen[captured] = true
		suggestions = append(suggestions, analysis.Suggestion{
			Message:  captured,
			Category: kind,
		})
	}

	for _, m := range listItemRe.FindAllStringSubmatch(text, -1) {
		if issueKeywordPrefixRe.MatchString(m[1]) {
			continue
		}
		add(m[1])
	}
	for _, m := range imperativeRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}

	return suggestions
}
