package normalize

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/argus-ci/argus/internal/analysis"
)

// Canonical section headers per kind. The repair step guarantees these are
// present so every rawResponse renders as Markdown regardless of model
// compliance.
const (
	headerSummary  = "## 📋 Summary"
	headerQuestion = "## ❓ Question"
	headerAnswer   = "## 📝 Answer"
	headerTests    = "## Test Cases for Pull Request:"
)

// repairShape rewrites describe/ask/tests responses that look like JSON or
// lack the expected section headers into the kind's canonical Markdown
// skeleton. Text already carrying the headers passes through unchanged.
func repairShape(kind analysis.Kind, text string) string {
	switch kind {
	case analysis.KindDescribe:
		if hasHeaders(text, headerSummary) && !looksLikeJSON(text) {
			return text
		}
		return headerSummary + "\n\n" + extractProse(text) + "\n"
	case analysis.KindAsk:
		if hasHeaders(text, headerQuestion, headerAnswer) && !looksLikeJSON(text) {
			return text
		}
		return headerQuestion + "\n\n" + headerAnswer + "\n\n" + extractProse(text) + "\n"
	case analysis.KindTests:
		if hasHeaders(text, headerTests) && !looksLikeJSON(text) {
			return text
		}
		return headerTests + "\n\n" + extractProse(text) + "\n"
	default:
		return text
	}
}

func hasHeaders(text string, headers ...string) bool {
	for _, h := range headers {
		if !strings.Contains(text, h) {
			return false
		}
	}
	return true
}

func looksLikeJSON(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, `"`)
}

// extractProse recovers readable text from a possibly-JSON response. JSON
// object string values are concatenated in key order; anything else is
// returned trimmed of stray quoting.
func extractProse(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			var parts []string
			for _, k := range keys {
				if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, strings.TrimSpace(s))
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "\n\n")
			}
		}
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return strings.TrimSpace(s)
		}
		trimmed = strings.Trim(trimmed, `"`)
	}
	if trimmed == "" {
		return "No content provided"
	}
	return trimmed
}
