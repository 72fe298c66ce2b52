package output

import (
	"fmt"
	"io"

	"github.com/argus-ci/argus/internal/analysis"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *Report) error {
	summary := report.Summary()
	issues := report.Issues()
	suggestions := report.Suggestions()

	fmt.Fprintf(w, "## 🤖 AI Analysis Report\n\n")

	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	fmt.Fprintf(w, "| **Overall Quality** | %d |\n", summary.QualityScore)
	fmt.Fprintf(w, "| **Security** | %d |\n", summary.SecurityScore)
	fmt.Fprintf(w, "| Issues | %d |\n", summary.IssuesFound)
	fmt.Fprintf(w, "| Suggestions | %d |\n\n", summary.SuggestionsCount)

	if len(issues) > 0 {
		fmt.Fprintf(w, "<details>\n<summary>⚠️ Issues (%d)</summary>\n\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(w, "- **%s** `%s:%d` %s\n", issue.Severity, issue.File, issue.Line, issue.Message)
		}
		fmt.Fprintf(w, "\n</details>\n\n")
	}

	if len(suggestions) > 0 {
		fmt.Fprintf(w, "<details>\n<summary>💡 Suggestions (%d)</summary>\n\n", len(suggestions))
		for _, s := range suggestions {
			fmt.Fprintf(w, "- *(%s)* %s\n", s.Category, s.Message)
		}
		fmt.Fprintf(w, "\n</details>\n\n")
	}

	if report.Combined != nil {
		for _, sc := range report.Combined.SeparateComments {
			fmt.Fprintf(w, "### %s %s\n\n", sc.Emoji, sc.Title)
			fmt.Fprintf(w, "%s\n\n", sc.Result.RawResponse)
		}
	} else if report.Result != nil {
		fmt.Fprintf(w, "### %s %s\n\n", report.Result.Kind.Emoji(), report.Result.Kind.Title())
		fmt.Fprintf(w, "%s\n", report.Result.RawResponse)
	}

	return nil
}

// RenderComment renders one per-kind result as a PR comment body (without
// the reconciler header).
func RenderComment(sc analysis.SeparateComment) string {
	res := sc.Result
	body := res.RawResponse
	if len(res.Issues) > 0 || len(res.Suggestions) > 0 {
		body += fmt.Sprintf("\n\n---\n*%d issues, %d suggestions*",
			len(res.Issues), len(res.Suggestions))
	}
	return body
}
