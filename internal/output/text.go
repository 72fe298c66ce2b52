package output

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter outputs a human-readable console report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}
	summary := report.Summary()
	issues := report.Issues()
	suggestions := report.Suggestions()

	if report.Combined != nil {
		ew.printf("Argus PR Analysis — comprehensive (%d kinds)\n", len(report.Combined.Analyses))
	} else if report.Result != nil {
		ew.printf("Argus PR Analysis — %s\n", report.Result.Kind)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Quality: %d/100  Security: %d/100\n", summary.QualityScore, summary.SecurityScore)
	ew.printf("Issues: %d  Suggestions: %d\n", summary.IssuesFound, summary.SuggestionsCount)
	ew.println(strings.Repeat("─", 60))

	if len(issues) > 0 {
		ew.println("\nISSUES")
		ew.println(strings.Repeat("─", 40))
		for _, issue := range issues {
			ew.printf("\n  [%s] %s:%d\n", strings.ToUpper(string(issue.Severity)), issue.File, issue.Line)
			for _, line := range wrapText(issue.Message, 70) {
				ew.printf("    %s\n", line)
			}
		}
	}

	if len(suggestions) > 0 {
		ew.println("\nSUGGESTIONS")
		ew.println(strings.Repeat("─", 40))
		for _, s := range suggestions {
			ew.printf("\n  (%s)\n", s.Category)
			for _, line := range wrapText(s.Message, 70) {
				ew.printf("    %s\n", line)
			}
		}
	}

	if len(issues) == 0 && len(suggestions) == 0 {
		ew.println("\nNo issues found. Looks good!")
	}

	if report.Combined != nil && report.Combined.LabelsUpdate != "" {
		ew.printf("\nSuggested labels: %s\n", strings.TrimSpace(report.Combined.LabelsUpdate))
	}

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
