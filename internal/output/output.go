package output

import (
	"fmt"
	"io"
	"os"

	"github.com/argus-ci/argus/internal/analysis"
)

// Report is the publishable view over one run: exactly one of Result
// (single-kind mode) or Combined (comprehensive mode) is set.
type Report struct {
	Result   *analysis.Result
	Combined *analysis.CombinedResult
}

// Summary returns the report's rolled-up summary.
func (r *Report) Summary() analysis.Summary {
	if r.Combined != nil {
		return r.Combined.Summary
	}
	if r.Result != nil {
		return r.Result.Summary
	}
	return analysis.Summary{}
}

// Issues returns every issue in the report, in kind order for combined runs.
func (r *Report) Issues() []analysis.Issue {
	if r.Result != nil {
		return r.Result.Issues
	}
	if r.Combined == nil {
		return nil
	}
	var issues []analysis.Issue
	for _, kind := range analysis.ComprehensiveKinds {
		if res, ok := r.Combined.Analyses[kind]; ok {
			issues = append(issues, res.Issues...)
		}
	}
	return issues
}

// Suggestions returns every suggestion in the report, in kind order.
func (r *Report) Suggestions() []analysis.Suggestion {
	if r.Result != nil {
		return r.Result.Suggestions
	}
	if r.Combined == nil {
		return nil
	}
	var suggestions []analysis.Suggestion
	for _, kind := range analysis.ComprehensiveKinds {
		if res, ok := r.Combined.Analyses[kind]; ok {
			suggestions = append(suggestions, res.Suggestions...)
		}
	}
	return suggestions
}

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	case "junit":
		return &JUnitWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
func WriteReport(report *Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}

// ThresholdError reports a quality or security score below the configured
// minimum. It is a pipeline failure distinct from transport or parse errors
// and is only evaluated once a result exists.
type ThresholdError struct {
	Dimension string
	Score     int
	Minimum   int
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("%s score %d is below the configured minimum %d", e.Dimension, e.Score, e.Minimum)
}

// CheckThresholds gates the report against configured minimums. A zero
// minimum disables that gate.
func CheckThresholds(s analysis.Summary, qualityMin, securityMin int) error {
	if qualityMin > 0 && s.QualityScore < qualityMin {
		return &ThresholdError{Dimension: "quality", Score: s.QualityScore, Minimum: qualityMin}
	}
	if securityMin > 0 && s.SecurityScore < securityMin {
		return &ThresholdError{Dimension: "security", Score: s.SecurityScore, Minimum: securityMin}
	}
	return nil
}
