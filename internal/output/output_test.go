package output

import (
	"errors"
	"testing"

	"github.com/argus-ci/argus/internal/analysis"
)

func TestGetWriter(t *testing.T) {
	for _, format := range []string{"text", "json", "markdown", "junit", "sarif"} {
		if _, err := GetWriter(format); err != nil {
			t.Errorf("GetWriter(%q): %v", format, err)
		}
	}
	if _, err := GetWriter("pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCheckThresholds(t *testing.T) {
	s := analysis.Summary{QualityScore: 60, SecurityScore: 90}

	if err := CheckThresholds(s, 0, 0); err != nil {
		t.Errorf("zero minimums must disable gating: %v", err)
	}
	if err := CheckThresholds(s, 50, 80); err != nil {
		t.Errorf("passing scores gated: %v", err)
	}

	err := CheckThresholds(s, 70, 0)
	if err == nil {
		t.Fatal("expected quality threshold failure")
	}
	var te *ThresholdError
	if !errors.As(err, &te) {
		t.Fatalf("error type = %T", err)
	}
	if te.Dimension != "quality" || te.Score != 60 || te.Minimum != 70 {
		t.Errorf("threshold error = %+v", te)
	}

	if err := CheckThresholds(s, 0, 95); err == nil {
		t.Error("expected security threshold failure")
	}
}

func TestReport_CombinedAccessors(t *testing.T) {
	combined := &analysis.CombinedResult{
		Summary: analysis.Summary{QualityScore: 85},
		Analyses: map[analysis.Kind]*analysis.Result{
			analysis.KindReview: {
				Issues: []analysis.Issue{{Severity: analysis.SeverityWarning, Message: "review issue"}},
			},
			analysis.KindSecurity: {
				// Not in the comprehensive set; must not leak into the report.
				Issues: []analysis.Issue{{Severity: analysis.SeverityError, Message: "security issue"}},
			},
			analysis.KindImprove: {
				Suggestions: []analysis.Suggestion{{Message: "improve suggestion"}},
			},
		},
	}
	r := &Report{Combined: combined}

	if got := r.Summary().QualityScore; got != 85 {
		t.Errorf("quality = %d", got)
	}
	issues := r.Issues()
	if len(issues) != 1 || issues[0].Message != "review issue" {
		t.Errorf("issues = %+v", issues)
	}
	suggestions := r.Suggestions()
	if len(suggestions) != 1 || suggestions[0].Message != "improve suggestion" {
		t.Errorf("suggestions = %+v", suggestions)
	}
}

func TestReport_Empty(t *testing.T) {
	r := &Report{}
	if r.Summary() != (analysis.Summary{}) {
		t.Error("empty report should yield zero summary")
	}
	if r.Issues() != nil || r.Suggestions() != nil {
		t.Error("empty report should yield nil slices")
	}
}
