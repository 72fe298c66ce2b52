package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/argus-ci/argus/internal/analysis"
)

func sampleReport() *Report {
	return &Report{Result: &analysis.Result{
		Summary: analysis.Summary{QualityScore: 80, SecurityScore: 70, IssuesFound: 2, SuggestionsCount: 1},
		Issues: []analysis.Issue{
			{Severity: analysis.SeverityError, Message: "SQL injection in query builder", File: "db.go", Line: 42},
			{Severity: analysis.SeverityWarning, Message: "missing nil check in handler", File: "Detected from analysis", Line: 1},
		},
		Suggestions: []analysis.Suggestion{
			{Message: "consider a prepared statement", Category: analysis.KindSecurity},
		},
		RawResponse: "raw model text",
		Kind:        analysis.KindSecurity,
	}}
}

func TestSARIFWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if log.Version != "2.1.0" {
		t.Errorf("version = %q", log.Version)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("runs = %d", len(log.Runs))
	}
	results := log.Runs[0].Results
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}

	if results[0].Level != "error" {
		t.Errorf("level[0] = %q", results[0].Level)
	}
	if results[1].Level != "warning" {
		t.Errorf("level[1] = %q", results[1].Level)
	}
	if results[0].Message.Text != "SQL injection in query builder" {
		t.Errorf("message[0] = %q", results[0].Message.Text)
	}

	loc := results[0].Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "db.go" {
		t.Errorf("uri = %q", loc.ArtifactLocation.URI)
	}
	if loc.Region.StartLine != 42 || loc.Region.EndLine != 42 {
		t.Errorf("region = %+v", loc.Region)
	}
}

func TestGenerateRuleID_Stable(t *testing.T) {
	issue := analysis.Issue{Severity: analysis.SeverityWarning, Message: "same message"}
	if generateRuleID(issue) != generateRuleID(issue) {
		t.Error("rule ID not stable for identical issues")
	}

	other := analysis.Issue{Severity: analysis.SeverityWarning, Message: "different message"}
	if generateRuleID(issue) == generateRuleID(other) {
		t.Error("rule ID collision across different messages")
	}
}

func TestSeverityToLevel(t *testing.T) {
	if severityToLevel(analysis.SeverityError) != "error" {
		t.Error("error severity should map to error level")
	}
	if severityToLevel(analysis.SeverityWarning) != "warning" {
		t.Error("warning severity should map to warning level")
	}
	if severityToLevel(analysis.SeverityInfo) != "warning" {
		t.Error("info severity should map to warning level")
	}
}
