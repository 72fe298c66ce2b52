package output

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/argus-ci/argus/internal/analysis"
)

func TestJUnitWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JUnitWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var suite junitTestSuite
	if err := xml.Unmarshal(buf.Bytes(), &suite); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}

	if suite.Tests != 2 || suite.Failures != 2 {
		t.Errorf("tests/failures = %d/%d", suite.Tests, suite.Failures)
	}
	if len(suite.Cases) != 2 {
		t.Fatalf("cases = %d", len(suite.Cases))
	}
	if suite.Cases[0].Failure == nil {
		t.Fatal("case 0 has no failure element")
	}
	if suite.Cases[0].Failure.Message != "SQL injection in query builder" {
		t.Errorf("failure message = %q", suite.Cases[0].Failure.Message)
	}
	if suite.Cases[0].Failure.Type != "error" {
		t.Errorf("failure type = %q", suite.Cases[0].Failure.Type)
	}
}

func TestJUnitWriter_NoIssues(t *testing.T) {
	report := &Report{Result: &analysis.Result{Kind: analysis.KindReview}}

	var buf bytes.Buffer
	if err := (&JUnitWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var suite junitTestSuite
	if err := xml.Unmarshal(buf.Bytes(), &suite); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}
	if suite.Tests != 1 || suite.Failures != 0 {
		t.Errorf("tests/failures = %d/%d", suite.Tests, suite.Failures)
	}
	if len(suite.Cases) != 1 || suite.Cases[0].Failure != nil {
		t.Errorf("cases = %+v", suite.Cases)
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Quality: 80/100",
		"Security: 70/100",
		"[ERROR] db.go:42",
		"SQL injection in query builder",
		"SUGGESTIONS",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTextWriter_Clean(t *testing.T) {
	var buf bytes.Buffer
	report := &Report{Result: &analysis.Result{Kind: analysis.KindReview}}
	if err := (&TextWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "No issues found. Looks good!") {
		t.Errorf("clean report message missing:\n%s", buf.String())
	}
}
