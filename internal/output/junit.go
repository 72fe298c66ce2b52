package output

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/argus-ci/argus/internal/analysis"
)

// JUnitWriter outputs issues as a JUnit XML testsuite: one testcase with a
// failure element per issue, so CI test tabs can surface them.
type JUnitWriter struct{}

// JUnit schema types

type junitTestSuite struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Errors   int             `xml:"errors,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

func (j *JUnitWriter) Write(w io.Writer, report *Report) error {
	issues := report.Issues()

	suite := junitTestSuite{
		Name:     "argus-analysis",
		Tests:    len(issues),
		Failures: len(issues),
	}
	if len(issues) == 0 {
		// A single passing case keeps the suite visible in CI.
		suite.Tests = 1
		suite.Cases = []junitTestCase{{Name: "analysis", ClassName: "argus"}}
	}
	for i, issue := range issues {
		suite.Cases = append(suite.Cases, junitTestCase{
			Name:      fmt.Sprintf("issue-%d", i+1),
			ClassName: issue.File,
			Failure: &junitFailure{
				Message: issue.Message,
				Type:    string(issue.Severity),
				Body:    failureBody(issue),
			},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing JUnit header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(suite); err != nil {
		return fmt.Errorf("encoding JUnit: %w", err)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func failureBody(issue analysis.Issue) string {
	body := fmt.Sprintf("%s:%d %s", issue.File, issue.Line, issue.Message)
	if issue.Description != "" {
		body += "\n" + issue.Description
	}
	return body
}
