package output

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"github.com/argus-ci/argus/internal/analysis"
)

// SARIFWriter outputs issues in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	InformationURI string `json:"informationUri"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

func buildSARIF(report *Report) sarifLog {
	issues := report.Issues()
	results := make([]sarifResult, 0, len(issues))

	for _, issue := range issues {
		results = append(results, sarifResult{
			RuleID:  generateRuleID(issue),
			Level:   severityToLevel(issue.Severity),
			Message: sarifMessage{Text: issue.Message},
			Locations: []sarifLocation{
				{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: issue.File},
						Region: sarifRegion{
							StartLine: issue.Line,
							EndLine:   issue.Line,
						},
					},
				},
			},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "argus",
						Version:        "1.0",
						InformationURI: "https://github.com/argus-ci/argus",
					},
				},
				Results: results,
			},
		},
	}
}

// severityToLevel maps issue severity to SARIF level: error stays error,
// everything else is warning.
func severityToLevel(s analysis.Severity) string {
	if s == analysis.SeverityError {
		return "error"
	}
	return "warning"
}

// generateRuleID creates a stable rule ID from severity + message.
func generateRuleID(issue analysis.Issue) string {
	data := fmt.Sprintf("%s/%s", issue.Severity, issue.Message)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("argus/%s/%x", issue.Severity, h[:4])
}
