// Package normalize converts raw model responses into canonical analysis
// results. Normalization never fails and never discards information: the
// worst case is a default-scored result carrying the full raw text.
package normalize

import (
	"encoding/json"
	"time"

	"github.com/argus-ci/argus/internal/analysis"
)

// Input is what the transport layer hands over: the response text, and the
// raw JSON body when the endpoint returned a top-level JSON object.
type Input struct {
	Text       string
	Structured []byte
}

// Normalize converts one model response into a Result for the given kind.
func Normalize(kind analysis.Kind, in Input) *analysis.Result {
	if in.Structured != nil {
		if res, ok := fromStructured(kind, in.Structured); ok {
			return res
		}
	}
	return fromText(kind, in.Text)
}

// fromStructured accepts a JSON body only when it already matches the
// canonical result shape (a summary object with score fields). Everything
// else falls through to the free-text path.
func fromStructured(kind analysis.Kind, body []byte) (*analysis.Result, bool) {
	var probe struct {
		Summary *analysis.Summary `json:"summary"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.Summary == nil {
		return nil, false
	}

	var res analysis.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, false
	}
	res.Kind = kind
	res.Timestamp = time.Now()
	res.ScoresParsed = true
	if res.RawResponse == "" {
		res.RawResponse = string(body)
	}
	if res.Issues == nil {
		res.Issues = []analysis.Issue{}
	}
	if res.Suggestions == nil {
		res.Suggestions = []analysis.Suggestion{}
	}
	return &res, true
}

// fromText runs the heuristic chain: shape repair, score extraction, issue
// extraction, suggestion extraction, fallback. Each step is best-effort and
// additive; no step can block a later one.
func fromText(kind analysis.Kind, text string) *analysis.Result {
	repaired := repairShape(kind, text)

	quality, qualityOK := extractScore(repaired, qualityPatterns)
	if !qualityOK {
		quality = defaultQualityScore
	}
	security, securityOK := extractScore(repaired, securityPatterns)
	if !securityOK {
		security = defaultSecurityScore
	}

	issues, severityMatches := extractIssues(repaired)
	suggestions := extractSuggestions(kind, repaired)

	// Fallback: nothing extracted but the response is substantive. The raw
	// text is preserved either way, so no analytical content is dropped.
	if len(issues) == 0 && len(suggestions) == 0 && len(repaired) > 100 {
		suggestions = append(suggestions, analysis.Suggestion{
			Message:  "See detailed analysis below",
			Category: kind,
		})
	}

	if issues == nil {
		issues = []analysis.Issue{}
	}
	if suggestions == nil {
		suggestions = []analysis.Suggestion{}
	}

	return &analysis.Result{
		Summary: analysis.Summary{
			QualityScore:     quality,
			SecurityScore:    security,
			IssuesFound:      severityMatches,
			SuggestionsCount: len(suggestions),
		},
		Issues:       issues,
		Suggestions:  suggestions,
		RawResponse:  repaired,
		Kind:         kind,
		Timestamp:    time.Now(),
		ScoresParsed: qualityOK || securityOK,
	}
}

// Degraded builds the placeholder result recorded when a kind's analysis
// fails permanently in comprehensive mode.
func Degraded(kind analysis.Kind, cause error) *analysis.Result {
	return &analysis.Result{
		Summary:     analysis.Summary{},
		Issues:      []analysis.Issue{},
		Suggestions: []analysis.Suggestion{},
		RawResponse: "Analysis failed: " + cause.Error(),
		Kind:        kind,
		Timestamp:   time.Now(),
	}
}
