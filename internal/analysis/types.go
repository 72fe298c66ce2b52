package analysis

import "time"

// ChangeType describes how a file changed in the pull request.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeEdit   ChangeType = "edit"
	ChangeDelete ChangeType = "delete"
	ChangeRename ChangeType = "rename"
)

// FileRecord is one collected file. Owned by the collector; read-only to
// everything downstream.
type FileRecord struct {
	Path       string     `json:"path"`
	Content    string     `json:"content"`
	Size       int64      `json:"size"`
	ChangeType ChangeType `json:"changeType,omitempty"`
}

// Metadata carries build/run identification for a request.
type Metadata struct {
	BuildID    string `json:"buildId,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Commit     string `json:"commit,omitempty"`
	Repository string `json:"repository,omitempty"`
}

// Request is one analysis request sent to the model endpoint. Created once
// per orchestrator iteration and not mutated afterwards.
type Request struct {
	Kind     Kind         `json:"analysisType"`
	Files    []FileRecord `json:"files"`
	Question string       `json:"question,omitempty"`
	Prompt   string       `json:"prompt,omitempty"`
	Metadata Metadata     `json:"metadata"`
}

// Severity levels for issues.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Issue is one detected problem. Line defaults to 1 when the source line
// could not be determined; that value means "not localized", not line one.
type Issue struct {
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Description string   `json:"description,omitempty"`
}

// Suggestion is one improvement recommendation.
type Suggestion struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
	Category    Kind   `json:"category"`
}

// Summary holds the rolled-up scores and counts for one result.
//
// IssuesFound is computed by the severity-marker scan and Issues accumulates
// across all extraction scans, so IssuesFound == len(Issues) does not hold in
// general. The two are kept independent on purpose; do not reconcile them.
type Summary struct {
	QualityScore     int `json:"qualityScore"`
	SecurityScore    int `json:"securityScore"`
	IssuesFound      int `json:"issuesFound"`
	SuggestionsCount int `json:"suggestionsCount"`
}

// Result is the canonical record produced by normalizing one model response.
type Result struct {
	Summary     Summary      `json:"summary"`
	Issues      []Issue      `json:"issues"`
	Suggestions []Suggestion `json:"suggestions"`
	RawResponse string       `json:"rawResponse"`
	Kind        Kind         `json:"analysisType"`
	RunID       string       `json:"runId,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`

	// ScoresParsed records whether any score pattern matched, as opposed to
	// the 75/80 defaults. Combined aggregation only takes maxima over kinds
	// that reported.
	ScoresParsed bool `json:"-"`
}

// SeparateComment is one per-kind comment scheduled for publication in
// comprehensive mode.
type SeparateComment struct {
	Kind   Kind    `json:"analysisType"`
	Title  string  `json:"title"`
	Emoji  string  `json:"emoji"`
	Result *Result `json:"result"`
}

// CombinedResult aggregates one Result per kind for the comprehensive mode.
type CombinedResult struct {
	Analyses          map[Kind]*Result  `json:"analyses"`
	Summary           Summary           `json:"summary"`
	SeparateComments  []SeparateComment `json:"separateComments"`
	DescriptionUpdate string            `json:"descriptionUpdate,omitempty"`
	LabelsUpdate      string            `json:"labelsUpdate,omitempty"`
	RunID             string            `json:"runId,omitempty"`
	Timestamp         time.Time         `json:"timestamp"`
}

// PRContext is the resolved pull-request identity for one run. Read-only
// configuration for the core.
type PRContext struct {
	IsPR            bool   `json:"isPR"`
	PRNumber        int    `json:"prNumber,omitempty"`
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	SourceBranch    string `json:"sourceBranch,omitempty"`
	TargetBranch    string `json:"targetBranch,omitempty"`
	OrganizationURL string `json:"organizationUrl,omitempty"`
	Project         string `json:"projectName,omitempty"`
	Repository      string `json:"repositoryName,omitempty"`
	PRURL           string `json:"prUrl,omitempty"`
}

// InlineComment is one anchored inline annotation derived from response text.
type InlineComment struct {
	FilePath   string `json:"filePath"`
	LineNumber int    `json:"lineNumber"`
	Content    string `json:"content"`
}

// Aggregate folds a per-kind result into a combined summary. Scores roll up
// as the maximum across kinds that actually reported a score (scored=false
// leaves the maxima untouched so unparsed defaults cannot drag them up);
// counts always sum.
func Aggregate(agg Summary, s Summary, scored bool) Summary {
	if scored {
		if s.QualityScore > agg.QualityScore {
			agg.QualityScore = s.QualityScore
		}
		if s.SecurityScore > agg.SecurityScore {
			agg.SecurityScore = s.SecurityScore
		}
	}
	agg.IssuesFound += s.IssuesFound
	agg.SuggestionsCount += s.SuggestionsCount
	return agg
}
