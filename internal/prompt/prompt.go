// Package prompt renders analysis requests into per-kind prompt templates.
// Builders are pure and never fail; missing fields degrade to fixed
// placeholder strings.
package prompt

import (
	"fmt"
	"strings"

	"github.com/argus-ci/argus/internal/analysis"
)

// DefaultQuestion is used for ask/reply when the caller supplies none.
const DefaultQuestion = "What is the main purpose of this PR?"

// PRDetails is the input to a prompt build.
type PRDetails struct {
	Title       string
	Description string
	Files       []analysis.FileRecord
	Question    string
}

const systemPrompt = `You are an expert code reviewer analyzing a pull request in a CI pipeline. Be concrete and actionable. When asked for scores, rate quality and security from 0 to 100. Reference files and line numbers where possible.`

// SystemPrompt returns the system message sent with every chat-completion call.
func SystemPrompt() string {
	return systemPrompt
}

// instructions is the fixed per-kind instruction template set.
var instructions = map[analysis.Kind]string{
	analysis.KindDescribe: `Write a pull request description for the following changes. Respond in Markdown with these sections:
## 📋 Summary
## 🔍 Changes
## 💥 Impact
Keep the summary to a few sentences a reviewer can skim.`,

	analysis.KindReview: `Review the following pull request files. Report problems as lines starting with "warning:", "error:" or "issue:", and improvements as bullet points starting with "suggest:" or "consider:". Include a quality score as "quality: NN" and a security score as "security: NN" (0-100).`,

	analysis.KindCompliance: `Check the following pull request files for compliance problems: licensing headers, dependency policy, secrets in code, and internal coding standards. Report each violation as a line starting with "warning:" or "error:". Include a quality score as "quality: NN".`,

	analysis.KindAutoApprove: `Decide whether this pull request is safe to approve automatically. Consider size, risk, and test coverage. Answer APPROVE or NEEDS REVIEW on the first line, then justify. Include a quality score as "quality: NN" and a security score as "security: NN".`,

	analysis.KindAsk: `Answer the question about this pull request. Respond in Markdown with these sections:
## ❓ Question
## 📝 Answer
Question: %s`,

	analysis.KindImprove: `Suggest improvements for the following pull request files. Respond with bullet points, each starting with "suggest:", "recommend:" or "consider:". For file-specific suggestions use sections shaped as:
#### ` + "`path/to/file`" + ` (Line N)
followed by the suggestion text.`,

	analysis.KindTests: `Propose test cases for this pull request. Respond in Markdown starting with the header:
## Test Cases for Pull Request:
then one section per test case with steps and expected results.`,

	analysis.KindSecurity: `Perform a security review of the following pull request files. Report vulnerabilities as lines starting with "error:" or with a 🚨 marker. Include a security score as "security: NN" (0-100) and, if you prefer a table, a row shaped | **Security** | NN |.`,

	analysis.KindLabels: `Suggest labels for this pull request. Respond with a comma-separated list of short lowercase labels only, no prose.`,

	analysis.KindReply: `Write a reply to the following comment on this pull request. Be concise and specific to the changed files.
Comment: %s`,
}

// Build renders the prompt for one analysis kind. It never fails; absent
// fields fall back to placeholders.
func Build(kind analysis.Kind, pr PRDetails) string {
	return BuildWithCustom(kind, pr, "")
}

// BuildWithCustom renders the prompt and appends caller-supplied custom
// instructions when present.
func BuildWithCustom(kind analysis.Kind, pr PRDetails, custom string) string {
	title := pr.Title
	if title == "" {
		title = "No title provided"
	}
	description := pr.Description
	if description == "" {
		description = "No description provided"
	}

	instr, ok := instructions[kind]
	if !ok {
		instr = instructions[analysis.KindReview]
	}
	if kind == analysis.KindAsk || kind == analysis.KindReply {
		q := pr.Question
		if q == "" {
			q = DefaultQuestion
		}
		instr = fmt.Sprintf(instr, q)
	}

	var b strings.Builder
	b.WriteString(instr)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "PR Title: %s\n", title)
	fmt.Fprintf(&b, "PR Description: %s\n", description)

	if custom != "" {
		b.WriteString("\nAdditional instructions:\n")
		b.WriteString(custom)
		b.WriteString("\n")
	}

	b.WriteString("\n--- BEGIN FILES ---\n")
	b.WriteString(RenderFiles(pr.Files))
	b.WriteString("--- END FILES ---\n")

	return b.String()
}

// RenderFiles renders the file-contents block: each file's path and content
// under a fenced block.
func RenderFiles(files []analysis.FileRecord) string {
	if len(files) == 0 {
		return "No files provided\n"
	}
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "File: %s\n", f.Path)
		b.WriteString("```\n")
		b.WriteString(f.Content)
		if !strings.HasSuffix(f.Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
	}
	return b.String()
}
