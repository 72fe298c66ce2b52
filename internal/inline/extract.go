// Package inline extracts per-file, per-line suggestion blocks from response
// text and posts them as anchored PR comments.
package inline

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/argus-ci/argus/internal/analysis"
	"github.com/argus-ci/argus/internal/azdo"
)

// sectionRe matches a file-header marker: a heading or bold marker, a
// backtick-quoted path, then a line or line-range reference.
var sectionRe = regexp.MustCompile("(?m)^(?:#{2,6}|\\*{2})\\s*`([^`\\n]+)`\\s*(?:\\*{2})?\\s*\\(Lines?\\s+(\\d+)(?:\\s*-\\s*(\\d+))?\\)")

// Extract scans text for annotated sections and returns one InlineComment
// per well-formed section. Anchors use the start line of a range. Sections
// with empty content, a missing path, or an unparsable line number are
// dropped.
func Extract(text string) []analysis.InlineComment {
	matches := sectionRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var comments []analysis.InlineComment
	for i, m := range matches {
		path := strings.TrimSpace(text[m[2]:m[3]])
		if path == "" {
			continue
		}
		line, err := strconv.Atoi(text[m[4]:m[5]])
		if err != nil || line < 1 {
			continue
		}

		contentStart := m[1]
		contentEnd := len(text)
		if i+1 < len(matches) {
			contentEnd = matches[i+1][0]
		}
		content := strings.TrimSpace(text[contentStart:contentEnd])
		if content == "" {
			continue
		}

		comments = append(comments, analysis.InlineComment{
			FilePath:   path,
			LineNumber: line,
			Content:    content,
		})
	}
	return comments
}

// postDelay spaces out inline comment posts. Scheduling policy, not
// correctness.
const postDelay = 500 * time.Millisecond

// Post publishes one thread per inline comment, anchored to the post-change
// side of the file. Individual post failures are logged and skipped so the
// remaining comments still go out.
func Post(ctx context.Context, client *azdo.Client, prNumber int, comments []analysis.InlineComment, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	for i, c := range comments {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(postDelay):
			}
		}
		tc := &azdo.ThreadContext{
			FilePath:       "/" + strings.TrimPrefix(c.FilePath, "/"),
			RightFileStart: &azdo.Position{Line: c.LineNumber, Offset: 1},
			RightFileEnd:   &azdo.Position{Line: c.LineNumber, Offset: 1},
		}
		if err := client.CreateThread(ctx, prNumber, c.Content, tc); err != nil {
			log.Warn("inline comment failed",
				zap.String("file", c.FilePath),
				zap.Int("line", c.LineNumber),
				zap.Error(err))
			continue
		}
	}
}
