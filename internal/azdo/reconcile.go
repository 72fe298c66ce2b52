package azdo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/argus-ci/argus/internal/analysis"
)

// botMarker prefixes every comment this pipeline owns. Reconciliation matches
// on marker + kind title, so the pair identifies "our comment for this kind"
// across runs.
const botMarker = "🤖 AI"

// maxCommentLen is the destination's practical ceiling for one comment body.
const maxCommentLen = 32000

const truncationNotice = "\n\n---\n*Comment truncated — see the pipeline artifact for the full report.*"

// defaultPostDelay spaces out sequential posts to avoid destination rate
// limits. Scheduling policy, not correctness.
const defaultPostDelay = 2 * time.Second

// Reconciler publishes per-kind comments with at-most-one-durable-comment-
// per-kind semantics across repeated pipeline runs on the same PR.
type Reconciler struct {
	client    *Client
	log       *zap.Logger
	postDelay time.Duration
}

// NewReconciler creates a Reconciler with the standard inter-post delay.
func NewReconciler(client *Client, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{client: client, log: log, postDelay: defaultPostDelay}
}

// Header renders the canonical first line for a kind's comment.
func Header(kind analysis.Kind) string {
	return fmt.Sprintf("## %s %s %s", kind.Emoji(), botMarker, kind.Title())
}

// Publish creates or updates the single comment for one analysis kind. An
// existing comment of the same kind is updated in place; update failure falls
// back to creating a new thread rather than dropping the comment.
func (r *Reconciler) Publish(ctx context.Context, prNumber int, kind analysis.Kind, body string) error {
	body = Truncate(Header(kind) + "\n\n" + body)

	threads, err := r.client.ListThreads(ctx, prNumber)
	if err != nil {
		// Listing failed; posting a possibly-duplicate comment beats losing it.
		r.log.Warn("listing threads failed, creating new comment", zap.Error(err))
		return r.client.CreateThread(ctx, prNumber, body, nil)
	}

	if thread, comment, found := findKindComment(threads, kind); found {
		if err := r.client.UpdateComment(ctx, prNumber, thread.ID, comment.ID, body); err != nil {
			r.log.Warn("comment update failed, falling back to create",
				zap.String("kind", string(kind)),
				zap.Int("thread", thread.ID),
				zap.Error(err))
			return r.client.CreateThread(ctx, prNumber, body, nil)
		}
		return nil
	}
	return r.client.CreateThread(ctx, prNumber, body, nil)
}

// PublishAll posts one comment per separate result, pausing between posts.
// Individual failures are logged and do not stop the remainder.
func (r *Reconciler) PublishAll(ctx context.Context, prNumber int, comments []analysis.SeparateComment, render func(analysis.SeparateComment) string) error {
	var failures int
	for i, sc := range comments {
		if i > 0 && r.postDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.postDelay):
			}
		}
		if err := r.Publish(ctx, prNumber, sc.Kind, render(sc)); err != nil {
			failures++
			r.log.Warn("publishing comment failed",
				zap.String("kind", string(sc.Kind)),
				zap.Error(err))
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d comments failed to publish", failures, len(comments))
	}
	return nil
}

// findKindComment locates the first non-deleted thread whose first comment
// carries the bot marker followed by the kind's title.
func findKindComment(threads []Thread, kind analysis.Kind) (Thread, Comment, bool) {
	needle := botMarker + " " + kind.Title()
	for _, t := range threads {
		if t.IsDeleted || len(t.Comments) == 0 {
			continue
		}
		first := t.Comments[0]
		if strings.Contains(first.Content, needle) {
			return t, first, true
		}
	}
	return Thread{}, Comment{}, false
}

// Truncate caps a comment body at the destination ceiling, keeping the
// header and appending a visible truncation notice.
func Truncate(body string) string {
	if len(body) <= maxCommentLen {
		return body
	}
	cut := maxCommentLen - len(truncationNotice)
	// Avoid splitting a multi-byte rune.
	for cut > 0 && body[cut]&0xC0 == 0x80 {
		cut--
	}
	return body[:cut] + truncationNotice
}
