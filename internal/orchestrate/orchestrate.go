// Package orchestrate drives analysis kinds against the model endpoint and
// aggregates per-kind results. The comprehensive mode is strictly sequential
// and treats partial completion as its expected success mode.
package orchestrate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/argus-ci/argus/internal/analysis"
	"github.com/argus-ci/argus/internal/config"
	"github.com/argus-ci/argus/internal/normalize"
	"github.com/argus-ci/argus/internal/prompt"
	"github.com/argus-ci/argus/internal/redact"
	"github.com/argus-ci/argus/internal/transport"
)

// Orchestrator runs analyses for one pipeline invocation.
type Orchestrator struct {
	caller transport.Caller
	cfg    config.Config
	log    *zap.Logger
	runID  string
}

// Input is everything one run analyzes.
type Input struct {
	Files       []analysis.FileRecord
	Title       string
	Description string
	Question    string
	Metadata    analysis.Metadata
}

// New creates an Orchestrator. The caller is wrapped with the configured
// retry policy and, when enabled, the response cache.
func New(caller transport.Caller, cache *transport.Cache, cfg config.Config, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	wrapped := transport.WithRetry(caller, cfg.RetryCount)
	wrapped = transport.WithCache(wrapped, cache)
	return &Orchestrator{
		caller: wrapped,
		cfg:    cfg,
		log:    log,
		runID:  uuid.NewString(),
	}
}

// RunID returns the correlation id for this run.
func (o *Orchestrator) RunID() string { return o.runID }

// RunSingle executes one analysis kind. Transport exhaustion is fatal here;
// normalization never is.
func (o *Orchestrator) RunSingle(ctx context.Context, kind analysis.Kind, in Input) (*analysis.Result, error) {
	res, err := o.runKind(ctx, kind, in)
	if err != nil {
		return nil, fmt.Errorf("%s analysis: %w", kind, err)
	}
	return res, nil
}

// RunAll executes the comprehensive mode: the fixed kind sequence with
// per-kind failure isolation, then a separate labels pass.
func (o *Orchestrator) RunAll(ctx context.Context, in Input) (*analysis.CombinedResult, error) {
	combined := &analysis.CombinedResult{
		Analyses:  make(map[analysis.Kind]*analysis.Result, len(analysis.ComprehensiveKinds)),
		RunID:     o.runID,
		Timestamp: time.Now(),
	}

	anyScored := false
	for _, kind := range analysis.ComprehensiveKinds {
		res, err := o.runKind(ctx, kind, in)
		if err != nil {
			// Degraded placeholder; the batch continues.
			o.log.Warn("analysis kind failed",
				zap.String("kind", string(kind)),
				zap.Error(err))
			res = normalize.Degraded(kind, err)
		}
		res.RunID = o.runID
		combined.Analyses[kind] = res
		combined.Summary = analysis.Aggregate(combined.Summary, res.Summary, res.ScoresParsed)
		anyScored = anyScored || res.ScoresParsed

		combined.SeparateComments = append(combined.SeparateComments, analysis.SeparateComment{
			Kind:   kind,
			Title:  kind.Title(),
			Emoji:  kind.Emoji(),
			Result: res,
		})

		if kind == analysis.KindDescribe && err == nil {
			combined.DescriptionUpdate = res.RawResponse
		}
	}
	if !anyScored {
		combined.Summary.QualityScore = 75
		combined.Summary.SecurityScore = 80
	}

	// Labels run on their own; a failure here clears the update and touches
	// nothing else.
	if labels, err := o.runKind(ctx, analysis.KindLabels, in); err != nil {
		o.log.Warn("labels analysis failed", zap.Error(err))
		combined.LabelsUpdate = ""
	} else {
		combined.LabelsUpdate = labels.RawResponse
	}

	o.log.Info("comprehensive analysis complete",
		zap.String("runId", o.runID),
		zap.Int("kinds", len(combined.Analyses)),
		zap.Int("issues", combined.Summary.IssuesFound),
		zap.Int("suggestions", combined.Summary.SuggestionsCount))

	return combined, nil
}

func (o *Orchestrator) runKind(ctx context.Context, kind analysis.Kind, in Input) (*analysis.Result, error) {
	files := in.Files
	if o.cfg.Privacy.RedactSecrets {
		files = redact.Files(files, o.cfg.Privacy.RedactPaths)
	}

	question := in.Question
	if question == "" && (kind == analysis.KindAsk || kind == analysis.KindReply) {
		question = prompt.DefaultQuestion
	}

	userPrompt := prompt.BuildWithCustom(kind, prompt.PRDetails{
		Title:       in.Title,
		Description: in.Description,
		Files:       files,
		Question:    question,
	}, o.cfg.CustomPrompt)

	req := transport.Request{
		SystemPrompt: prompt.SystemPrompt(),
		UserPrompt:   userPrompt,
		Payload: analysis.Request{
			Kind:     kind,
			Files:    files,
			Question: question,
			Prompt:   userPrompt,
			Metadata: in.Metadata,
		},
	}

	start := time.Now()
	resp, err := o.caller.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	o.log.Debug("model call complete",
		zap.String("kind", string(kind)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("tokens", resp.TokensUsed))

	// A degraded-but-successful normalization is never retried: retry budget
	// covers transport failures only.
	res := normalize.Normalize(kind, normalize.Input{
		Text:       resp.Content,
		Structured: resp.Structured,
	})
	res.RunID = o.runID
	return res, nil
}
