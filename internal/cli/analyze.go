package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/argus-ci/argus/internal/analysis"
	"github.com/argus-ci/argus/internal/azdo"
	"github.com/argus-ci/argus/internal/collect"
	"github.com/argus-ci/argus/internal/config"
	"github.com/argus-ci/argus/internal/inline"
	"github.com/argus-ci/argus/internal/orchestrate"
	"github.com/argus-ci/argus/internal/output"
	"github.com/argus-ci/argus/internal/prctx"
	"github.com/argus-ci/argus/internal/transport"
)

// Shared analysis flags
var (
	flagConfigFile        string
	flagEndpoint          string
	flagAPIKey            string
	flagDeployment        string
	flagAPIVersion        string
	flagSourceDir         string
	flagInclude           string
	flagExclude           string
	flagMaxFileBytes      int
	flagFormat            string
	flagOut               string
	flagQualityThreshold  int
	flagSecurityThreshold int
	flagTimeoutSeconds    int
	flagRetryCount        int
	flagPublish           bool
	flagPRURL             string
	flagQuestion          string
	flagCustomPrompt      string
	flagNoRedact          bool
	flagUpdateWorkItems   bool
	flagTelemetry         bool
	flagVerbose           bool
)

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfigFile, "config", "", "Config file path (default: platform config dir)")
	cmd.Flags().StringVar(&flagEndpoint, "endpoint", "", "Model endpoint URL")
	cmd.Flags().StringVar(&flagAPIKey, "api-key", "", "Model endpoint API key")
	cmd.Flags().StringVar(&flagDeployment, "deployment", "", "Azure OpenAI deployment name")
	cmd.Flags().StringVar(&flagAPIVersion, "api-version", "", "Azure OpenAI API version")
	cmd.Flags().StringVar(&flagSourceDir, "source-dir", "", "Directory containing the files to analyze")
	cmd.Flags().StringVar(&flagInclude, "include", "", "Include file path globs (comma-separated)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
	cmd.Flags().IntVar(&flagMaxFileBytes, "max-file-bytes", 0, "Maximum size of a single collected file")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, junit, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().IntVar(&flagQualityThreshold, "quality-threshold", 0, "Fail the pipeline when quality score is below this (0 disables)")
	cmd.Flags().IntVar(&flagSecurityThreshold, "security-threshold", 0, "Fail the pipeline when security score is below this (0 disables)")
	cmd.Flags().IntVar(&flagTimeoutSeconds, "timeout", 0, "Per-call HTTP timeout in seconds")
	cmd.Flags().IntVar(&flagRetryCount, "retry-count", 0, "Model call attempts before giving up")
	cmd.Flags().BoolVar(&flagPublish, "publish", false, "Publish results to the pull request")
	cmd.Flags().StringVar(&flagPRURL, "pr-url", "", "Pull request URL (default: resolved from pipeline variables)")
	cmd.Flags().StringVar(&flagQuestion, "question", "", "Question text for ask/reply analyses")
	cmd.Flags().StringVar(&flagCustomPrompt, "custom-prompt", "", "Extra instructions appended to the prompt")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagUpdateWorkItems, "update-work-items", false, "Comment the analysis summary on linked work items")
	cmd.Flags().BoolVar(&flagTelemetry, "telemetry", false, "Log run statistics")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	set := func(key, val string) {
		if val != "" {
			m[key] = val
		}
	}
	set("endpoint", flagEndpoint)
	set("apiKey", flagAPIKey)
	set("deployment", flagDeployment)
	set("apiVersion", flagAPIVersion)
	set("sourceDir", flagSourceDir)
	set("format", flagFormat)
	set("outputPath", flagOut)
	set("question", flagQuestion)
	set("customPrompt", flagCustomPrompt)
	if flagMaxFileBytes > 0 {
		m["maxFileBytes"] = fmt.Sprintf("%d", flagMaxFileBytes)
	}
	if flagQualityThreshold > 0 {
		m["qualityThreshold"] = fmt.Sprintf("%d", flagQualityThreshold)
	}
	if flagSecurityThreshold > 0 {
		m["securityThreshold"] = fmt.Sprintf("%d", flagSecurityThreshold)
	}
	if flagTimeoutSeconds > 0 {
		m["timeoutSeconds"] = fmt.Sprintf("%d", flagTimeoutSeconds)
	}
	if flagRetryCount > 0 {
		m["retryCount"] = fmt.Sprintf("%d", flagRetryCount)
	}
	if flagPublish {
		m["publish"] = "true"
	}
	if flagUpdateWorkItems {
		m["updateWorkItems"] = "true"
	}
	if flagTelemetry {
		m["telemetry"] = "true"
	}
	return m
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <kind>",
	Short: "Run a single analysis kind",
	Long:  "Run one analysis kind against the model endpoint. Kinds: " + kindList() + ".",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := analysis.ParseKind(args[0])
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown analysis kind %q (known: %s)\n", args[0], kindList())
			exitCode = ExitUsageError
			return nil
		}
		runAnalysis(kind, false)
		return nil
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run the comprehensive analysis suite",
	Long:  "Run every comprehensive analysis kind in order, then a separate labels pass. One kind failing degrades that kind only.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runAnalysis("", true)
		return nil
	},
}

func kindList() string {
	names := make([]string, len(analysis.AllKinds))
	for i, k := range analysis.AllKinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func runAnalysis(kind analysis.Kind, comprehensive bool) {
	cfg, err := config.Load(flagConfigFile, buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}
	if flagInclude != "" {
		cfg.Include = splitComma(flagInclude)
	}
	if flagExclude != "" {
		cfg.Exclude = append(cfg.Exclude, splitComma(flagExclude)...)
	}
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}

	// Configuration errors are fatal and never retried.
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	log := newLogger(flagVerbose)
	defer log.Sync()

	pr, err := prctx.Resolve(flagPRURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	ctx := context.Background()

	files, err := collect.Files(collect.Options{
		SourceDir:    cfg.SourceDir,
		Include:      cfg.Include,
		Exclude:      cfg.Exclude,
		MaxFileBytes: cfg.MaxFileBytes,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	if pr.IsPR {
		files = narrowToChanged(ctx, pr, files, log)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stdout, "No files to analyze.")
		return
	}

	caller, err := transport.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}
	cache, err := transport.NewCache(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		log.Warn("cache unavailable, continuing without it", zap.Error(err))
		cache, _ = transport.NewCache(false, "", 0)
	}

	orch := orchestrate.New(caller, cache, cfg, log)
	in := orchestrate.Input{
		Files:       files,
		Title:       pr.Title,
		Description: "",
		Question:    cfg.Question,
		Metadata:    prctx.Metadata(),
	}

	report := &output.Report{}

	if comprehensive {
		combined, err := orch.RunAll(ctx, in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
		report.Combined = combined
	} else {
		res, err := orch.RunSingle(ctx, kind, in)
		if err != nil {
			if transport.IsAuthError(err) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitAuthError
				return
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
		report.Result = res
	}

	if err := output.WriteReport(report, cfg.Format, cfg.OutputPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if cfg.Publish {
		// Publication failures are logged and never abort the run.
		publish(ctx, cfg, pr, report, log)
	}

	if cfg.Telemetry {
		s := report.Summary()
		log.Info("run complete",
			zap.Int("files", len(files)),
			zap.Int("quality", s.QualityScore),
			zap.Int("security", s.SecurityScore),
			zap.Int("issues", s.IssuesFound),
			zap.Int("suggestions", s.SuggestionsCount))
	}

	// Thresholds gate last, once a result exists.
	if err := output.CheckThresholds(report.Summary(), cfg.QualityThreshold, cfg.SecurityThreshold); err != nil {
		fmt.Fprintf(os.Stderr, "Threshold failure: %v\n", err)
		exitCode = ExitThresholdError
	}
}

// narrowToChanged keeps only the files the pull request touched, tagged with
// their change type. On any API failure the full collected set is analyzed.
func narrowToChanged(ctx context.Context, pr analysis.PRContext, files []analysis.FileRecord, log *zap.Logger) []analysis.FileRecord {
	client, err := azdo.NewClient(pr.OrganizationURL, pr.Project, pr.Repository)
	if err != nil {
		log.Debug("no PR client available, analyzing all collected files", zap.Error(err))
		return files
	}
	changed, err := client.ChangedFiles(ctx, pr.PRNumber)
	if err != nil {
		log.Warn("listing changed files failed, analyzing all collected files", zap.Error(err))
		return files
	}

	types := make(map[string]analysis.ChangeType, len(changed))
	for _, c := range changed {
		types[strings.TrimPrefix(c.Path, "/")] = analysis.ChangeType(c.ChangeType)
	}
	var out []analysis.FileRecord
	for _, f := range files {
		if ct, ok := types[f.Path]; ok {
			f.ChangeType = ct
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		// The iteration paths did not line up with the local tree; better to
		// analyze everything than nothing.
		return files
	}
	return out
}

func publish(ctx context.Context, cfg config.Config, pr analysis.PRContext, report *output.Report, log *zap.Logger) {
	if !pr.IsPR {
		log.Info("not a pull request build, skipping publication")
		return
	}
	client, err := azdo.NewClient(pr.OrganizationURL, pr.Project, pr.Repository)
	if err != nil {
		log.Warn("cannot create PR client, skipping publication", zap.Error(err))
		return
	}
	reconciler := azdo.NewReconciler(client, log)

	if report.Combined != nil {
		publishCombined(ctx, pr, report.Combined, client, reconciler, log)
		if cfg.UpdateWorkItems {
			updateWorkItems(ctx, pr, report.Summary(), client, log)
		}
		return
	}

	res := report.Result
	if err := reconciler.Publish(ctx, pr.PRNumber, res.Kind, output.RenderComment(analysis.SeparateComment{
		Kind:   res.Kind,
		Title:  res.Kind.Title(),
		Emoji:  res.Kind.Emoji(),
		Result: res,
	})); err != nil {
		log.Warn("publishing comment failed", zap.Error(err))
	}
	postInline(ctx, pr, res, client, log)
	if cfg.UpdateWorkItems {
		updateWorkItems(ctx, pr, report.Summary(), client, log)
	}
}

// updateWorkItems comments the rolled-up summary on every work item linked to
// the PR. Failures are logged per item and never abort the run.
func updateWorkItems(ctx context.Context, pr analysis.PRContext, s analysis.Summary, client *azdo.Client, log *zap.Logger) {
	ids, err := client.WorkItemIDs(ctx, pr.PRNumber)
	if err != nil {
		log.Warn("listing linked work items failed", zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}
	text := fmt.Sprintf("Argus analyzed [PR %d](%s): quality %d/100, security %d/100, %d issues, %d suggestions.",
		pr.PRNumber, pr.PRURL, s.QualityScore, s.SecurityScore, s.IssuesFound, s.SuggestionsCount)
	for _, id := range ids {
		if err := client.CommentOnWorkItem(ctx, id, text); err != nil {
			log.Warn("work item update failed", zap.String("workItem", id), zap.Error(err))
		}
	}
}

func publishCombined(ctx context.Context, pr analysis.PRContext, combined *analysis.CombinedResult, client *azdo.Client, reconciler *azdo.Reconciler, log *zap.Logger) {
	if err := reconciler.PublishAll(ctx, pr.PRNumber, combined.SeparateComments, output.RenderComment); err != nil {
		log.Warn("some comments failed to publish", zap.Error(err))
	}

	if combined.DescriptionUpdate != "" {
		if err := client.UpdateDescription(ctx, pr.PRNumber, combined.DescriptionUpdate); err != nil {
			log.Warn("updating PR description failed", zap.Error(err))
		}
	}
	if combined.LabelsUpdate != "" {
		labels := splitComma(combined.LabelsUpdate)
		if err := client.AddLabels(ctx, pr.PRNumber, labels); err != nil {
			log.Warn("adding PR labels failed", zap.Error(err))
		}
	}

	if res, ok := combined.Analyses[analysis.KindImprove]; ok {
		postInline(ctx, pr, res, client, log)
	}
}

func postInline(ctx context.Context, pr analysis.PRContext, res *analysis.Result, client *azdo.Client, log *zap.Logger) {
	comments := inline.Extract(res.RawResponse)
	if len(comments) == 0 {
		return
	}
	log.Info("posting inline comments", zap.Int("count", len(comments)))
	inline.Post(ctx, client, pr.PRNumber, comments, log)
}

func init() {
	addAnalyzeFlags(analyzeCmd)
	addAnalyzeFlags(allCmd)
}
