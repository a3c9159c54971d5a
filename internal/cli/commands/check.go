package commands

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/modelforest/internal/cli/output"
	"github.com/leapstack-labs/modelforest/internal/loader"
	"github.com/leapstack-labs/modelforest/internal/models"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Jobs int
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Validate model documents",
		Long: `Check one or more model documents.

Each document is loaded, checked for dangling references and containment
cycles, composed, and the resulting forest is verified: every model placed
exactly once and every shared model emitted before its containers.`,
		Example: `  # Check the configured input
  modelforest check

  # Check several documents at once
  modelforest check billing.yaml shipping.yaml --jobs 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.NumCPU(), "Number of documents checked in parallel")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{cmdCtx.Cfg.Input}
	}

	results, err := checkDocuments(cmd.Context(), cmdCtx, paths, opts.Jobs)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if !res.OK {
			failed++
		}
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(results); err != nil {
			return err
		}
	case output.ModeMarkdown:
		checkMarkdown(r, results)
	default:
		checkText(r, results)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed checks", failed, len(results))
	}
	return nil
}

// checkDocuments checks every path with at most jobs running at once.
// Results keep the order of paths.
func checkDocuments(ctx context.Context, cmdCtx *CommandContext, paths []string, jobs int) ([]output.CheckResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if jobs < 1 {
		jobs = 1
	}

	results := make([]output.CheckResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = checkDocument(cmdCtx, path)
			cmdCtx.Logger.Debug("checked document", "path", path, "ok", results[i].OK)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkDocument(cmdCtx *CommandContext, path string) output.CheckResult {
	res := output.CheckResult{Source: path}

	set, err := loader.LoadFile(path)
	if err != nil {
		res.Errors = errorMessages(err)
		return res
	}
	res.Models = set.Len()

	composer := models.NewComposer(models.Options{Logger: cmdCtx.Logger, DetectCycles: true})
	forest, err := composer.Compose(set)
	if err != nil {
		res.Errors = errorMessages(err)
		return res
	}

	if err := forest.Verify(set); err != nil {
		res.Errors = errorMessages(err)
		return res
	}

	res.OK = true
	return res
}

// errorMessages flattens a joined error into its individual messages.
func errorMessages(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, errorMessages(e)...)
		}
		return msgs
	}
	return []string{err.Error()}
}

func checkText(r *output.Renderer, results []output.CheckResult) {
	styles := r.Styles()
	for _, res := range results {
		if res.OK {
			r.Printf("%s %s %s\n", styles.Success.Render("✓"), res.Source, styles.Muted.Render(fmt.Sprintf("(%d models)", res.Models)))
			continue
		}
		r.Printf("%s %s\n", styles.Error.Render("✗"), res.Source)
		for _, msg := range res.Errors {
			r.Printf("    %s\n", msg)
		}
	}
}

func checkMarkdown(r *output.Renderer, results []output.CheckResult) {
	r.Println(output.FormatHeader(1, "Check Results"))
	r.Println("")
	for _, res := range results {
		status := "ok"
		if !res.OK {
			status = "failed"
		}
		r.Printf("- %s: %s (%d models)\n", res.Source, status, res.Models)
		for _, msg := range res.Errors {
			r.Printf("  - %s\n", msg)
		}
	}
}
