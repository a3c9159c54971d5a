package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/modelforest/internal/cli/output"
	"github.com/leapstack-labs/modelforest/internal/models"
)

// ComposeOptions holds options for the compose command.
type ComposeOptions struct {
	Watch bool // Recompose whenever the document changes
}

// NewComposeCommand creates the compose command.
func NewComposeCommand() *cobra.Command {
	opts := &ComposeOptions{}
	cmd := &cobra.Command{
		Use:   "compose [file]",
		Short: "Compose models into an ordered forest",
		Long: `Compose the models of a document into the forest a code generator
walks to emit declarations.

Models used by a single container are nested under it. Models shared by
several containers under one root are nested first in that root, and models
shared across roots are promoted to the top level ahead of every user.

Output adapts to environment:
  - Terminal: Styled tree
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Compose the configured input (models.yaml by default)
  modelforest compose

  # Compose a JSON document and print JSON
  modelforest compose schema.json --output json

  # Recompose on every save
  modelforest compose models.yaml --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch the document and recompose on change")

	return cmd
}

func runCompose(cmd *cobra.Command, args []string, opts *ComposeOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	path := cmdCtx.InputPath(args)

	if !opts.Watch {
		return composeOnce(cmdCtx, path)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := composeOnce(cmdCtx, path); err != nil {
		cmdCtx.Renderer.Errorf("Error: %v\n", err)
	}
	return watchDocument(ctx, cmdCtx, path, func() error {
		return composeOnce(cmdCtx, path)
	})
}

func composeOnce(cmdCtx *CommandContext, path string) error {
	set, forest, err := cmdCtx.Load(path)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.ForestOutput{
			Source:   path,
			Models:   set.Len(),
			TopLevel: forest.TopLevel(),
			Forest:   forest.Tree(),
		})
	case output.ModeMarkdown:
		return composeMarkdown(r, path, set, forest)
	default:
		return composeText(r, set, forest)
	}
}

// composeText outputs the forest as a styled tree.
func composeText(r *output.Renderer, set *models.ModelSet, forest *models.Forest) error {
	styles := r.Styles()
	r.Header(1, "Model Forest")

	err := forest.Walk(func(n *models.StructureNode, depth int) error {
		line := strings.Repeat("  ", depth+1) + styles.ModelPath.Render(n.Index())
		if n.Placement != models.PlacementTopLevel && n.Placement != models.PlacementNested {
			line += " " + styles.Muted.Render(fmt.Sprintf("(%s, roots: %s)", n.Placement, strings.Join(n.Roots, ", ")))
		}
		r.Println(line)
		return nil
	})
	if err != nil {
		return err
	}

	r.Println("")
	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d models, %d top-level", set.Len(), len(forest.TopLevel()))))
	return nil
}

// composeMarkdown outputs the forest as a nested markdown list.
func composeMarkdown(r *output.Renderer, path string, set *models.ModelSet, forest *models.Forest) error {
	r.Println(output.FormatHeader(1, "Model Forest"))
	r.Println("")

	err := forest.Walk(func(n *models.StructureNode, depth int) error {
		line := fmt.Sprintf("%s- `%s`", strings.Repeat("  ", depth), n.Index())
		if n.Placement != models.PlacementTopLevel && n.Placement != models.PlacementNested {
			line += fmt.Sprintf(" (%s, roots: %s)", n.Placement, strings.Join(n.Roots, ", "))
		}
		r.Println(line)
		return nil
	})
	if err != nil {
		return err
	}

	r.Println("")
	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Source", path))
	r.Println(output.FormatKeyValue("Models", fmt.Sprintf("%d", set.Len())))
	r.Println(output.FormatKeyValue("Top-level", fmt.Sprintf("%d", len(forest.TopLevel()))))
	return nil
}

// watchDocument runs fn every time the document at path is written, until ctx
// is done. The parent directory is watched so editors that replace the file
// on save are still seen.
func watchDocument(ctx context.Context, cmdCtx *CommandContext, path string, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	cmdCtx.Logger.Info("watching document", "path", abs)

	return watchLoop(ctx, cmdCtx, watcher, abs, fn)
}

func watchLoop(ctx context.Context, cmdCtx *CommandContext, watcher *fsnotify.Watcher, abs string, fn func() error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cmdCtx.Logger.Debug("document changed", "path", abs, "op", event.Op.String())
			if err := fn(); err != nil {
				cmdCtx.Renderer.Errorf("Error: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmdCtx.Logger.Warn("watch error", "error", err)
		}
	}
}
