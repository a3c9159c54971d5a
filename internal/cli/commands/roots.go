package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/modelforest/internal/cli/output"
	"github.com/leapstack-labs/modelforest/internal/models"
)

// NewRootsCommand creates the roots command.
func NewRootsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roots [file]",
		Short: "Show the root models reaching each model",
		Long: `List every model with its containers, the top-level models that
reach it, and where composition placed it.`,
		Example: `  # Table of roots for the configured input
  modelforest roots

  # JSON for tooling
  modelforest roots models.yaml -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRoots,
	}
}

// rootsRow is one line of the roots report.
type rootsRow struct {
	Index      string
	Placement  models.Placement
	Containers []string
	Roots      []string
}

func runRoots(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	set, forest, err := cmdCtx.Load(cmdCtx.InputPath(args))
	if err != nil {
		return err
	}

	rows := make([]rootsRow, 0, set.Len())
	for _, def := range set.Definitions() {
		node, _ := forest.Node(def.Index)
		var containers []string
		seen := make(map[string]bool)
		for _, u := range def.Usages {
			if u.Owned() && !seen[u.Parent] {
				seen[u.Parent] = true
				containers = append(containers, u.Parent)
			}
		}
		rows = append(rows, rootsRow{
			Index:      def.Index,
			Placement:  node.Placement,
			Containers: containers,
			Roots:      node.Roots,
		})
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		entries := make([]output.RootsEntry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, output.RootsEntry{
				Index:      row.Index,
				Placement:  string(row.Placement),
				Containers: row.Containers,
				Roots:      row.Roots,
			})
		}
		return r.JSON(entries)
	case output.ModeMarkdown:
		return rootsMarkdown(r, rows)
	default:
		return rootsTable(r, rows)
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func rootsTable(r *output.Renderer, rows []rootsRow) error {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Model", "Placement", "Containers", "Roots"})
	for _, row := range rows {
		t.AppendRow(table.Row{row.Index, string(row.Placement), joinOrDash(row.Containers), joinOrDash(row.Roots)})
	}
	t.Render()
	r.Printf("(%d models)\n", len(rows))
	return nil
}

func rootsMarkdown(r *output.Renderer, rows []rootsRow) error {
	r.Println(output.FormatHeader(1, "Model Roots"))
	r.Println("")
	r.Println("| Model | Placement | Containers | Roots |")
	r.Println("|---|---|---|---|")
	for _, row := range rows {
		r.Println(fmt.Sprintf("| %s | %s | %s | %s |", row.Index, row.Placement, joinOrDash(row.Containers), joinOrDash(row.Roots)))
	}
	return nil
}
