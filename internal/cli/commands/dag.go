package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/modelforest/internal/cli/output"
	"github.com/leapstack-labs/modelforest/internal/loader"
	"github.com/leapstack-labs/modelforest/internal/models"
)

// GraphQuerier provides read-only access to DAG structure.
type GraphQuerier interface {
	GetParents(string) []string
	GetChildren(string) []string
	NodeCount() int
	EdgeCount() int
}

// NewDAGCommand creates the dag command.
func NewDAGCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dag [file]",
		Short: "Show the containment graph",
		Long: `Display the containment graph of all models.

Models are grouped by definition level: level 0 holds models that contain
nothing, and every other model only contains models from lower levels.`,
		Example: `  # Show the graph
  modelforest dag

  # Output as JSON
  modelforest dag --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDAG,
	}
}

func runDAG(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	set, err := loader.LoadFile(cmdCtx.InputPath(args))
	if err != nil {
		return err
	}
	if err := models.Validate(set); err != nil {
		return err
	}
	graph, err := models.ContainmentGraph(set)
	if err != nil {
		return err
	}

	levels, err := graph.GetExecutionLevels()
	if err != nil {
		return fmt.Errorf("failed to get definition levels: %w", err)
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return dagJSON(r, graph, levels)
	case output.ModeMarkdown:
		return dagMarkdown(r, graph, levels)
	default:
		return dagText(r, graph, levels)
	}
}

// dagText outputs DAG in styled text format.
func dagText(r *output.Renderer, graph GraphQuerier, levels [][]string) error {
	styles := r.Styles()

	r.Header(1, "Containment Graph")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, model := range level {
			r.Printf("  %s\n", styles.ModelPath.Render(model))
			if contains := graph.GetParents(model); len(contains) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("contains:"), strings.Join(contains, ", "))
			}
			if usedBy := graph.GetChildren(model); len(usedBy) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(usedBy, ", "))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d models, %d containment edges", graph.NodeCount(), graph.EdgeCount())))
	return nil
}

// dagMarkdown outputs DAG in markdown format.
func dagMarkdown(r *output.Renderer, graph GraphQuerier, levels [][]string) error {
	r.Println(output.FormatHeader(1, "Containment Graph"))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Leaves)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, model := range level {
			r.Printf("- %s\n", model)
			if contains := graph.GetParents(model); len(contains) > 0 {
				r.Printf("  - contains: %s\n", strings.Join(contains, ", "))
			}
			if usedBy := graph.GetChildren(model); len(usedBy) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(usedBy, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Models", fmt.Sprintf("%d", graph.NodeCount())))
	r.Println(output.FormatKeyValue("Total Edges", fmt.Sprintf("%d", graph.EdgeCount())))
	return nil
}

// dagJSON outputs DAG in JSON format.
func dagJSON(r *output.Renderer, graph GraphQuerier, levels [][]string) error {
	dagOutput := output.DAGOutput{
		Levels:      make([]output.DAGLevel, 0, len(levels)),
		TotalModels: graph.NodeCount(),
		TotalEdges:  graph.EdgeCount(),
	}

	for i, level := range levels {
		dagLevel := output.DAGLevel{
			Level:  i,
			Models: make([]output.DAGNode, 0, len(level)),
		}
		for _, model := range level {
			dagLevel.Models = append(dagLevel.Models, output.DAGNode{
				Index:    model,
				Contains: graph.GetParents(model),
				UsedBy:   graph.GetChildren(model),
			})
		}
		dagOutput.Levels = append(dagOutput.Levels, dagLevel)
	}

	return r.JSON(dagOutput)
}
