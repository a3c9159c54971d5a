package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/modelforest/internal/cli/config"
	"github.com/leapstack-labs/modelforest/internal/cli/output"
	"github.com/leapstack-labs/modelforest/internal/loader"
	"github.com/leapstack-labs/modelforest/internal/models"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, nil
}

// getConfig returns the current configuration, or defaults when none was
// loaded (commands run outside the root command).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Input:        config.DefaultInput,
		OutputFormat: config.DefaultOutput,
		LogLevel:     config.DefaultLogLevel,
	}
}

// InputPath returns the document named on the command line, or the
// configured input.
func (c *CommandContext) InputPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return c.Cfg.Input
}

// Composer returns a composer configured from the CLI settings.
func (c *CommandContext) Composer() *models.Composer {
	return models.NewComposer(models.Options{
		Logger:       c.Logger,
		DetectCycles: c.Cfg.Strict,
	})
}

// Load reads and composes the document at path.
func (c *CommandContext) Load(path string) (*models.ModelSet, *models.Forest, error) {
	set, err := loader.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("loaded model set", "path", path, "models", set.Len())

	forest, err := c.Composer().Compose(set)
	if err != nil {
		return set, nil, fmt.Errorf("failed to compose %s: %w", path, err)
	}
	return set, forest, nil
}
