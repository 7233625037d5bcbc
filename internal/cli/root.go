package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"resumatch/internal/ai"
	"resumatch/internal/common"
	"resumatch/internal/config"
	"resumatch/internal/errors"
	"resumatch/internal/workflow"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resumatch",
		Short: "Score and tailor resumes against job postings",
		Long: `Resumatch scores a structured resume against a job posting with a
deterministic ATS model and uses a language model of your choice to rewrite
the resume, write cover letters and prepare interview questions.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newScoreCmd(),
		newPromptCmd(),
		newRewriteCmd(),
		newParseCmd(),
		newCoverLetterCmd(),
		newInterviewCmd(),
		newModelsCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI with cfg and logger attached to ctx
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	return NewRootCmd().ExecuteContext(ctx)
}

func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

// newServices wires the AI service and the workflow for one command run
func newServices(ctx context.Context, aiOpts ...ai.Option) (*ai.Service, *workflow.Service) {
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)
	aiService := ai.NewService(cfg, logger, aiOpts...)
	return aiService, workflow.New(cfg, aiService, logger)
}

// addOutputFlags registers --output and --format with completion
func addOutputFlags(cmd *cobra.Command, out *common.CommandConfig) {
	cmd.Flags().StringVarP(&out.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&out.OutputFormat, "format", "", "Output format: json, text, or markdown")
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return common.NewOutputHandler(nil).GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveFormat applies the configured default and validates the result
func resolveFormat(cmd *cobra.Command, out *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	if out.OutputFormat == "" {
		out.OutputFormat = cfg.App.DefaultFormat
	}
	if out.OutputFormat == "" {
		out.OutputFormat = "text"
	}
	return common.ValidateOutputFormat(out.OutputFormat, cfg.App.SupportedFormats)
}

// addModelFlags registers the per-call provider selection
func addModelFlags(cmd *cobra.Command, m *workflow.Model) {
	cmd.Flags().StringVar(&m.Provider, "provider", "", "AI provider: ollama, openai, anthropic, google, deepseek (default from config)")
	cmd.Flags().StringVar(&m.Model, "model", "", "Model name (default from config)")
	cmd.Flags().StringVar(&m.APIKey, "api-key", "", "Provider API key (default from config or environment)")
}

// streamTo returns a chunk sink writing to w, or nil when streaming is off
func streamTo(enabled bool, w io.Writer) ai.ChunkFunc {
	if !enabled {
		return nil
	}
	return func(chunk string) error {
		_, err := fmt.Fprint(w, chunk)
		return err
	}
}
