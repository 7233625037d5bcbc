package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"resumatch/internal/common"
	"resumatch/internal/ingest"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage local Ollama models",
	}
	cmd.AddCommand(newModelsListCmd(), newModelsShowCmd(), newModelsPullCmd())
	return cmd
}

func newModelsListCmd() *cobra.Command {
	var out common.CommandConfig
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed Ollama models",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveFormat(cmd, &out)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			aiService, _ := newServices(cmd.Context())
			list := aiService.Ollama().ListModels(cmd.Context())
			return common.NewOutputHandlerTo(getLoggerFromContext(cmd.Context()), cmd.OutOrStdout()).HandleOutput(list, out)
		},
	}
	addOutputFlags(cmd, &out)
	return cmd
}

func newModelsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print the daemon's description of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aiService, _ := newServices(cmd.Context())
			info, err := aiService.Ollama().ShowModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return common.NewOutputHandlerTo(getLoggerFromContext(cmd.Context()), cmd.OutOrStdout()).
				HandleOutput(info, common.CommandConfig{OutputFormat: "json"})
		},
	}
}

func newModelsPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull [name]",
		Short: "Download a model into the local Ollama daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())
			aiService, _ := newServices(cmd.Context())

			err := aiService.Ollama().PullModel(cmd.Context(), args[0], func(progress map[string]any) error {
				printProgress(cmd.OutOrStdout(), progress)
				return nil
			})
			if stderrors.Is(err, context.Canceled) {
				logger.Info("Model pull cancelled", "model", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: success\n", args[0])
			return nil
		},
	}
}

// printProgress renders one NDJSON progress object as a status line
func printProgress(w io.Writer, progress map[string]any) {
	status, _ := progress["status"].(string)
	completed, _ := progress["completed"].(float64)
	total, _ := progress["total"].(float64)
	if total > 0 {
		fmt.Fprintf(w, "%s %s/%s (%.0f%%)\n", status,
			ingest.FormatFileSize(int64(completed)), ingest.FormatFileSize(int64(total)), completed/total*100)
		return
	}
	if status != "" {
		fmt.Fprintln(w, status)
	}
}

