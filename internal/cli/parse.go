package cli

import (
	"context"

	"github.com/spf13/cobra"

	"resumatch/internal/ai"
	"resumatch/internal/common"
	"resumatch/internal/workflow"
)

func newParseCmd() *cobra.Command {
	var (
		out       common.CommandConfig
		model     workflow.Model
		overrides string
	)

	cmd := &cobra.Command{
		Use:   "parse [document]",
		Short: "Turn a resume document into structured JSON",
		Long: `Extract the text of a resume (txt, md, pdf, docx or html) and have a
language model structure it into the resume JSON the other commands read.
Fields that fail validation are listed for manual review.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveFormat(cmd, &out)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())
			_, flow := newServices(cmd.Context())

			createInput := func(fp *common.FileProcessor, args []string) (workflow.ParseInput, error) {
				doc, err := fp.ReadDocument(args[0])
				if err != nil {
					return workflow.ParseInput{}, err
				}
				return workflow.ParseInput{Text: doc.Text, UserOverrides: overrides, Model: model}, nil
			}

			parseOperation := func(ctx context.Context, in workflow.ParseInput) (*workflow.ParseOutcome, *ai.TokenUsage, error) {
				outcome, err := flow.Parse(ctx, in)
				if err != nil {
					return nil, nil, err
				}
				return outcome, outcome.Usage, nil
			}

			logDetails := func(in workflow.ParseInput, _ common.CommandConfig) {
				logger.Info("Parsing resume document", "file", args[0], "chars", len(in.Text))
			}

			return common.RunAICommand(cmd.Context(), logger, cmd.OutOrStdout(), out, args,
				createInput, parseOperation, logDetails)
		},
	}

	addOutputFlags(cmd, &out)
	addModelFlags(cmd, &model)
	cmd.Flags().StringVar(&overrides, "overrides", "", "Extra instructions appended to the prompt")
	return cmd
}
