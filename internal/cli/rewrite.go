package cli

import (
	"context"

	"github.com/spf13/cobra"

	"resumatch/internal/ai"
	"resumatch/internal/common"
	"resumatch/internal/prompt"
	"resumatch/internal/workflow"
)

func newRewriteCmd() *cobra.Command {
	var (
		out         common.CommandConfig
		model       workflow.Model
		fabrication int
		overrides   string
		stream      bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite [resume.json] [job-file]",
		Short: "Rewrite a resume for a job posting",
		Long: `Rewrite the resume for the posting with a language model, then score the
result again. The fabrication level (0-100) controls how far the rewrite may
go beyond what the resume states. With --stream the raw model output is
echoed to stderr while it arrives.`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("fabrication") {
				if err := common.ValidateFabricationLevel(fabrication); err != nil {
					return err
				}
			}
			return resolveFormat(cmd, &out)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())
			_, flow := newServices(cmd.Context())
			if !cmd.Flags().Changed("fabrication") {
				fabrication = flow.DefaultFabricationLevel()
			}

			createInput := func(fp *common.FileProcessor, args []string) (workflow.RewriteInput, error) {
				resume, job, err := readPair(fp, args)
				return workflow.RewriteInput{
					Resume:        resume,
					Job:           job,
					Settings:      prompt.Settings{FabricationLevel: fabrication},
					UserOverrides: overrides,
					Model:         model,
				}, err
			}

			rewriteOperation := func(ctx context.Context, in workflow.RewriteInput) (*workflow.RewriteOutcome, *ai.TokenUsage, error) {
				outcome, err := flow.Rewrite(ctx, in, streamTo(stream, cmd.ErrOrStderr()))
				if err != nil {
					return nil, nil, err
				}
				return outcome, outcome.Usage, nil
			}

			logDetails := func(in workflow.RewriteInput, cfg common.CommandConfig) {
				logger.Info("Starting resume rewrite",
					"fabrication_level", in.Settings.FabricationLevel,
					"tier", prompt.FabricationTier(in.Settings.FabricationLevel),
					"job_chars", len(in.Job.Text),
					"output_format", cfg.OutputFormat)
			}

			return common.RunAICommand(cmd.Context(), logger, cmd.OutOrStdout(), out, args,
				createInput, rewriteOperation, logDetails)
		},
	}

	addOutputFlags(cmd, &out)
	addModelFlags(cmd, &model)
	cmd.Flags().IntVar(&fabrication, "fabrication", 0, "Fabrication level 0-100 (default from config)")
	cmd.Flags().StringVar(&overrides, "overrides", "", "Extra instructions appended to the prompt")
	cmd.Flags().BoolVar(&stream, "stream", false, "Echo model output to stderr while it arrives")
	return cmd
}
