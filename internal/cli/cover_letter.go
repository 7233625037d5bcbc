package cli

import (
	"context"

	"github.com/spf13/cobra"

	"resumatch/internal/ai"
	"resumatch/internal/common"
	"resumatch/internal/prompt"
	"resumatch/internal/workflow"
)

func newCoverLetterCmd() *cobra.Command {
	var (
		out       common.CommandConfig
		model     workflow.Model
		tone      string
		length    string
		overrides string
		stream    bool
	)

	cmd := &cobra.Command{
		Use:   "cover-letter [resume.json] [job-file]",
		Short: "Write a cover letter for a job posting",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveFormat(cmd, &out)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())
			_, flow := newServices(cmd.Context())

			createInput := func(fp *common.FileProcessor, args []string) (workflow.CoverLetterInput, error) {
				t, err := prompt.ParseTone(tone)
				if err != nil {
					return workflow.CoverLetterInput{}, err
				}
				l, err := prompt.ParseLength(length)
				if err != nil {
					return workflow.CoverLetterInput{}, err
				}
				resume, job, err := readPair(fp, args)
				return workflow.CoverLetterInput{
					Resume:        resume,
					Job:           job,
					Settings:      prompt.CoverLetterSettings{Tone: t, Length: l},
					UserOverrides: overrides,
					Model:         model,
				}, err
			}

			letterOperation := func(ctx context.Context, in workflow.CoverLetterInput) (*workflow.Text, *ai.TokenUsage, error) {
				text, err := flow.CoverLetter(ctx, in, streamTo(stream, cmd.ErrOrStderr()))
				if err != nil {
					return nil, nil, err
				}
				return text, text.Usage, nil
			}

			logDetails := func(in workflow.CoverLetterInput, _ common.CommandConfig) {
				logger.Info("Writing cover letter", "tone", in.Settings.Tone, "length", in.Settings.Length)
			}

			return common.RunAICommand(cmd.Context(), logger, cmd.OutOrStdout(), out, args,
				createInput, letterOperation, logDetails)
		},
	}

	addOutputFlags(cmd, &out)
	addModelFlags(cmd, &model)
	cmd.Flags().StringVar(&tone, "tone", "", "Tone: professional, conversational, enthusiastic")
	cmd.Flags().StringVar(&length, "length", "", "Length: concise, standard, detailed")
	cmd.Flags().StringVar(&overrides, "overrides", "", "Extra instructions appended to the prompt")
	cmd.Flags().BoolVar(&stream, "stream", false, "Echo the letter to stderr while it is written")
	return cmd
}
