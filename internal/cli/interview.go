package cli

import (
	"context"

	"github.com/spf13/cobra"

	"resumatch/internal/ai"
	"resumatch/internal/common"
	"resumatch/internal/workflow"
)

func newInterviewCmd() *cobra.Command {
	var (
		out       common.CommandConfig
		model     workflow.Model
		overrides string
	)

	cmd := &cobra.Command{
		Use:   "interview [resume.json] [job-file]",
		Short: "Generate likely interview questions for a job posting",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveFormat(cmd, &out)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())
			_, flow := newServices(cmd.Context())

			createInput := func(fp *common.FileProcessor, args []string) (workflow.InterviewInput, error) {
				resume, job, err := readPair(fp, args)
				return workflow.InterviewInput{Resume: resume, Job: job, UserOverrides: overrides, Model: model}, err
			}

			interviewOperation := func(ctx context.Context, in workflow.InterviewInput) (*workflow.InterviewOutcome, *ai.TokenUsage, error) {
				outcome, err := flow.InterviewQuestions(ctx, in)
				if err != nil {
					return nil, nil, err
				}
				return outcome, outcome.Usage, nil
			}

			return common.RunAICommand(cmd.Context(), logger, cmd.OutOrStdout(), out, args,
				createInput, interviewOperation, nil)
		},
	}

	addOutputFlags(cmd, &out)
	addModelFlags(cmd, &model)
	cmd.Flags().StringVar(&overrides, "overrides", "", "Extra instructions appended to the prompt")
	return cmd
}
