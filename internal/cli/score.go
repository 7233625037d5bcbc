package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"resumatch/internal/ai"
	"resumatch/internal/common"
	"resumatch/internal/formatters"
	"resumatch/internal/types"
	"resumatch/internal/workflow"
)

type scoreInput struct {
	resume types.ResumeDocument
	jobs   []types.JobPosting
	names  []string
}

func newScoreCmd() *cobra.Command {
	var out common.CommandConfig
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "score [resume.json] [job-file...]",
		Short: "Score a resume against one or more job postings",
		Long: `Score a structured resume against job postings with the deterministic
ATS model. No language model is called. With several postings the results are
ranked by total score and can be exported as an Excel workbook.`,
		Args: cobra.MinimumNArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveFormat(cmd, &out)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())
			_, flow := newServices(cmd.Context())

			createInput := func(fp *common.FileProcessor, args []string) (scoreInput, error) {
				resume, err := fp.ReadResume(args[0])
				if err != nil {
					return scoreInput{}, err
				}
				in := scoreInput{resume: resume}
				for _, path := range args[1:] {
					job, err := fp.ReadJob(path)
					if err != nil {
						return scoreInput{}, err
					}
					in.jobs = append(in.jobs, job)
					in.names = append(in.names, filepath.Base(path))
				}
				return in, nil
			}

			scoreOperation := func(ctx context.Context, in scoreInput) (any, *ai.TokenUsage, error) {
				reports, err := scoreAll(ctx, flow, in)
				if err != nil {
					return nil, nil, err
				}
				if xlsxPath != "" {
					if err := formatters.ExportScores(reports, xlsxPath); err != nil {
						return nil, nil, err
					}
					logger.Info("Workbook exported", "file", xlsxPath, "postings", len(reports))
				}
				if len(reports) == 1 {
					return reports[0].Result, nil, nil
				}
				return reports, nil, nil
			}

			logDetails := func(in scoreInput, cfg common.CommandConfig) {
				logger.Info("Scoring resume", "postings", len(in.jobs), "output_format", cfg.OutputFormat)
			}

			return common.RunAICommand(cmd.Context(), logger, cmd.OutOrStdout(), out, args,
				createInput, scoreOperation, logDetails)
		},
	}

	addOutputFlags(cmd, &out)
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also export the scores to an .xlsx workbook")
	return cmd
}

// scoreAll scores every posting in parallel and ranks the reports by total,
// keeping input order among equal scores.
func scoreAll(ctx context.Context, flow *workflow.Service, in scoreInput) ([]workflow.ScoreReport, error) {
	reports := make([]workflow.ScoreReport, len(in.jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, job := range in.jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = workflow.ScoreReport{Source: in.names[i], Result: flow.Score(ctx, in.resume, job.Text)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring cancelled: %w", err)
	}

	slices.SortStableFunc(reports, func(a, b workflow.ScoreReport) int {
		return b.Result.Total - a.Result.Total
	})
	return reports, nil
}
