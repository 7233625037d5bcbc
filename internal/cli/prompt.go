package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"resumatch/internal/ai"
	"resumatch/internal/common"
	"resumatch/internal/prompt"
	"resumatch/internal/types"
)

func kindNames() []string {
	names := make([]string, 0, len(prompt.Kinds()))
	for _, k := range prompt.Kinds() {
		names = append(names, string(k))
	}
	return names
}

func newPromptCmd() *cobra.Command {
	var (
		out         common.CommandConfig
		kind        string
		fabrication int
		tone        string
		length      string
		question    string
		overrides   string
	)

	cmd := &cobra.Command{
		Use:   "prompt [resume.json] [job-file]",
		Short: "Print a composed prompt without calling a model",
		Long: fmt.Sprintf(`Compose the prompt for one of the supported kinds and print it, so it
can be pasted into any chat model. Kinds: %s.
The job file may be left out for the networking kind.`, strings.Join(kindNames(), ", ")),
		Args: cobra.RangeArgs(1, 2),
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

			createInput := func(fp *common.FileProcessor, args []string) (prompt.Request, error) {
				t, err := prompt.ParseTone(tone)
				if err != nil {
					return prompt.Request{}, err
				}
				l, err := prompt.ParseLength(length)
				if err != nil {
					return prompt.Request{}, err
				}
				req := prompt.Request{
					Kind:          prompt.Kind(kind),
					Settings:      prompt.Settings{FabricationLevel: fabrication},
					CoverLetter:   prompt.CoverLetterSettings{Tone: t, Length: l},
					Question:      question,
					UserOverrides: overrides,
				}
				if req.Resume, err = fp.ReadResume(args[0]); err != nil {
					return req, err
				}
				if len(args) > 1 {
					if req.Job, err = fp.ReadJob(args[1]); err != nil {
						return req, err
					}
				} else if req.Kind != prompt.KindNetworking {
					return req, fmt.Errorf("a job file is required for the %s prompt", kind)
				}
				return req, nil
			}

			composeOperation := func(ctx context.Context, req prompt.Request) (string, *ai.TokenUsage, error) {
				text, err := flow.Prompt(ctx, req)
				return text, nil, err
			}

			logDetails := func(req prompt.Request, _ common.CommandConfig) {
				logger.Debug("Composing prompt", "kind", req.Kind, "fabrication_level", req.Settings.FabricationLevel)
			}

			return common.RunAICommand(cmd.Context(), logger, cmd.OutOrStdout(), out, args,
				createInput, composeOperation, logDetails)
		},
	}

	addOutputFlags(cmd, &out)
	cmd.Flags().StringVar(&kind, "kind", string(prompt.KindRewrite), "Prompt kind")
	cmd.Flags().IntVar(&fabrication, "fabrication", 0, "Fabrication level 0-100 for rewrite prompts (default from config)")
	cmd.Flags().StringVar(&tone, "tone", "", "Cover letter tone: professional, conversational, enthusiastic")
	cmd.Flags().StringVar(&length, "length", "", "Cover letter length: concise, standard, detailed")
	cmd.Flags().StringVar(&question, "question", "", "Interview question for the star kind")
	cmd.Flags().StringVar(&overrides, "overrides", "", "Extra instructions appended to the prompt")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return kindNames(), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// readPair loads the resume and the job posting named by args
func readPair(fp *common.FileProcessor, args []string) (types.ResumeDocument, types.JobPosting, error) {
	resume, err := fp.ReadResume(args[0])
	if err != nil {
		return resume, types.JobPosting{}, err
	}
	job, err := fp.ReadJob(args[1])
	return resume, job, err
}
