package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"jobpilot/internal/ai"
	"jobpilot/internal/common"
	"jobpilot/internal/types"

	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:   "questions [resume-json-file] [job-description-file]",
	Short: "Generate interview preparation questions",
	Long: `Generate likely interview questions for a job posting using AI.
The command takes two arguments: a JSON file holding a parsed resume record
and a plain-text job description file.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if questionsConfig.OutputFormat == "" {
			questionsConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(questionsConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runQuestions,
}

var questionsConfig common.CommandConfig

// questionsInput bundles the decoded inputs for one generation run
type questionsInput struct {
	Resume         types.ResumeRecord
	JobDescription string
}

func init() {
	questionsCmd.Flags().StringVarP(&questionsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	questionsCmd.Flags().StringVar(&questionsConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = questionsCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runQuestions(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	questionsAIConfig := cfg.GetQuestionsConfig()
	aiService, err := ai.NewService(&questionsAIConfig, ai.OperationQuestions, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	cred := types.Credential{ProviderID: questionsAIConfig.Provider, APIKey: questionsAIConfig.APIKey}

	createInput := func(contents []string) (questionsInput, error) {
		if len(contents) != 2 {
			return questionsInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		var input questionsInput
		if err := json.Unmarshal([]byte(contents[0]), &input.Resume); err != nil {
			return questionsInput{}, fmt.Errorf("invalid resume JSON: %w", err)
		}
		input.JobDescription = contents[1]
		return input, nil
	}

	logDetails := func(input questionsInput, cfg common.CommandConfig) {
		logger.Info("Starting interview question generation",
			"job_chars", len(input.JobDescription),
			"provider", cred.ProviderID,
			"output_format", cfg.OutputFormat)
	}

	questionsOperation := func(ctx context.Context, input questionsInput) (types.InterviewPrep, *ai.TokenUsage, error) {
		return aiService.GenerateInterviewQuestions(ctx, input.JobDescription, input.Resume, cred)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		questionsConfig,
		args,
		createInput,
		questionsOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate interview questions: %w", err)
	}
	logger.Info("Interview question generation completed successfully")
	return nil
}
