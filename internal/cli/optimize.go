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

var optimizeCmd = &cobra.Command{
	Use:   "optimize [resume-json-file] [job-description-file]",
	Short: "Optimize a resume for a job posting as LaTeX",
	Long: `Rewrite a parsed resume targeted at one job posting using AI.
The command takes two arguments: a JSON file holding a parsed resume record
and a plain-text job description file. The output is LaTeX source ready to
compile; use --output to write it to a .tex file.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if optimizeConfig.OutputFormat == "" {
			optimizeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(optimizeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runOptimize,
}

var optimizeConfig common.CommandConfig

// optimizeInput bundles the decoded inputs for one optimization run
type optimizeInput struct {
	Resume         types.ResumeRecord
	JobDescription string
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	optimizeCmd.Flags().StringVar(&optimizeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = optimizeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	optimizeAIConfig := cfg.GetOptimizeConfig()
	aiService, err := ai.NewService(&optimizeAIConfig, ai.OperationOptimize, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	cred := types.Credential{ProviderID: optimizeAIConfig.Provider, APIKey: optimizeAIConfig.APIKey}

	createInput := func(contents []string) (optimizeInput, error) {
		if len(contents) != 2 {
			return optimizeInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		var input optimizeInput
		if err := json.Unmarshal([]byte(contents[0]), &input.Resume); err != nil {
			return optimizeInput{}, fmt.Errorf("invalid resume JSON: %w", err)
		}
		input.JobDescription = contents[1]
		return input, nil
	}

	logDetails := func(input optimizeInput, cfg common.CommandConfig) {
		logger.Info("Starting resume optimization",
			"job_chars", len(input.JobDescription),
			"provider", cred.ProviderID,
			"output_format", cfg.OutputFormat)
	}

	optimizeOperation := func(ctx context.Context, input optimizeInput) (types.OptimizedResume, *ai.TokenUsage, error) {
		return aiService.OptimizeResume(ctx, input.Resume, input.JobDescription, cred)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		optimizeConfig,
		args,
		createInput,
		optimizeOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to optimize resume: %w", err)
	}
	logger.Info("Resume optimization completed successfully")
	return nil
}
