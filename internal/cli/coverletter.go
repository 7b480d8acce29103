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

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter [resume-json-file] [job-description-file]",
	Short: "Generate a cover letter for a job application",
	Long: `Generate a tailored cover letter using AI. The command takes two
arguments: a JSON file holding a parsed resume record and a plain-text job
description file. The target company is set with --company.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if coverLetterConfig.OutputFormat == "" {
			coverLetterConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if coverLetterCompany == "" {
			return fmt.Errorf("--company is required")
		}
		return common.ValidateOutputFormat(coverLetterConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runCoverLetter,
}

var (
	coverLetterConfig  common.CommandConfig
	coverLetterCompany string
)

// coverLetterInput bundles the decoded inputs for one generation run
type coverLetterInput struct {
	Resume         types.ResumeRecord
	JobDescription string
}

func init() {
	coverLetterCmd.Flags().StringVarP(&coverLetterConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	coverLetterCmd.Flags().StringVar(&coverLetterConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	coverLetterCmd.Flags().StringVar(&coverLetterCompany, "company", "", "Company name the letter is addressed to (required)")

	_ = coverLetterCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runCoverLetter(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	coverAIConfig := cfg.GetCoverLetterConfig()
	aiService, err := ai.NewService(&coverAIConfig, ai.OperationCover, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	cred := types.Credential{ProviderID: coverAIConfig.Provider, APIKey: coverAIConfig.APIKey}

	createInput := func(contents []string) (coverLetterInput, error) {
		if len(contents) != 2 {
			return coverLetterInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		var input coverLetterInput
		if err := json.Unmarshal([]byte(contents[0]), &input.Resume); err != nil {
			return coverLetterInput{}, fmt.Errorf("invalid resume JSON: %w", err)
		}
		input.JobDescription = contents[1]
		return input, nil
	}

	logDetails := func(input coverLetterInput, cfg common.CommandConfig) {
		logger.Info("Starting cover letter generation",
			"company", coverLetterCompany,
			"job_chars", len(input.JobDescription),
			"provider", cred.ProviderID,
			"output_format", cfg.OutputFormat)
	}

	coverOperation := func(ctx context.Context, input coverLetterInput) (types.CoverLetter, *ai.TokenUsage, error) {
		return aiService.GenerateCoverLetter(ctx, input.Resume, input.JobDescription, coverLetterCompany, cred)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		coverLetterConfig,
		args,
		createInput,
		coverOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate cover letter: %w", err)
	}
	logger.Info("Cover letter generation completed successfully")
	return nil
}
