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

var matchCmd = &cobra.Command{
	Use:   "match [resume-json-file] [jobs-json-file]",
	Short: "Match a parsed resume against job listings",
	Long: `Score a parsed resume against a set of job listings using AI.
The command takes two arguments: a JSON file holding a parsed resume record
(the output of the parse command) and a JSON file holding an array of job
listings. Matches are printed ordered by score, best first.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if matchConfig.OutputFormat == "" {
			matchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(matchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runMatch,
}

var (
	matchConfig          common.CommandConfig
	matchPreferencesFile string
)

// matchInput bundles the decoded inputs for one matching run
type matchInput struct {
	Resume types.ResumeRecord
	Jobs   []types.JobListing
}

func init() {
	matchCmd.Flags().StringVarP(&matchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	matchCmd.Flags().StringVar(&matchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	matchCmd.Flags().StringVar(&matchPreferencesFile, "preferences", "", "JSON file with job-search preferences (optional)")

	_ = matchCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	matchAIConfig := cfg.GetMatchConfig()
	aiService, err := ai.NewService(&matchAIConfig, ai.OperationMatch, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	cred := types.Credential{ProviderID: matchAIConfig.Provider, APIKey: matchAIConfig.APIKey}

	prefs, err := loadPreferences(matchPreferencesFile)
	if err != nil {
		return err
	}

	createInput := func(contents []string) (matchInput, error) {
		if len(contents) != 2 {
			return matchInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		var input matchInput
		if err := json.Unmarshal([]byte(contents[0]), &input.Resume); err != nil {
			return matchInput{}, fmt.Errorf("invalid resume JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(contents[1]), &input.Jobs); err != nil {
			return matchInput{}, fmt.Errorf("invalid jobs JSON: %w", err)
		}
		if len(input.Jobs) == 0 {
			return matchInput{}, fmt.Errorf("jobs file contains no listings")
		}
		return input, nil
	}

	logDetails := func(input matchInput, cfg common.CommandConfig) {
		logger.Info("Starting job matching",
			"jobs_count", len(input.Jobs),
			"provider", cred.ProviderID,
			"output_format", cfg.OutputFormat)
	}

	matchOperation := func(ctx context.Context, input matchInput) ([]types.JobMatch, *ai.TokenUsage, error) {
		matches, tokenUsage, err := aiService.MatchJobs(ctx, input.Resume, input.Jobs, prefs, cred)
		if err != nil {
			return nil, tokenUsage, err
		}
		types.SortMatchesByScore(matches)
		return matches, tokenUsage, nil
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		matchConfig,
		args,
		createInput,
		matchOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to match jobs: %w", err)
	}
	logger.Info("Job matching completed successfully")
	return nil
}

// loadPreferences reads the optional preferences JSON file
func loadPreferences(path string) (types.Preferences, error) {
	var prefs types.Preferences
	if path == "" {
		return prefs, nil
	}

	fileProcessor := common.NewFileProcessor(nil)
	content, err := fileProcessor.ReadFile(path)
	if err != nil {
		return prefs, fmt.Errorf("failed to read preferences file: %w", err)
	}
	if err := json.Unmarshal([]byte(content), &prefs); err != nil {
		return prefs, fmt.Errorf("invalid preferences JSON: %w", err)
	}
	return prefs, nil
}
