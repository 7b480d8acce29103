package cli

import (
	"encoding/json"
	"fmt"

	"jobpilot/internal/ai"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported AI providers",
	Long: `List the AI providers jobpilot can dispatch to, along with where
to obtain an API key for each.`,
	RunE: runProviders,
}

var providersJSON bool

func init() {
	providersCmd.Flags().BoolVar(&providersJSON, "json", false, "Output as JSON")
}

func runProviders(cmd *cobra.Command, args []string) error {
	registry := ai.NewRegistry()
	descriptors := registry.List()

	if providersJSON {
		out, err := json.MarshalIndent(descriptors, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println("Supported AI providers:")
	for _, d := range descriptors {
		fmt.Printf("  %-10s %s\n", d.ID, d.DisplayName)
		fmt.Printf("             %s\n", d.Description)
		fmt.Printf("             API keys: %s\n", d.KeyAcquisitionURL)
	}
	return nil
}
