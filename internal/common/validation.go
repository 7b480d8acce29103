package common

import (
	"fmt"
	"slices"
)

// ValidateOutputFormat checks a requested CLI output format against the
// formats enabled in app configuration (json, text, markdown by default)
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// GetSupportedFormats returns the configured output formats; used by the
// AI commands for --format flag completion
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}
