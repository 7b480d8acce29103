package common

import (
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	configured := []string{"json", "text", "markdown"}

	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectError      bool
		expectedError    string
	}{
		{
			name:             "json is supported",
			format:           "json",
			supportedFormats: configured,
		},
		{
			name:             "text is supported",
			format:           "text",
			supportedFormats: configured,
		},
		{
			name:             "markdown is supported",
			format:           "markdown",
			supportedFormats: configured,
		},
		{
			name:             "latex is not a list format",
			format:           "latex",
			supportedFormats: configured,
			expectError:      true,
			expectedError:    "unsupported output format 'latex'. Supported formats: [json text markdown]",
		},
		{
			name:             "pdf rejected",
			format:           "pdf",
			supportedFormats: configured,
			expectError:      true,
			expectedError:    "unsupported output format 'pdf'. Supported formats: [json text markdown]",
		},
		{
			name:             "formats are case sensitive",
			format:           "JSON",
			supportedFormats: configured,
			expectError:      true,
			expectedError:    "unsupported output format 'JSON'. Supported formats: [json text markdown]",
		},
		{
			name:             "empty format rejected",
			format:           "",
			supportedFormats: configured,
			expectError:      true,
			expectedError:    "unsupported output format ''. Supported formats: [json text markdown]",
		},
		{
			name:             "no configured formats means no restriction",
			format:           "latex",
			supportedFormats: []string{},
		},
		{
			name:             "single configured format accepted",
			format:           "json",
			supportedFormats: []string{"json"},
		},
		{
			name:             "single configured format rejects others",
			format:           "text",
			supportedFormats: []string{"json"},
			expectError:      true,
			expectedError:    "unsupported output format 'text'. Supported formats: [json]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
					return
				}
				if tt.expectedError != "" && err.Error() != tt.expectedError {
					t.Errorf("Expected error '%s', got '%s'", tt.expectedError, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
			}
		})
	}
}

func TestGetSupportedFormats(t *testing.T) {
	tests := []struct {
		name             string
		supportedFormats []string
		expected         []string
	}{
		{
			name:             "default jobpilot formats",
			supportedFormats: []string{"json", "text", "markdown"},
			expected:         []string{"json", "text", "markdown"},
		},
		{
			name:             "json only",
			supportedFormats: []string{"json"},
			expected:         []string{"json"},
		},
		{
			name:             "empty configuration",
			supportedFormats: []string{},
			expected:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetSupportedFormats(tt.supportedFormats)

			if len(result) != len(tt.expected) {
				t.Errorf("Expected %d formats, got %d", len(tt.expected), len(result))
				return
			}

			for i, expected := range tt.expected {
				if result[i] != expected {
					t.Errorf("Expected format[%d] = '%s', got '%s'", i, expected, result[i])
				}
			}
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}

	b.Run("supported format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supportedFormats)
		}
	})

	b.Run("unsupported format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("latex", supportedFormats)
		}
	})
}
