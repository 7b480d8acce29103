package utils

import "testing"

func TestIsTextFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected bool
	}{
		{"plain resume text", "resume.txt", true},
		{"parsed resume record", "resume.json", true},
		{"optimized resume output", "tailored.tex", true},
		{"markdown", "notes.md", true},
		{"uppercase extension", "RESUME.JSON", true},
		{"pdf resume", "resume.pdf", false},
		{"docx resume", "resume.docx", false},
		{"no extension", "resume", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTextFile(tt.filename); got != tt.expected {
				t.Errorf("IsTextFile(%q) = %v, want %v", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestGetFileExtension(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"resume.JSON", ".json"},
		{"letter.tex", ".tex"},
		{"resume", ""},
		{"archive.tar.gz", ".gz"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := GetFileExtension(tt.filename); got != tt.expected {
				t.Errorf("GetFileExtension(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}
