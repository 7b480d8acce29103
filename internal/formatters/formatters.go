package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobpilot/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ResumeRecord", &ResumeTextFormatter{})
	registry.RegisterFormatter("markdown", "ResumeRecord", &ResumeMarkdownFormatter{})
	registry.RegisterFormatter("text", "JobMatches", &MatchesTextFormatter{})
	registry.RegisterFormatter("markdown", "JobMatches", &MatchesMarkdownFormatter{})
	registry.RegisterFormatter("text", "CoverLetter", &CoverLetterTextFormatter{})
	registry.RegisterFormatter("markdown", "CoverLetter", &CoverLetterMarkdownFormatter{})
	registry.RegisterFormatter("text", "InterviewPrep", &InterviewPrepTextFormatter{})
	registry.RegisterFormatter("markdown", "InterviewPrep", &InterviewPrepMarkdownFormatter{})
	registry.RegisterFormatter("text", "OptimizedResume", &OptimizedResumeFormatter{})
	registry.RegisterFormatter("markdown", "OptimizedResume", &OptimizedResumeFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ResumeRecord:
		return "ResumeRecord"
	case []types.JobMatch:
		return "JobMatches"
	case types.CoverLetter:
		return "CoverLetter"
	case types.InterviewPrep:
		return "InterviewPrep"
	case types.OptimizedResume:
		return "OptimizedResume"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ResumeTextFormatter handles text formatting for parsed resumes
type ResumeTextFormatter struct{}

func (rtf *ResumeTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ResumeRecord)
	if !ok {
		return "", fmt.Errorf("expected ResumeRecord, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== PARSED RESUME ===\n\n")
	output.WriteString(fmt.Sprintf("Name:  %s\n", result.FullName))
	output.WriteString(fmt.Sprintf("Email: %s\n", result.Email))
	if result.Phone != "" {
		output.WriteString(fmt.Sprintf("Phone: %s\n", result.Phone))
	}
	if result.Address != "" {
		output.WriteString(fmt.Sprintf("Address: %s\n", result.Address))
	}
	output.WriteString("\n")

	if result.Summary != "" {
		output.WriteString("=== SUMMARY ===\n")
		output.WriteString(result.Summary)
		output.WriteString("\n\n")
	}

	if len(result.Experience) > 0 {
		output.WriteString("=== EXPERIENCE ===\n")
		for _, exp := range result.Experience {
			end := exp.EndDate
			if end == "" {
				end = "present"
			}
			output.WriteString(fmt.Sprintf("%s at %s (%s - %s)\n", exp.Position, exp.Company, exp.StartDate, end))
			if exp.Description != "" {
				output.WriteString("  ")
				output.WriteString(exp.Description)
				output.WriteString("\n")
			}
			for _, a := range exp.Achievements {
				output.WriteString(fmt.Sprintf("  - %s\n", a))
			}
		}
		output.WriteString("\n")
	}

	if len(result.Education) > 0 {
		output.WriteString("=== EDUCATION ===\n")
		for _, edu := range result.Education {
			line := fmt.Sprintf("%s, %s", edu.Degree, edu.Institution)
			if edu.GraduationYear > 0 {
				line = fmt.Sprintf("%s (%d)", line, edu.GraduationYear)
			}
			output.WriteString(line)
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if len(result.Skills) > 0 {
		output.WriteString("=== SKILLS ===\n")
		output.WriteString(strings.Join(result.Skills, ", "))
		output.WriteString("\n")
	}

	if len(result.Certifications) > 0 {
		output.WriteString("\n=== CERTIFICATIONS ===\n")
		for _, cert := range result.Certifications {
			output.WriteString(fmt.Sprintf("- %s\n", cert))
		}
	}

	if len(result.Languages) > 0 {
		output.WriteString("\n=== LANGUAGES ===\n")
		output.WriteString(strings.Join(result.Languages, ", "))
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rtf *ResumeTextFormatter) SupportedType() string {
	return "ResumeRecord"
}

// ResumeMarkdownFormatter handles markdown formatting for parsed resumes
type ResumeMarkdownFormatter struct{}

func (rmf *ResumeMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ResumeRecord)
	if !ok {
		return "", fmt.Errorf("expected ResumeRecord, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# %s\n\n", result.FullName))
	output.WriteString(fmt.Sprintf("**Email:** %s\n\n", result.Email))
	if result.Phone != "" {
		output.WriteString(fmt.Sprintf("**Phone:** %s\n\n", result.Phone))
	}
	if result.Address != "" {
		output.WriteString(fmt.Sprintf("**Address:** %s\n\n", result.Address))
	}

	if result.Summary != "" {
		output.WriteString("## Summary\n\n")
		output.WriteString(result.Summary)
		output.WriteString("\n\n")
	}

	if len(result.Experience) > 0 {
		output.WriteString("## Experience\n\n")
		for _, exp := range result.Experience {
			end := exp.EndDate
			if end == "" {
				end = "present"
			}
			output.WriteString(fmt.Sprintf("### %s, %s\n\n", exp.Position, exp.Company))
			output.WriteString(fmt.Sprintf("*%s - %s*\n\n", exp.StartDate, end))
			if exp.Description != "" {
				output.WriteString(exp.Description)
				output.WriteString("\n\n")
			}
			for _, a := range exp.Achievements {
				output.WriteString(fmt.Sprintf("- %s\n", a))
			}
			if len(exp.Achievements) > 0 {
				output.WriteString("\n")
			}
		}
	}

	if len(result.Education) > 0 {
		output.WriteString("## Education\n\n")
		for _, edu := range result.Education {
			line := fmt.Sprintf("- %s, %s", edu.Degree, edu.Institution)
			if edu.GraduationYear > 0 {
				line = fmt.Sprintf("%s (%d)", line, edu.GraduationYear)
			}
			output.WriteString(line)
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if len(result.Skills) > 0 {
		output.WriteString("## Skills\n\n")
		output.WriteString(strings.Join(result.Skills, ", "))
		output.WriteString("\n")
	}

	if len(result.Certifications) > 0 {
		output.WriteString("\n## Certifications\n\n")
		for _, cert := range result.Certifications {
			output.WriteString(fmt.Sprintf("- %s\n", cert))
		}
	}

	if len(result.Languages) > 0 {
		output.WriteString("\n## Languages\n\n")
		output.WriteString(strings.Join(result.Languages, ", "))
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rmf *ResumeMarkdownFormatter) SupportedType() string {
	return "ResumeRecord"
}

// MatchesTextFormatter handles text formatting for job match results
type MatchesTextFormatter struct{}

func (mtf *MatchesTextFormatter) Format(data any) (string, error) {
	matches, ok := data.([]types.JobMatch)
	if !ok {
		return "", fmt.Errorf("expected []JobMatch, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== JOB MATCHES ===\n\n")
	if len(matches) == 0 {
		output.WriteString("No matches found.\n")
		return output.String(), nil
	}

	for i, m := range matches {
		output.WriteString(fmt.Sprintf("%d. Job %s - Score: %d/100\n", i+1, m.JobID, m.MatchScore))
		if len(m.Reasons) > 0 {
			output.WriteString("   Reasons:\n")
			for _, r := range m.Reasons {
				output.WriteString(fmt.Sprintf("   - %s\n", r))
			}
		}
		if len(m.MissingSkills) > 0 {
			output.WriteString("   Missing skills:\n")
			for _, s := range m.MissingSkills {
				output.WriteString(fmt.Sprintf("   - %s\n", s))
			}
		}
		if len(m.Recommendations) > 0 {
			output.WriteString("   Recommendations:\n")
			for _, rec := range m.Recommendations {
				output.WriteString(fmt.Sprintf("   - %s\n", rec))
			}
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (mtf *MatchesTextFormatter) SupportedType() string {
	return "JobMatches"
}

// MatchesMarkdownFormatter handles markdown formatting for job match results
type MatchesMarkdownFormatter struct{}

func (mmf *MatchesMarkdownFormatter) Format(data any) (string, error) {
	matches, ok := data.([]types.JobMatch)
	if !ok {
		return "", fmt.Errorf("expected []JobMatch, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Job Matches\n\n")
	if len(matches) == 0 {
		output.WriteString("No matches found.\n")
		return output.String(), nil
	}

	for i, m := range matches {
		output.WriteString(fmt.Sprintf("## %d. Job %s\n\n", i+1, m.JobID))
		output.WriteString(fmt.Sprintf("**Score:** %d/100\n\n", m.MatchScore))
		if len(m.Reasons) > 0 {
			output.WriteString("### Reasons\n\n")
			for _, r := range m.Reasons {
				output.WriteString(fmt.Sprintf("- %s\n", r))
			}
			output.WriteString("\n")
		}
		if len(m.MissingSkills) > 0 {
			output.WriteString("### Missing Skills\n\n")
			for _, s := range m.MissingSkills {
				output.WriteString(fmt.Sprintf("- %s\n", s))
			}
			output.WriteString("\n")
		}
		if len(m.Recommendations) > 0 {
			output.WriteString("### Recommendations\n\n")
			for _, rec := range m.Recommendations {
				output.WriteString(fmt.Sprintf("- %s\n", rec))
			}
			output.WriteString("\n")
		}
	}

	return output.String(), nil
}

func (mmf *MatchesMarkdownFormatter) SupportedType() string {
	return "JobMatches"
}

// CoverLetterTextFormatter handles text formatting for cover letters
type CoverLetterTextFormatter struct{}

func (ctf *CoverLetterTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.CoverLetter)
	if !ok {
		return "", fmt.Errorf("expected CoverLetter, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("=== COVER LETTER (%s) ===\n\n", result.Company))
	output.WriteString(result.Content)
	output.WriteString("\n")

	return output.String(), nil
}

func (ctf *CoverLetterTextFormatter) SupportedType() string {
	return "CoverLetter"
}

// CoverLetterMarkdownFormatter handles markdown formatting for cover letters
type CoverLetterMarkdownFormatter struct{}

func (cmf *CoverLetterMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.CoverLetter)
	if !ok {
		return "", fmt.Errorf("expected CoverLetter, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Cover Letter — %s\n\n", result.Company))
	output.WriteString(result.Content)
	output.WriteString("\n")

	return output.String(), nil
}

func (cmf *CoverLetterMarkdownFormatter) SupportedType() string {
	return "CoverLetter"
}

// InterviewPrepTextFormatter handles text formatting for interview questions
type InterviewPrepTextFormatter struct{}

func (itf *InterviewPrepTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.InterviewPrep)
	if !ok {
		return "", fmt.Errorf("expected InterviewPrep, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== INTERVIEW QUESTIONS ===\n\n")
	if len(result.Questions) == 0 {
		output.WriteString("No questions generated.\n")
		return output.String(), nil
	}
	for i, q := range result.Questions {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, q))
	}

	return output.String(), nil
}

func (itf *InterviewPrepTextFormatter) SupportedType() string {
	return "InterviewPrep"
}

// InterviewPrepMarkdownFormatter handles markdown formatting for interview questions
type InterviewPrepMarkdownFormatter struct{}

func (imf *InterviewPrepMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.InterviewPrep)
	if !ok {
		return "", fmt.Errorf("expected InterviewPrep, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Interview Questions\n\n")
	if len(result.Questions) == 0 {
		output.WriteString("No questions generated.\n")
		return output.String(), nil
	}
	for i, q := range result.Questions {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, q))
	}

	return output.String(), nil
}

func (imf *InterviewPrepMarkdownFormatter) SupportedType() string {
	return "InterviewPrep"
}

// OptimizedResumeFormatter emits the LaTeX source verbatim. LaTeX is the
// deliverable itself, so text and markdown output are identical.
type OptimizedResumeFormatter struct{}

func (orf *OptimizedResumeFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OptimizedResume)
	if !ok {
		return "", fmt.Errorf("expected OptimizedResume, got %T", data)
	}
	return result.LaTeX, nil
}

func (orf *OptimizedResumeFormatter) SupportedType() string {
	return "OptimizedResume"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
