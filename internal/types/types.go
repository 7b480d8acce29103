package types

import "sort"

// Credential identifies the AI provider and key used for a single invocation.
// The key is opaque: it is never validated locally and never logged.
type Credential struct {
	ProviderID string `json:"providerId"`
	APIKey     string `json:"-"`
}

// EducationEntry is one education item extracted from a resume
type EducationEntry struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	FieldOfStudy   string `json:"fieldOfStudy,omitempty"`
	GraduationYear int    `json:"graduationYear,omitempty"`
	GPA            string `json:"gpa,omitempty"`
}

// ExperienceEntry is one work history item extracted from a resume.
// Dates are MM/YYYY strings; EndDate is empty for a current position.
type ExperienceEntry struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate,omitempty"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements,omitempty"`
}

// ResumeRecord is the structured extraction result for one resume.
// It is overwritten wholesale on each successful parse; there is no merging.
type ResumeRecord struct {
	FullName       string            `json:"fullName"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone,omitempty"`
	Address        string            `json:"address,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	Education      []EducationEntry  `json:"education"`
	Experience     []ExperienceEntry `json:"experience"`
	Skills         []string          `json:"skills"`
	Certifications []string          `json:"certifications,omitempty"`
	Languages      []string          `json:"languages,omitempty"`
}

// JobListing is an external job posting. Read-only from this service's
// perspective.
type JobListing struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Location     string   `json:"location,omitempty"`
	SalaryRange  string   `json:"salaryRange,omitempty"`
	JobType      string   `json:"jobType,omitempty"`
}

// JobMatch is one scored match between a candidate and a job listing
type JobMatch struct {
	JobID           string   `json:"jobId"`
	MatchScore      int      `json:"matchScore"` // 0-100
	Reasons         []string `json:"reasons"`
	MissingSkills   []string `json:"missingSkills"`
	Recommendations []string `json:"recommendations"`
}

// Preferences is the candidate's job-search preference payload. It is
// embedded verbatim into the matching prompt and never interpreted here.
type Preferences struct {
	JobTypes    []string `json:"jobTypes,omitempty"`
	Locations   []string `json:"locations,omitempty"`
	SalaryRange string   `json:"salaryRange,omitempty"`
	Remote      bool     `json:"remote,omitempty"`
}

// CoverLetter is a generated cover letter for one application
type CoverLetter struct {
	Company string `json:"company"`
	Content string `json:"content"`
}

// InterviewPrep holds generated interview preparation questions
type InterviewPrep struct {
	Questions []string `json:"questions"`
}

// OptimizedResume is a LaTeX rendition of a resume tuned to one job posting
type OptimizedResume struct {
	LaTeX string `json:"latex"`
}

// SortMatchesByScore orders matches by descending score, in place.
// Providers return matches in arbitrary order; the sort is stable so ties
// keep the provider's relative ordering.
func SortMatchesByScore(matches []JobMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
}
