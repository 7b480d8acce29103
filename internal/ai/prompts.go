package ai

// SystemPrompts contains all system-level instructions for AI interactions
type SystemPrompts struct {
	ParseResume        string
	MatchJobs          string
	CoverLetter        string
	InterviewQuestions string
	OptimizeResume     string
}

// UserPrompts contains user-level prompts with placeholders for dynamic content
type UserPrompts struct {
	ParseResume        string
	MatchJobs          string
	CoverLetter        string
	InterviewQuestions string
	OptimizeResume     string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	ParseResume:        `You are an expert resume parser. Extract information accurately and return only valid JSON.`,
	MatchJobs:          `You are an expert job matching specialist. Provide accurate, helpful job match analysis.`,
	CoverLetter:        `You are an expert career counselor and cover letter writer. Create compelling, professional cover letters.`,
	InterviewQuestions: `You are an expert interview coach. Generate realistic, helpful interview questions.`,
	OptimizeResume:     `You are an expert resume writer and LaTeX specialist. Create professional, ATS-optimized resumes.`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	ParseResume: `Parse the following resume text and extract structured data. Return ONLY a valid JSON object with the following structure:

{
  "fullName": "string",
  "email": "string",
  "phone": "string (optional)",
  "address": "string (optional)",
  "summary": "string (optional)",
  "education": [
    {
      "institution": "string",
      "degree": "string",
      "fieldOfStudy": "string (optional)",
      "graduationYear": number (optional),
      "gpa": "string (optional)"
    }
  ],
  "experience": [
    {
      "company": "string",
      "position": "string",
      "startDate": "string (MM/YYYY format)",
      "endDate": "string (MM/YYYY format, optional)",
      "description": "string",
      "achievements": ["string array (optional)"]
    }
  ],
  "skills": ["string array"],
  "certifications": ["string array (optional)"],
  "languages": ["string array (optional)"]
}

Resume text:
%s`,

	MatchJobs: `Analyze the candidate's resume and match them with the provided job listings. Return a JSON array of job matches.

Candidate Resume Data:
%s

Candidate Preferences:
%s

Job Listings:
%s

For each job, provide a match analysis with this structure:
{
  "jobId": "string",
  "matchScore": number (0-100),
  "reasons": ["array of why this is a good match"],
  "missingSkills": ["skills the candidate lacks"],
  "recommendations": ["how to improve match score"]
}

Consider:
1. Skills alignment
2. Experience level match
3. Education requirements
4. Location preferences
5. Salary expectations
6. Company culture fit

Return only the JSON array.`,

	CoverLetter: `Generate a professional, personalized cover letter for this job application.

Candidate Information:
Name: %s
Email: %s
Summary: %s
Experience: %s
Skills: %s

Job Information:
Company: %s
Job Description: %s

Requirements:
1. Professional business letter format
2. Personalized to the specific job and company
3. Highlight relevant experience and skills
4. Show enthusiasm and cultural fit
5. Include specific examples from their background
6. Professional but engaging tone
7. Appropriate length (250-400 words)

Return only the cover letter text, ready to use.`,

	InterviewQuestions: `Generate interview preparation questions for this specific job and candidate background.

Job Description:
%s

Candidate Background:
%s

Generate 15-20 interview questions that:
1. Are likely to be asked for this specific role
2. Address the candidate's experience and background
3. Include behavioral questions (STAR method)
4. Cover technical skills relevant to the job
5. Include company culture and fit questions
6. Range from easy to challenging

Return as a JSON array of question strings.`,

	OptimizeResume: `Optimize the following resume data for this specific job posting. Generate an improved LaTeX resume template that highlights relevant skills and experience.

Job Description:
%s

Resume Data:
%s

Return a complete LaTeX document that:
1. Uses a professional, ATS-friendly format
2. Highlights skills and experience most relevant to the job
3. Optimizes keywords from the job description
4. Maintains truthfulness to the original data
5. Uses modern, clean formatting`,
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `json:"systemPrompts"`
	UserPrompts   UserPrompts   `json:"userPrompts"`
}

// GetDefaultPromptConfig returns the default prompt configuration
func GetDefaultPromptConfig() PromptConfig {
	return PromptConfig{
		SystemPrompts: DefaultSystemPrompts,
		UserPrompts:   DefaultUserPrompts,
	}
}
