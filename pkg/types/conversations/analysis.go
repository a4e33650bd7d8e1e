package conversations

import "time"

// JobPosting is the posting a cover letter targets.
type JobPosting struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// Resume is the candidate's resume text.
type Resume struct {
	Content string `json:"content"`
}

// AnalysisResult anchors a conversation: the job posting, the resume,
// and the skill lists produced by matching one against the other.
type AnalysisResult struct {
	ID         string     `json:"id"`
	JobPosting JobPosting `json:"jobPosting"`
	Resume     Resume     `json:"resume"`
	Matches    []string   `json:"matches"`
	Maybes     []string   `json:"maybes"`
	Gaps       []string   `json:"gaps"`
	CreatedAt  time.Time  `json:"createdAt,omitempty"`
}

// CoreContext is the immutable anchor of a conversation: the analysis,
// an optional sample letter, and the system instructions. It is never
// compressed away.
type CoreContext struct {
	Analysis           AnalysisResult `json:"analysis"`
	SampleLetter       string         `json:"sampleLetter,omitempty"`
	SystemInstructions string         `json:"systemInstructions"`
}
