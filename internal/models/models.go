// Package models holds the data types shared between agents.
package models

import "time"

// JobPosting is one listing scraped from a search results page.
type JobPosting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     Company   `json:"company"`
	Location    string    `json:"location"`
	URL         string    `json:"url"`
	Description string    `json:"description"` // markdown
	EasyApply   bool      `json:"easyApply"`
	PostedAt    time.Time `json:"postedAt,omitempty"`
	ScrapedAt   time.Time `json:"scrapedAt"`
}

// Company is the employer attached to a posting.
type Company struct {
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// Application lifecycle states.
const (
	StatusDraft     = "draft"
	StatusApplied   = "applied"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
	StatusExternal  = "external" // redirected off-platform, saved for manual follow-up
)

// ApplicationRecord tracks one application attempt end to end.
type ApplicationRecord struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	JobTitle  string    `json:"jobTitle"`
	Company   string    `json:"company"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CVData is the structured form of the candidate's CV.
type CVData struct {
	FullName   string      `json:"fullName"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Location   string      `json:"location"`
	Summary    string      `json:"summary"`
	Skills     []string    `json:"skills"`
	Experience []Position  `json:"experience"`
	Education  []Education `json:"education"`
	RawText    string      `json:"-"`
}

// Position is one work history entry.
type Position struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Summary   string `json:"summary,omitempty"`
}

// Education is one study entry.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        string `json:"year,omitempty"`
}

// UserProfile carries the answers used to fill recurring application
// questions that a CV does not answer.
type UserProfile struct {
	YearsOfExperience int               `json:"yearsOfExperience"`
	RequiresVisa      bool              `json:"requiresVisa"`
	WillingToRelocate bool              `json:"willingToRelocate"`
	ExpectedSalary    string            `json:"expectedSalary,omitempty"`
	NoticePeriod      string            `json:"noticePeriod,omitempty"`
	CustomAnswers     map[string]string `json:"customAnswers,omitempty"`
}
