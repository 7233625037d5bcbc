// Package types holds the resume and job posting data model shared by the
// scorer, the prompt composer and the service layers.
package types

import "github.com/google/uuid"

// PersonalInfo is the contact header of a resume
type PersonalInfo struct {
	FullName string `json:"fullName" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" validate:"omitempty,url"`
	Website  string `json:"website,omitempty" validate:"omitempty,url"`
	Location string `json:"location,omitempty"`
}

// WorkExperience is one position. Current means EndDate is not needed.
type WorkExperience struct {
	ID          string `json:"id" validate:"required"`
	JobTitle    string `json:"jobTitle" validate:"required"`
	Company     string `json:"company" validate:"required"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description" validate:"required"`
}

type Education struct {
	ID        string `json:"id" validate:"required"`
	Degree    string `json:"degree" validate:"required"`
	School    string `json:"school" validate:"required"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate,omitempty"`
	Current   bool   `json:"current"`
}

type Project struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Link        string `json:"link,omitempty" validate:"omitempty,url"`
}

type Certification struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Issuer string `json:"issuer,omitempty"`
	Year   string `json:"year,omitempty"`
	Expiry string `json:"expiry,omitempty"`
	URL    string `json:"url,omitempty" validate:"omitempty,url"`
}

// Proficiency levels accepted for a language entry
const (
	ProficiencyNative       = "native"
	ProficiencyFluent       = "fluent"
	ProficiencyIntermediate = "intermediate"
	ProficiencyBasic        = "basic"
)

type Language struct {
	ID          string `json:"id" validate:"required"`
	Language    string `json:"language" validate:"required"`
	Proficiency string `json:"proficiency" validate:"required,oneof=native fluent intermediate basic"`
}

type Award struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Issuer      string `json:"issuer,omitempty"`
	Year        string `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
}

type VolunteerWork struct {
	ID           string `json:"id" validate:"required"`
	Organization string `json:"organization" validate:"required"`
	Role         string `json:"role,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	Description  string `json:"description,omitempty"`
}

type Publication struct {
	ID        string `json:"id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Publisher string `json:"publisher,omitempty"`
	Year      string `json:"year,omitempty"`
	URL       string `json:"url,omitempty" validate:"omitempty,url"`
}

// ResumeDocument is the structured resume. Entry ids are unique within
// their list.
type ResumeDocument struct {
	PersonalInfo   PersonalInfo     `json:"personalInfo"`
	Summary        string           `json:"summary"`
	WorkExperience []WorkExperience `json:"workExperience" validate:"unique=ID,dive"`
	Education      []Education      `json:"education" validate:"unique=ID,dive"`
	Skills         string           `json:"skills"`
	Projects       []Project        `json:"projects" validate:"unique=ID,dive"`
	Certifications []Certification  `json:"certifications,omitempty" validate:"omitempty,unique=ID,dive"`
	Languages      []Language       `json:"languages,omitempty" validate:"omitempty,unique=ID,dive"`
	Awards         []Award          `json:"awards,omitempty" validate:"omitempty,unique=ID,dive"`
	VolunteerWork  []VolunteerWork  `json:"volunteerWork,omitempty" validate:"omitempty,unique=ID,dive"`
	Publications   []Publication    `json:"publications,omitempty" validate:"omitempty,unique=ID,dive"`
}

// NewEntryID returns an id for a new list entry.
func NewEntryID() string {
	return uuid.NewString()
}

// Normalize replaces nil required lists with empty ones so they encode as [].
func (r *ResumeDocument) Normalize() {
	if r.WorkExperience == nil {
		r.WorkExperience = []WorkExperience{}
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
	if r.Projects == nil {
		r.Projects = []Project{}
	}
}

// AssignMissingIDs gives every entry without an id a fresh one. Model output
// parsed into a resume frequently omits them.
func (r *ResumeDocument) AssignMissingIDs() {
	for i := range r.WorkExperience {
		fillID(&r.WorkExperience[i].ID)
	}
	for i := range r.Education {
		fillID(&r.Education[i].ID)
	}
	for i := range r.Projects {
		fillID(&r.Projects[i].ID)
	}
	for i := range r.Certifications {
		fillID(&r.Certifications[i].ID)
	}
	for i := range r.Languages {
		fillID(&r.Languages[i].ID)
	}
	for i := range r.Awards {
		fillID(&r.Awards[i].ID)
	}
	for i := range r.VolunteerWork {
		fillID(&r.VolunteerWork[i].ID)
	}
	for i := range r.Publications {
		fillID(&r.Publications[i].ID)
	}
}

func fillID(id *string) {
	if *id == "" {
		*id = NewEntryID()
	}
}

// JobPosting is the free-text target job description
type JobPosting struct {
	Text string `json:"text" validate:"min=10"`
}
