package ats

// Grade is the letter band of a total score
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Priority orders suggestions for the reader
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Dimension maxima; they sum to 100.
const (
	MaxHardSkills    = 25
	MaxSoftSkills    = 10
	MaxJobTitle      = 5
	MaxEducation     = 5
	MaxSections      = 15
	MaxActionVerbs   = 15
	MaxQuantified    = 15
	MaxRoleAlignment = 10
)

type Suggestion struct {
	Priority Priority `json:"priority"`
	Text     string   `json:"text"`
	HowToFix string   `json:"howToFix"`
}

type SkillMatch struct {
	Score   int      `json:"score"`
	Max     int      `json:"max"`
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

type TitleMatch struct {
	Score int    `json:"score"`
	Max   int    `json:"max"`
	Found bool   `json:"found"`
	Title string `json:"title"`
}

type EducationMatch struct {
	Score     int      `json:"score"`
	Max       int      `json:"max"`
	Requested []string `json:"requested"`
	Found     []string `json:"found"`
}

type SectionCompleteness struct {
	Score   int      `json:"score"`
	Max     int      `json:"max"`
	Present []string `json:"present"`
	Missing []string `json:"missing"`
}

type ActionVerbStrength struct {
	Score     int      `json:"score"`
	Max       int      `json:"max"`
	Found     []string `json:"found"`
	Suggested []string `json:"suggested"`
}

type Quantification struct {
	Score int      `json:"score"`
	Max   int      `json:"max"`
	Found []string `json:"found"`
	Tip   string   `json:"tip"`
}

type RoleAlignment struct {
	Score       int      `json:"score"`
	Max         int      `json:"max"`
	Detected    string   `json:"detected"`
	MatchedTech []string `json:"matchedTech"`
}

type Breakdown struct {
	HardSkills          SkillMatch          `json:"hardSkills"`
	SoftSkills          SkillMatch          `json:"softSkills"`
	JobTitleMatch       TitleMatch          `json:"jobTitleMatch"`
	EducationMatch      EducationMatch      `json:"educationMatch"`
	SectionCompleteness SectionCompleteness `json:"sectionCompleteness"`
	ActionVerbStrength  ActionVerbStrength  `json:"actionVerbStrength"`
	Quantification      Quantification      `json:"quantification"`
	RoleAlignment       RoleAlignment       `json:"roleAlignment"`
}

// Result is the full ATS report for one resume/posting pair
type Result struct {
	Total       int          `json:"total"`
	Grade       Grade        `json:"grade"`
	Breakdown   Breakdown    `json:"breakdown"`
	Suggestions []Suggestion `json:"suggestions"`
}

// GradeFor maps a total to its letter band.
func GradeFor(total int) Grade {
	switch {
	case total >= 80:
		return GradeA
	case total >= 65:
		return GradeB
	case total >= 50:
		return GradeC
	case total >= 35:
		return GradeD
	default:
		return GradeF
	}
}
