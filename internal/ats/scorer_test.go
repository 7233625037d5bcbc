package ats

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/types"
)

const perfectJob = "software engineer python docker kubernetes aws communication leadership bachelor"

func perfectResume() types.ResumeDocument {
	return types.ResumeDocument{
		PersonalInfo: types.PersonalInfo{
			FullName: "Jane Doe",
			Email:    "jane@example.com",
			Phone:    "+1 555 0100",
			LinkedIn: "https://linkedin.com/in/janedoe",
		},
		Summary: "Profile: " + perfectJob,
		Skills:  "python, docker, kubernetes, aws, sql, git, react",
		WorkExperience: []types.WorkExperience{{
			ID:        "w1",
			JobTitle:  "Software Engineer",
			Company:   "Acme",
			StartDate: "2019-01",
			Current:   true,
			Description: "Built, developed, architected, designed, engineered, implemented, deployed, optimized services. " +
				"Reduced latency by 40%, grew users 3x, saved $200k, ran 12 services across 5 teams.",
		}},
		Education: []types.Education{{ID: "e1", Degree: "BS Computer Science", School: "MIT", StartDate: "2011"}},
		Projects:  []types.Project{},
	}
}

func findSuggestion(t *testing.T, r Result, text string) Suggestion {
	t.Helper()
	for _, s := range r.Suggestions {
		if s.Text == text {
			return s
		}
	}
	t.Fatalf("suggestion %q not found in %+v", text, r.Suggestions)
	return Suggestion{}
}

func TestScoreResumePerfectMatch(t *testing.T) {
	r := ScoreResume(perfectResume(), perfectJob)

	assert.Equal(t, 100, r.Total)
	assert.Equal(t, GradeA, r.Grade)
	assert.Empty(t, r.Suggestions)
	assert.Empty(t, r.Breakdown.HardSkills.Missing)
	assert.Equal(t, "Software Engineering", r.Breakdown.RoleAlignment.Detected)
	assert.Equal(t, []string{"bachelors"}, r.Breakdown.EducationMatch.Found)
	assert.Equal(t, goodQuantificationTip, r.Breakdown.Quantification.Tip)
}

func TestScoreResumeContactOnly(t *testing.T) {
	resume := types.ResumeDocument{
		PersonalInfo: types.PersonalInfo{FullName: "Jane Doe", Email: "jane@example.com"},
	}
	job := `Software Engineer

Requirements:
- 5+ years of Python and Go
- Experience with Docker, Kubernetes and AWS
- Strong communication and teamwork skills
- Bachelor's degree in Computer Science`

	r := ScoreResume(resume, job)
	b := r.Breakdown

	assert.Equal(t, GradeF, r.Grade)
	assert.LessOrEqual(t, b.SectionCompleteness.Score, 4)
	assert.Equal(t, 0, b.HardSkills.Score)
	assert.Equal(t, 0, b.SoftSkills.Score)
	assert.Equal(t, 0, b.ActionVerbStrength.Score)
	assert.Equal(t, 0, b.Quantification.Score)
}

func TestScoreResumeEmptyInputs(t *testing.T) {
	r := ScoreResume(types.ResumeDocument{}, "")
	b := r.Breakdown

	assert.Equal(t, 25, b.HardSkills.Score, "no requirements means full marks")
	assert.Equal(t, 10, b.SoftSkills.Score)
	assert.Equal(t, 5, b.JobTitleMatch.Score)
	assert.True(t, b.JobTitleMatch.Found)
	assert.Equal(t, 0, b.EducationMatch.Score)
	assert.Equal(t, []string{"bachelors"}, b.EducationMatch.Requested)
	assert.Equal(t, 0, b.SectionCompleteness.Score)
	assert.Equal(t, 0, b.ActionVerbStrength.Score)
	assert.Equal(t, 0, b.Quantification.Score)
	assert.Equal(t, 10, b.RoleAlignment.Score)
	assert.Equal(t, GeneralRole, b.RoleAlignment.Detected)
	assert.Equal(t, 50, r.Total)
	assert.Equal(t, GradeC, r.Grade)

	assert.Equal(t, PriorityHigh, findSuggestion(t, r, "Missing sections: Full Name, Email, Phone, LinkedIn, Professional Summary, Work Experience, Education, Skills.").Priority)
	assert.Equal(t, PriorityHigh, findSuggestion(t, r, "Lacking Quantified Results").Priority)
	assert.Equal(t, "Add 5 more metrics. Try: team size, revenue impact, % improvement, user count, response time.", b.Quantification.Tip)
	findSuggestion(t, r, "Weak Action Verbs")
}

func TestScoreResumeEncodesEmptyLists(t *testing.T) {
	data, err := json.Marshal(ScoreResume(types.ResumeDocument{}, ""))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}

func TestScoreResumeDeterministic(t *testing.T) {
	job := "Senior Software Engineer. Requirements: Go, Kubernetes, PostgreSQL, gRPC, communication."
	assert.Equal(t, ScoreResume(perfectResume(), job), ScoreResume(perfectResume(), job))
}

func TestScoreResumeBounds(t *testing.T) {
	jobs := []string{
		"",
		perfectJob,
		"Data Scientist with PhD, pandas, numpy, spark, airflow and statistics. Leadership required.",
		"Marketing manager: SEO, SEM, PPC, HubSpot, Salesforce, email marketing, brand campaigns.",
	}
	resumes := []types.ResumeDocument{{}, perfectResume()}

	for _, job := range jobs {
		for _, resume := range resumes {
			r := ScoreResume(resume, job)
			b := r.Breakdown
			sum := b.HardSkills.Score + b.SoftSkills.Score + b.JobTitleMatch.Score + b.EducationMatch.Score +
				b.SectionCompleteness.Score + b.ActionVerbStrength.Score + b.Quantification.Score + b.RoleAlignment.Score
			assert.Equal(t, sum, r.Total)
			assert.GreaterOrEqual(t, r.Total, 0)
			assert.LessOrEqual(t, r.Total, 100)
			assert.LessOrEqual(t, b.HardSkills.Score, MaxHardSkills)
			assert.LessOrEqual(t, b.ActionVerbStrength.Score, MaxActionVerbs)
			assert.LessOrEqual(t, b.Quantification.Score, MaxQuantified)
			assert.LessOrEqual(t, b.RoleAlignment.Score, MaxRoleAlignment)
			assert.LessOrEqual(t, len(b.ActionVerbStrength.Suggested), 6)
			assert.LessOrEqual(t, len(b.Quantification.Found), 12)
		}
	}
}

func TestScoreResumeAddingSkillDoesNotLowerHardScore(t *testing.T) {
	job := "Requirements: terraform, ansible, kubernetes and helm in production."
	resume := perfectResume()
	before := ScoreResume(resume, job).Breakdown.HardSkills

	resume.Skills += ", terraform, ansible, helm, production"
	after := ScoreResume(resume, job).Breakdown.HardSkills

	assert.GreaterOrEqual(t, after.Score, before.Score)
	assert.Greater(t, len(after.Matched), len(before.Matched))
}

func TestScoreResumeTitleSuggestion(t *testing.T) {
	r := ScoreResume(types.ResumeDocument{}, "Hiring a Product Manager for our team")

	assert.False(t, r.Breakdown.JobTitleMatch.Found)
	assert.Equal(t, "Product Manager", r.Breakdown.JobTitleMatch.Title)
	s := findSuggestion(t, r, "Target Job Title Missing")
	assert.Equal(t, PriorityHigh, s.Priority)
	assert.Equal(t, `Ensure "Product Manager" appears somewhere in your summary or past titles.`, s.HowToFix)
}

func TestScoreResumeEducationSuggestion(t *testing.T) {
	r := ScoreResume(types.ResumeDocument{}, "Research role, PhD required")

	s := findSuggestion(t, r, "Education Requirement Not Met")
	assert.Equal(t, "The JD mentions PHD. Ensure this is clearly listed if you possess it.", s.HowToFix)

	r = ScoreResume(types.ResumeDocument{}, "Bachelor's degree required")
	for _, s := range r.Suggestions {
		assert.NotEqual(t, "Education Requirement Not Met", s.Text)
	}
}

func TestScoreResumeHardSkillSuggestionTiers(t *testing.T) {
	job := "Requirements: terraform ansible kubernetes"

	r := ScoreResume(types.ResumeDocument{}, job)
	s := findSuggestion(t, r, "Critical Hard Skills Missing (5)")
	assert.Equal(t, PriorityHigh, s.Priority)
	assert.True(t, strings.HasPrefix(s.HowToFix, "Integrate these terms into your experience: "))

	resume := types.ResumeDocument{Skills: "terraform ansible kubernetes"}
	r = ScoreResume(resume, job+" helm")
	s = findSuggestion(t, r, "Important Hard Skills Missing")
	assert.Equal(t, PriorityMedium, s.Priority)
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		total int
		want  Grade
	}{
		{100, GradeA}, {80, GradeA}, {79, GradeB}, {65, GradeB}, {64, GradeC},
		{50, GradeC}, {49, GradeD}, {35, GradeD}, {34, GradeF}, {0, GradeF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.total), "total %d", tt.total)
	}
}

func TestCheckSectionsSummaryThreshold(t *testing.T) {
	r := types.ResumeDocument{Summary: strings.Repeat("a", 20), Skills: "12345"}
	_, missing := CheckSections(r)
	assert.Contains(t, missing, "Professional Summary")
	assert.Contains(t, missing, "Skills")

	r.Summary += "a"
	r.Skills += "6"
	present, _ := CheckSections(r)
	assert.Equal(t, []string{"Professional Summary", "Skills"}, present)
}

func TestBuildResumeText(t *testing.T) {
	r := types.ResumeDocument{
		PersonalInfo:   types.PersonalInfo{FullName: "Jane", Phone: "555"},
		Certifications: []types.Certification{{Name: "CKA"}},
	}
	assert.Equal(t, "Jane CKA ", BuildResumeText(r))
}
