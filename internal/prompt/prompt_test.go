package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/ats"
	"resumatch/internal/types"
)

const completeJob = "software engineer python docker kubernetes aws communication leadership bachelor"

func completeResume() types.ResumeDocument {
	return types.ResumeDocument{
		PersonalInfo: types.PersonalInfo{
			FullName: "Jane Doe",
			Email:    "jane@example.com",
			Phone:    "+1 555 0100",
			LinkedIn: "https://linkedin.com/in/janedoe",
		},
		Summary: "Profile: " + completeJob,
		Skills:  "python, docker, kubernetes, aws, sql, git, react",
		WorkExperience: []types.WorkExperience{{
			ID: "w1", JobTitle: "Software Engineer", Company: "Acme", StartDate: "2019-01", Current: true,
			Description: "Built, developed, architected, designed, engineered, implemented, deployed, optimized services. " +
				"Reduced latency by 40%, grew users 3x, saved $200k, ran 12 services across 5 teams.",
		}},
		Education: []types.Education{{ID: "e1", Degree: "BS Computer Science", School: "MIT", StartDate: "2011"}},
	}
}

func TestFabricationTier(t *testing.T) {
	tests := []struct {
		level int
		tier  string
		label string
	}{
		{-5, TierStrict, "STRICT (0%)"},
		{0, TierStrict, "STRICT (0%)"},
		{19, TierStrict, "STRICT (19%)"},
		{20, TierModerate, "MODERATE (20%)"},
		{49, TierModerate, "MODERATE (49%)"},
		{50, TierAggressive, "AGGRESSIVE (50%)"},
		{79, TierAggressive, "AGGRESSIVE (79%)"},
		{80, TierMaximum, "MAXIMUM (80%) — Target 100% ATS Score"},
		{100, TierMaximum, "MAXIMUM (100%)"},
		{150, TierMaximum, "MAXIMUM (100%)"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.tier, FabricationTier(tt.level))
			p := GenerateRewritePrompt(completeResume(), types.JobPosting{Text: completeJob}, Settings{FabricationLevel: tt.level}, "")
			assert.Contains(t, p, "FABRICATION LEVEL: "+tt.label)
		})
	}
}

func TestRewritePromptFabricationRules(t *testing.T) {
	job := types.JobPosting{Text: completeJob}
	strict := GenerateRewritePrompt(completeResume(), job, Settings{FabricationLevel: 10}, "")
	loose := GenerateRewritePrompt(completeResume(), job, Settings{FabricationLevel: 90}, "")

	assert.Contains(t, strict, "Do not invent any skills, experiences, or achievements.")
	assert.NotContains(t, strict, "Invent plausible quantified achievements")
	assert.Contains(t, loose, "Invent plausible quantified achievements")
	assert.NotContains(t, loose, "Do not invent any skills, experiences, or achievements.")
	assert.NotEqual(t, strict, loose)
}

func TestRewritePromptUsesConfiguredScorer(t *testing.T) {
	job := types.JobPosting{Text: "zorblax quuxmaster plonkwork"}

	uncapped := GenerateRewritePrompt(types.ResumeDocument{}, job, Settings{}, "")
	assert.Contains(t, uncapped, "  • plonkwork\n")

	capped := GenerateRewritePrompt(types.ResumeDocument{}, job, Settings{Scorer: &ats.Scorer{MaxJobWords: 1}}, "")
	assert.Contains(t, capped, "  • zorblax\n")
	assert.NotContains(t, capped, "  • plonkwork\n", "words past the cap are not gaps")
}

func TestRewritePromptNoGapsOmitsMandate(t *testing.T) {
	p := GenerateRewritePrompt(completeResume(), types.JobPosting{Text: completeJob}, Settings{FabricationLevel: 10}, "")

	assert.NotContains(t, p, "[ATS SCORER FEEDBACK")
	assert.True(t, strings.HasPrefix(p, "You are an expert ATS-optimization specialist and resume writer.\n"))
	assert.Contains(t, p, "[SCORING PRIORITIES — in order of impact]")
	assert.Contains(t, p, "[TARGET JOB DESCRIPTION]\n"+completeJob+"\n\n[OUTPUT FORMAT]")
	assert.True(t, strings.HasSuffix(p, "(only at fabrication level > 50%).\n"))
}

func TestRewritePromptListsGaps(t *testing.T) {
	job := types.JobPosting{Text: "Hiring a Product Manager. Requirements: jira, confluence and kanban."}
	p := GenerateRewritePrompt(types.ResumeDocument{}, job, Settings{FabricationLevel: 60}, "")

	assert.Contains(t, p, "\n[ATS SCORER FEEDBACK — ADDRESS THESE GAPS]\n")
	assert.Contains(t, p, "MISSING HARD SKILLS (Must be added to Skills section and woven into Experience bullets):\n  • ")
	assert.Contains(t, p, "  • jira\n")
	assert.Contains(t, p, "MISSING SECTIONS (Must be populated in the JSON output):\n  • Full Name\n")
	assert.Contains(t, p, `Must explicitly state the title "Product Manager" in the Summary or recent experience.`)
	assert.Contains(t, p, "Ensure the candidate's degree is explicitly listed as: bachelors.")
	assert.Contains(t, p, `"workExperience": []`, "empty lists render as []")
}

func TestRewritePromptUserOverrides(t *testing.T) {
	job := types.JobPosting{Text: completeJob}

	with := GenerateRewritePrompt(completeResume(), job, Settings{}, "Keep it to one page.")
	assert.Contains(t, with, "\n<user_overrides>\nKeep it to one page.\n</user_overrides>\n")
	assert.Less(t, strings.Index(with, "<user_overrides>"), strings.Index(with, "[SCORING PRIORITIES"))

	without := GenerateRewritePrompt(completeResume(), job, Settings{}, "   ")
	assert.NotContains(t, without, "<user_overrides>")
}

func TestResumeJSONKeepsAmpersands(t *testing.T) {
	r := completeResume()
	r.WorkExperience[0].Company = "Procter & Gamble <EMEA>"
	assert.Contains(t, resumeJSON(r), `"company": "Procter & Gamble <EMEA>"`)
}

func TestResumeJSONKeepsEmptyTextFields(t *testing.T) {
	out := resumeJSON(types.ResumeDocument{})
	assert.Contains(t, out, `"summary": ""`)
	assert.Contains(t, out, `"skills": ""`)
}

func TestExtractCompanyAndRole(t *testing.T) {
	tests := []struct {
		name        string
		job         string
		wantCompany string
		wantRole    string
	}{
		{"labelled", "Job Title: Senior Backend Engineer\n© Globex Inc.", "Globex Inc.", "Senior Backend Engineer"},
		{"is looking", "Initech is looking for a Go developer", "Initech", "Initech is looking for a Go developer"},
		{"defaults", "lowercase text only here", "your company", "the position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			company, role := ExtractCompanyAndRole(tt.job)
			assert.Equal(t, tt.wantCompany, company)
			assert.Equal(t, tt.wantRole, role)
		})
	}
}

func TestPickTopAchievements(t *testing.T) {
	desc := "- Led migration of 40 services to Kubernetes with zero downtime\n" +
		"- Reduced cloud spend by 30% through rightsizing and autoscaling\n" +
		"- Cut build time by a quarter using remote caching in CI pipelines\n" +
		"- Short one"
	one := types.ResumeDocument{WorkExperience: []types.WorkExperience{{Description: desc}}}

	got := PickTopAchievements(one)
	assert.Equal(t, []string{
		"Led migration of 40 services to Kubernetes with zero downtime",
		"Reduced cloud spend by 30% through rightsizing and autoscaling",
	}, got)

	three := types.ResumeDocument{WorkExperience: []types.WorkExperience{{Description: desc}, {Description: desc}, {Description: desc}}}
	assert.Len(t, PickTopAchievements(three), 4)
	assert.Empty(t, PickTopAchievements(types.ResumeDocument{}))
}

func TestCoverLetterPrompt(t *testing.T) {
	r := completeResume()
	r.Certifications = []types.Certification{{ID: "c1", Name: "CKA"}}
	r.Languages = []types.Language{{ID: "l1", Language: "French", Proficiency: types.ProficiencyFluent}}

	p := GenerateCoverLetterPrompt(r, types.JobPosting{Text: "Job Title: Platform Engineer\n© Globex Inc."},
		CoverLetterSettings{Tone: ToneConversational, Length: LengthConcise}, "")

	assert.Contains(t, p, "Name: Jane Doe\n")
	assert.Contains(t, p, "Current/Latest Role: Software Engineer at Acme\n")
	assert.Contains(t, p, "Key Skills: python,  docker,  kubernetes,  aws,  sql,  git,  react\n")
	assert.Contains(t, p, "Certifications: CKA\nLanguages: French (fluent)\n")
	assert.Contains(t, p, toneInstructions[ToneConversational])
	assert.Contains(t, p, lengthInstructions[LengthConcise])
	assert.Contains(t, p, "Company: Globex Inc.\nRole: Platform Engineer\n")
	assert.True(t, strings.HasSuffix(p, "Write the aggressive Pain-Point cover letter now:"))
}

func TestCoverLetterPromptDefaults(t *testing.T) {
	p := GenerateCoverLetterPrompt(types.ResumeDocument{}, types.JobPosting{Text: "we need help"}, CoverLetterSettings{}, "")

	assert.Contains(t, p, "Name: the candidate\n")
	assert.Contains(t, p, "Current/Latest Role: professional\n")
	assert.Contains(t, p, toneInstructions[ToneProfessional])
	assert.Contains(t, p, lengthInstructions[LengthStandard])
	assert.Contains(t, p, "Company: your company\nRole: the position\n")
	assert.NotContains(t, p, "TOP ACHIEVEMENTS")
}

func TestParseToneAndLength(t *testing.T) {
	tone, err := ParseTone("")
	require.NoError(t, err)
	assert.Equal(t, ToneProfessional, tone)

	_, err = ParseTone("sarcastic")
	assert.Error(t, err)

	length, err := ParseLength("detailed")
	require.NoError(t, err)
	assert.Equal(t, LengthDetailed, length)

	_, err = ParseLength("epic")
	assert.Error(t, err)
}

func TestCompose(t *testing.T) {
	base := Request{Resume: completeResume(), Job: types.JobPosting{Text: completeJob}}

	tests := []struct {
		name     string
		mutate   func(r *Request)
		contains string
		wantErr  bool
	}{
		{"default is rewrite", func(r *Request) {}, "ATS-optimization specialist", false},
		{"cover letter", func(r *Request) { r.Kind = KindCoverLetter }, "Pain-Point Proposition", false},
		{"interview", func(r *Request) { r.Kind = KindInterviewQuestions }, "generate 5 highly relevant", false},
		{"star", func(r *Request) { r.Kind = KindStar; r.Question = "Tell me about a failure" }, "[INTERVIEW QUESTION]\n\"Tell me about a failure\"\n", false},
		{"star without question", func(r *Request) { r.Kind = KindStar }, "", true},
		{"networking with job", func(r *Request) { r.Kind = KindNetworking }, "[TARGET JOB DESCRIPTION]\n" + completeJob, false},
		{"networking without job", func(r *Request) { r.Kind = KindNetworking; r.Job.Text = "" }, "broadly based on the candidate's existing experience", false},
		{"reverse", func(r *Request) { r.Kind = KindReverseQuestions }, "\"rationale\"", false},
		{"unknown", func(r *Request) { r.Kind = "haiku" }, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			got, err := Compose(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, got, tt.contains)
		})
	}
}

func TestResumeParsePrompt(t *testing.T) {
	p := GenerateResumeParsePrompt("Jane Doe\nEngineer", "")

	assert.True(t, strings.HasPrefix(p, "\nYou are an expert resume parser."))
	assert.True(t, strings.HasSuffix(p, "Resume Text:\nJane Doe\nEngineer\n"))
	assert.Contains(t, p, "12. Only include sections that have actual data — do NOT include empty arrays.")
	assert.Contains(t, p, `"proficiency": "native | fluent | intermediate | basic"`)
}
