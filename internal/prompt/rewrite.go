package prompt

import (
	"fmt"
	"slices"
	"strings"

	"resumatch/internal/ats"
	"resumatch/internal/types"
)

// Settings controls how far the rewrite may depart from the source resume.
type Settings struct {
	// FabricationLevel is a percentage, clamped to 0..100.
	FabricationLevel int `json:"fabricationLevel"`
	// Scorer finds the gaps listed in the directive. Nil uses the default
	// word cap.
	Scorer *ats.Scorer `json:"-"`
}

// Fabrication tiers by lower bound
const (
	TierStrict     = "STRICT"
	TierModerate   = "MODERATE"
	TierAggressive = "AGGRESSIVE"
	TierMaximum    = "MAXIMUM"
)

// ClampFabrication forces a level into 0..100.
func ClampFabrication(level int) int {
	return min(max(level, 0), 100)
}

// FabricationTier names the tier a level falls in.
func FabricationTier(level int) string {
	switch level = ClampFabrication(level); {
	case level < 20:
		return TierStrict
	case level < 50:
		return TierModerate
	case level < 80:
		return TierAggressive
	default:
		return TierMaximum
	}
}

func fabricationInstructions(level int) string {
	switch FabricationTier(level) {
	case TierStrict:
		return fmt.Sprintf(`
FABRICATION LEVEL: STRICT (%d%%)
- Do not invent any skills, experiences, or achievements.
- Only rephrase existing content to include the missing ATS keywords exactly.
- If the candidate lacks a specific required skill, reframe adjacent experience to imply it, but do not outright lie.
- You MUST still embed the missing ATS keywords above — find a way to do so truthfully.
`, level)
	case TierModerate:
		return fmt.Sprintf(`
FABRICATION LEVEL: MODERATE (%d%%)
- You may infer skills implied by the candidate's existing experience to cover the missing ATS keywords.
- Reframe and strengthen bullet points to align with JD language.
- You may add specific tools/technologies if the candidate's work strongly implies them.
- All missing ATS keywords above must appear in the output.
`, level)
	case TierAggressive:
		return fmt.Sprintf(`
FABRICATION LEVEL: AGGRESSIVE (%d%%)
- Embellish experiences to strongly align with the JD and missing ATS keywords. 
- If a skill is critical (like a missing hard skill) and the candidate has adjacent experience, explicitly claim the skill.
- Add specific numbers and metrics that are plausible given the context.
- All missing ATS keywords MUST appear in the output. Embed them even if it requires creative interpretation.
`, level)
	default:
		return fmt.Sprintf(`
FABRICATION LEVEL: MAXIMUM (%d%%) — Target 100%% ATS Score
- Your PRIMARY goal is to pass the ATS target with a perfect score.
- You MUST weave EVERY SINGLE missing hard skill and soft skill into the resume.
- Add all missing technologies to the Skills section.
- Invent plausible quantified achievements (%%, $, users, team sizes) that are consistent with the resume's seniority level to boost the 'Measurable Results' ATS metric.
- Make the candidate appear to be the perfect match for this role, even if it requires inventing plausible experiences or tools.
`, level)
	}
}

// gapMandate lists every gap the scorer found. It is empty when there is
// nothing to fix.
func gapMandate(b ats.Breakdown) string {
	missingHard := b.HardSkills.Missing
	missingSoft := b.SoftSkills.Missing
	missingSections := b.SectionCompleteness.Missing
	title := b.JobTitleMatch
	edu := b.EducationMatch

	if len(missingHard) == 0 && len(missingSoft) == 0 && len(missingSections) == 0 &&
		title.Found && len(edu.Found) >= len(edu.Requested) {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n[ATS SCORER FEEDBACK — ADDRESS THESE GAPS]\n")
	sb.WriteString("The current resume was analyzed against the ATS system and found the following critical gaps. You MUST address these in your optimized version to improve the score.\n\n")

	if len(missingHard) > 0 {
		sb.WriteString("MISSING HARD SKILLS (Must be added to Skills section and woven into Experience bullets):\n")
		bulletList(&sb, missingHard)
		sb.WriteString("\n")
	}
	if len(missingSoft) > 0 {
		sb.WriteString("MISSING SOFT SKILLS (Must be demonstrated in Summary or Experience metrics):\n")
		bulletList(&sb, missingSoft)
		sb.WriteString("\n")
	}
	if len(missingSections) > 0 {
		sb.WriteString("MISSING SECTIONS (Must be populated in the JSON output):\n")
		bulletList(&sb, missingSections)
		sb.WriteString("\n")
	}
	if !title.Found && title.Title != "" {
		fmt.Fprintf(&sb, "MISSING TARGET JOB TITLE:\n  • Must explicitly state the title %q in the Summary or recent experience.\n\n", title.Title)
	}

	var missingEdu []string
	for _, req := range edu.Requested {
		if !slices.Contains(edu.Found, req) {
			missingEdu = append(missingEdu, req)
		}
	}
	if len(missingEdu) > 0 {
		fmt.Fprintf(&sb, "MISSING EDUCATION REQUIREMENTS:\n  • Ensure the candidate's degree is explicitly listed as: %s.\n\n", strings.Join(missingEdu, ", "))
	}

	return sb.String()
}

const rewriteIntro = `You are an expert ATS-optimization specialist and resume writer.
Your task: Rewrite the candidate's resume to achieve the HIGHEST possible ATS match score for the target job.

`

const rewriteGuidance = `

[SCORING PRIORITIES — in order of impact]
1. Keyword Coverage (35pts): Every missing hard/soft skill listed above MUST be added.
2. Section Completeness (20pts): All missing sections mentioned above MUST be filled.
3. Action Verb Power (20pts): Start every bullet point with a strong action verb (Built, Developed, Architected, Led, Optimized, Deployed, Shipped, Drove, Scaled, etc.)
4. Quantification (15pts): Every work experience bullet should have at least one numeric metric (%, $, users, team size, performance gain, time saved).
5. Role Alignment (10pts): The overall tone and technology stack should clearly match the target role.

[INSTRUCTIONS]
1. Read the Job Description and identify the role title, required tech stack, and soft skills needed.
2. Rewrite the Summary (3-4 sentences) to mirror the JD's language and embed top keywords.
3. Rewrite each Work Experience bullet to: start with an action verb, include at least one metric, and use JD-specific terminology.
4. Rewrite the Skills section to lead with the most JD-relevant tech first, and explicitly append ALL missing hard skills.
5. Do NOT remove existing companies, dates, or education — only rewrite the content within them.

[CANDIDATE RESUME]
`

const rewriteOutputFormat = `

[OUTPUT FORMAT]
Provide your response in two parts:
PART 1: A brief "Change Log" (Markdown) — list the key changes made, which missing ATS keywords were added and where.
PART 2: The complete optimized resume as a valid JSON object with the EXACT SAME structure as the [CANDIDATE RESUME] input above. Wrap it in a ` + "```json" + ` codeblock. This JSON will be used to re-render the user's resume — it is critical that the structure matches exactly.

IMPORTANT — New optional fields: If the candidate's resume contains certifications, languages, awards, volunteerWork, or publications, preserve them in the JSON output. These sections help ATS systems identify qualified candidates. You may also ADD certifications to the certifications array if the JD implies a certification that aligns with the candidate's background (only at fabrication level > 50%).
`

// GenerateRewritePrompt scores the resume against the posting and builds the
// rewrite directive: fabrication rules for the requested level, a mandate
// listing every detected gap, scoring priorities, the resume as JSON, the
// posting and the expected two-part output. Non-blank userOverrides are
// appended after the mandate.
func GenerateRewritePrompt(resume types.ResumeDocument, job types.JobPosting, settings Settings, userOverrides string) string {
	level := ClampFabrication(settings.FabricationLevel)
	var feedback ats.Result
	if settings.Scorer != nil {
		feedback = settings.Scorer.Score(resume, job.Text)
	} else {
		feedback = ats.ScoreResume(resume, job.Text)
	}

	var sb strings.Builder
	sb.WriteString(rewriteIntro)
	sb.WriteString(fabricationInstructions(level))
	sb.WriteString("\n")
	sb.WriteString(gapMandate(feedback.Breakdown))
	sb.WriteString(overridesBlock(userOverrides))
	sb.WriteString(rewriteGuidance)
	sb.WriteString(resumeJSON(resume))
	sb.WriteString("\n\n[TARGET JOB DESCRIPTION]\n")
	sb.WriteString(job.Text)
	sb.WriteString(rewriteOutputFormat)
	return sb.String()
}
