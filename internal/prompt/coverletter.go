package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"resumatch/internal/types"
)

// Tone of a cover letter
type Tone string

const (
	ToneProfessional   Tone = "professional"
	ToneConversational Tone = "conversational"
	ToneEnthusiastic   Tone = "enthusiastic"
)

// Length of a cover letter
type Length string

const (
	LengthConcise  Length = "concise"
	LengthStandard Length = "standard"
	LengthDetailed Length = "detailed"
)

var toneInstructions = map[Tone]string{
	ToneProfessional:   "Use a formal, polished tone. No contractions. Write in first person but keep language executive-ready. Emphasise measurable achievements and demonstrated expertise.",
	ToneConversational: "Use a warm, confident first-person voice. Mild contractions are fine. Sound like a capable human being, not a template. Be direct and genuine.",
	ToneEnthusiastic:   "Show genuine passion and energy for this specific role and company. Use forward-looking language. Convey excitement without hyperbole. Still keep it professional.",
}

var lengthInstructions = map[Length]string{
	LengthConcise:  "Write exactly 3 short paragraphs (~250 words total): (1) opening & role hook, (2) key achievement + fit, (3) closing with CTA.",
	LengthStandard: "Write 4 paragraphs (~400 words total): (1) opening, (2) relevant skills/experience, (3) a specific quantified achievement, (4) closing with CTA.",
	LengthDetailed: "Write 5 paragraphs (~550 words total): (1) strong personal opening, (2) professional background overview, (3) skills fit to JD, (4) quantified achievement story, (5) closing with CTA and next steps.",
}

// ParseTone accepts the three tone names; empty means professional.
func ParseTone(s string) (Tone, error) {
	if s == "" {
		return ToneProfessional, nil
	}
	if _, ok := toneInstructions[Tone(s)]; !ok {
		return "", fmt.Errorf("unknown tone %q (expected professional, conversational or enthusiastic)", s)
	}
	return Tone(s), nil
}

// ParseLength accepts the three length names; empty means standard.
func ParseLength(s string) (Length, error) {
	if s == "" {
		return LengthStandard, nil
	}
	if _, ok := lengthInstructions[Length(s)]; !ok {
		return "", fmt.Errorf("unknown length %q (expected concise, standard or detailed)", s)
	}
	return Length(s), nil
}

// CoverLetterSettings selects the voice and size of the letter
type CoverLetterSettings struct {
	Tone   Tone   `json:"tone"`
	Length Length `json:"length"`
}

var (
	rolePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:job title|position|role|we are hiring(?: a| an)?)[:\s]+([A-Z][^\n,]{3,60})`),
		regexp.MustCompile(`(?m)^([A-Z][^\n]{5,60})$`),
	}
	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:at|join|about|company[:\s]+|©\s*)([A-Z][A-Za-z0-9&., ]{2,50})(?:\s|,|\.|\n|$)`),
		regexp.MustCompile(`(?m)^([A-Z][A-Za-z0-9&., ]{2,40})\s+is\s+(?:a|an|the|looking)`),
	}
	achievementSplit = regexp.MustCompile(`\n|•|-|\*|\d+\.`)
	skillSplit       = regexp.MustCompile(`[,\n]`)
)

func firstGroup(patterns []*regexp.Regexp, text, fallback string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return fallback
}

// ExtractCompanyAndRole guesses the hiring company and the role title from a
// posting, falling back to "your company" and "the position".
func ExtractCompanyAndRole(jobText string) (company, role string) {
	role = firstGroup(rolePatterns, jobText, "the position")
	company = firstGroup(companyPatterns, jobText, "your company")
	return company, role
}

// PickTopAchievements takes up to two substantial bullet lines per position
// and returns at most four.
func PickTopAchievements(resume types.ResumeDocument) []string {
	var bullets []string
	for _, job := range resume.WorkExperience {
		var lines []string
		for _, l := range achievementSplit.Split(job.Description, -1) {
			if l = strings.TrimSpace(l); len([]rune(l)) > 40 {
				lines = append(lines, l)
			}
		}
		bullets = append(bullets, head(lines, 2)...)
		if len(bullets) >= 5 {
			break
		}
	}
	return head(bullets, 4)
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// GenerateCoverLetterPrompt builds the pain-point cover letter prompt.
// Unknown tone or length values fall back to professional and standard.
func GenerateCoverLetterPrompt(resume types.ResumeDocument, job types.JobPosting, settings CoverLetterSettings, userOverrides string) string {
	company, role := ExtractCompanyAndRole(job.Text)
	achievements := PickTopAchievements(resume)

	tone, ok := toneInstructions[settings.Tone]
	if !ok {
		tone = toneInstructions[ToneProfessional]
	}
	length, ok := lengthInstructions[settings.Length]
	if !ok {
		length = lengthInstructions[LengthStandard]
	}

	candidateName := resume.PersonalInfo.FullName
	if candidateName == "" {
		candidateName = "the candidate"
	}
	skills := ""
	if resume.Skills != "" {
		skills = strings.Join(head(skillSplit.Split(resume.Skills, -1), 10), ", ")
	}
	latestRole := "professional"
	if len(resume.WorkExperience) > 0 {
		latest := resume.WorkExperience[0]
		if latest.JobTitle != "" {
			latestRole = latest.JobTitle
		}
		if latest.Company != "" {
			latestRole += " at " + latest.Company
		}
	}

	certs := make([]string, 0, len(resume.Certifications))
	for _, c := range resume.Certifications {
		certs = append(certs, c.Name)
	}
	langs := make([]string, 0, len(resume.Languages))
	for _, l := range resume.Languages {
		langs = append(langs, fmt.Sprintf("%s (%s)", l.Language, l.Proficiency))
	}

	certLine, langLine, achievementsBlock := "", "", ""
	if joined := strings.Join(certs, ", "); joined != "" {
		certLine = "Certifications: " + joined
	}
	if joined := strings.Join(langs, ", "); joined != "" {
		langLine = "Languages: " + joined
	}
	if len(achievements) > 0 {
		lines := make([]string, len(achievements))
		for i, a := range achievements {
			lines[i] = "  • " + a
		}
		achievementsBlock = "[CANDIDATE'S TOP ACHIEVEMENTS — incorporate 2-3 naturally]\n" + strings.Join(lines, "\n")
	}

	var sb strings.Builder
	sb.WriteString(`You are an elite executive coach who specialises in the "Pain-Point Proposition" cover letter method.

Your goal is to write a highly disruptive, attention-grabbing cover letter that skips the boring pleasantries. Instead, it must immediately diagnose the hiring manager's biggest actual problems based on the Job Description, and pitch the candidate's exact experience as the only logical solution.

[TONE]
`)
	sb.WriteString(tone)
	sb.WriteString(`
*CRITICAL:* Regardless of tone, be authoritative and confident. Do not use weak phrases like "I believe I would be a good fit," "I hope to," or "I am writing to express my interest."

[LENGTH & STRUCTURE]
`)
	sb.WriteString(length)
	sb.WriteString(`
*CRITICAL:* Structure the letter aggressively:
1. The Diagnosis Hook: Call out the likely overarching problem or mandate the company is facing right now based on the JD (e.g., "You are hiring a Senior Engineer because your monolith is buckling under scale...").
2. The Proof: Highlight 1-2 exact things the candidate has done that solve this exact problem, using hard metrics from their resume.
3. The Execution Plan: Connect the candidate's unique skills directly to what needs to be done in the first 90 days.
`)
	sb.WriteString(overridesBlock(userOverrides))
	fmt.Fprintf(&sb, "\n[CANDIDATE DETAILS]\nName: %s\nCurrent/Latest Role: %s\nKey Skills: %s\n%s\n%s\n%s\n\n[TARGET ROLE]\nCompany: %s\nRole: %s\n\n[FULL JOB DESCRIPTION]\n%s\n",
		candidateName, latestRole, skills, certLine, langLine, achievementsBlock, company, role, job.Text)
	sb.WriteString(`
[RULES]
1. Address it to "Hiring Manager" (we don't know the name).
2. NEVER start with "I am writing to apply for…" or "I am excited to apply...". Start immediately with the Diagnosis Hook.
3. Use 2-3 specific JD keywords organically — don't keyword-stuff.
4. Reference at least one specific achievement from the candidate's background that solves their pain point.
5. End with a confident, slightly aggressive call to action (e.g., "I'd love to show you how I solved this exact problem at my last company. Do you have 15 minutes this week?").
6. Do NOT include contact info, date, or address headers — output ONLY the letter body starting from the salutation.
7. Output plain text, no markdown formatting, no JSON.

[OUTPUT]
Write the aggressive Pain-Point cover letter now:`)
	return sb.String()
}
