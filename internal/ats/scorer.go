// Package ats implements the deterministic resume-to-posting scoring engine.
// Matching is lexical: every comparison is a substring test on normalized
// text.
package ats

import (
	"math"

	"resumatch/internal/types"
)

// DefaultMaxJobWords bounds the candidate word list taken from a posting.
const DefaultMaxJobWords = 5000

// Scorer scores resumes against postings. The zero value applies no word cap.
type Scorer struct {
	// MaxJobWords caps the words considered for single-word and bigram
	// candidates. Zero or negative means no cap.
	MaxJobWords int
}

var defaultScorer = Scorer{MaxJobWords: DefaultMaxJobWords}

// ScoreResume scores a resume against a job posting with default settings.
func ScoreResume(resume types.ResumeDocument, jobText string) Result {
	return defaultScorer.Score(resume, jobText)
}

// Score computes the eight-dimension report. It is pure: the same inputs
// always produce the same result.
func (s Scorer) Score(resume types.ResumeDocument, jobText string) Result {
	resumeText := BuildResumeText(resume)
	role := detectRole(Normalize(jobText))
	keywords := extractKeywords(jobText, s.MaxJobWords)

	hard := matchSkills(resumeText, keywords.HardSkills, MaxHardSkills)
	soft := matchSkills(resumeText, keywords.SoftSkills, MaxSoftSkills)

	title := ExtractJobTitle(jobText)
	titleFound := title == "" || ContainsPhrase(resumeText, title)
	titleMatch := TitleMatch{Max: MaxJobTitle, Found: titleFound, Title: title}
	if titleFound {
		titleMatch.Score = MaxJobTitle
	}

	requested := EducationRequirements(jobText)
	eduFound := MatchEducation(resumeText, requested)
	education := EducationMatch{Max: MaxEducation, Requested: requested, Found: eduFound}
	if len(eduFound) > 0 || len(requested) == 0 {
		education.Score = MaxEducation
	}

	present, missing := CheckSections(resume)
	sections := SectionCompleteness{
		Score:   round(float64(len(present)) / float64(len(resumeSections)) * MaxSections),
		Max:     MaxSections,
		Present: present,
		Missing: missing,
	}

	verbsFound, verbsUnfound := splitVerbs(resumeText, role)
	verbs := ActionVerbStrength{
		Score:     round(math.Min(float64(len(verbsFound))/8*MaxActionVerbs, MaxActionVerbs)),
		Max:       MaxActionVerbs,
		Found:     verbsFound,
		Suggested: head(verbsUnfound, suggestedVerbCap),
	}

	quantifiers := FindQuantifiers(experienceText(resume))
	quant := Quantification{
		Score: round(math.Min(float64(len(quantifiers))/5*MaxQuantified, MaxQuantified)),
		Max:   MaxQuantified,
		Found: quantifiers,
		Tip:   quantificationTip(len(quantifiers)),
	}

	matchedTech := make([]string, 0)
	for _, tech := range role.CoreTech {
		if ContainsPhrase(resumeText, tech) {
			matchedTech = append(matchedTech, tech)
		}
	}
	alignment := RoleAlignment{Max: MaxRoleAlignment, Detected: role.Label, MatchedTech: matchedTech}
	if role.IsGeneral() {
		alignment.Score = MaxRoleAlignment
	} else {
		alignment.Score = round(math.Min(float64(len(matchedTech))/6*MaxRoleAlignment, MaxRoleAlignment))
	}

	breakdown := Breakdown{
		HardSkills:          hard,
		SoftSkills:          soft,
		JobTitleMatch:       titleMatch,
		EducationMatch:      education,
		SectionCompleteness: sections,
		ActionVerbStrength:  verbs,
		Quantification:      quant,
		RoleAlignment:       alignment,
	}

	total := hard.Score + soft.Score + titleMatch.Score + education.Score +
		sections.Score + verbs.Score + quant.Score + alignment.Score

	return Result{
		Total:       total,
		Grade:       GradeFor(total),
		Breakdown:   breakdown,
		Suggestions: buildSuggestions(breakdown, keywords, verbsUnfound),
	}
}

func matchSkills(resumeText string, required []string, maxScore int) SkillMatch {
	m := SkillMatch{Max: maxScore, Matched: make([]string, 0), Missing: make([]string, 0)}
	for _, p := range required {
		if ContainsPhrase(resumeText, p) {
			m.Matched = append(m.Matched, p)
		} else {
			m.Missing = append(m.Missing, p)
		}
	}
	m.Score = round(skillRatio(len(m.Matched), len(required)) * float64(maxScore))
	return m
}

// skillRatio is 1 when nothing is required.
func skillRatio(matched, required int) float64 {
	if required == 0 {
		return 1
	}
	return float64(matched) / float64(required)
}

// round rounds half up, so 12.5 becomes 13.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
