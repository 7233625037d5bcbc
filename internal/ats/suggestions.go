package ats

import (
	"fmt"
	"slices"
	"strings"
)

const goodQuantificationTip = "Good quantification coverage!"

func quantificationTip(found int) string {
	if found < 5 {
		return fmt.Sprintf("Add %d more metrics. Try: team size, revenue impact, %% improvement, user count, response time.", 5-found)
	}
	return goodQuantificationTip
}

// buildSuggestions emits the improvement hints in a fixed order: hard skills,
// soft skills, title, education, sections, verbs, quantification.
func buildSuggestions(b Breakdown, kw Keywords, unfoundVerbs []string) []Suggestion {
	out := make([]Suggestion, 0)

	if missing := b.HardSkills.Missing; len(missing) > 0 {
		if skillRatio(len(b.HardSkills.Matched), len(kw.HardSkills)) < 0.6 {
			out = append(out, Suggestion{
				Priority: PriorityHigh,
				Text:     fmt.Sprintf("Critical Hard Skills Missing (%d)", len(missing)),
				HowToFix: "Integrate these terms into your experience: " + strings.Join(head(missing, 5), ", "),
			})
		} else {
			out = append(out, Suggestion{
				Priority: PriorityMedium,
				Text:     "Important Hard Skills Missing",
				HowToFix: "Consider adding: " + strings.Join(head(missing, 3), ", "),
			})
		}
	}

	if missing := b.SoftSkills.Missing; len(missing) > 0 && skillRatio(len(b.SoftSkills.Matched), len(kw.SoftSkills)) < 0.7 {
		out = append(out, Suggestion{
			Priority: PriorityMedium,
			Text:     "Soft Skills Missing",
			HowToFix: "Show leadership/culture fit by adding: " + strings.Join(head(missing, 3), ", "),
		})
	}

	if t := b.JobTitleMatch; !t.Found && t.Title != "" {
		out = append(out, Suggestion{
			Priority: PriorityHigh,
			Text:     "Target Job Title Missing",
			HowToFix: fmt.Sprintf("Ensure %q appears somewhere in your summary or past titles.", t.Title),
		})
	}

	if e := b.EducationMatch; len(e.Found) == 0 && len(e.Requested) > 0 && !slices.Contains(e.Requested, EducationBachelors) {
		out = append(out, Suggestion{
			Priority: PriorityMedium,
			Text:     "Education Requirement Not Met",
			HowToFix: fmt.Sprintf("The JD mentions %s. Ensure this is clearly listed if you possess it.", strings.ToUpper(e.Requested[0])),
		})
	}

	if missing := b.SectionCompleteness.Missing; len(missing) > 0 {
		priority := PriorityMedium
		if len(missing) > 2 {
			priority = PriorityHigh
		}
		out = append(out, Suggestion{
			Priority: priority,
			Text:     fmt.Sprintf("Missing sections: %s.", strings.Join(missing, ", ")),
			HowToFix: "Fill in the missing fields in your resume form.",
		})
	}

	if b.ActionVerbStrength.Score < 10 {
		out = append(out, Suggestion{
			Priority: PriorityMedium,
			Text:     "Weak Action Verbs",
			HowToFix: "Start bullets with verbs like: " + strings.Join(head(unfoundVerbs, 5), ", "),
		})
	}

	if q := b.Quantification.Score; q < 10 {
		priority := PriorityMedium
		if q < 5 {
			priority = PriorityHigh
		}
		out = append(out, Suggestion{
			Priority: priority,
			Text:     "Lacking Quantified Results",
			HowToFix: "Add numbers (%, $, time) to prove your impact.",
		})
	}

	return out
}
