package ats

import (
	"regexp"
	"strings"

	"resumatch/internal/types"
)

const (
	maxNumericMatches = 10
	maxQuantifiers    = 12
	suggestedVerbCap  = 6
)

var numericPattern = regexp.MustCompile(`\d+[\w%$]*[-\w]*`)

// actionVerbs merges the role's verbs with the universal list, first
// occurrence wins.
func actionVerbs(role Role) []string {
	set := newOrderedSet()
	for _, v := range role.ActionVerbs {
		set.add(v)
	}
	for _, v := range universalVerbs {
		set.add(v)
	}
	return set.items
}

// splitVerbs partitions the role's action verbs into those the resume uses
// and those it does not.
func splitVerbs(resumeText string, role Role) (found, unfound []string) {
	found, unfound = make([]string, 0), make([]string, 0)
	for _, v := range actionVerbs(role) {
		if ContainsPhrase(resumeText, v) {
			found = append(found, v)
		} else {
			unfound = append(unfound, v)
		}
	}
	return found, unfound
}

// experienceText is the text quantification is measured over.
func experienceText(resume types.ResumeDocument) string {
	parts := make([]string, 0, len(resume.WorkExperience)+len(resume.Projects)+1)
	for _, w := range resume.WorkExperience {
		parts = append(parts, w.Description)
	}
	for _, p := range resume.Projects {
		parts = append(parts, p.Description)
	}
	parts = append(parts, resume.Summary)
	return strings.Join(parts, " ")
}

// FindQuantifiers collects numeric tokens (first ten) and impact words,
// deduplicated, at most twelve.
func FindQuantifiers(text string) []string {
	set := newOrderedSet()
	for _, m := range numericPattern.FindAllString(text, maxNumericMatches) {
		set.add(m)
	}
	for _, q := range quantWords {
		if ContainsPhrase(text, q) {
			set.add(q)
		}
	}
	if len(set.items) > maxQuantifiers {
		return set.items[:maxQuantifiers]
	}
	if set.items == nil {
		return []string{}
	}
	return set.items
}
