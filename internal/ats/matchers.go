package ats

import "regexp"

// Education levels, in the order they are checked
const (
	EducationPhD       = "phd"
	EducationMasters   = "masters"
	EducationBachelors = "bachelors"
)

type educationLevel struct {
	level string
	re    *regexp.Regexp
}

var educationLevels = []educationLevel{
	{EducationPhD, regexp.MustCompile(`(?i)\b(ph\.?d|doctorate)\b`)},
	{EducationMasters, regexp.MustCompile(`(?i)\b(master'?s|ms|ma|m\.?s|m\.?a)\b`)},
	{EducationBachelors, regexp.MustCompile(`(?i)\b(bachelor'?s|bs|ba|b\.?s|b\.?a|undergraduate)\b`)},
}

var jobTitlePattern = regexp.MustCompile(`(?i)(?:software engineer|data scientist|product manager|full stack developer|frontend developer|backend developer|marketing manager|accountant|designer|analyst)\b`)

// EducationRequirements lists the degree levels a posting mentions. A
// posting that names none is assumed to expect a bachelor's degree.
func EducationRequirements(jobText string) []string {
	var reqs []string
	for _, edu := range educationLevels {
		if edu.re.MatchString(jobText) {
			reqs = append(reqs, edu.level)
		}
	}
	if len(reqs) == 0 {
		return []string{EducationBachelors}
	}
	return reqs
}

// MatchEducation returns the requested levels whose own pattern matches the
// resume. Holding a higher degree does not satisfy a lower requirement.
func MatchEducation(resumeText string, requested []string) []string {
	found := make([]string, 0, len(requested))
	for _, req := range requested {
		for _, edu := range educationLevels {
			if edu.level == req && edu.re.MatchString(resumeText) {
				found = append(found, req)
				break
			}
		}
	}
	return found
}

// ExtractJobTitle returns the first recognised title in the posting, as it is
// written there, or "" when none is found.
func ExtractJobTitle(jobText string) string {
	return jobTitlePattern.FindString(jobText)
}
