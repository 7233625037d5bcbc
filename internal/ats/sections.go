package ats

import "resumatch/internal/types"

type section struct {
	name    string
	present func(r types.ResumeDocument) bool
}

var resumeSections = []section{
	{"Full Name", func(r types.ResumeDocument) bool { return r.PersonalInfo.FullName != "" }},
	{"Email", func(r types.ResumeDocument) bool { return r.PersonalInfo.Email != "" }},
	{"Phone", func(r types.ResumeDocument) bool { return r.PersonalInfo.Phone != "" }},
	{"LinkedIn", func(r types.ResumeDocument) bool { return r.PersonalInfo.LinkedIn != "" }},
	{"Professional Summary", func(r types.ResumeDocument) bool { return utf16Len(r.Summary) > 20 }},
	{"Work Experience", func(r types.ResumeDocument) bool { return len(r.WorkExperience) > 0 }},
	{"Education", func(r types.ResumeDocument) bool { return len(r.Education) > 0 }},
	{"Skills", func(r types.ResumeDocument) bool { return utf16Len(r.Skills) > 5 }},
}

// CheckSections splits the eight tracked sections into present and missing,
// both in fixed order.
func CheckSections(resume types.ResumeDocument) (present, missing []string) {
	present, missing = make([]string, 0, len(resumeSections)), make([]string, 0)
	for _, s := range resumeSections {
		if s.present(resume) {
			present = append(present, s.name)
		} else {
			missing = append(missing, s.name)
		}
	}
	return present, missing
}
