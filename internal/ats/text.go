package ats

import (
	"strings"

	"resumatch/internal/types"
)

// BuildResumeText flattens the resume into the single string every matcher
// searches. Phone numbers and dates are left out.
func BuildResumeText(r types.ResumeDocument) string {
	parts := []string{
		r.PersonalInfo.FullName,
		r.PersonalInfo.Email,
		r.PersonalInfo.LinkedIn,
		r.Summary,
		r.Skills,
	}
	for _, w := range r.WorkExperience {
		parts = append(parts, w.JobTitle+" "+w.Company+" "+w.Description)
	}
	for _, e := range r.Education {
		parts = append(parts, e.Degree+" "+e.School)
	}
	for _, p := range r.Projects {
		parts = append(parts, p.Name+" "+p.Description)
	}
	for _, c := range r.Certifications {
		parts = append(parts, c.Name+" "+c.Issuer)
	}
	for _, l := range r.Languages {
		parts = append(parts, l.Language+" "+l.Proficiency)
	}
	for _, a := range r.Awards {
		parts = append(parts, a.Title+" "+a.Issuer+" "+a.Description)
	}
	for _, v := range r.VolunteerWork {
		parts = append(parts, v.Organization+" "+v.Role+" "+v.Description)
	}
	for _, p := range r.Publications {
		parts = append(parts, p.Title+" "+p.Publisher)
	}

	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
