package ats

import "slices"

// minRoleHits is the number of core-tech hits a category needs to be chosen.
const minRoleHits = 3

// Role is a job category with its expected technologies and action verbs
type Role struct {
	Label       string   `json:"label"`
	CoreTech    []string `json:"coreTech"`
	ActionVerbs []string `json:"actionVerbs"`
}

func (r Role) clone() Role {
	return Role{
		Label:       r.Label,
		CoreTech:    slices.Clone(r.CoreTech),
		ActionVerbs: slices.Clone(r.ActionVerbs),
	}
}

// IsGeneral reports whether r is the fallback category.
func (r Role) IsGeneral() bool {
	return r.Label == GeneralRole
}

// DetectRole picks the category whose core technologies appear most often in
// the job text. Ties go to the earlier category; fewer than three hits
// falls back to General / Other.
func DetectRole(jobText string) Role {
	return detectRole(Normalize(jobText)).clone()
}

func detectRole(normalizedJob string) Role {
	best, bestHits := -1, -1
	for i, role := range roleCategories {
		hits := 0
		for _, tech := range role.CoreTech {
			if ContainsPhrase(normalizedJob, tech) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}
	if bestHits < minRoleHits {
		return roleCategories[len(roleCategories)-1]
	}
	return roleCategories[best]
}
