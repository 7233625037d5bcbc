package ats

import (
	"regexp"
	"sort"
	"strings"
)

const (
	maxHardSkills = 30
	minImportance = 2
	// markerOffset is how far into the posting a section marker must sit
	// before the text ahead of it is dropped.
	markerOffset = 100
)

var (
	sectionMarker = regexp.MustCompile(`(?i)\b(description|responsibilities|requirements?|qualifications?|what you.ll do|minimum qualifications?|about the role|the role|duties)\b`)
	wordPunct     = regexp.MustCompile("[.,!?;:()\"'`]")
	techSymbol    = regexp.MustCompile(`[.#+/]`)
)

// Keywords are the skills a job posting asks for
type Keywords struct {
	HardSkills []string `json:"hardSkills"`
	SoftSkills []string `json:"softSkills"`
}

// ExtractKeywords derives the hard and soft skills a posting asks for.
func ExtractKeywords(jobText string) Keywords {
	return extractKeywords(jobText, 0)
}

// extractKeywords caps the candidate word list at maxWords when maxWords > 0.
func extractKeywords(jobText string, maxWords int) Keywords {
	working := narrowToRequirements(jobText)
	workingNorm := Normalize(working)

	var cleanWords []string
	for _, w := range strings.Split(workingNorm, " ") {
		if len(w) <= 1 || isStopWord(w) || wordPunct.MatchString(w) {
			continue
		}
		cleanWords = append(cleanWords, w)
		if maxWords > 0 && len(cleanWords) >= maxWords {
			break
		}
	}

	soft := make([]string, 0)
	softFound := make(map[string]struct{})
	for _, skill := range softSkills {
		if ContainsPhrase(workingNorm, skill) {
			soft = append(soft, skill)
			softFound[skill] = struct{}{}
		}
	}

	hard := newOrderedSet()
	for _, phrase := range knownHardSkills {
		if ContainsPhrase(workingNorm, phrase) {
			hard.add(phrase)
		}
	}
	for _, w := range cleanWords {
		if _, isSoft := softFound[w]; len(w) > 2 && !isSoft {
			hard.add(w)
		}
	}
	for i := 0; i+1 < len(cleanWords); i++ {
		w1, w2 := cleanWords[i], cleanWords[i+1]
		if len(w1) < 2 || len(w2) < 2 || isStopWord(w1) || isStopWord(w2) {
			continue
		}
		bigram := w1 + " " + w2
		if _, isSoft := softSkillSet[bigram]; !isSoft {
			hard.add(bigram)
		}
	}

	type scored struct {
		phrase     string
		importance int
	}
	ranked := make([]scored, 0, len(hard.items))
	for _, p := range hard.items {
		ranked = append(ranked, scored{phrase: p, importance: importance(p, workingNorm)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].importance > ranked[j].importance
	})

	hardSkills := make([]string, 0, maxHardSkills)
	for _, s := range ranked {
		if len(hardSkills) == maxHardSkills {
			break
		}
		if s.importance >= minImportance {
			hardSkills = append(hardSkills, s.phrase)
		}
	}

	return Keywords{HardSkills: hardSkills, SoftSkills: soft}
}

// narrowToRequirements drops a preamble (company blurb, perks) when a section
// marker appears far enough into the text.
func narrowToRequirements(jobText string) string {
	loc := sectionMarker.FindStringIndex(jobText)
	if loc != nil && utf16Len(jobText[:loc[0]]) > markerOffset {
		return jobText[loc[0]:]
	}
	return jobText
}

func importance(phrase, workingNorm string) int {
	score := 2 * strings.Count(workingNorm, phrase)
	if _, known := knownHardSkillSet[phrase]; known {
		score += 8
	}
	if strings.Contains(phrase, " ") {
		score += 3
	}
	if techSymbol.MatchString(phrase) {
		score += 4
	}
	return score
}

func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
