// Package extract pulls structured JSON out of free-form model responses.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"resumatch/internal/types"
)

// ErrNoResumeJSON is returned when no strategy yields a resume object.
var ErrNoResumeJSON = errors.New("could not find resume JSON in the response")

// ErrNoJSON is returned when a response holds no decodable JSON value.
var ErrNoJSON = errors.New("could not find JSON in the response")

// resumeStrategies are tried in order: a json-tagged fence, any fence
// wrapping an object, then a trailing top-level object.
var resumeStrategies = []*regexp.Regexp{
	regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```"),
	regexp.MustCompile("```\\s*(\\{[\\s\\S]*?\\})\\s*```"),
	regexp.MustCompile(`(\{[\s\S]*\})\s*$`),
}

var resumeKeys = []string{"personalInfo", "workExperience", "summary"}

// Resume is the outcome of a successful extraction.
type Resume struct {
	Document *types.ResumeDocument
	// Raw is the JSON text the document was decoded from.
	Raw string
	// ChangeLog is whatever the model wrote before the JSON.
	ChangeLog string
}

// ResumeFromResponse finds the rewritten resume in a model response.
func ResumeFromResponse(text string) (*types.ResumeDocument, error) {
	res, err := ResumeWithChangeLog(text)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// ResumeWithChangeLog is ResumeFromResponse that also returns the raw JSON
// and the change log preceding it. A candidate that looks like a resume but
// fails the shape check is reported as a *SchemaError when no later
// strategy succeeds.
func ResumeWithChangeLog(text string) (*Resume, error) {
	var shapeErr error
	for _, re := range resumeStrategies {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		candidate := text[loc[2]:loc[3]]
		if !looksLikeResume(candidate) {
			continue
		}
		doc, err := decodeResume([]byte(candidate))
		if err != nil {
			if shapeErr == nil {
				shapeErr = err
			}
			continue
		}
		return &Resume{
			Document:  doc,
			Raw:       candidate,
			ChangeLog: strings.TrimSpace(text[:loc[0]]),
		}, nil
	}
	if shapeErr != nil {
		return nil, shapeErr
	}
	return nil, ErrNoResumeJSON
}

func looksLikeResume(candidate string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return false
	}
	for _, k := range resumeKeys {
		if truthy(fields[k]) {
			return true
		}
	}
	return false
}

// truthy treats absent, null, false, zero and "" as unset
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

func decodeResume(raw []byte) (*types.ResumeDocument, error) {
	if err := ValidateResumeShape(raw); err != nil {
		return nil, err
	}
	var doc types.ResumeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode resume JSON: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

var (
	anyFence    = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	bareArray   = regexp.MustCompile(`\[[\s\S]*\]`)
	bareObjects = regexp.MustCompile(`\{[\s\S]*\}`)
)

// Value decodes the first JSON value found in text into v. Models are told
// not to fence their answers but often do.
func Value(text string, v any) error {
	var candidates []string
	if m := anyFence.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, strings.TrimSpace(text))
	if m := bareArray.FindString(text); m != "" {
		candidates = append(candidates, m)
	}
	if m := bareObjects.FindString(text); m != "" {
		candidates = append(candidates, m)
	}

	for _, c := range candidates {
		if err := json.Unmarshal([]byte(c), v); err == nil {
			return nil
		}
	}
	return ErrNoJSON
}
