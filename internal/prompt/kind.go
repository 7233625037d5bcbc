package prompt

import (
	"fmt"
	"strings"

	"resumatch/internal/types"
)

// Kind selects which prompt Compose builds
type Kind string

const (
	KindRewrite            Kind = "rewrite"
	KindCoverLetter        Kind = "cover-letter"
	KindInterviewQuestions Kind = "interview-questions"
	KindStar               Kind = "star"
	KindNetworking         Kind = "networking"
	KindReverseQuestions   Kind = "reverse-questions"
)

// Kinds lists every composable prompt kind.
func Kinds() []Kind {
	return []Kind{KindRewrite, KindCoverLetter, KindInterviewQuestions, KindStar, KindNetworking, KindReverseQuestions}
}

// Request carries everything any prompt kind may need.
type Request struct {
	Kind          Kind                 `json:"kind"`
	Resume        types.ResumeDocument `json:"resume"`
	Job           types.JobPosting     `json:"job"`
	Settings      Settings             `json:"settings"`
	CoverLetter   CoverLetterSettings  `json:"coverLetter"`
	Question      string               `json:"question,omitempty"`
	UserOverrides string               `json:"userOverrides,omitempty"`
}

// Compose dispatches to the builder for req.Kind. An empty kind means rewrite.
func Compose(req Request) (string, error) {
	switch req.Kind {
	case KindRewrite, "":
		return GenerateRewritePrompt(req.Resume, req.Job, req.Settings, req.UserOverrides), nil
	case KindCoverLetter:
		return GenerateCoverLetterPrompt(req.Resume, req.Job, req.CoverLetter, req.UserOverrides), nil
	case KindInterviewQuestions:
		return GenerateInterviewQuestionsPrompt(req.Resume, req.Job, req.UserOverrides), nil
	case KindStar:
		if strings.TrimSpace(req.Question) == "" {
			return "", fmt.Errorf("a question is required for the %s prompt", KindStar)
		}
		return GenerateStarPrompt(req.Resume, req.Job, req.Question, req.UserOverrides), nil
	case KindNetworking:
		var job *types.JobPosting
		if strings.TrimSpace(req.Job.Text) != "" {
			job = &req.Job
		}
		return GenerateNetworkingPrompt(req.Resume, job, req.UserOverrides), nil
	case KindReverseQuestions:
		return GenerateReverseQuestionsPrompt(req.Resume, req.Job, req.UserOverrides), nil
	default:
		return "", fmt.Errorf("unknown prompt kind %q", req.Kind)
	}
}
