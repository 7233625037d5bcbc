package prompt

import (
	"strings"

	"resumatch/internal/types"
)

const noFenceNote = "Do not include any markdown formatting like ```json."

// GenerateInterviewQuestionsPrompt asks for five probing interview questions
// as a JSON array of {question, type, reasoning}.
func GenerateInterviewQuestionsPrompt(resume types.ResumeDocument, job types.JobPosting, userOverrides string) string {
	var sb strings.Builder
	sb.WriteString(`You are an expert technical recruiter and hiring manager.
Based on the provided candidate resume and target job description, generate 5 highly relevant and challenging interview questions.
These questions should probe the candidate's specific experiences, their alignment with the role's requirements, and potential areas of weakness or gaps.
`)
	sb.WriteString(overridesBlock(userOverrides))
	writeResumeAndJob(&sb, resume, job.Text)
	sb.WriteString(`[OUTPUT FORMAT]
Provide your response strictly as a JSON array of objects. ` + noFenceNote + `
Each object must have:
- "question": The interview question.
- "type": Choose one of: "Technical", "Behavioral", "Experience", or "Situational".
- "reasoning": A brief explanation of why this question is being asked based on their resume and the JD.

Example output:
[
  {
    "question": "Can you walk me through your experience building scalable microservices?",
    "type": "Technical",
    "reasoning": "JD requires microservices experience, and resume mentions it but lacks specific scaling metrics."
  }
]
`)
	return sb.String()
}

// GenerateStarPrompt asks for a STAR-method answer to one question, drawn
// only from the resume.
func GenerateStarPrompt(resume types.ResumeDocument, job types.JobPosting, question, userOverrides string) string {
	var sb strings.Builder
	sb.WriteString(`You are an expert interview coach helping a candidate prepare using the STAR (Situation, Task, Action, Result) method.
Given the candidate's resume, the target job description, and a specific interview question, generate a comprehensive STAR method response that the candidate can use to answer the question effectively. Draw ONLY on experiences listed in the candidate's resume. 
`)
	sb.WriteString(overridesBlock(userOverrides))
	sb.WriteString("\n[INTERVIEW QUESTION]\n\"")
	sb.WriteString(question)
	sb.WriteString("\"\n")
	writeResumeAndJob(&sb, resume, job.Text)
	sb.WriteString(`[OUTPUT FORMAT]
Provide your response strictly as a JSON object. ` + noFenceNote + `
The object must have the following keys:
- "situation": Setting the scene and giving necessary context.
- "task": Describe what their responsibility was in that situation.
- "action": Explain exactly what steps they took to address it.
- "result": Share what outcomes their actions achieved (use metrics from the resume if available).
- "tips": A short string with 1-2 tips on how to deliver this answer effectively.

Example output:
{
  "situation": "Our main API was struggling under peak load, causing timeouts for 15% of our users.",
  "task": "I was tasked with identifying the bottleneck and improving response times without rewriting the entire service.",
  "action": "I implemented Redis caching for the most frequently accessed endpoints and optimized our primary database queries with proper indexing.",
  "result": "API response times dropped by 70%, completely eliminating the timeout errors during peak hours.",
  "tips": "Emphasize your proactive approach to monitoring and how you prioritized which queries to index."
}
`)
	return sb.String()
}

// GenerateNetworkingPrompt asks for LinkedIn headlines, an About section and
// three outreach templates. job may be nil.
func GenerateNetworkingPrompt(resume types.ResumeDocument, job *types.JobPosting, userOverrides string) string {
	contextInstruction := "\nTailor the LinkedIn profile and outreach templates broadly based on the candidate's existing experience and top skills."
	if job != nil && strings.TrimSpace(job.Text) != "" {
		contextInstruction = "\n[TARGET JOB DESCRIPTION]\n" + job.Text +
			"\n\nTailor the LinkedIn profile and outreach templates specifically to attract recruiters hiring for this exact role or similar roles."
	}

	var sb strings.Builder
	sb.WriteString(`You are an expert career coach and LinkedIn branding specialist.
Based on the provided candidate resume and optional target job description, generate optimized LinkedIn profile content and networking outreach templates.
`)
	sb.WriteString(overridesBlock(userOverrides))
	sb.WriteString("\n[CANDIDATE RESUME]\n")
	sb.WriteString(resumeJSON(resume))
	sb.WriteString("\n")
	sb.WriteString(contextInstruction)
	sb.WriteString(`

[OUTPUT FORMAT]
Provide your response strictly as a JSON object. ` + noFenceNote + `
The object must have the following keys:
- "headlines": An array of 3 strong, SEO-optimized LinkedIn headlines (under 120 characters each).
- "about": A compelling "About" section summary (2-3 short paragraphs) that tells their professional story, highlights key achievements, and includes a call to action.
- "outreach": An array of 3 distinct networking templates:
    1. "Recruiter Connection": A short, impactful connection request to a recruiter or hiring manager.
    2. "Informational Interview": A message asking an industry peer for a brief chat.
    3. "Follow-up": A polite follow-up message after an application or initial contact.

Each outreach object in the array should have:
  - "type": The name of the template (e.g., "Recruiter Connection").
  - "subject": The subject line (if applicable, or empty string).
  - "body": The message template with placeholders like [Hiring Manager Name] or [Company Name].

Example output:
{
  "headlines": [
    "Senior Frontend Engineer | React & Next.js Expert | Building Scalable Web Apps",
    ...
  ],
  "about": "As a passionate software engineer...",
  "outreach": [
    {
      "type": "Recruiter Connection",
      "subject": "",
      "body": "Hi [Name], I recently applied for..."
    }
  ]
}
`)
	return sb.String()
}

// GenerateReverseQuestionsPrompt asks for three strategic questions the
// candidate can put to the interviewer, as a JSON array of
// {question, rationale}.
func GenerateReverseQuestionsPrompt(resume types.ResumeDocument, job types.JobPosting, userOverrides string) string {
	var sb strings.Builder
	sb.WriteString(`You are a strategic career advisor helping a candidate act like a high-level insider during their job interview.
Based on the provided candidate resume and target job description, generate 3 highly strategic, impressive "Reverse Questions" for the candidate to ask the interviewer at the end of the interview.

These questions should NOT be generic (e.g., "What is the culture like?"). They should:
1. Reference specific challenges, goals, or technologies mentioned in the JD.
2. Demonstrate that the candidate is already thinking about how to solve the company's problems within the first 90 days.
3. Subtly position the candidate's specific background (from their resume) as the perfect fit for these challenges.
`)
	sb.WriteString(overridesBlock(userOverrides))
	writeResumeAndJob(&sb, resume, job.Text)
	sb.WriteString(`[OUTPUT FORMAT]
Provide your response strictly as a JSON array of objects. ` + noFenceNote + `
Each object must have:
- "question": The strategic question to ask.
- "rationale": A brief explanation of why this question is powerful and what it signals to the interviewer.

Example output:
[
  {
    "question": "The JD mentions scaling the core API. Given my experience migrating legacy monoliths to microservices at [Previous Company], what is the biggest technical bottleneck your team is currently facing with that scale?",
    "rationale": "Signals that you've solved this exact problem before and shifts the conversation from evaluating you to discussing their problems as peers."
  }
]
`)
	return sb.String()
}

func writeResumeAndJob(sb *strings.Builder, resume types.ResumeDocument, jobText string) {
	sb.WriteString("\n[CANDIDATE RESUME]\n")
	sb.WriteString(resumeJSON(resume))
	sb.WriteString("\n\n[TARGET JOB DESCRIPTION]\n")
	sb.WriteString(jobText)
	sb.WriteString("\n\n")
}
