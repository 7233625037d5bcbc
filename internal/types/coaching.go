package types

// InterviewQuestion is one generated interview question
type InterviewQuestion struct {
	Question  string `json:"question"`
	Type      string `json:"type"`
	Reasoning string `json:"reasoning"`
}

// StarAnswer is a Situation/Task/Action/Result answer to one question
type StarAnswer struct {
	Situation string `json:"situation"`
	Task      string `json:"task"`
	Action    string `json:"action"`
	Result    string `json:"result"`
	Tips      string `json:"tips"`
}

type OutreachTemplate struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NetworkingKit is generated LinkedIn content plus outreach templates
type NetworkingKit struct {
	Headlines []string           `json:"headlines"`
	About     string             `json:"about"`
	Outreach  []OutreachTemplate `json:"outreach"`
}

// ReverseQuestion is a question for the candidate to ask the interviewer
type ReverseQuestion struct {
	Question  string `json:"question"`
	Rationale string `json:"rationale"`
}
