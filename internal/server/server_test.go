package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"resumatch/internal/ai"
	"resumatch/internal/config"
	"resumatch/internal/types"
	"resumatch/internal/workflow"
)

const testJob = "Senior Backend Engineer\nRequirements: Go, Kubernetes, PostgreSQL, gRPC. Bachelor's degree."

const testResume = `{
  "personalInfo": {"fullName": "Jane Doe", "email": "jane@example.com"},
  "summary": "Backend engineer building Go services",
  "skills": "Go, PostgreSQL",
  "workExperience": [{"id": "w1", "jobTitle": "Engineer", "company": "Acme", "startDate": "2020", "current": true,
    "description": "Built APIs in Go"}]
}`

// fakeGenerator answers every call with the same text, streamed word by word
type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (g *fakeGenerator) Generate(_ context.Context, _ ai.GenerateRequest) (*ai.Completion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &ai.Completion{Text: g.response}, nil
}

func (g *fakeGenerator) Stream(_ context.Context, _ ai.GenerateRequest, onChunk ai.ChunkFunc) (*ai.Completion, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	for _, word := range strings.SplitAfter(g.response, " ") {
		if word == "" {
			continue
		}
		if err := onChunk(word); err != nil {
			return nil, err
		}
	}
	return &ai.Completion{Text: g.response}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider:                "ollama",
			Model:                   "llama3.1",
			DefaultFabricationLevel: 30,
		},
		Scoring: config.ScoringConfig{MaxJobWords: 5000, CacheEntries: 10},
		Server:  config.ServerConfig{MaxRequestSize: 1 << 20},
		App:     config.AppConfig{MaxFileSize: 1 << 20},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, opts ...ai.Option) *Server {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	opts = append(opts, ai.WithRetryDelay(time.Millisecond))
	aiService := ai.NewService(cfg, nil, opts...)
	flow := workflow.New(cfg, aiService, nil)
	s := NewServer(cfg, NewServerConfig(cfg, "test"), Dependencies{AI: aiService, Workflow: flow}, nil)
	t.Cleanup(s.cleanupRateLimiter)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Error
}

func scoreBody(job string) string {
	body, _ := json.Marshal(map[string]any{
		"resume":         json.RawMessage(testResume),
		"jobDescription": job,
	})
	return string(body)
}

func TestHealthAndConfig(t *testing.T) {
	cfg := testConfig()
	cfg.AI.Keys.OpenAI = "sk-server"
	h := newTestServer(t, cfg).Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var health map[string]any
	decodeBody(t, rec, &health)
	if health["status"] != "healthy" || health["version"] != "test" {
		t.Errorf("unexpected health body: %v", health)
	}

	rec = do(t, h, http.MethodGet, "/api/config", "")
	var keys map[string]bool
	decodeBody(t, rec, &keys)
	if !keys["openai"] || keys["anthropic"] || keys["google"] || keys["deepseek"] {
		t.Errorf("config = %v", keys)
	}
	if strings.Contains(rec.Body.String(), "sk-server") {
		t.Error("config leaked the key value")
	}
}

func TestScoreEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"valid", scoreBody(testJob), http.StatusOK, ""},
		{"malformed", "{not json", http.StatusBadRequest, "Invalid request body"},
		{"short posting", scoreBody("Go"), http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/score", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				msg := errorOf(t, rec)
				if tt.wantError != "" && msg != tt.wantError {
					t.Errorf("error = %q, want %q", msg, tt.wantError)
				}
				return
			}
			var result struct {
				Total int    `json:"total"`
				Grade string `json:"grade"`
			}
			decodeBody(t, rec, &result)
			if result.Total <= 0 || result.Total > 100 || result.Grade == "" {
				t.Errorf("unexpected score: %+v", result)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	if rec := do(t, h, http.MethodGet, "/api/score", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/score = %d", rec.Code)
	}
}

func TestPromptEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	body, _ := json.Marshal(map[string]any{
		"kind":           "rewrite",
		"resume":         json.RawMessage(testResume),
		"jobDescription": testJob,
	})
	rec := do(t, h, http.MethodPost, "/api/prompt", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var out map[string]string
	decodeBody(t, rec, &out)
	if !strings.Contains(out["prompt"], "[TARGET JOB DESCRIPTION]") || !strings.Contains(out["prompt"], "gRPC") {
		t.Errorf("prompt missing the posting:\n%s", out["prompt"])
	}

	star, _ := json.Marshal(map[string]any{"kind": "star", "resume": json.RawMessage(testResume), "jobDescription": testJob})
	if rec := do(t, h, http.MethodPost, "/api/prompt", string(star)); rec.Code != http.StatusBadRequest {
		t.Errorf("star without question = %d", rec.Code)
	}

	badTone, _ := json.Marshal(map[string]any{"kind": "cover-letter", "tone": "sarcastic", "resume": json.RawMessage(testResume)})
	if rec := do(t, h, http.MethodPost, "/api/prompt", string(badTone)); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown tone = %d", rec.Code)
	}
}

func TestGenerateStreams(t *testing.T) {
	gen := &fakeGenerator{response: "Hello brave new world"}
	h := newTestServer(t, nil, ai.WithGenerator(ai.ProviderOllama, gen)).Handler()

	rec := do(t, h, http.MethodPost, "/api/generate", `{"prompt":"say hi","model":"llama3.1","provider":"ollama"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := rec.Body.String(); got != "Hello brave new world" {
		t.Errorf("body = %q", got)
	}
}

func TestGenerateValidation(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"invalid body", "[", http.StatusBadRequest, "Invalid request body"},
		{"empty prompt", `{"prompt":"  ","model":"m"}`, http.StatusBadRequest, "Prompt is required and cannot be empty"},
		{"no model", `{"prompt":"hi","provider":"openai"}`, http.StatusBadRequest, "Model name is required. Please select a model from the settings."},
		{"unknown provider", `{"prompt":"hi","model":"m","provider":"bard"}`, http.StatusBadRequest, `Unknown provider "bard". Please select a valid provider from the settings.`},
		{"missing key", `{"prompt":"hi","model":"gpt-4o","provider":"openai"}`, http.StatusUnauthorized, "No API key provided for openai. Add it in the settings or set it in your .env file."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/generate", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := errorOf(t, rec); got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
		})
	}
}

func TestRewriteEndpoint(t *testing.T) {
	gen := &fakeGenerator{response: "## Change Log\n- Added Kubernetes\n\n```json\n" + `{
  "personalInfo": {"fullName": "Jane Doe", "email": "jane@example.com"},
  "summary": "Senior backend engineer building Go services on Kubernetes",
  "skills": "Go, Kubernetes, PostgreSQL, gRPC",
  "workExperience": [{"jobTitle": "Senior Backend Engineer", "company": "Acme", "startDate": "2020", "current": true,
    "description": "Led 5 engineers shipping gRPC APIs in Go on Kubernetes"}],
  "education": [{"degree": "Bachelor of Science", "school": "MIT", "startDate": "2012"}]
}` + "\n```"}
	h := newTestServer(t, nil, ai.WithGenerator(ai.ProviderOllama, gen)).Handler()

	rec := do(t, h, http.MethodPost, "/api/rewrite", scoreBody(testJob))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var out workflow.RewriteOutcome
	decodeBody(t, rec, &out)
	if out.Resume == nil || out.After == nil {
		t.Fatalf("incomplete outcome: %s", rec.Body.String())
	}
	if out.After.Total <= out.Before.Total {
		t.Errorf("score did not improve: %d -> %d", out.Before.Total, out.After.Total)
	}
	if !strings.Contains(out.ChangeLog, "Added Kubernetes") {
		t.Errorf("change log = %q", out.ChangeLog)
	}
}

func TestRewriteExtractionFailure(t *testing.T) {
	gen := &fakeGenerator{response: "I cannot help with that."}
	h := newTestServer(t, nil, ai.WithGenerator(ai.ProviderOllama, gen)).Handler()

	rec := do(t, h, http.MethodPost, "/api/rewrite", scoreBody(testJob))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInterviewQuestionsCache(t *testing.T) {
	gen := &fakeGenerator{response: `[{"question":"How do you run Go on Kubernetes?","type":"Technical","reasoning":"JD lists Kubernetes"}]`}
	h := newTestServer(t, nil, ai.WithGenerator(ai.ProviderOllama, gen)).Handler()

	body := scoreBody(testJob)
	var first, second workflow.InterviewOutcome

	decodeBody(t, do(t, h, http.MethodPost, "/api/interview-questions", body), &first)
	decodeBody(t, do(t, h, http.MethodPost, "/api/interview-questions", body), &second)

	if first.FromCache || len(first.Items) != 1 {
		t.Errorf("first call: %+v", first)
	}
	if !second.FromCache || second.CachedAgo != "just now" || len(second.Items) != 1 {
		t.Errorf("second call: %+v", second)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}

	var clear map[string]any
	req := map[string]any{}
	_ = json.Unmarshal([]byte(body), &req)
	req["clear"] = true
	clearBody, _ := json.Marshal(req)
	decodeBody(t, do(t, h, http.MethodPost, "/api/interview-questions", string(clearBody)), &clear)
	if clear["cleared"] != true {
		t.Errorf("clear = %v", clear)
	}

	var third workflow.InterviewOutcome
	decodeBody(t, do(t, h, http.MethodPost, "/api/interview-questions", body), &third)
	if third.FromCache || gen.calls != 2 {
		t.Errorf("after clear: fromCache=%v calls=%d", third.FromCache, gen.calls)
	}
}

func TestParseEndpoint(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n" + testResume + "\n```"}
	h := newTestServer(t, nil, ai.WithGenerator(ai.ProviderOllama, gen)).Handler()

	rec := do(t, h, http.MethodPost, "/api/parse-resume", `{"text":"Jane Doe\nBackend engineer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Resume types.ResumeDocument `json:"resume"`
	}
	decodeBody(t, rec, &out)
	if out.Resume.PersonalInfo.FullName != "Jane Doe" {
		t.Errorf("resume = %+v", out.Resume)
	}

	if rec := do(t, h, http.MethodPost, "/api/parse-resume", `{"text":"   "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty text = %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIKeys = []string{"secret-key-123"}
	h := newTestServer(t, cfg).Handler()

	tests := []struct {
		name       string
		headers    []string
		wantStatus int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"wrong", []string{"X-API-Key", "nope"}, http.StatusUnauthorized},
		{"header", []string{"X-API-Key", "secret-key-123"}, http.StatusOK},
		{"bearer", []string{"Authorization", "Bearer secret-key-123"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/config", "", tt.headers...)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health should stay public, got %d", rec.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 2, ByIP: true}
	s := newTestServer(t, cfg)
	h := s.Handler()

	for i := range 2 {
		if rec := do(t, h, http.MethodGet, "/api/config", "", "X-Forwarded-For", "203.0.113.7"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, h, http.MethodGet, "/api/config", "", "X-Forwarded-For", "203.0.113.7")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	if rec := do(t, h, http.MethodGet, "/api/config", "", "X-Forwarded-For", "198.51.100.1"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d", rec.Code)
	}

	stats := s.RateLimiter.Stats()
	if stats["active_clients"] != 2 || stats["rejected"] != int64(1) {
		t.Errorf("stats = %v", stats)
	}
	s.RateLimiter.Close()
	s.RateLimiter.Close()
}

func TestRequestSizeLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxRequestSize = 64
	h := newTestServer(t, cfg).Handler()

	rec := do(t, h, http.MethodPost, "/api/score", scoreBody(testJob))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if !strings.Contains(resp.Message, "too large") {
		t.Errorf("message = %q", resp.Message)
	}
}

func ollamaServer(t *testing.T, handler http.HandlerFunc) *Server {
	t.Helper()
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)

	cfg := testConfig()
	cfg.AI.Endpoints.Ollama = upstream.URL
	return newTestServer(t, cfg, ai.WithHTTPClient(upstream.Client()))
}

func TestOllamaPull(t *testing.T) {
	s := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pull" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `not json`)
		fmt.Fprintln(w, `{"status":"downloading","completed":5,"total":10}`)
	})

	rec := do(t, s.Handler(), http.MethodPost, "/api/ollama/pull", `{"name":"llama3.1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	want := "data: {\"status\":\"pulling manifest\"}\n\n" +
		"data: {\"completed\":5,\"status\":\"downloading\",\"total\":10}\n\n" +
		"data: {\"status\":\"success\"}\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body =\n%q\nwant\n%q", got, want)
	}
}

func TestOllamaPullErrors(t *testing.T) {
	s := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/ollama/pull", `{"name":"llama3.1"}`)
	if got := rec.Body.String(); got != "data: {\"error\":\"Ollama returned 500\"}\n\n" {
		t.Errorf("body = %q", got)
	}

	rec = do(t, h, http.MethodPost, "/api/ollama/pull", `{"name":""}`)
	if rec.Code != http.StatusBadRequest || errorOf(t, rec) != "name required" {
		t.Errorf("empty name: %d %s", rec.Code, rec.Body.String())
	}
}

func TestOllamaShowAndModels(t *testing.T) {
	s := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			fmt.Fprint(w, `{"models":[{"name":"llama3.1:8b","size":4661224676}]}`)
		case "/api/show":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["name"] != "llama3.1:8b" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprint(w, `{"modelfile":"FROM llama3.1"}`)
		}
	})
	h := s.Handler()

	for _, path := range []string{"/api/ollama/models", "/api/ollama/tags"} {
		var list ai.ModelList
		decodeBody(t, do(t, h, http.MethodGet, path, ""), &list)
		if !list.Available || len(list.Models) != 1 || list.Models[0].Name != "llama3.1:8b" {
			t.Errorf("%s = %+v", path, list)
		}
	}

	rec := do(t, h, http.MethodGet, "/api/ollama/show?name=llama3.1:8b", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "FROM llama3.1") {
		t.Errorf("show: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/ollama/show?name=missing", "")
	if rec.Code != http.StatusNotFound || errorOf(t, rec) != "Model not found: missing" {
		t.Errorf("missing model: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/ollama/show", "")
	if rec.Code != http.StatusBadRequest || errorOf(t, rec) != "name required" {
		t.Errorf("no name: %d %s", rec.Code, rec.Body.String())
	}
}

func TestOllamaModelsUnreachable(t *testing.T) {
	cfg := testConfig()
	cfg.AI.Endpoints.Ollama = "http://127.0.0.1:1"
	h := newTestServer(t, cfg).Handler()

	rec := do(t, h, http.MethodGet, "/api/ollama/models", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"models":[],"available":false}` {
		t.Errorf("body = %s", got)
	}
}

func upload(t *testing.T, h http.Handler, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte(content))
	} else {
		mw.WriteField("other", "value")
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/extract-resume-text", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestExtractResumeText(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := upload(t, h, "resume.md", "  # Jane Doe\nGo engineer  ")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var out map[string]string
	decodeBody(t, rec, &out)
	if out["text"] != "# Jane Doe\nGo engineer" {
		t.Errorf("text = %q", out["text"])
	}

	if rec := upload(t, h, "", ""); rec.Code != http.StatusBadRequest || errorOf(t, rec) != "No file uploaded" {
		t.Errorf("no file: %d %s", rec.Code, rec.Body.String())
	}
	if rec := upload(t, h, "resume.exe", "MZ"); rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported type: %d", rec.Code)
	}
}
