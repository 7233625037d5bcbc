package server

import (
	"fmt"
	"io"
	"os"
)

var endpoints = []struct{ method, path, about string }{
	{"GET", "/health", "Health check"},
	{"GET", "/stats", "Server statistics"},
	{"GET", "/api/config", "Provider key availability"},
	{"POST", "/api/score", "Score a resume against a posting"},
	{"POST", "/api/prompt", "Compose a prompt"},
	{"POST", "/api/generate", "Stream a model completion"},
	{"POST", "/api/rewrite", "Rewrite a resume for a posting"},
	{"POST", "/api/cover-letter", "Write a cover letter"},
	{"POST", "/api/parse-resume", "Structure plain resume text"},
	{"POST", "/api/interview-questions", "Interview questions (cached)"},
	{"POST", "/api/extract-resume-text", "Extract text from an upload"},
	{"GET", "/api/ollama/models", "Installed Ollama models"},
	{"GET", "/api/ollama/show", "Describe an Ollama model"},
	{"POST", "/api/ollama/pull", "Pull an Ollama model (SSE)"},
}

// displayServerInfo prints the listening address and the active limits
func (s *Server) displayServerInfo(addr string) {
	s.writeServerInfo(os.Stdout, addr)
}

func (s *Server) writeServerInfo(w io.Writer, addr string) {
	scheme := "http"
	if s.TLSConfig.Enabled() {
		scheme = "https"
	}
	fmt.Fprintf(w, "resumatch %s listening on %s://%s\n", s.Version, scheme, addr)

	fmt.Fprintln(w, "Available endpoints:")
	for _, e := range endpoints {
		fmt.Fprintf(w, "  %-4s %-28s %s\n", e.method, e.path, e.about)
	}

	if len(s.APIKeys) > 0 {
		fmt.Fprintf(w, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
	} else {
		fmt.Fprintln(w, "API authentication: DISABLED (no API keys configured)")
	}

	if s.MaxRequestSize > 0 {
		fmt.Fprintf(w, "Request size limit: %d bytes (%.1f MB), uploads %.1f MB\n",
			s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024), float64(s.MaxUploadSize)/(1024*1024))
	} else {
		fmt.Fprintln(w, "Request size limit: DISABLED")
	}

	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Fprintf(w, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	} else {
		fmt.Fprintln(w, "Rate limiting: DISABLED")
	}
}
