package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGoogleGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "tailored"}]}}],
			"usageMetadata": {"promptTokenCount": 11, "candidatesTokenCount": 4, "totalTokenCount": 15}
		}`)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.AI.Endpoints.Google = server.URL
	svc := NewService(cfg, nil, WithHTTPClient(server.Client()))

	out, err := svc.Generate(context.Background(), Request{
		Prompt: "p", Model: "gemini-2.5-flash", Provider: "google", APIKey: "gk",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Text != "tailored" {
		t.Errorf("text = %q", out.Text)
	}
	if out.Usage == nil || out.Usage.InputTokens != 11 || out.Usage.TotalTokens != 15 {
		t.Errorf("usage = %+v", out.Usage)
	}
}
