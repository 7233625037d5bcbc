package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxLineSize bounds a single SSE or NDJSON line
const maxLineSize = 1024 * 1024

// errStreamDone stops a scan at an end-of-stream marker
var errStreamDone = errors.New("stream done")

// APIError is a non-2xx answer from a provider
type APIError struct {
	Provider   Provider
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Message)
}

// httpTransport is shared by the JSON-over-HTTP providers
type httpTransport struct {
	provider Provider
	baseURL  string
	client   *http.Client
	headers  map[string]string
}

func newHTTPTransport(provider Provider, baseURL string, client *http.Client, headers map[string]string) httpTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return httpTransport{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   client,
		headers:  headers,
	}
}

// post sends body as JSON and returns the response when the status is 2xx.
// The caller closes the body.
func (t httpTransport) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", t.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", t.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req)
}

func (t httpTransport) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", t.provider, err)
	}
	return t.do(req)
}

func (t httpTransport) do(req *http.Request) (*http.Response, error) {
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &APIError{
			Provider:   t.provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}
	return resp, nil
}

// errorMessage pulls a readable message out of a provider error body. It
// understands {"error":"..."} and {"error":{"message":"..."}}.
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 64*1024))
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		var plain string
		if json.Unmarshal(envelope.Error, &plain) == nil && plain != "" {
			return plain
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

// scanLines calls fn for each non-empty line of r
func scanLines(r io.Reader, fn func(line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// sseEvent is one server-sent event
type sseEvent struct {
	Event string
	Data  string
}

// scanSSE groups event/data lines into events. A blank line ends an event.
func scanSSE(r io.Reader, fn func(ev sseEvent) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var current sseEvent
	var data []string
	flush := func() error {
		if len(data) == 0 {
			current = sseEvent{}
			return nil
		}
		current.Data = strings.Join(data, "\n")
		ev := current
		current, data = sseEvent{}, nil
		return fn(ev)
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "event:"):
			current.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}
