package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Generic posts the analysis request as JSON to an /api/analyze endpoint
// with bearer-token auth.
type Generic struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func newGeneric(endpoint, apiKey string, timeout time.Duration) *Generic {
	endpoint = strings.TrimRight(endpoint, "/")
	if !strings.HasSuffix(endpoint, "/api/analyze") {
		endpoint += "/api/analyze"
	}
	return &Generic{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *Generic) Name() string { return "generic" }

func (g *Generic) Call(ctx context.Context, req Request) (Response, error) {
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return Response{}, &transportError{message: err.Error()}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, &transportError{message: "reading response: " + err.Error()}
	}

	if httpResp.StatusCode == 401 || httpResp.StatusCode == 403 {
		return Response{}, &authError{message: string(body)}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return Response{}, &transportError{statusCode: httpResp.StatusCode, message: string(body)}
	}

	resp := Response{Content: string(body)}
	// A top-level JSON object body is kept for the structured normalization
	// path; anything else stays text-only.
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed) {
		resp.Structured = trimmed
		// Endpoints that wrap the model text in a {response: "..."} or
		// {content: "..."} envelope get the inner text as Content.
		var envelope struct {
			Response string `json:"response"`
			Content  string `json:"content"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			if envelope.Response != "" {
				resp.Content = envelope.Response
			} else if envelope.Content != "" {
				resp.Content = envelope.Content
			}
		}
	}
	return resp, nil
}
