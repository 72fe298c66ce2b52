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

// AzureOpenAI calls an Azure OpenAI chat-completions deployment.
type AzureOpenAI struct {
	url    string
	apiKey string
	client *http.Client
}

func newAzureOpenAI(endpoint, apiKey, deployment, apiVersion string, timeout time.Duration) (*AzureOpenAI, error) {
	if deployment == "" {
		return nil, fmt.Errorf("azure endpoint requires a deployment name")
	}
	if apiVersion == "" {
		apiVersion = "2024-02-15-preview"
	}
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(endpoint, "/"), deployment, apiVersion)
	return &AzureOpenAI{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (a *AzureOpenAI) Name() string { return "azure-openai" }

func (a *AzureOpenAI) Call(ctx context.Context, req Request) (Response, error) {
	body := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens: 4096,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.url, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", a.apiKey)

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return Response{}, &transportError{message: err.Error()}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, &transportError{message: "reading response: " + err.Error()}
	}

	if httpResp.StatusCode == 401 || httpResp.StatusCode == 403 {
		return Response{}, &authError{message: string(respBody)}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return Response{}, &transportError{statusCode: httpResp.StatusCode, message: string(respBody)}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Response{}, &transportError{message: "parsing response: " + err.Error()}
	}
	if len(result.Choices) == 0 {
		return Response{}, &transportError{message: "no choices in response"}
	}

	return Response{
		Content:    result.Choices[0].Message.Content,
		TokensUsed: result.Usage.TotalTokens,
	}, nil
}

type chatRequest struct {
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	TotalTokens int `json:"total_tokens"`
}
