package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/redmonkez12/vision-api/internal/config"
	"github.com/redmonkez12/vision-api/internal/detection"
)

const (
	apiKeyHeader    = "x-goog-api-key"
	maxResponseBody = 1 << 20
)

// GeminiClient answers questions with the Gemini generateContent API.
// Requests are never retried.
type GeminiClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

var _ Answerer = (*GeminiClient)(nil)

// NewGeminiClient builds a client from cfg. If httpClient is nil a client
// with cfg.Timeout is used.
func NewGeminiClient(cfg config.QAConfig, httpClient *http.Client) *GeminiClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &GeminiClient{
		httpClient: httpClient,
		endpoint:   strings.TrimRight(cfg.APIURL, "/") + "/models/" + url.PathEscape(cfg.Model) + ":generateContent",
		apiKey:     cfg.APIKey,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *GeminiClient) Answer(ctx context.Context, question string, detections []detection.Detection) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: BuildPrompt(question, detections)}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: post: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr geminiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", ErrUpstream, out.PromptFeedback.BlockReason)
	}

	var answer strings.Builder
	for _, candidate := range out.Candidates {
		for _, part := range candidate.Content.Parts {
			answer.WriteString(part.Text)
		}
		if answer.Len() > 0 {
			break
		}
	}

	text := strings.TrimSpace(answer.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty answer", ErrUpstream)
	}

	return text, nil
}
