package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/redmonkez12/vision-api/internal/config"
)

// ErrUpstream is returned when the inference API fails or answers with garbage.
var ErrUpstream = errors.New("detection service error")

const (
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
	maxResponseBody = 4 << 20
)

// Client calls a Hugging Face object-detection inference endpoint.
// Requests are never retried.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	minScore   float64
}

var _ Detector = (*Client)(nil)

// NewClient builds a client from cfg. If httpClient is nil a client with
// cfg.Timeout is used.
func NewClient(cfg config.DetectionConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		minScore:   cfg.MinScore,
	}
}

type inferenceError struct {
	Error string `json:"error"`
}

// Detect posts the raw image bytes and returns detections scoring at least
// the configured minimum, most confident first.
func (c *Client) Detect(ctx context.Context, img *Image) ([]Detection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Content-Type", img.MIMEType)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		req.Header.Set(requestIDHeader, reqID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: post: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr inferenceError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var raw []Detection
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	detections := make([]Detection, 0, len(raw))
	for _, d := range raw {
		if d.Score < c.minScore {
			continue
		}
		if d.Label == "" {
			d.Label = "Unknown"
		}
		detections = append(detections, d)
	}

	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Score > detections[j].Score
	})

	return detections, nil
}
