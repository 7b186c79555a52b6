package qa

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/vision-api/internal/config"
)

func newTestGemini(url string) *GeminiClient {
	return NewGeminiClient(config.QAConfig{
		APIURL:  url + "/v1beta/",
		APIKey:  "g-key",
		Model:   "gemini-test",
		Timeout: 5 * time.Second,
	}, nil)
}

func TestGeminiClient_Answer(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotKey  string
		gotReq  generateRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"There are "},{"text":"four objects. "}]},"finishReason":"STOP"}]}`)
	}))
	defer srv.Close()

	answer, err := newTestGemini(srv.URL).Answer(context.Background(), "How many?", sceneDetections())
	require.NoError(t, err)

	assert.Equal(t, "There are four objects.", answer)
	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "g-key", gotKey)
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "User question: How many?")
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "4. sign (confidence: 76.0%")
}

func TestGeminiClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, "API key not valid"},
		{"opaque error", http.StatusInternalServerError, `oops`, "status 500"},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "empty answer"},
		{"not json", http.StatusOK, `<html>`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestGemini(srv.URL).Answer(context.Background(), "q", nil)
			require.ErrorIs(t, err, ErrUpstream)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
