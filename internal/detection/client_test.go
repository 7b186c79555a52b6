package detection

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/vision-api/internal/config"
)

const inferenceResponse = `[
	{"score": 0.51, "label": "dog", "box": {"xmin": 5, "ymin": 6, "xmax": 50, "ymax": 60}},
	{"score": 0.12, "label": "cat", "box": {"xmin": 1, "ymin": 1, "xmax": 2, "ymax": 2}},
	{"score": 0.97, "label": "person", "box": {"xmin": 100, "ymin": 50, "xmax": 300, "ymax": 350}}
]`

func testImage() *Image {
	return &Image{MIMEType: "image/png", Format: "png", Data: []byte("png-bytes"), Width: 4, Height: 3}
}

func newTestClient(url, key string) *Client {
	return NewClient(config.DetectionConfig{
		APIURL:   url,
		APIKey:   key,
		Timeout:  5 * time.Second,
		MinScore: 0.3,
	}, nil)
}

func TestClient_Detect(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, inferenceResponse)
	}))
	defer srv.Close()

	detections, err := newTestClient(srv.URL, "hf_key").Detect(context.Background(), testImage())
	require.NoError(t, err)

	assert.Equal(t, "png-bytes", string(gotBody))
	assert.Equal(t, "image/png", gotHeader.Get("Content-Type"))
	assert.Equal(t, "Bearer hf_key", gotHeader.Get("Authorization"))

	require.Len(t, detections, 2, "low-score detections are dropped")
	assert.Equal(t, "person", detections[0].Label)
	assert.Equal(t, 0.97, detections[0].Score)
	assert.Equal(t, Box{XMin: 100, YMin: 50, XMax: 300, YMax: 350}, detections[0].Box)
	assert.Equal(t, "dog", detections[1].Label)
}

func TestClient_DetectWithoutKey(t *testing.T) {
	t.Parallel()

	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	detections, err := newTestClient(srv.URL, "").Detect(context.Background(), testImage())
	require.NoError(t, err)
	assert.Empty(t, detections)
	assert.Empty(t, auth)
}

func TestClient_DetectUpstreamErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"model loading", http.StatusServiceUnavailable, `{"error":"Model hustvl/yolos-tiny is currently loading"}`, "currently loading"},
		{"unauthorized", http.StatusUnauthorized, `nope`, "status 401"},
		{"malformed body", http.StatusOK, `{"not":"a list"}`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL, "").Detect(context.Background(), testImage())
			require.ErrorIs(t, err, ErrUpstream)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClient_DetectIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "").Detect(context.Background(), testImage())
	require.ErrorIs(t, err, ErrUpstream)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_DetectHonoursContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL, "").Detect(ctx, testImage())
	require.ErrorIs(t, err, ErrUpstream)
}
