package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redmonkez12/vision-api/internal/detection"
)

// ErrUpstream is returned when the language model call fails.
var ErrUpstream = errors.New("language model error")

// Answerer answers a free-text question about a set of detections.
type Answerer interface {
	Answer(ctx context.Context, question string, detections []detection.Detection) (string, error)
}

// BuildContext renders detections as a numbered list, one object per line.
func BuildContext(detections []detection.Detection) string {
	if len(detections) == 0 {
		return "No objects detected in the image."
	}

	var b strings.Builder
	for i, d := range detections {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s (confidence: %.1f%%, location: x=%v, y=%v, width=%v, height=%v)",
			i+1, d.Label, confidence(d)*100, d.Box.XMin, d.Box.YMin, d.Box.Width(), d.Box.Height())
	}
	return b.String()
}

// BuildPrompt wraps the question and detection context for the language model.
func BuildPrompt(question string, detections []detection.Detection) string {
	return fmt.Sprintf(`You are an AI assistant for an object detection system. You have access to the following detected objects in an image:

%s

User question: %s

Please provide a helpful, accurate, and concise answer based on the detected objects. If the question cannot be answered with the available information, politely explain what information is available.`,
		BuildContext(detections), question)
}

// confidence normalises a score to [0,1]; some clients send percentages.
func confidence(d detection.Detection) float64 {
	if d.Score > 1 {
		return d.Score / 100
	}
	return d.Score
}
