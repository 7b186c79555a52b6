package qa

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/redmonkez12/vision-api/internal/detection"
)

var thresholdPattern = regexp.MustCompile(`(\d+)%?\s*(?:confidence|percent)`)

var (
	countWords    = []string{"how many", "count", "number of"}
	aboveWords    = []string{"above", "over", "more than", "greater than", "higher than"}
	belowWords    = []string{"below", "under", "less than", "lower than"}
	highestWords  = []string{"highest", "most confident", "best"}
	lowestWords   = []string{"lowest", "least confident", "worst"}
	largestWords  = []string{"largest", "biggest"}
	smallestWords = []string{"smallest", "tiniest"}
	identifyWords = []string{"what", "which", "identify"}
	locationWords = []string{"where", "location", "position"}
)

// OfflineAnswerer answers common questions from the detections alone,
// without calling a language model. It is used when no API key is set.
type OfflineAnswerer struct{}

var _ Answerer = OfflineAnswerer{}

func (OfflineAnswerer) Answer(_ context.Context, question string, detections []detection.Detection) (string, error) {
	return answerOffline(question, detections), nil
}

func answerOffline(question string, detections []detection.Detection) string {
	if len(detections) == 0 {
		return "I don't see any objects in the image. Could you upload an image with detectable objects?"
	}

	q := strings.ToLower(question)
	labels := labelsOf(detections)
	list := joinLabels(labels)

	switch {
	case containsAny(q, countWords):
		return answerCount(q, detections, list)

	case containsAny(q, highestWords):
		best := pick(detections, func(a, b detection.Detection) bool { return confidence(a) > confidence(b) })
		return fmt.Sprintf("The object detected with highest confidence is %s at %s confidence.", best.Label, percent(best))

	case containsAny(q, lowestWords):
		worst := pick(detections, func(a, b detection.Detection) bool { return confidence(a) < confidence(b) })
		return fmt.Sprintf("The object with lowest confidence is %s at %s confidence.", worst.Label, percent(worst))

	case containsAny(q, largestWords):
		largest := pick(detections, func(a, b detection.Detection) bool { return a.Box.Area() > b.Box.Area() })
		return fmt.Sprintf("The largest object is %s with %s confidence. It has an area of %.0f square pixels.",
			largest.Label, percent(largest), largest.Box.Area())

	case containsAny(q, smallestWords):
		smallest := pick(detections, func(a, b detection.Detection) bool { return a.Box.Area() < b.Box.Area() })
		return fmt.Sprintf("The smallest object is %s with %s confidence.", smallest.Label, percent(smallest))

	case containsAny(q, identifyWords):
		top := pick(detections, func(a, b detection.Detection) bool { return confidence(a) > confidence(b) })
		return fmt.Sprintf("The image contains %s. These objects were detected with varying confidence levels, with %s being the most prominent.",
			list, top.Label)
	}

	for _, d := range detections {
		if d.Label != "" && strings.Contains(q, strings.ToLower(d.Label)) {
			return fmt.Sprintf("Yes, I can see a %s with %s confidence. It's located at position (x: %v, y: %v) with dimensions %vx%v pixels.",
				d.Label, percent(d), d.Box.XMin, d.Box.YMin, d.Box.Width(), d.Box.Height())
		}
	}

	if containsAny(q, locationWords) {
		first := detections[0]
		return fmt.Sprintf("The detected objects are positioned throughout the image. %s is at (%v, %v), while others are distributed across different areas.",
			first.Label, first.Box.XMin, first.Box.YMin)
	}

	lowest := pick(detections, func(a, b detection.Detection) bool { return confidence(a) < confidence(b) })
	highest := pick(detections, func(a, b detection.Detection) bool { return confidence(a) > confidence(b) })
	return fmt.Sprintf("Based on the image analysis, I detected %d objects: %s. The detection confidence ranges from %s to %s. What specific aspect would you like to know more about?",
		len(detections), list, percent(lowest), percent(highest))
}

func answerCount(q string, detections []detection.Detection, list string) string {
	if m := thresholdPattern.FindStringSubmatch(q); m != nil {
		pct, err := strconv.Atoi(m[1])
		if err == nil {
			threshold := float64(pct) / 100

			switch {
			case containsAny(q, aboveWords):
				matched := filter(detections, func(d detection.Detection) bool { return confidence(d) > threshold })
				if len(matched) == 0 {
					return fmt.Sprintf("No objects were detected with confidence above %d%%.", pct)
				}
				return fmt.Sprintf("There are %d objects detected with confidence above %d%%: %s.",
					len(matched), pct, strings.Join(labelsOf(matched), ", "))

			case containsAny(q, belowWords):
				matched := filter(detections, func(d detection.Detection) bool { return confidence(d) < threshold })
				if len(matched) == 0 {
					return fmt.Sprintf("No objects were detected with confidence below %d%%.", pct)
				}
				return fmt.Sprintf("There are %d objects detected with confidence below %d%%: %s.",
					len(matched), pct, strings.Join(labelsOf(matched), ", "))
			}
		}
	}

	best := pick(detections, func(a, b detection.Detection) bool { return confidence(a) > confidence(b) })
	return fmt.Sprintf("I can see %d objects in the image: %s. The most confident detection is %s at %s confidence.",
		len(detections), list, best.Label, percent(best))
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// pick returns the first detection that no later one beats according to better.
func pick(detections []detection.Detection, better func(a, b detection.Detection) bool) detection.Detection {
	best := detections[0]
	for _, d := range detections[1:] {
		if better(d, best) {
			best = d
		}
	}
	return best
}

func filter(detections []detection.Detection, keep func(detection.Detection) bool) []detection.Detection {
	var out []detection.Detection
	for _, d := range detections {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func labelsOf(detections []detection.Detection) []string {
	labels := make([]string, len(detections))
	for i, d := range detections {
		labels[i] = d.Label
	}
	return labels
}

// joinLabels renders "a", "a and b" or "a, b, and c".
func joinLabels(labels []string) string {
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	case 2:
		return labels[0] + " and " + labels[1]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + ", and " + labels[len(labels)-1]
	}
}

func percent(d detection.Detection) string {
	return fmt.Sprintf("%.0f%%", confidence(d)*100)
}
