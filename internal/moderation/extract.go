package moderation

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSONObject is returned when provider text holds no {...} span.
var ErrNoJSONObject = errors.New("no JSON object in provider response")

var (
	fencePattern  = regexp.MustCompile("```(?:json)?")
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON strips code fences and returns the span from the first
// '{' to the last '}' of a free-form model answer.
func ExtractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
	match := objectPattern.FindString(cleaned)
	if match == "" {
		return "", ErrNoJSONObject
	}
	return match, nil
}
