package ai

import (
	"errors"
	"regexp"

	"github.com/goccy/go-json"
)

// ErrNoJSON indicates no JSON fragment could be extracted from the text.
var ErrNoJSON = errors.New("ai: no JSON fragment in response")

// The generation service is not guaranteed to return strict JSON; models
// wrap payloads in prose or code fences. These patterns grab the outermost
// bracketed fragment and let the JSON decoder be the real judge.
var (
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSONArray finds the first JSON-array-shaped substring in text and
// unmarshals it into out. Returns ErrNoJSON if nothing array-shaped exists,
// or the unmarshal error if the fragment is not valid JSON.
func ExtractJSONArray(text string, out any) error {
	fragment := jsonArrayPattern.FindString(text)
	if fragment == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(fragment), out); err != nil {
		return err
	}
	return nil
}

// ExtractJSONObject finds the first JSON-object-shaped substring in text
// and unmarshals it into out.
func ExtractJSONObject(text string, out any) error {
	fragment := jsonObjectPattern.FindString(text)
	if fragment == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(fragment), out); err != nil {
		return err
	}
	return nil
}
