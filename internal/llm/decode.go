package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?```[ \t]*$")
)

// ExtractText returns the first non-empty text part of the first candidate.
// Thought parts are skipped.
func ExtractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &DecodeError{Kind: NoTextFound}
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", &DecodeError{Kind: NoTextFound}
	}
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if strings.TrimSpace(part.Text) != "" {
			return part.Text, nil
		}
	}
	return "", &DecodeError{Kind: NoTextFound}
}

// DecodeEnvelope parses a raw provider envelope and returns its text.
func DecodeEnvelope(raw []byte) (string, error) {
	var resp genai.GenerateContentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &DecodeError{Kind: NoTextFound, Sample: Truncate(string(raw), DiagnosticLimit), Err: err}
	}
	return ExtractText(&resp)
}

// StripFences removes a leading ``` fence (with optional language tag) and a
// trailing ``` fence.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractJSON strips code fences and parses the remaining text as a JSON
// object. When that fails it retries on the outermost {...} span, which
// recovers payloads wrapped in a sentence of prose.
func ExtractJSON(text string) (map[string]any, error) {
	body := StripFences(text)
	if body == "" {
		return nil, &DecodeError{Kind: NoTextFound}
	}

	var out map[string]any
	err := json.Unmarshal([]byte(body), &out)
	if err == nil && out != nil {
		return out, nil
	}

	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		var inner map[string]any
		if innerErr := json.Unmarshal([]byte(body[start:end+1]), &inner); innerErr == nil && inner != nil {
			return inner, nil
		}
	}

	return nil, &DecodeError{Kind: InvalidJSON, Sample: Truncate(body, DiagnosticLimit), Err: err}
}

// DecodeResponse is ExtractText followed by ExtractJSON.
func DecodeResponse(resp *genai.GenerateContentResponse) (map[string]any, error) {
	text, err := ExtractText(resp)
	if err != nil {
		return nil, err
	}
	return ExtractJSON(text)
}
