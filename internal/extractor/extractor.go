// Package extractor salvages a single JSON value out of a model's free-form
// text reply, which may be wrapped in explanatory prose or markdown fences.
package extractor

import (
	"encoding/json"
	"strings"

	"sosconnect-go/internal/types"
)

// ExtractJSON locates the most plausible JSON span in raw and returns it
// parsed-checked. The span runs from the earliest '{' or '[' to the latest
// '}' or ']'; when no bracket exists the whole string is parsed directly,
// which covers replies that are already pure JSON. Balanced-looking decoys
// elsewhere in the text can fool this, but the prompts constrain output to a
// single JSON value. No schema validation beyond the structural parse;
// callers perform shape checks before use.
func ExtractJSON(raw string) (json.RawMessage, error) {
	span := jsonSpan(raw)

	var probe any
	if err := json.Unmarshal([]byte(span), &probe); err != nil {
		return nil, &types.MalformedOutputError{Msg: err.Error()}
	}
	return json.RawMessage(span), nil
}

// Decode extracts the JSON span from raw and unmarshals it into v. A span
// that parses but does not fit v's shape is reported as malformed output.
func Decode(raw string, v any) error {
	span, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(span, v); err != nil {
		return &types.MalformedOutputError{Msg: err.Error()}
	}
	return nil
}

func jsonSpan(raw string) string {
	firstBrace := strings.IndexByte(raw, '{')
	firstBracket := strings.IndexByte(raw, '[')

	start := -1
	switch {
	case firstBrace == -1 && firstBracket == -1:
		return raw
	case firstBrace == -1:
		start = firstBracket
	case firstBracket == -1:
		start = firstBrace
	default:
		start = min(firstBrace, firstBracket)
	}

	end := max(strings.LastIndexByte(raw, '}'), strings.LastIndexByte(raw, ']'))
	if end < start {
		// An opening bracket with no closer; let the parse report it.
		return raw
	}
	return raw[start : end+1]
}
