package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractText pulls the text content out of a raw provider response.
//
// Providers disagree on where the generated text lives: Gemini-style
// payloads use a top-level "text" field, Ollama and Anthropic use
// "content", and OpenAI-compatible servers nest it under
// choices[0].message.content. Rather than duck-typing at every call
// site, all call sites go through this one function, which tries each
// known shape in order.
//
// Inputs:
//
//	raw - A decoded JSON object (map) or a raw JSON []byte / string.
//
// Outputs:
//
//	string - The extracted text, whitespace-trimmed.
//	error - Non-nil if no known shape matched.
func ExtractText(raw any) (string, error) {
	obj, err := toObject(raw)
	if err != nil {
		return "", err
	}
	for _, extract := range responseShapes {
		if text, ok := extract(obj); ok {
			return strings.TrimSpace(text), nil
		}
	}
	return "", fmt.Errorf("llm: response matches no known shape (keys: %v)", keysOf(obj))
}

// responseShapes are tried in order; first hit wins.
var responseShapes = []func(map[string]any) (string, bool){
	extractTextField,
	extractContentField,
	extractChoicesPath,
}

func extractTextField(obj map[string]any) (string, bool) {
	s, ok := obj["text"].(string)
	return s, ok && s != ""
}

func extractContentField(obj map[string]any) (string, bool) {
	s, ok := obj["content"].(string)
	return s, ok && s != ""
}

func extractChoicesPath(obj map[string]any) (string, bool) {
	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	first, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	message, ok := first["message"].(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := message["content"].(string)
	return s, ok
}

func toObject(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case map[string]any:
		return v, nil
	case []byte:
		var obj map[string]any
		if err := json.Unmarshal(v, &obj); err != nil {
			return nil, fmt.Errorf("llm: response is not a JSON object: %w", err)
		}
		return obj, nil
	case string:
		var obj map[string]any
		if err := json.Unmarshal([]byte(v), &obj); err != nil {
			return nil, fmt.Errorf("llm: response is not a JSON object: %w", err)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("llm: unsupported response type %T", raw)
	}
}

func keysOf(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	return keys
}
