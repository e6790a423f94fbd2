package llm

import (
	"testing"
)

func TestExtractText_TextField(t *testing.T) {
	text, err := ExtractText(map[string]any{"text": "hello from gemini"})
	if err != nil {
		t.Fatalf("ExtractText returned error: %v", err)
	}
	if text != "hello from gemini" {
		t.Errorf("text = %q, want %q", text, "hello from gemini")
	}
}

func TestExtractText_ContentField(t *testing.T) {
	text, err := ExtractText(map[string]any{"content": "  hello from ollama\n"})
	if err != nil {
		t.Fatalf("ExtractText returned error: %v", err)
	}
	if text != "hello from ollama" {
		t.Errorf("text = %q, want trimmed content", text)
	}
}

func TestExtractText_ChoicesPath(t *testing.T) {
	raw := `{"choices":[{"message":{"role":"assistant","content":"hello from openai"}}]}`
	text, err := ExtractText(raw)
	if err != nil {
		t.Fatalf("ExtractText returned error: %v", err)
	}
	if text != "hello from openai" {
		t.Errorf("text = %q, want %q", text, "hello from openai")
	}
}

func TestExtractText_ShapePrecedence(t *testing.T) {
	// When several shapes are present, "text" wins.
	raw := map[string]any{
		"text":    "primary",
		"content": "secondary",
	}
	text, err := ExtractText(raw)
	if err != nil {
		t.Fatalf("ExtractText returned error: %v", err)
	}
	if text != "primary" {
		t.Errorf("text = %q, want %q", text, "primary")
	}
}

func TestExtractText_UnknownShape(t *testing.T) {
	if _, err := ExtractText(map[string]any{"unexpected": 1}); err == nil {
		t.Error("expected error for unknown response shape")
	}
	if _, err := ExtractText([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := ExtractText(42); err == nil {
		t.Error("expected error for unsupported type")
	}
}
