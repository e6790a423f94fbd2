// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package react

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Parsed is the structured decomposition of one model response.
type Parsed struct {
	Thought     string
	ActionName  string
	ActionInput any
	HasAction   bool
	Answer      string
	HasAnswer   bool
}

var (
	thoughtRe = regexp.MustCompile(`(?is)Thought:\s*(.*?)(?:\n\s*(?:Action|Answer):|$)`)
	actionRe  = regexp.MustCompile(`(?im)^\s*Action:\s*(\S.*?)\s*$`)
	inputRe   = regexp.MustCompile(`(?is)Action\s+Input:\s*(.*?)(?:\n\s*(?:Thought|Action|Observation|Answer):|$)`)
	answerRe  = regexp.MustCompile(`(?is)Answer:\s*(.*)$`)
)

// Parse decomposes a raw model response into thought, action and
// answer sections. It is a pure function: the same text always yields
// the same result, so re-parsing is harmless.
//
// Description:
//
//	The model is prompted to reply using labeled sections (Thought:,
//	Action:, Action Input:, Answer:). Parse tolerates any subset being
//	present. Action inputs are decoded as JSON when they look like an
//	object; otherwise the literal string is kept. A response with no
//	recognizable sections is treated as a bare thought rather than
//	rejected, so one sloppy response never kills a run.
//
// Inputs:
//   - text: raw model output.
//
// Outputs:
//   - Parsed: the extracted sections. Never errors.
func Parse(text string) Parsed {
	var p Parsed
	text = strings.TrimSpace(text)
	if text == "" {
		return p
	}

	if m := answerRe.FindStringSubmatch(text); m != nil {
		p.Answer = strings.TrimSpace(m[1])
		p.HasAnswer = true
	}
	if m := thoughtRe.FindStringSubmatch(text); m != nil {
		p.Thought = strings.TrimSpace(m[1])
	}
	if m := actionRe.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		// Models sometimes write "Action: none" when they have
		// nothing to do; that is not a real tool request.
		if !strings.EqualFold(name, "none") {
			p.ActionName = name
			p.HasAction = true
			p.ActionInput = parseActionInput(text)
		}
	}

	// No labeled sections at all: the whole response is the thought.
	if p.Thought == "" && !p.HasAction && !p.HasAnswer {
		p.Thought = text
	}
	return p
}

// parseActionInput extracts the Action Input section, preferring a
// balanced JSON object when one is present.
func parseActionInput(text string) any {
	m := inputRe.FindStringSubmatchIndex(text)
	if m == nil {
		return nil
	}
	raw := strings.TrimSpace(text[m[2]:m[3]])
	if raw == "" {
		return nil
	}

	// Regex section splitting can truncate a multi-line JSON object,
	// so re-scan from the opening brace with balance counting.
	if strings.HasPrefix(raw, "{") {
		if obj := balancedJSON(text[m[2]:]); obj != "" {
			var decoded map[string]any
			if err := json.Unmarshal([]byte(obj), &decoded); err == nil {
				return decoded
			}
		}
		// Fall through to the literal when the braces never close or
		// the content is not valid JSON.
	}
	return raw
}

// balancedJSON returns the first brace-balanced {...} span in s,
// honoring string literals and escapes, or "" when none closes.
func balancedJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
