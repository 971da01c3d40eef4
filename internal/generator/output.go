package generator

import (
	"regexp"
	"strings"
)

var answerLabel = regexp.MustCompile(`(?i)^\s*(?:final\s+)?answer\s*:\s*`)

var quotePairs = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"`", "`"},
	{"“", "”"},
	{"‘", "’"},
}

// ParseOutput reduces raw model output to the answer text: the first non-empty line
// outside code fences, without an "Answer:" label or wrapping quotes.
func ParseOutput(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		line = answerLabel.ReplaceAllString(line, "")
		line = unquote(strings.TrimSpace(line))
		if line != "" {
			return line
		}
	}
	return ""
}

func unquote(s string) string {
	for {
		trimmed := false
		for _, q := range quotePairs {
			if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
				s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
				trimmed = true
			}
		}
		if !trimmed {
			return s
		}
	}
}

// normalizeYesNo maps answers that open with yes or no onto "Yes" or "No".
func normalizeYesNo(s string) string {
	first := strings.ToLower(strings.Trim(strings.SplitN(s, " ", 2)[0], ".,!;:"))
	switch first {
	case "yes", "y", "true":
		return "Yes"
	case "no", "n", "false":
		return "No"
	}
	return s
}
