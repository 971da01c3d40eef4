package entity

import (
	"strings"
)

// Span is the located text of one section.
type Span struct {
	// Header is true when the section was found through a header-like line;
	// in that case the header line itself is not part of Text, only what follows
	// a colon on it.
	Header bool
	Text   string
}

// FindSection locates the span for a section. The start line is the first
// header-like line containing a section keyword, else the first line containing
// one. The span runs to the next header-like line containing a next-section
// keyword, or to the end of text. Header-only sections never use the fallback.
func (r *Rules) FindSection(lines []string, name string) (Span, bool) {
	rule := r.Sections[name]
	if rule == nil {
		return Span{}, false
	}

	start, header := -1, false
	for i, line := range lines {
		if r.isHeader(line, rule) {
			start, header = i, true
			break
		}
	}
	if start < 0 && !rule.HeaderOnly {
		for i, line := range lines {
			if matches(rule.keywordRe, line) && !matches(rule.excludeRe, line) {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return Span{}, false
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if r.endsSection(lines[i], rule, header) {
			end = i
			break
		}
	}

	if !header {
		return Span{Text: strings.Join(lines[start:end], "\n")}, true
	}

	body := lines[start+1 : end]
	if rest := headerRest(lines[start]); rest != "" {
		body = append([]string{rest}, body...)
	}
	return Span{Header: true, Text: strings.Join(body, "\n")}, true
}

// WholeText treats the entire document as the span of a section.
func WholeText(lines []string) Span {
	return Span{Text: strings.Join(lines, "\n")}
}

func (r *Rules) isHeader(line string, rule *SectionRule) bool {
	label := headerLabel(line)
	if label == "" || len(strings.Fields(label)) > r.HeaderMaxWords {
		return false
	}
	return matches(rule.keywordRe, label) && !matches(rule.excludeRe, label)
}

func (r *Rules) endsSection(line string, rule *SectionRule, header bool) bool {
	if header {
		label := headerLabel(line)
		if label == "" || len(strings.Fields(label)) > r.HeaderMaxWords {
			return false
		}
		// "Programming Languages" stays inside a skills section
		return matches(rule.nextRe, label) && !matches(rule.keywordRe, label)
	}
	return matches(rule.nextRe, line)
}

// headerLabel is the part of a line that could be a section title: text before
// a colon, without bullets or markdown markers.
func headerLabel(line string) string {
	line = strings.TrimSpace(line)
	if i := strings.Index(line, ":"); i >= 0 {
		line = line[:i]
	}
	line = strings.Trim(line, "#*-•·=_ \t")
	return strings.TrimSpace(line)
}

func headerRest(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}
