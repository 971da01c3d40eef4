package entity

import (
	"net/url"
	"sort"
	"strings"
	"unicode"

	"intake/internal/domain"
)

const (
	maxDescriptionRunes = 300
	maxFallbackRunes    = 120
	minPhoneDigits      = 10
	maxPhoneDigits      = 15
)

// pair is one primary/secondary match inside a section plus the text that follows
// it up to the next accepted match or the rule window, whichever is shorter.
type pair struct {
	primary   string
	secondary string
	window    string
	after     string
}

// pairs runs the section pattern over a span. accept, when set, drops matches
// before windows are clipped.
func (r *Rules) pairs(span Span, rule *SectionRule, accept func(primary string) bool) []pair {
	if rule.pattern == nil {
		return nil
	}
	text := span.Text
	pi := rule.pattern.SubexpIndex("primary")
	si := rule.pattern.SubexpIndex("secondary")

	type hit struct {
		start, end         int
		primary, secondary string
	}
	var hits []hit
	for _, m := range rule.pattern.FindAllStringSubmatchIndex(text, -1) {
		h := hit{start: m[0], end: m[1], primary: strings.TrimSpace(text[m[2*pi]:m[2*pi+1]])}
		if si >= 0 && m[2*si] >= 0 {
			h.secondary = strings.TrimSpace(text[m[2*si]:m[2*si+1]])
		}
		if h.primary == "" || (accept != nil && !accept(h.primary)) {
			continue
		}
		hits = append(hits, h)
	}

	out := make([]pair, 0, len(hits))
	for i, h := range hits {
		end := min(h.end+r.Window, len(text))
		if i+1 < len(hits) && hits[i+1].start < end {
			end = hits[i+1].start
		}
		out = append(out, pair{
			primary:   h.primary,
			secondary: h.secondary,
			window:    text[h.start:end],
			after:     text[h.end:end],
		})
	}
	return out
}

// fallbackLines turns each body line of a header-mode section into a primary value.
func fallbackLines(span Span) []pair {
	if !span.Header {
		return nil
	}
	var out []pair
	for _, line := range strings.Split(span.Text, "\n") {
		line = stripBullet(line)
		if line == "" {
			continue
		}
		out = append(out, pair{primary: truncateRunes(line, maxFallbackRunes), window: line})
	}
	return out
}

func (r *Rules) education(span Span) []domain.Education {
	rule := r.Sections[SectionEducation]
	var out []domain.Education
	for _, p := range r.pairs(span, rule, nil) {
		degree, institution := p.primary, p.secondary
		if !matches(rule.primaryRe, degree) && matches(rule.primaryRe, institution) {
			degree, institution = institution, degree
		}
		if rule.primaryRe != nil && !matches(rule.primaryRe, degree) {
			// an institution line following a bare degree line
			if n := len(out); n > 0 && out[n-1].Institution == "" {
				out[n-1].Institution = p.primary
				if out[n-1].Year == "" {
					out[n-1].Year = r.lastYear(p.window)
				}
			}
			continue
		}
		d, field := splitDegree(degree)
		out = append(out, domain.Education{
			Degree:      d,
			Field:       field,
			Institution: institution,
			Year:        r.lastYear(p.window),
		})
		if len(out) == rule.MaxEntries {
			break
		}
	}
	return emptyIfNil(out)
}

func (r *Rules) experience(span Span) []domain.Experience {
	rule := r.Sections[SectionExperience]
	var out []domain.Experience
	accept := func(primary string) bool { return !rule.skips(primary) }
	for _, p := range r.pairs(span, rule, accept) {
		if p.secondary == "" {
			continue
		}
		out = append(out, domain.Experience{
			Title:       p.primary,
			Company:     p.secondary,
			Duration:    r.duration.FindString(p.window),
			Description: r.describe(p.after),
		})
		if len(out) == rule.MaxEntries {
			break
		}
	}
	return emptyIfNil(out)
}

func (r *Rules) certifications(span Span) []domain.Certification {
	rule := r.Sections[SectionCertifications]
	found := r.pairs(span, rule, func(primary string) bool {
		return rule.primaryRe == nil || matches(rule.primaryRe, primary)
	})
	if len(found) == 0 && rule.LineFallback {
		found = fallbackLines(span)
	}

	var out []domain.Certification
	for _, p := range found {
		out = append(out, domain.Certification{
			Name:   p.primary,
			Issuer: p.secondary,
			Year:   r.lastYear(p.window),
		})
		if len(out) == rule.MaxEntries {
			break
		}
	}
	return emptyIfNil(out)
}

func (r *Rules) projects(span Span) []domain.Project {
	rule := r.Sections[SectionProjects]
	var out []domain.Project
	for _, p := range r.describedPairs(span, rule) {
		out = append(out, domain.Project{Name: p.primary, Description: p.secondary})
		if len(out) == rule.MaxEntries {
			break
		}
	}
	return emptyIfNil(out)
}

func (r *Rules) achievements(span Span) []domain.Achievement {
	rule := r.Sections[SectionAchievements]
	var out []domain.Achievement
	for _, p := range r.describedPairs(span, rule) {
		out = append(out, domain.Achievement{Title: p.primary, Description: p.secondary})
		if len(out) == rule.MaxEntries {
			break
		}
	}
	return emptyIfNil(out)
}

// describedPairs returns name/description pairs, using the following lines as the
// description when the match line carries none.
func (r *Rules) describedPairs(span Span, rule *SectionRule) []pair {
	found := r.pairs(span, rule, nil)
	if len(found) == 0 && rule.LineFallback {
		found = fallbackLines(span)
	}
	for i := range found {
		if found[i].secondary == "" {
			found[i].secondary = r.describe(found[i].after)
		} else {
			found[i].secondary = truncateRunes(found[i].secondary, maxDescriptionRunes)
		}
	}
	return found
}

// describe collects the lines following a match line as a one-line description.
func (r *Rules) describe(after string) string {
	lines := strings.Split(after, "\n")
	if len(lines) <= 1 {
		return ""
	}
	var parts []string
	for _, line := range lines[1:] {
		line = stripBullet(line)
		if line == "" {
			continue
		}
		if strings.TrimSpace(r.duration.ReplaceAllString(line, "")) == "" {
			continue
		}
		parts = append(parts, line)
	}
	return truncateRunes(strings.Join(parts, " "), maxDescriptionRunes)
}

func (r *Rules) lastYear(s string) string {
	years := r.year.FindAllString(s, -1)
	if len(years) == 0 {
		return ""
	}
	return years[len(years)-1]
}

// splitDegree separates "Bachelor of Science in Computer Science" into degree and field.
func splitDegree(s string) (string, string) {
	if i := strings.Index(s, " in "); i > 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+4:])
	}
	return s, ""
}

// vocabulary returns canonical vocabulary terms found in text, ordered by first occurrence.
func vocabulary(text string, terms []term, limit int) []string {
	first := make(map[string]int)
	for _, t := range terms {
		loc := t.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		pos := loc[2]
		if prev, ok := first[t.canonical]; !ok || pos < prev {
			first[t.canonical] = pos
		}
	}

	out := make([]string, 0, len(first))
	for name := range first {
		out = append(out, name)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if first[out[i]] != first[out[j]] {
			return first[out[i]] < first[out[j]]
		}
		return out[i] < out[j]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *Rules) personalInfo(lines []string, text string) domain.PersonalInfo {
	var info domain.PersonalInfo

	for i, line := range lines {
		if i >= r.NameLines {
			break
		}
		line = strings.TrimSpace(line)
		if r.name.MatchString(line) && !matches(r.nameExclusion, line) && !matches(r.anyKeyword, line) {
			info.Name = line
			break
		}
	}

	info.Email = r.email.FindString(text)

	for _, candidate := range r.phone.FindAllString(text, -1) {
		digits := countDigits(candidate)
		if digits >= minPhoneDigits && digits <= maxPhoneDigits {
			info.Phone = strings.TrimSpace(candidate)
			break
		}
	}

	info.Location = r.findLocation(lines)
	return info
}

func (r *Rules) findLocation(lines []string) string {
	for _, line := range lines {
		if m := r.locationLabel.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	for i, line := range lines {
		if i >= r.LocationLines {
			break
		}
		for _, seg := range strings.FieldsFunc(line, func(c rune) bool { return c == '|' || c == '•' || c == '·' }) {
			seg = strings.TrimSpace(seg)
			if r.location.MatchString(seg) && !matches(r.anyKeyword, seg) {
				return seg
			}
		}
	}
	return ""
}

func (r *Rules) contactInfo(text string) domain.ContactInfo {
	var c domain.ContactInfo
	c.LinkedIn = trimLink(r.linkedin.FindString(text))
	c.GitHub = trimLink(r.github.FindString(text))

	for _, candidate := range r.website.FindAllString(text, -1) {
		link := trimLink(candidate)
		host := link
		if u, err := url.Parse(ensureScheme(link)); err == nil {
			host = u.Host
		}
		host = strings.ToLower(host)
		if strings.Contains(host, "linkedin.com") || strings.Contains(host, "github.com") {
			continue
		}
		c.Website = link
		break
	}
	return c
}

func ensureScheme(link string) string {
	if strings.HasPrefix(strings.ToLower(link), "http") {
		return link
	}
	return "https://" + link
}

func trimLink(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".,;:)/")
}

func stripBullet(line string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•*·>"))
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
