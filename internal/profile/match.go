package profile

import "strings"

// MatchOption picks the option that best corresponds to the candidates. Candidate
// groups are tried in order; within a group an exact case-insensitive match beats a
// substring match in either direction. It returns the option exactly as supplied.
func MatchOption(options []string, candidates [][]string) (string, bool) {
	for _, group := range candidates {
		for _, term := range group {
			if opt, ok := exactOption(options, term); ok {
				return opt, true
			}
		}
		for _, term := range group {
			if opt, ok := substringOption(options, term); ok {
				return opt, true
			}
		}
	}
	return "", false
}

// MatchText matches a single free-text value against options.
func MatchText(options []string, text string) (string, bool) {
	return MatchOption(options, [][]string{{text}})
}

func exactOption(options []string, term string) (string, bool) {
	t := norm(term)
	if t == "" {
		return "", false
	}
	for _, opt := range options {
		if norm(opt) == t {
			return opt, true
		}
	}
	return "", false
}

func substringOption(options []string, term string) (string, bool) {
	t := norm(term)
	if t == "" {
		return "", false
	}
	for _, opt := range options {
		o := norm(opt)
		if o == "" {
			continue
		}
		if strings.Contains(o, t) || strings.Contains(t, o) {
			return opt, true
		}
	}
	return "", false
}
