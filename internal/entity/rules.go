package entity

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Section names used in the rule table.
const (
	SectionEducation      = "education"
	SectionExperience     = "experience"
	SectionSkills         = "skills"
	SectionCertifications = "certifications"
	SectionLanguages      = "languages"
	SectionProjects       = "projects"
	SectionAchievements   = "achievements"
	SectionObjective      = "objective"
	SectionSummary        = "summary"
)

var requiredSections = []string{
	SectionEducation, SectionExperience, SectionSkills, SectionCertifications,
	SectionLanguages, SectionProjects, SectionAchievements, SectionObjective, SectionSummary,
}

// SectionRule describes how to locate a section and pull entries out of it.
type SectionRule struct {
	Keywords        []string `yaml:"keywords"`
	Exclude         []string `yaml:"exclude"`
	Next            []string `yaml:"next"`
	MaxEntries      int      `yaml:"max_entries"`
	Pattern         string   `yaml:"pattern"`
	PrimaryKeywords []string `yaml:"primary_keywords"`
	LineFallback    bool     `yaml:"line_fallback"`
	HeaderOnly      bool     `yaml:"header_only"`
	SkipLeading     []string `yaml:"skip_leading"`

	skipLeading map[string]struct{}
	keywordRe   *regexp.Regexp
	excludeRe   *regexp.Regexp
	nextRe      *regexp.Regexp
	pattern     *regexp.Regexp
	primaryRe   *regexp.Regexp
}

// PatternRules holds the whole-text field patterns.
type PatternRules struct {
	Email         string `yaml:"email"`
	Phone         string `yaml:"phone"`
	LinkedIn      string `yaml:"linkedin"`
	GitHub        string `yaml:"github"`
	Website       string `yaml:"website"`
	LocationLabel string `yaml:"location_label"`
	Location      string `yaml:"location"`
	Name          string `yaml:"name"`
	Year          string `yaml:"year"`
	Duration      string `yaml:"duration"`
}

// VocabEntry is a canonical term and the spellings that map to it.
type VocabEntry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// KindRule maps file-name hints to a document kind and the section its body belongs to.
type KindRule struct {
	FileNames []string `yaml:"file_names"`
	Section   string   `yaml:"section"`
}

// Rules is the compiled rule table.
type Rules struct {
	HeaderMaxWords int                     `yaml:"header_max_words"`
	Window         int                     `yaml:"window"`
	NameLines      int                     `yaml:"name_lines"`
	LocationLines  int                     `yaml:"location_lines"`
	Phrase         string                  `yaml:"phrase"`
	Sections       map[string]*SectionRule `yaml:"sections"`
	Patterns       PatternRules            `yaml:"patterns"`
	NameExclusions []string                `yaml:"name_exclusions"`
	Kinds          map[string]KindRule     `yaml:"kinds"`
	Skills         []VocabEntry            `yaml:"skills"`
	SkillPhrases   []VocabEntry            `yaml:"skill_phrases"`
	Languages      []VocabEntry            `yaml:"languages"`

	email, phone, linkedin, github, website *regexp.Regexp
	locationLabel, location, name           *regexp.Regexp
	year, duration                          *regexp.Regexp
	nameExclusion, anyKeyword               *regexp.Regexp
	skillTerms, languageTerms               []term
	kindNames                               []string
}

// term is one compiled vocabulary alias.
type term struct {
	canonical string
	re        *regexp.Regexp
}

var (
	defaultOnce  sync.Once
	defaultRules *Rules
	defaultErr   error
)

// DefaultRules returns the embedded rule table, compiled once.
func DefaultRules() (*Rules, error) {
	defaultOnce.Do(func() {
		defaultRules, defaultErr = LoadRules(defaultRulesYAML)
	})
	return defaultRules, defaultErr
}

// LoadRules parses and compiles a YAML rule table.
func LoadRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if err := r.compile(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Section returns the rule for a section name.
func (r *Rules) Section(name string) *SectionRule {
	return r.Sections[name]
}

func (r *Rules) compile() error {
	if r.HeaderMaxWords <= 0 {
		r.HeaderMaxWords = 4
	}
	if r.Window <= 0 {
		r.Window = 250
	}
	if r.NameLines <= 0 {
		r.NameLines = 5
	}
	if r.LocationLines <= 0 {
		r.LocationLines = 10
	}
	if r.Phrase == "" {
		return fmt.Errorf("rules: phrase is required")
	}

	var all []string
	for _, name := range requiredSections {
		s, ok := r.Sections[name]
		if !ok || s == nil {
			return fmt.Errorf("rules: section %q is missing", name)
		}
		if len(s.Keywords) == 0 {
			return fmt.Errorf("rules: section %q has no keywords", name)
		}
		s.keywordRe = keywordRegexp(s.Keywords)
		s.excludeRe = keywordRegexp(s.Exclude)
		s.nextRe = keywordRegexp(s.Next)
		s.primaryRe = keywordRegexp(s.PrimaryKeywords)
		s.skipLeading = make(map[string]struct{}, len(s.SkipLeading))
		for _, w := range s.SkipLeading {
			s.skipLeading[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
		}
		if s.Pattern != "" {
			re, err := regexp.Compile(strings.ReplaceAll(s.Pattern, "{PHRASE}", r.Phrase))
			if err != nil {
				return fmt.Errorf("rules: section %q pattern: %w", name, err)
			}
			if re.SubexpIndex("primary") < 0 {
				return fmt.Errorf("rules: section %q pattern has no primary group", name)
			}
			s.pattern = re
		}
		all = append(all, s.Keywords...)
	}
	r.anyKeyword = keywordRegexp(all)
	r.nameExclusion = keywordRegexp(r.NameExclusions)

	patterns := []struct {
		dst  **regexp.Regexp
		name string
		src  string
	}{
		{&r.email, "email", r.Patterns.Email},
		{&r.phone, "phone", r.Patterns.Phone},
		{&r.linkedin, "linkedin", r.Patterns.LinkedIn},
		{&r.github, "github", r.Patterns.GitHub},
		{&r.website, "website", r.Patterns.Website},
		{&r.locationLabel, "location_label", r.Patterns.LocationLabel},
		{&r.location, "location", r.Patterns.Location},
		{&r.name, "name", r.Patterns.Name},
		{&r.year, "year", r.Patterns.Year},
		{&r.duration, "duration", r.Patterns.Duration},
	}
	for _, p := range patterns {
		if p.src == "" {
			return fmt.Errorf("rules: pattern %q is required", p.name)
		}
		re, err := regexp.Compile(p.src)
		if err != nil {
			return fmt.Errorf("rules: pattern %q: %w", p.name, err)
		}
		*p.dst = re
	}

	r.skillTerms = compileVocab(append(append([]VocabEntry{}, r.Skills...), r.SkillPhrases...))
	r.languageTerms = compileVocab(r.Languages)

	for kind, k := range r.Kinds {
		if _, ok := r.Sections[k.Section]; !ok {
			return fmt.Errorf("rules: kind %q refers to unknown section %q", kind, k.Section)
		}
		r.kindNames = append(r.kindNames, kind)
	}
	sort.Strings(r.kindNames)

	return nil
}

// keywordRegexp matches any keyword as a case-insensitive word prefix.
func keywordRegexp(keywords []string) *regexp.Regexp {
	if len(keywords) == 0 {
		return nil
	}
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	return regexp.MustCompile(`(?i)(?:^|[^\pL\pN])(?:` + strings.Join(quoted, "|") + `)`)
}

// compileVocab builds one matcher per alias. Aliases of three characters or fewer
// match case-sensitively so "Go" does not fire on the verb.
func compileVocab(entries []VocabEntry) []term {
	var terms []term
	for _, e := range entries {
		aliases := e.Aliases
		if len(aliases) == 0 {
			aliases = []string{e.Name}
		}
		for _, a := range aliases {
			flags := "(?i)"
			if len([]rune(a)) <= 3 {
				flags = ""
			}
			re := regexp.MustCompile(flags + `(?:^|[^A-Za-z0-9+#.])(` + regexp.QuoteMeta(a) + `)(?:$|[^A-Za-z0-9+#&])`)
			terms = append(terms, term{canonical: e.Name, re: re})
		}
	}
	return terms
}

// skips reports whether a matched phrase starts with one of the rule's skip_leading words.
func (s *SectionRule) skips(phrase string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(phrase), " ")
	_, ok := s.skipLeading[strings.ToLower(first)]
	return ok
}

func matches(re *regexp.Regexp, s string) bool {
	return re != nil && re.MatchString(s)
}
