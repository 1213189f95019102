package dialect

import (
	"regexp"
	"strings"

	"github.com/pevans/seminarfed/extract"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Config defines how to find sections and topics in one website's markup.
type Config struct {
	// HeaderSelector finds section headers, e.g. "h2".
	HeaderSelector string `yaml:"header_selector" json:"header_selector"`
	// RequiredAttr, when set, names an attribute a header must carry with a
	// non-empty value to count as a section.
	RequiredAttr string `yaml:"required_attr" json:"required_attr,omitempty"`
	// Wrappers lists child paths ("span > span") wrapping the visible text.
	Wrappers []string `yaml:"wrappers" json:"wrappers,omitempty"`
	// StripDuration removes a trailing "(20 min)" from section names.
	StripDuration bool `yaml:"strip_duration" json:"strip_duration"`
	// TitleCase capitalizes section names, except Connectives and acronyms.
	TitleCase   bool     `yaml:"title_case" json:"title_case"`
	Connectives []string `yaml:"connectives" json:"connectives,omitempty"`
	// DeepListSearch lets the list locator look inside wrapper siblings.
	DeepListSearch bool `yaml:"deep_list_search" json:"deep_list_search"`

	// Name patterns, matched case-insensitively as substrings of the
	// normalized section name.
	Skip              []string `yaml:"skip" json:"skip,omitempty"`
	NonVotable        []string `yaml:"non_votable" json:"non_votable,omitempty"`
	NonPayable        []string `yaml:"non_payable" json:"non_payable,omitempty"`
	PublicSubmissions []string `yaml:"public_submissions" json:"public_submissions,omitempty"`
}

// Overrides replaces parts of a dialect's default Config. Nil fields keep
// the default.
type Overrides struct {
	HeaderSelector    *string  `yaml:"header_selector"`
	RequiredAttr      *string  `yaml:"required_attr"`
	Wrappers          []string `yaml:"wrappers"`
	StripDuration     *bool    `yaml:"strip_duration"`
	TitleCase         *bool    `yaml:"title_case"`
	Connectives       []string `yaml:"connectives"`
	DeepListSearch    *bool    `yaml:"deep_list_search"`
	Skip              []string `yaml:"skip"`
	NonVotable        []string `yaml:"non_votable"`
	NonPayable        []string `yaml:"non_payable"`
	PublicSubmissions []string `yaml:"public_submissions"`
}

// Apply returns a copy of c with the overrides applied.
func (o Overrides) Apply(c Config) Config {
	if o.HeaderSelector != nil {
		c.HeaderSelector = *o.HeaderSelector
	}
	if o.RequiredAttr != nil {
		c.RequiredAttr = *o.RequiredAttr
	}
	if o.Wrappers != nil {
		c.Wrappers = o.Wrappers
	}
	if o.StripDuration != nil {
		c.StripDuration = *o.StripDuration
	}
	if o.TitleCase != nil {
		c.TitleCase = *o.TitleCase
	}
	if o.Connectives != nil {
		c.Connectives = o.Connectives
	}
	if o.DeepListSearch != nil {
		c.DeepListSearch = *o.DeepListSearch
	}
	if o.Skip != nil {
		c.Skip = o.Skip
	}
	if o.NonVotable != nil {
		c.NonVotable = o.NonVotable
	}
	if o.NonPayable != nil {
		c.NonPayable = o.NonPayable
	}
	if o.PublicSubmissions != nil {
		c.PublicSubmissions = o.PublicSubmissions
	}
	return c
}

var durationSuffix = regexp.MustCompile(`(?i)\s*\(\s*\d+\s*(?:m|mins?|minutes?)\.?\s*\)\s*$`)

// NormalizeName turns raw header text into a section display name.
func (c Config) NormalizeName(raw string) string {
	name := extract.NormalizeSpace(raw)
	if c.StripDuration {
		name = strings.TrimSpace(durationSuffix.ReplaceAllString(name, ""))
	}
	if c.TitleCase {
		name = titleCase(name, c.Connectives)
	}
	return name
}

// titleCase capitalizes every word of name except connectives (unless they
// open the name) and words that are already all upper case, like "LN".
func titleCase(name string, connectives []string) string {
	caser := cases.Title(language.English)
	words := strings.Fields(name)
	for i, word := range words {
		switch {
		case i > 0 && containsFold(connectives, word):
			words[i] = strings.ToLower(word)
		case isAcronym(word):
		default:
			words[i] = caser.String(word)
		}
	}
	return strings.Join(words, " ")
}

func isAcronym(word string) bool {
	letters := 0
	for _, r := range word {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			letters++
		}
	}
	return letters >= 2
}

func containsFold(list []string, word string) bool {
	for _, item := range list {
		if strings.EqualFold(item, word) {
			return true
		}
	}
	return false
}

// match returns the first pattern found in name, ignoring case.
func match(name string, patterns []string) (string, bool) {
	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		p := strings.ToLower(strings.TrimSpace(pattern))
		if p != "" && strings.Contains(lower, p) {
			return pattern, true
		}
	}
	return "", false
}
