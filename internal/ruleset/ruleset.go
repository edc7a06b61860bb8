package ruleset

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/gyeh/datextract/internal/calendar"
	"github.com/gyeh/datextract/internal/normalize"
)

// fourDigitYear marks expressions that require a full year; they are tried
// before the shorter, more ambiguous ones.
const fourDigitYear = `\d{4}`

// DateParser validates matched text against a layout under one locale's
// conventions. *calendar.Locale implements it.
type DateParser interface {
	TryParse(text, layout string) (calendar.Date, bool)
}

// Pattern is one compiled (expression, layouts) entry.
type Pattern struct {
	Regex   *regexp.Regexp
	Formats []string
	// Source is the expression as written in the definition.
	Source string
}

// RuleSet is one locale's compiled delimiter, ordinal and pattern
// configuration. It is immutable after Compile.
type RuleSet struct {
	Locale     string
	Delimiters string
	Ordinals   []string
	Patterns   []Pattern
	Parser     DateParser
}

// Cleanup returns the rule set's contribution to text normalization.
func (rs *RuleSet) Cleanup() normalize.Rules {
	return normalize.Rules{Delimiters: rs.Delimiters, Ordinals: rs.Ordinals}
}

// Compile turns a decoded definition into a RuleSet: it resolves the
// culture's calendar tables (with abbreviation dots stripped), compiles every
// expression case-insensitively and moves four-digit-year patterns to the
// front, keeping relative order otherwise.
func Compile(def *Definition) (*RuleSet, error) {
	if err := def.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedDefinition, err)
	}

	// Any well-formed tag resolves; only an ill-formed culture is rejected.
	loc, err := calendar.Lookup(def.Culture)
	if err != nil {
		return nil, fmt.Errorf("%w: culture %q: %s", ErrMalformedDefinition, def.Culture, err)
	}

	rs := &RuleSet{
		Locale:   loc.Name(),
		Ordinals: slices.Clone(def.Ordinals),
		Parser:   loc.StripAbbreviationDots(),
	}
	if def.Delimiters != nil {
		rs.Delimiters = *def.Delimiters
	}

	for i, p := range def.Patterns {
		re, err := regexp.Compile("(?i)" + p.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: %s patterns[%d]: %s", ErrMalformedDefinition, def.Culture, i, err)
		}
		rs.Patterns = append(rs.Patterns, Pattern{
			Regex:   re,
			Formats: slices.Clone([]string(p.Format)),
			Source:  p.Regex,
		})
	}
	SortPatterns(rs.Patterns)
	return rs, nil
}

// SortPatterns stably moves patterns requiring a four-digit year ahead of
// the rest.
func SortPatterns(ps []Pattern) {
	slices.SortStableFunc(ps, func(a, b Pattern) int {
		return rank(a) - rank(b)
	})
}

func rank(p Pattern) int {
	if strings.Contains(p.Source, fourDigitYear) {
		return 0
	}
	return 1
}
