// Package extractor finds calendar dates in free-form text using one or more
// locale rule sets applied in precedence order.
//
// An Extractor is built once and is safe for concurrent use:
//
//	ex, err := extractor.New([]string{"en-US", "nb-NO"})
//	if err != nil {
//		return err
//	}
//	dates := ex.Extract("Invoice dated March 3rd, 2025, due 04.04.2025")
package extractor

import (
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/gyeh/datextract/internal/calendar"
	"github.com/gyeh/datextract/internal/normalize"
	"github.com/gyeh/datextract/internal/ruleset"
)

// Date is a calendar date without time of day.
type Date = calendar.Date

// Construction errors. Test with errors.Is.
var (
	ErrInvalidConfig       = ruleset.ErrInvalidConfig
	ErrRuleSetNotFound     = ruleset.ErrRuleSetNotFound
	ErrMalformedDefinition = ruleset.ErrMalformedDefinition
)

// Match is one recognized date together with where it came from.
type Match struct {
	Date Date
	// RuleSet indexes the producing rule set in precedence order, matching
	// Locales(). Two rule sets may share a locale.
	RuleSet int
	// Locale is the rule set that produced the date.
	Locale string
	// Pattern indexes the rule set's patterns after four-digit-year reordering.
	Pattern int
	// Layout is the format that parsed Text.
	Layout string
	// Offset and Length locate Text in the canonical text, in bytes.
	Offset int
	Length int
	Text   string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for construction summaries (debug) and
// discarded matches (trace). The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

// Source yields rule sets in precedence order.
type Source func() ([]*ruleset.RuleSet, error)

// Locales is a Source of built-in rule sets.
func Locales(ids ...string) Source {
	return func() ([]*ruleset.RuleSet, error) {
		sets := make([]*ruleset.RuleSet, 0, len(ids))
		for _, id := range ids {
			rs, err := ruleset.Builtin(id)
			if err != nil {
				return nil, err
			}
			sets = append(sets, rs)
		}
		return sets, nil
	}
}

// Definitions is a Source of JSON definition documents.
func Definitions(docs ...string) Source {
	return func() ([]*ruleset.RuleSet, error) {
		sets := make([]*ruleset.RuleSet, 0, len(docs))
		for i, doc := range docs {
			def, err := ruleset.ParseJSON([]byte(doc))
			if err != nil {
				return nil, fmt.Errorf("definition %d: %w", i, err)
			}
			rs, err := ruleset.Compile(def)
			if err != nil {
				return nil, fmt.Errorf("definition %d: %w", i, err)
			}
			sets = append(sets, rs)
		}
		return sets, nil
	}
}

// Files is a Source of definition files; .yaml and .yml are read as YAML,
// everything else as JSON.
func Files(paths ...string) Source {
	return func() ([]*ruleset.RuleSet, error) {
		sets := make([]*ruleset.RuleSet, 0, len(paths))
		for _, p := range paths {
			rs, err := ruleset.LoadFile(p)
			if err != nil {
				return nil, err
			}
			sets = append(sets, rs)
		}
		return sets, nil
	}
}

// Dir is a Source of every definition file under fsys, in lexical order.
func Dir(fsys fs.FS) Source {
	return func() ([]*ruleset.RuleSet, error) {
		return ruleset.LoadDir(fsys)
	}
}

// Extractor recognizes dates under a fixed, ordered list of rule sets.
type Extractor struct {
	sets []*ruleset.RuleSet
	text *normalize.Text
	log  zerolog.Logger
}

// New builds an Extractor from built-in rule sets; locales[0] has the
// highest precedence.
func New(locales []string, opts ...Option) (*Extractor, error) {
	if len(locales) == 0 {
		return nil, fmt.Errorf("%w: no locales given", ErrInvalidConfig)
	}
	return NewFromSources([]Source{Locales(locales...)}, opts...)
}

// NewFromDefinitions builds an Extractor from JSON definition documents;
// defs[0] has the highest precedence.
func NewFromDefinitions(defs []string, opts ...Option) (*Extractor, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no definitions given", ErrInvalidConfig)
	}
	return NewFromSources([]Source{Definitions(defs...)}, opts...)
}

// NewFromSources builds an Extractor from several sources, concatenating
// their rule sets in order.
func NewFromSources(srcs []Source, opts ...Option) (*Extractor, error) {
	var sets []*ruleset.RuleSet
	for _, src := range srcs {
		got, err := src()
		if err != nil {
			return nil, err
		}
		sets = append(sets, got...)
	}
	return build(sets, opts...)
}

func build(sets []*ruleset.RuleSet, opts ...Option) (*Extractor, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: no rule sets", ErrInvalidConfig)
	}

	e := &Extractor{sets: sets, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}

	rules := make([]normalize.Rules, len(sets))
	for i, rs := range sets {
		rules[i] = rs.Cleanup()
	}
	e.text = normalize.NewText(normalize.Merge(rules...))

	if e.log.GetLevel() <= zerolog.DebugLevel {
		for i, rs := range sets {
			e.log.Debug().
				Int("precedence", i).
				Str("locale", rs.Locale).
				Int("patterns", len(rs.Patterns)).
				Msg("rule set loaded")
		}
		merged := e.text.Rules()
		e.log.Debug().
			Str("delimiters", merged.Delimiters).
			Strs("ordinals", merged.Ordinals).
			Bool("raw_mode", e.text.RawMode()).
			Msg("normalizer built")
	}
	return e, nil
}

// Locales returns the rule-set locales in precedence order.
func (e *Extractor) Locales() []string {
	out := make([]string, len(e.sets))
	for i, rs := range e.sets {
		out[i] = rs.Locale
	}
	return out
}

// Normalize returns the canonical text that patterns are matched against.
func (e *Extractor) Normalize(raw string) string {
	return e.text.Normalize(raw)
}

// Extract returns the dates found in raw, ordered by rule-set precedence,
// then pattern, then position. Equal dates from different places in the
// text are all returned.
func (e *Extractor) Extract(raw string) []Date {
	ms := e.ExtractMatches(raw)
	dates := make([]Date, len(ms))
	for i, m := range ms {
		dates[i] = m.Date
	}
	return dates
}

// ExtractMatches is Extract with provenance for every date.
func (e *Extractor) ExtractMatches(raw string) []Match {
	canon := e.text.Normalize(raw)
	if canon == "" {
		return nil
	}

	var (
		consumed spans
		out      []Match
	)
	for ri, rs := range e.sets {
		for pi, p := range rs.Patterns {
			for _, loc := range p.Regex.FindAllStringIndex(canon, -1) {
				sp := span{start: loc[0], end: loc[1]}
				text := canon[sp.start:sp.end]
				if consumed.overlaps(sp) {
					e.log.Trace().Str("locale", rs.Locale).Int("pattern", pi).Str("text", text).Msg("match overlaps a consumed span")
					continue
				}
				d, layout, ok := tryLayouts(rs.Parser, text, p.Formats)
				if !ok {
					e.log.Trace().Str("locale", rs.Locale).Int("pattern", pi).Str("text", text).Msg("match is not a valid date")
					continue
				}
				consumed = append(consumed, sp)
				out = append(out, Match{
					Date:    d,
					RuleSet: ri,
					Locale:  rs.Locale,
					Pattern: pi,
					Layout:  layout,
					Offset:  sp.start,
					Length:  sp.end - sp.start,
					Text:    text,
				})
			}
		}
	}
	return out
}

// tryLayouts returns the date from the first layout that parses text.
func tryLayouts(p ruleset.DateParser, text string, layouts []string) (Date, string, bool) {
	for _, layout := range layouts {
		if d, ok := p.TryParse(text, layout); ok {
			return d, layout, true
		}
	}
	return Date{}, "", false
}

// span is a half-open byte range of the canonical text.
type span struct{ start, end int }

type spans []span

// overlaps reports whether s shares a position with any recorded span.
func (ss spans) overlaps(s span) bool {
	for _, c := range ss {
		if s.start < c.end && c.start < s.end {
			return true
		}
	}
	return false
}
