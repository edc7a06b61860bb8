package calendar

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ErrUnknownLocale is returned when a locale identifier is not a well-formed
// language tag.
var ErrUnknownLocale = errors.New("calendar: unknown locale")

const defaultTwoDigitYearMax = 2049

// invariantTables names the built-in table used when nothing closer exists.
const invariantTables = "en-US"

//go:embed locales/*.yaml
var localeFiles embed.FS

// tableFile is the on-disk YAML structure of one locale's calendar tables.
// Month arrays carry 13 entries; the last one is the "no month" slot used by
// 13-month calendars and is always empty for Gregorian locales.
type tableFile struct {
	Name                          string   `yaml:"name"`
	DateSeparator                 string   `yaml:"date_separator"`
	TimeSeparator                 string   `yaml:"time_separator"`
	TwoDigitYearMax               int      `yaml:"two_digit_year_max"`
	AMDesignator                  string   `yaml:"am_designator"`
	PMDesignator                  string   `yaml:"pm_designator"`
	MonthNames                    []string `yaml:"month_names"`
	AbbreviatedMonthNames         []string `yaml:"abbreviated_month_names"`
	MonthGenitiveNames            []string `yaml:"month_genitive_names"`
	AbbreviatedMonthGenitiveNames []string `yaml:"abbreviated_month_genitive_names"`
	DayNames                      []string `yaml:"day_names"`
	AbbreviatedDayNames           []string `yaml:"abbreviated_day_names"`
}

// Locale holds the date conventions of one culture: month and day names,
// separators, and the two-digit-year pivot. All names are stored lowercased.
// A Locale is immutable and safe for concurrent use.
type Locale struct {
	name            string
	tables          string
	dateSep         string
	timeSep         string
	twoDigitYearMax int
	am, pm          string

	months        [13]string
	abbrMonths    [13]string
	genMonths     [13]string
	abbrGenMonths [13]string
	days          [7]string
	abbrDays      [7]string
}

var (
	loadOnce sync.Once
	loadErr  error
	registry map[string]*Locale
)

func load() {
	registry = make(map[string]*Locale)
	entries, err := fs.ReadDir(localeFiles, "locales")
	if err != nil {
		loadErr = fmt.Errorf("read locale tables: %w", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(localeFiles, "locales/"+e.Name())
		if err != nil {
			loadErr = fmt.Errorf("read locale table %s: %w", e.Name(), err)
			return
		}
		loc, err := parseTable(data)
		if err != nil {
			loadErr = fmt.Errorf("locale table %s: %w", e.Name(), err)
			return
		}
		registry[loc.name] = loc
	}
}

func parseTable(data []byte) (*Locale, error) {
	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	tag, err := language.Parse(tf.Name)
	if err != nil {
		return nil, fmt.Errorf("name %q: %w", tf.Name, err)
	}
	if len(tf.MonthNames) < 12 || len(tf.AbbreviatedMonthNames) < 12 {
		return nil, fmt.Errorf("need 12 month names, got %d/%d", len(tf.MonthNames), len(tf.AbbreviatedMonthNames))
	}
	if len(tf.DayNames) != 7 || len(tf.AbbreviatedDayNames) != 7 {
		return nil, fmt.Errorf("need 7 day names, got %d/%d", len(tf.DayNames), len(tf.AbbreviatedDayNames))
	}
	if tf.MonthGenitiveNames == nil {
		tf.MonthGenitiveNames = tf.MonthNames
	}
	if tf.AbbreviatedMonthGenitiveNames == nil {
		tf.AbbreviatedMonthGenitiveNames = tf.AbbreviatedMonthNames
	}

	lower := cases.Lower(tag)
	loc := &Locale{
		name:            tag.String(),
		tables:          tag.String(),
		dateSep:         orDefault(tf.DateSeparator, "/"),
		timeSep:         orDefault(tf.TimeSeparator, ":"),
		twoDigitYearMax: tf.TwoDigitYearMax,
		am:              lower.String(tf.AMDesignator),
		pm:              lower.String(tf.PMDesignator),
	}
	if loc.twoDigitYearMax == 0 {
		loc.twoDigitYearMax = defaultTwoDigitYearMax
	}
	fill := func(dst []string, src []string) {
		for i := range dst {
			if i < len(src) {
				dst[i] = lower.String(strings.TrimSpace(src[i]))
			}
		}
	}
	fill(loc.months[:], tf.MonthNames)
	fill(loc.abbrMonths[:], tf.AbbreviatedMonthNames)
	fill(loc.genMonths[:], tf.MonthGenitiveNames)
	fill(loc.abbrGenMonths[:], tf.AbbreviatedMonthGenitiveNames)
	fill(loc.days[:], tf.DayNames)
	fill(loc.abbrDays[:], tf.AbbreviatedDayNames)
	return loc, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Lookup returns the calendar tables for a locale identifier such as "en-US"
// or "nb_NO". Any well-formed BCP 47 tag is accepted. Tables are chosen in
// this order: a built-in table for the exact tag, a generated table for the
// exact tag, a built-in or generated table sharing the base language, and
// finally the invariant (en-US) tables. Name always reports the requested
// tag; Tables reports where the names came from.
func Lookup(id string) (*Locale, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}

	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(id), "_", "-"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, id)
	}
	name := tag.String()
	if loc, ok := registry[name]; ok {
		return loc, nil
	}
	if cached, ok := resolved.Load(name); ok {
		return cached.(*Locale), nil
	}

	loc := resolve(tag)
	if loc.name != name {
		c := *loc
		c.name = name
		loc = &c
	}
	actual, _ := resolved.LoadOrStore(name, loc)
	return actual.(*Locale), nil
}

// resolved caches Lookup results for tags without a built-in table.
var resolved sync.Map

func resolve(tag language.Tag) *Locale {
	if loc, ok := generated(tag); ok {
		return loc
	}
	base, _ := tag.Base()
	for _, name := range Names() {
		cand, _ := language.Make(name).Base()
		if cand == base {
			return registry[name]
		}
	}
	if loc, ok := generatedForBase(base); ok {
		return loc
	}
	return registry[invariantTables]
}

// Names lists the locales with built-in calendar tables, sorted.
func Names() []string {
	loadOnce.Do(load)
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name returns the canonical locale tag, e.g. "en-US".
func (l *Locale) Name() string { return l.name }

// Tables names the source of the month and day names: a built-in tag such as
// "en-GB", or "monday:it_IT" for generated tables.
func (l *Locale) Tables() string { return l.tables }

// TwoDigitYearMax returns the last year a two-digit year can expand to.
func (l *Locale) TwoDigitYearMax() int { return l.twoDigitYearMax }

// StripAbbreviationDots returns a copy of l whose abbreviated month names
// (plain and genitive) have trailing periods removed, so "nov." and "nov"
// match the same text. The thirteenth month slot is forced empty in every
// table so it can never match input.
func (l *Locale) StripAbbreviationDots() *Locale {
	c := *l
	for i := range c.abbrMonths {
		c.abbrMonths[i] = strings.TrimRight(c.abbrMonths[i], ".")
		c.abbrGenMonths[i] = strings.TrimRight(c.abbrGenMonths[i], ".")
	}
	c.months[12] = ""
	c.abbrMonths[12] = ""
	c.genMonths[12] = ""
	c.abbrGenMonths[12] = ""
	return &c
}

// expandYear maps a two-digit year onto the century window ending at
// TwoDigitYearMax.
func (l *Locale) expandYear(yy int) int {
	year := (l.twoDigitYearMax/100)*100 + yy
	if year > l.twoDigitYearMax {
		year -= 100
	}
	return year
}
