package normalize

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lineBreaks = regexp.MustCompile(`[\t\r\n]+`)
	spaceRuns  = regexp.MustCompile(`[\t\n\v\f\r \x{85}\p{Z}]{2,}`)
)

// Rules is one contributor's share of the cleanup configuration: the
// characters to turn into spaces and the ordinal suffixes to erase.
type Rules struct {
	Delimiters string
	Ordinals   []string
}

// Merge returns the union of several Rules. Delimiter characters keep their
// first-seen order; ordinal suffixes are deduplicated case-insensitively.
func Merge(rules ...Rules) Rules {
	var delims strings.Builder
	seenDelim := make(map[rune]bool)
	var ordinals []string
	seenOrd := make(map[string]bool)

	for _, r := range rules {
		for _, ch := range r.Delimiters {
			if !seenDelim[ch] {
				seenDelim[ch] = true
				delims.WriteRune(ch)
			}
		}
		for _, o := range r.Ordinals {
			key := strings.ToLower(o)
			if o == "" || seenOrd[key] {
				continue
			}
			seenOrd[key] = true
			ordinals = append(ordinals, o)
		}
	}
	return Rules{Delimiters: delims.String(), Ordinals: ordinals}
}

// Text turns raw OCR/PDF text into the canonical form that date patterns
// are matched against. It is immutable and safe for concurrent use.
type Text struct {
	delims   *regexp.Regexp // nil in raw mode
	ordinals []string       // lowercased, longest first
	rules    Rules
}

// NewText builds a normalizer for r. A delimiter set that is empty or only
// whitespace selects raw mode: punctuation is left untouched so patterns can
// match it literally.
func NewText(r Rules) *Text {
	t := &Text{rules: r}

	if strings.TrimSpace(r.Delimiters) != "" {
		t.delims = delimiterClass(r.Delimiters)
	}

	lower := cases.Lower(language.Und)
	for _, o := range r.Ordinals {
		o = lower.String(o)
		if o != "" && !slices.Contains(t.ordinals, o) {
			t.ordinals = append(t.ordinals, o)
		}
	}
	slices.SortStableFunc(t.ordinals, func(a, b string) int {
		return len(b) - len(a)
	})
	return t
}

// delimiterClass compiles a character class matching any delimiter. A hyphen
// goes last so it is literal rather than a range operator.
func delimiterClass(delims string) *regexp.Regexp {
	var b strings.Builder
	seen := make(map[rune]bool)
	hyphen := false
	b.WriteByte('[')
	for _, ch := range delims {
		if ch == '-' {
			hyphen = true
			continue
		}
		if !seen[ch] {
			seen[ch] = true
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	if hyphen {
		b.WriteByte('-')
	}
	b.WriteByte(']')
	return regexp.MustCompile(b.String())
}

// Rules returns the configuration the normalizer was built from.
func (t *Text) Rules() Rules { return t.rules }

// RawMode reports whether delimiter substitution is disabled.
func (t *Text) RawMode() bool { return t.delims == nil }

// Normalize returns the canonical form of raw:
//
//  1. lowercase (locale-invariant)
//  2. delimiters to a single space
//  3. ordinal suffixes after a digit erased
//  4. tab/CR/LF runs to a space
//  5. whitespace runs collapsed
//  6. control characters removed
//  7. trimmed
func (t *Text) Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	s := cases.Lower(language.Und).String(raw)
	if t.delims != nil {
		s = t.delims.ReplaceAllLiteralString(s, " ")
	}
	if len(t.ordinals) > 0 {
		s = t.stripOrdinals(s)
	}
	s = lineBreaks.ReplaceAllLiteralString(s, " ")
	s = spaceRuns.ReplaceAllLiteralString(s, " ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// stripOrdinals erases an ordinal suffix (and any whitespace before it) that
// directly follows a digit and ends on a word boundary: "1st" becomes "1",
// "1 º" becomes "1".
func (t *Text) stripOrdinals(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
		if unicode.IsDigit(r) {
			i = t.skipOrdinal(s, i)
		}
	}
	return b.String()
}

// skipOrdinal returns the index just past an ordinal suffix starting at i,
// or i when there is none.
func (t *Text) skipOrdinal(s string, i int) int {
	j := i
	for j < len(s) {
		r, size := utf8.DecodeRuneInString(s[j:])
		if !unicode.IsSpace(r) {
			break
		}
		j += size
	}
	for _, suffix := range t.ordinals {
		end := j + len(suffix)
		if strings.HasPrefix(s[j:], suffix) && wordBoundary(s, end) {
			return end
		}
	}
	return i
}

// wordBoundary reports whether position i in s sits between a word and a
// non-word character.
func wordBoundary(s string, i int) bool {
	before := false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	after := false
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Pc, r)
}
