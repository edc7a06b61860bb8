package calendar

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// fields collects the components read while walking a layout. Unset numeric
// fields are -1.
type fields struct {
	year, month, day     int
	hour, minute, second int
	weekday              int
	pm                   int // -1 unset, 0 am, 1 pm
	twelveHour           bool
}

func newFields() fields {
	return fields{year: -1, month: -1, day: -1, hour: -1, minute: -1, second: -1, weekday: -1, pm: -1}
}

// set stores v into *dst, refusing to overwrite a different earlier value.
func set(dst *int, v int) bool {
	if *dst != -1 && *dst != v {
		return false
	}
	*dst = v
	return true
}

// TryParse parses text strictly against a custom date layout using l's
// conventions and reports whether the whole text matched and formed a valid
// calendar date.
//
// Layout tokens:
//
//	d dd        day of month, 1-2 digits / exactly 2
//	ddd dddd    abbreviated / full weekday name (must agree with the date)
//	M MM        month, 1-2 digits / exactly 2
//	MMM MMMM    abbreviated / full month name (genitive forms accepted)
//	y yy        two-digit year expanded with the locale pivot
//	yyy yyyy    three-or-four / exactly four digit year
//	H HH h hh   hour (24h / 12h), validated then discarded
//	m mm s ss   minute, second, validated then discarded
//	f F         fraction digits, discarded
//	t tt        AM/PM designator (first letter / full)
//	'..' ".."   quoted literal
//	\c          escaped literal character
//	/ :         locale date / time separator
//
// Whitespace in the layout matches one or more whitespace characters. Any
// other character matches itself, ignoring case.
func (l *Locale) TryParse(text, layout string) (Date, bool) {
	p := parser{loc: l, s: strings.ToLower(text), f: newFields()}
	if !p.run(layout) || p.pos != len(p.s) {
		return Date{}, false
	}
	return p.f.resolve()
}

type parser struct {
	loc *Locale
	s   string
	pos int
	f   fields
}

func (p *parser) run(layout string) bool {
	lr := []rune(layout)
	for i := 0; i < len(lr); {
		c := lr[i]
		n := repeat(lr, i)
		switch {
		case c == 'd':
			i += n
			if !p.day(n) {
				return false
			}
		case c == 'M':
			i += n
			if !p.month(n) {
				return false
			}
		case c == 'y':
			i += n
			if !p.year(n) {
				return false
			}
		case c == 'H' || c == 'h' || c == 'm' || c == 's':
			i += n
			if n > 2 || !p.clock(c, n) {
				return false
			}
		case c == 'f' || c == 'F':
			i += n
			lo := n
			if c == 'F' {
				lo = 0
			}
			if _, ok := p.digits(lo, n); !ok {
				return false
			}
		case c == 't':
			i += n
			if !p.designator(n) {
				return false
			}
		case c == '\'' || c == '"':
			end := i + 1
			for end < len(lr) && lr[end] != c {
				end++
			}
			if end == len(lr) {
				return false
			}
			if !p.literal(string(lr[i+1 : end])) {
				return false
			}
			i = end + 1
		case c == '\\':
			if i+1 == len(lr) || !p.literal(string(lr[i+1])) {
				return false
			}
			i += 2
		case c == '%':
			i++
		case c == '/':
			i++
			if !p.literal(p.loc.dateSep) {
				return false
			}
		case c == ':':
			i++
			if !p.literal(p.loc.timeSep) {
				return false
			}
		case unicode.IsSpace(c):
			for i < len(lr) && unicode.IsSpace(lr[i]) {
				i++
			}
			if !p.space() {
				return false
			}
		default:
			i++
			if !p.literal(string(c)) {
				return false
			}
		}
	}
	return true
}

// repeat counts how many times lr[i] repeats starting at i.
func repeat(lr []rune, i int) int {
	n := 1
	for i+n < len(lr) && lr[i+n] == lr[i] {
		n++
	}
	return n
}

func (p *parser) day(n int) bool {
	switch n {
	case 1, 2:
		v, ok := p.digits(n, 2)
		return ok && set(&p.f.day, v)
	case 3:
		idx, ok := p.name(p.loc.abbrDays[:])
		return ok && set(&p.f.weekday, idx)
	default:
		idx, ok := p.name(p.loc.days[:])
		return ok && set(&p.f.weekday, idx)
	}
}

func (p *parser) month(n int) bool {
	switch n {
	case 1, 2:
		v, ok := p.digits(n, 2)
		return ok && set(&p.f.month, v)
	case 3:
		idx, ok := p.name(p.loc.abbrMonths[:12], p.loc.abbrGenMonths[:12])
		return ok && set(&p.f.month, idx+1)
	default:
		idx, ok := p.name(p.loc.months[:12], p.loc.genMonths[:12])
		return ok && set(&p.f.month, idx+1)
	}
}

func (p *parser) year(n int) bool {
	switch n {
	case 1, 2:
		v, ok := p.digits(n, 2)
		return ok && set(&p.f.year, p.loc.expandYear(v))
	case 3:
		v, ok := p.digits(3, 4)
		return ok && set(&p.f.year, v)
	default:
		v, ok := p.digits(n, n)
		return ok && set(&p.f.year, v)
	}
}

func (p *parser) clock(c rune, n int) bool {
	v, ok := p.digits(n, 2)
	if !ok {
		return false
	}
	switch c {
	case 'H':
		return v <= 23 && set(&p.f.hour, v)
	case 'h':
		p.f.twelveHour = true
		return v >= 1 && v <= 12 && set(&p.f.hour, v)
	case 'm':
		return v <= 59 && set(&p.f.minute, v)
	default:
		return v <= 59 && set(&p.f.second, v)
	}
}

func (p *parser) designator(n int) bool {
	for i, d := range []string{p.loc.am, p.loc.pm} {
		if d == "" {
			continue
		}
		if n == 1 {
			r, _ := utf8.DecodeRuneInString(d)
			d = string(r)
		}
		if strings.HasPrefix(p.s[p.pos:], d) {
			p.pos += len(d)
			return set(&p.f.pm, i)
		}
	}
	return false
}

// digits reads between lo and hi ASCII digits.
func (p *parser) digits(lo, hi int) (int, bool) {
	v, n := 0, 0
	for n < hi && p.pos+n < len(p.s) {
		c := p.s[p.pos+n]
		if c < '0' || c > '9' {
			break
		}
		v = v*10 + int(c-'0')
		n++
	}
	if n < lo {
		return 0, false
	}
	p.pos += n
	return v, true
}

// name matches the longest non-empty entry of any table at the current
// position and returns its index.
func (p *parser) name(tables ...[]string) (int, bool) {
	rest := p.s[p.pos:]
	best, bestLen := -1, 0
	for _, table := range tables {
		for i, n := range table {
			if n == "" || len(n) <= bestLen {
				continue
			}
			if strings.HasPrefix(rest, n) {
				best, bestLen = i, len(n)
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	p.pos += bestLen
	return best, true
}

func (p *parser) literal(lit string) bool {
	lit = strings.ToLower(lit)
	if !strings.HasPrefix(p.s[p.pos:], lit) {
		return false
	}
	p.pos += len(lit)
	return true
}

func (p *parser) space() bool {
	start := p.pos
	for p.pos < len(p.s) {
		r, size := utf8.DecodeRuneInString(p.s[p.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		p.pos += size
	}
	return p.pos > start
}

// resolve validates the collected fields and builds the date. Year, month
// and day are all required.
func (f fields) resolve() (Date, bool) {
	if f.year < 0 || f.month < 0 || f.day < 0 {
		return Date{}, false
	}
	if f.pm >= 0 && f.hour >= 0 && !f.twelveHour && (f.pm == 1) != (f.hour >= 12) {
		return Date{}, false
	}
	d, ok := NewDate(f.year, time.Month(f.month), f.day)
	if !ok {
		return Date{}, false
	}
	if f.weekday >= 0 && time.Weekday(f.weekday) != d.Weekday() {
		return Date{}, false
	}
	return d, true
}
