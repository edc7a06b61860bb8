package calendar

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// mondayLocales are the cultures monday translates month and day names for.
// Cultures with a built-in YAML table never reach this list.
var mondayLocales = []string{
	"bg_BG", "ca_ES", "cs_CZ", "da_DK", "de_DE", "el_GR", "en_GB", "en_US",
	"es_ES", "et_EE", "fi_FI", "fr_CA", "fr_FR", "hr_HR", "hu_HU", "id_ID",
	"it_IT", "ja_JP", "kk_KZ", "ko_KR", "lt_LT", "lv_LV", "nb_NO", "nl_BE",
	"nl_NL", "nn_NO", "pl_PL", "pt_BR", "pt_PT", "ro_RO", "ru_RU", "sk_SK",
	"sl_SI", "sv_SE", "th_TH", "tr_TR", "uk_UA", "uz_UZ", "zh_CN", "zh_HK",
	"zh_TW",
}

// generated builds tables for tag from monday when it supports the exact
// language and region.
func generated(tag language.Tag) (*Locale, bool) {
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf != language.Exact {
		return nil, false
	}
	key := base.String() + "_" + region.String()
	for _, ml := range mondayLocales {
		if ml == key {
			return fromMonday(tag, monday.Locale(ml)), true
		}
	}
	return nil, false
}

// generatedForBase builds tables from the first monday culture sharing base.
func generatedForBase(base language.Base) (*Locale, bool) {
	prefix := base.String() + "_"
	for _, ml := range mondayLocales {
		if strings.HasPrefix(ml, prefix) {
			tag := language.Make(strings.ReplaceAll(ml, "_", "-"))
			return fromMonday(tag, monday.Locale(ml)), true
		}
	}
	return nil, false
}

// fromMonday renders every month and weekday through monday.Format. Genitive
// forms come from formatting the month next to a day number, which is where
// languages such as Russian and Polish inflect it.
func fromMonday(tag language.Tag, ml monday.Locale) *Locale {
	lower := cases.Lower(tag)
	format := func(t time.Time, layout string) string {
		return lower.String(strings.TrimSpace(monday.Format(t, layout, ml)))
	}
	afterDay := func(t time.Time, layout string) string {
		s := strings.TrimLeft(monday.Format(t, layout, ml), "0123456789")
		return lower.String(strings.TrimSpace(s))
	}

	loc := &Locale{
		name:            tag.String(),
		tables:          "monday:" + string(ml),
		dateSep:         "/",
		timeSep:         ":",
		twoDigitYearMax: defaultTwoDigitYearMax,
	}
	for m := time.January; m <= time.December; m++ {
		t := time.Date(2001, m, 1, 0, 0, 0, 0, time.UTC)
		loc.months[m-1] = format(t, "January")
		loc.abbrMonths[m-1] = format(t, "Jan")
		loc.genMonths[m-1] = afterDay(t, "2 January")
		loc.abbrGenMonths[m-1] = afterDay(t, "2 Jan")
	}
	// 7 January 2001 was a Sunday, matching time.Weekday's numbering.
	for d := 0; d < 7; d++ {
		t := time.Date(2001, time.January, 7+d, 0, 0, 0, 0, time.UTC)
		loc.days[d] = format(t, "Monday")
		loc.abbrDays[d] = format(t, "Mon")
	}
	loc.am = format(time.Date(2001, time.January, 1, 9, 0, 0, 0, time.UTC), "PM")
	loc.pm = format(time.Date(2001, time.January, 1, 21, 0, 0, 0, time.UTC), "PM")
	return loc
}
