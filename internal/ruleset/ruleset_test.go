package ruleset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/datextract/internal/calendar"
)

func TestBuiltin(t *testing.T) {
	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			rs, err := Builtin(name)
			require.NoError(t, err)
			assert.Equal(t, name, rs.Locale)
			assert.NotEmpty(t, rs.Patterns)
			assert.NotEmpty(t, rs.Delimiters)
		})
	}
}

func TestBuiltin_Names(t *testing.T) {
	names := BuiltinNames()
	for _, want := range []string{"en-US", "nb-NO", "es-ES", "pt-BR"} {
		assert.Contains(t, names, want)
	}
	assert.True(t, HasBuiltin("en_us"))
	assert.False(t, HasBuiltin("zz-ZZ"))
}

func TestBuiltin_NotFound(t *testing.T) {
	for _, id := range []string{"zz-ZZ", "en-AU", "", "???"} {
		_, err := Builtin(id)
		require.ErrorIs(t, err, ErrRuleSetNotFound, id)
	}
}

func TestBuiltin_CaseInsensitiveID(t *testing.T) {
	rs, err := Builtin("EN-us")
	require.NoError(t, err)
	assert.Equal(t, "en-US", rs.Locale)
}

func TestCompile_FourDigitYearPatternsFirst(t *testing.T) {
	def := &Definition{
		Culture: "en-US",
		Patterns: []PatternDef{
			{Regex: `\b\d{1,2} \d{1,2} \d{2}\b`, Format: Formats{"M d yy"}},
			{Regex: `\b\d{1,2} \d{1,2} \d{4}\b`, Format: Formats{"M d yyyy"}},
			{Regex: `\b\p{L}+ \d{1,2} \d{2}\b`, Format: Formats{"MMM d yy"}},
			{Regex: `\b\d{4} \d{1,2} \d{1,2}\b`, Format: Formats{"yyyy M d"}},
		},
	}
	rs, err := Compile(def)
	require.NoError(t, err)

	var got []string
	for _, p := range rs.Patterns {
		got = append(got, p.Source)
	}
	assert.Equal(t, []string{
		`\b\d{1,2} \d{1,2} \d{4}\b`,
		`\b\d{4} \d{1,2} \d{1,2}\b`,
		`\b\d{1,2} \d{1,2} \d{2}\b`,
		`\b\p{L}+ \d{1,2} \d{2}\b`,
	}, got)
}

func TestCompile_CaseInsensitiveRegex(t *testing.T) {
	rs, err := Compile(&Definition{
		Culture:  "en-US",
		Patterns: []PatternDef{{Regex: `JULY \d{4}`, Format: Formats{"MMMM yyyy"}}},
	})
	require.NoError(t, err)
	assert.True(t, rs.Patterns[0].Regex.MatchString("july 2025"))
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  *Definition
	}{
		{"unknown culture", &Definition{Culture: "zz-ZZ", Patterns: []PatternDef{}}},
		{"missing culture", &Definition{Patterns: []PatternDef{}}},
		{"lookbehind is not RE2", &Definition{Culture: "en-US", Patterns: []PatternDef{{Regex: `(?<=\d)x`, Format: Formats{"d"}}}}},
		{"no formats", &Definition{Culture: "en-US", Patterns: []PatternDef{{Regex: `\d`}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.def)
			require.ErrorIs(t, err, ErrMalformedDefinition)
		})
	}
}

func TestCompile_LocaleIsRequestedCulture(t *testing.T) {
	for culture, want := range map[string]string{
		"en-AU": "en-AU",
		"en_au": "en-AU",
		"it-IT": "it-IT",
		"ar-SA": "ar-SA",
		"nb-NO": "nb-NO",
	} {
		rs, err := Compile(&Definition{Culture: culture, Patterns: []PatternDef{}})
		require.NoError(t, err, culture)
		assert.Equal(t, want, rs.Locale, culture)
	}
}

func TestCompile_StripsAbbreviationDots(t *testing.T) {
	rs, err := Builtin("es-ES")
	require.NoError(t, err)
	d, ok := rs.Parser.TryParse("17 ene 2025", "d MMM yyyy")
	require.True(t, ok)
	assert.Equal(t, calendar.Date{Year: 2025, Month: time.January, Day: 17}, d)
}

func TestParseJSON(t *testing.T) {
	t.Run("comments and trailing commas", func(t *testing.T) {
		doc := `
		{
		  "culture":"fr-FR",
		  "delimiters":"",                 // raw-delimiter mode
		  /* one pattern */
		  "patterns":[
		    {
		      "regex":"\\b\\d{2}/\\d{2}/\\d{4}\\b",
		      "format":"dd/MM/yyyy",
		    },
		  ],
		}`
		def, err := ParseJSON([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, "fr-FR", def.Culture)
		require.NotNil(t, def.Delimiters)
		assert.Empty(t, *def.Delimiters)
		require.Len(t, def.Patterns, 1)
		assert.Equal(t, `\b\d{2}/\d{2}/\d{4}\b`, def.Patterns[0].Regex)
		assert.Equal(t, Formats{"dd/MM/yyyy"}, def.Patterns[0].Format)
	})

	t.Run("comment markers inside strings survive", func(t *testing.T) {
		def, err := ParseJSON([]byte(`{"culture":"en-US","patterns":[{"regex":"a//b/*c*/\"d","format":["x","y"]}]}`))
		require.NoError(t, err)
		assert.Equal(t, `a//b/*c*/"d`, def.Patterns[0].Regex)
		assert.Equal(t, Formats{"x", "y"}, def.Patterns[0].Format)
	})

	t.Run("absent delimiters", func(t *testing.T) {
		def, err := ParseJSON([]byte(`{"culture":"en-US","patterns":[]}`))
		require.NoError(t, err)
		assert.Nil(t, def.Delimiters)
	})

	bad := map[string]string{
		"not json":           `culture: en-US`,
		"unknown field":      `{"culture":"en-US","patterns":[],"extra":1}`,
		"format is a number": `{"culture":"en-US","patterns":[{"regex":"x","format":3}]}`,
		"format is empty":    `{"culture":"en-US","patterns":[{"regex":"x","format":[]}]}`,
		"missing regex":      `{"culture":"en-US","patterns":[{"format":"d"}]}`,
		"missing patterns":   `{"culture":"en-US"}`,
		"trailing data":      `{"culture":"en-US","patterns":[]} {}`,
		"empty":              ``,
	}
	for name, doc := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSON([]byte(doc))
			require.ErrorIs(t, err, ErrMalformedDefinition)
		})
	}
}

func TestParseYAML(t *testing.T) {
	doc := `
culture: es-ES
delimiters: "/.-,"
ordinals: ["º", "ª"]
patterns:
  - regex: '\b\d{1,2}\s+de\s+\w+\s+\d{4}\b'
    format: "d 'de' MMMM yyyy"
  - regex: '\b\d{1,2} \d{1,2} \d{2}\b'
    format: [d M yy, dd MM yy]
`
	def, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "es-ES", def.Culture)
	assert.Equal(t, []string{"º", "ª"}, def.Ordinals)
	assert.Equal(t, Formats{"d 'de' MMMM yyyy"}, def.Patterns[0].Format)
	assert.Equal(t, Formats{"d M yy", "dd MM yy"}, def.Patterns[1].Format)

	_, err = ParseYAML([]byte("culture: en-US\npatterns: []\nbogus: 1\n"))
	require.ErrorIs(t, err, ErrMalformedDefinition)

	_, err = ParseYAML([]byte("culture: en-US\npatterns:\n  - regex: x\n    format: {a: b}\n"))
	require.ErrorIs(t, err, ErrMalformedDefinition)

	_, err = ParseYAML(nil)
	require.ErrorIs(t, err, ErrMalformedDefinition)
}

func TestLoadDir(t *testing.T) {
	fsys := fstest.MapFS{
		"b/es.yaml":  {Data: []byte("culture: es-ES\ndelimiters: \"/.-,\"\npatterns:\n  - regex: '\\d{1,2} \\d{1,2} \\d{4}'\n    format: d M yyyy\n")},
		"a/us.json":  {Data: []byte(`{"culture":"en-US","delimiters":"/","patterns":[{"regex":"\\d{1,2} \\d{1,2} \\d{4}","format":"M d yyyy"}]}`)},
		"readme.txt": {Data: []byte("ignored")},
	}
	sets, err := LoadDir(fsys)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "en-US", sets[0].Locale)
	assert.Equal(t, "es-ES", sets[1].Locale)

	fsys["c/bad.json"] = &fstest.MapFile{Data: []byte(`{"culture":"en-US"`)}
	_, err = LoadDir(fsys)
	require.ErrorIs(t, err, ErrMalformedDefinition)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"culture":"de-DE","delimiters":".","patterns":[{"regex":"\\d{1,2} \\d{1,2} \\d{4}","format":"d M yyyy"}]}`), 0o644))

	rs, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "de-DE", rs.Locale)
	assert.Equal(t, ".", rs.Delimiters)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestSchema(t *testing.T) {
	s := Schema()
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema has properties")
	for _, key := range []string{"culture", "delimiters", "ordinals", "patterns"} {
		assert.Contains(t, props, key)
	}
	assert.ElementsMatch(t, []any{"culture", "patterns"}, doc["required"])
}
