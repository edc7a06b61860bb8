package ruleset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed rules/*.json
var builtinFiles embed.FS

// Builtin compiles the embedded rule set for a locale identifier such as
// "en-US" (or "en_us").
func Builtin(id string) (*RuleSet, error) {
	name, ok := canonical(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRuleSetNotFound, id)
	}
	data, err := builtinFiles.ReadFile("rules/" + name + ".json")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrRuleSetNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read built-in rule set %q: %w", name, err)
	}
	def, err := ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("built-in rule set %q: %w", name, err)
	}
	return Compile(def)
}

// BuiltinNames lists the locales with an embedded rule set, sorted.
func BuiltinNames() []string {
	entries, err := fs.ReadDir(builtinFiles, "rules")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// HasBuiltin reports whether id names an embedded rule set.
func HasBuiltin(id string) bool {
	name, ok := canonical(id)
	if !ok {
		return false
	}
	_, err := fs.Stat(builtinFiles, "rules/"+name+".json")
	return err == nil
}

func canonical(id string) (string, bool) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(id), "_", "-"))
	if err != nil {
		return "", false
	}
	return tag.String(), true
}

// Parse decodes a definition document, choosing the syntax by extension:
// .yaml and .yml are YAML, anything else is JSON.
func Parse(name string, data []byte) (*Definition, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// LoadFile reads and compiles one definition file.
func LoadFile(filePath string) (*RuleSet, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	def, err := Parse(filePath, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filePath), err)
	}
	return Compile(def)
}

// LoadDir compiles every .json, .yaml and .yml definition under fsys, in
// lexical path order, which becomes their precedence order.
func LoadDir(fsys fs.FS) ([]*RuleSet, error) {
	var sets []*RuleSet
	err := fs.WalkDir(fsys, ".", func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(filePath)) {
		case ".json", ".yaml", ".yml":
		default:
			return nil
		}

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("reading %q: %w", filePath, err)
		}
		def, err := Parse(filePath, data)
		if err != nil {
			return fmt.Errorf("%q: %w", filePath, err)
		}
		rs, err := Compile(def)
		if err != nil {
			return fmt.Errorf("%q: %w", filePath, err)
		}
		sets = append(sets, rs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sets, nil
}
