package ruleset

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Definition is the serialized form of one locale's rules, as found in
// built-in resources and caller-supplied JSON or YAML documents.
type Definition struct {
	Culture    string       `json:"culture" yaml:"culture" jsonschema:"required,description=Locale identifier selecting month names\\, numeric order and two-digit-year pivot"`
	Delimiters *string      `json:"delimiters,omitempty" yaml:"delimiters,omitempty" jsonschema:"description=Characters replaced by a space before matching; empty or absent keeps punctuation (raw mode)"`
	Ordinals   []string     `json:"ordinals,omitempty" yaml:"ordinals,omitempty" jsonschema:"description=Ordinal suffixes erased after a digit"`
	Patterns   []PatternDef `json:"patterns" yaml:"patterns" jsonschema:"required"`
}

// PatternDef pairs a regular expression (RE2 syntax, matched
// case-insensitively) with the layouts used to validate its matches.
type PatternDef struct {
	Regex  string  `json:"regex" yaml:"regex" jsonschema:"required,minLength=1"`
	Format Formats `json:"format" yaml:"format" jsonschema:"required"`
}

// Formats is a list of date layouts. In documents it may be written as a
// single string or as an array of strings.
type Formats []string

// UnmarshalJSON accepts a string or an array of strings.
func (f *Formats) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*f = Formats{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("format must be a string or an array of strings")
	}
	*f = many
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (f *Formats) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*f = Formats{node.Value}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := node.Decode(&many); err != nil {
			return err
		}
		*f = many
		return nil
	default:
		return fmt.Errorf("line %d: format must be a string or a list of strings", node.Line)
	}
}

// MarshalJSON writes a single layout as a plain string.
func (f Formats) MarshalJSON() ([]byte, error) {
	if len(f) == 1 {
		return json.Marshal(f[0])
	}
	return json.Marshal([]string(f))
}

// JSONSchema describes Formats as string-or-array.
func (Formats) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", MinLength: uint64Ptr(1)},
			{Type: "array", Items: &jsonschema.Schema{Type: "string", MinLength: uint64Ptr(1)}, MinItems: uint64Ptr(1)},
		},
	}
}

func uint64Ptr(v uint64) *uint64 { return &v }

// Schema returns the JSON Schema for definition documents.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := r.Reflect(&Definition{})
	s.Title = "datextract rule set"
	return s
}

// validate checks the fields the decoder cannot.
func (d *Definition) validate() error {
	if d.Culture == "" {
		return fmt.Errorf("culture is required")
	}
	if d.Patterns == nil {
		return fmt.Errorf("patterns is required")
	}
	for i, p := range d.Patterns {
		if p.Regex == "" {
			return fmt.Errorf("patterns[%d]: regex is required", i)
		}
		if len(p.Format) == 0 {
			return fmt.Errorf("patterns[%d]: format is required", i)
		}
		for j, f := range p.Format {
			if f == "" {
				return fmt.Errorf("patterns[%d]: format[%d] is empty", i, j)
			}
		}
	}
	return nil
}
