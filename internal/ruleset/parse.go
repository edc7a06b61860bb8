package ruleset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a JSON definition. Line and block comments and trailing
// commas are accepted; unknown fields are not.
func ParseJSON(data []byte) (*Definition, error) {
	dec := json.NewDecoder(bytes.NewReader(standardize(data)))
	dec.DisallowUnknownFields()

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedDefinition, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after definition", ErrMalformedDefinition)
	}
	if err := def.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedDefinition, err)
	}
	return &def, nil
}

// ParseYAML decodes a YAML definition with the same schema as ParseJSON.
func ParseYAML(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformedDefinition)
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedDefinition, err)
	}
	if err := def.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedDefinition, err)
	}
	return &def, nil
}

// standardize strips // and /* */ comments and trailing commas so the result
// is plain JSON. String literals are copied untouched.
func standardize(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(src) {
				return append(out, src[i:]...)
			}
			out = append(out, src[i:j+1]...)
			i = j
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				out = append(out, '\n')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return out
			}
			out = append(out, ' ')
			i += end + 3
		case c == ']' || c == '}':
			out = dropTrailingComma(out)
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

// dropTrailingComma removes a comma that is followed only by whitespace at
// the end of b.
func dropTrailingComma(b []byte) []byte {
	j := len(b) - 1
	for j >= 0 && (b[j] == ' ' || b[j] == '\t' || b[j] == '\n' || b[j] == '\r') {
		j--
	}
	if j >= 0 && b[j] == ',' {
		return append(b[:j], b[j+1:]...)
	}
	return b
}
