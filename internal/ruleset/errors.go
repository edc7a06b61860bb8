package ruleset

import "errors"

var (
	// ErrInvalidConfig is returned when no rule sets are requested.
	ErrInvalidConfig = errors.New("ruleset: invalid configuration")
	// ErrRuleSetNotFound is returned for a locale with no built-in definition.
	ErrRuleSetNotFound = errors.New("ruleset: rule set not found")
	// ErrMalformedDefinition is returned when a definition violates the schema,
	// carries an invalid expression or format, or names an unknown culture.
	ErrMalformedDefinition = errors.New("ruleset: malformed definition")
)
