package directive

import "fmt"

// ConfigurationError reports an invalid Config. No directive is produced
// when it is returned.
type ConfigurationError struct {
	// Directive is the configured name, possibly empty.
	Directive string
	// Field is the offending Config field.
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Directive == "" {
		return fmt.Sprintf("directive config: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("directive config %q: %s %s", e.Directive, e.Field, e.Reason)
}
