package scenario

import "fmt"

// ConfigurationError reports a malformed or inconsistent scenario descriptor.
// It is fatal for the whole run and is raised before any stage executes.
type ConfigurationError struct {
	// Key is the offending descriptor key, dot-separated.
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Reason)
}
