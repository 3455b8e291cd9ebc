package cli_config

import "os"

// EnvVar represents an environment variable, specified by its key name. Use GetOr to get its value, or a default if
// the value isn't set.
type EnvVar string

// GetOr returns the value of the env var, or defaultValue if that value is unset or empty.
func (s EnvVar) GetOr(defaultValue string) string {
	if value := os.Getenv(string(s)); value != "" {
		return value
	}
	return defaultValue
}
