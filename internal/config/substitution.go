package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{env://([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// EnvSubstituter expands ${env://VAR} and ${env://VAR:-default} references
// in configuration file content before parsing.
type EnvSubstituter struct{}

// SubstituteEnvVars replaces env references with their values. A reference
// without a default whose variable is unset is an error; substituted config
// must never silently contain the literal placeholder.
func (e *EnvSubstituter) SubstituteEnvVars(content string) (string, error) {
	var missing []string

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varPart := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${env://")

		varName, defaultValue, hasDefault := splitDefault(varPart)

		if v := os.Getenv(varName); v != "" {
			return v
		}
		if hasDefault {
			return defaultValue
		}

		missing = append(missing, varName)
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("environment variables not set: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// splitDefault separates "VAR:-default" into name and default value.
func splitDefault(varPart string) (name, def string, hasDefault bool) {
	if strings.Contains(varPart, ":-") {
		parts := strings.SplitN(varPart, ":-", 2)
		return parts[0], parts[1], true
	}
	return varPart, "", false
}
