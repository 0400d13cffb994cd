// Package secrets resolves credential material, such as the SMTP password,
// from files or inline configuration values.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret value comes from.
type Source struct {
	// Name identifies the secret in error messages.
	Name string
	// Value is an inline secret from configuration or flags.
	Value string
	// File points to a file holding the secret. When set it shadows Value.
	File string
}

// Load resolves the secret from src. A file takes precedence over an inline
// value; the result is trimmed of surrounding whitespace.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		if secret := strings.TrimSpace(string(data)); secret != "" {
			return secret, nil
		}
		return "", fmt.Errorf("%s file %q is empty", name, file)
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	return "", fmt.Errorf("%s is not configured", name)
}
