// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename, normalized to
// environment-variable form (uppercased, dashes to underscores), is the key name and
// the file contents (trimmed) are the value. ANTHROPIC_API_KEY and anthropic-api-key
// name the same secret.
//
// Supported keys: ANTHROPIC_API_KEY, TAVILY_API_KEY.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads all files in dir and returns a map of normalized filename to trimmed
// contents. A missing directory or missing files are not errors; Load returns an
// empty map. Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[keyName(name)] = value
		}
	}

	return secrets, nil
}

// keyName maps a secret filename to its lookup key. anthropic-api-key and
// ANTHROPIC_API_KEY both load as ANTHROPIC_API_KEY.
func keyName(filename string) string {
	return strings.ToUpper(strings.ReplaceAll(filename, "-", "_"))
}
