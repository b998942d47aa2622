// Package envfile loads CHATFMT_* defaults from .env files.
// Variables already set in the environment take precedence.
package envfile

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Read parses a .env file into a key/value map.
// A missing file yields an empty map and no error.
func Read(path string) (map[string]string, error) {
	vars := make(map[string]string)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return vars, nil
		}
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		// First occurrence wins, matching how Load treats earlier files.
		if _, seen := vars[key]; !seen {
			vars[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return vars, nil
}

// Load reads path and sets every variable whose name starts with prefix and
// is not already set to a non-empty value. It returns the names it set,
// sorted.
func Load(path, prefix string) ([]string, error) {
	vars, err := Read(path)
	if err != nil {
		return nil, err
	}

	var applied []string
	for key, value := range vars {
		if !strings.HasPrefix(key, prefix) || os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return applied, fmt.Errorf("setting %s: %w", key, err)
		}
		applied = append(applied, key)
	}
	sort.Strings(applied)
	return applied, nil
}

// parseEnvLine extracts KEY=VALUE from a line, dropping an optional export
// prefix and matching quotes around the value.
func parseEnvLine(line string) (key, value string, ok bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}

	key = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(key), "export "))
	value = strings.TrimSpace(value)
	if key == "" {
		return "", "", false
	}

	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return key, value, true
}
