package catalog

import (
	"embed"
	"path"
	"strings"
)

//go:embed templates/*.jinja
var builtinFS embed.FS

// builtinEntries parses every embedded template, sorted by file name.
// A malformed embedded file is a build defect and is skipped.
func builtinEntries() []Entry {
	dirEntries, err := builtinFS.ReadDir("templates")
	if err != nil {
		return nil
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), templateExt) {
			continue
		}

		data, err := builtinFS.ReadFile(path.Join("templates", dirEntry.Name()))
		if err != nil {
			continue
		}

		entry, err := parseTemplate(strings.TrimSuffix(dirEntry.Name(), templateExt), string(data))
		if err != nil {
			continue
		}
		entry.Source = SourceBuiltin
		entries = append(entries, entry)
	}
	return entries
}

// BuiltinNames returns the names of the embedded templates.
func BuiltinNames() []string {
	entries := builtinEntries()
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names
}
