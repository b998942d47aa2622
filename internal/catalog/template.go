package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const templateExt = ".jinja"

// frontmatter is the optional YAML header of a template file.
type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// LoadDir registers every *.jinja file in dir under the given source label.
// The entry name is the frontmatter name, or the file stem when absent.
// A missing directory registers nothing and is not an error. Loading stops
// at the first failure; files registered before it stay registered.
func (c *Catalog) LoadDir(dir, source string) (int, error) {
	if dir == "" {
		return 0, nil
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading template directory %s: %w", dir, err)
	}

	files := make([]string, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), templateExt) {
			continue
		}
		files = append(files, dirEntry.Name())
	}
	sort.Strings(files)

	loaded := 0
	for _, file := range files {
		path := filepath.Join(dir, file)
		data, err := os.ReadFile(path)
		if err != nil {
			return loaded, fmt.Errorf("reading template %s: %w", path, err)
		}

		entry, err := parseTemplate(strings.TrimSuffix(file, templateExt), string(data))
		if err != nil {
			return loaded, fmt.Errorf("parsing template %s: %w", path, err)
		}
		entry.Source = source

		if err := c.RegisterEntry(entry); err != nil {
			return loaded, fmt.Errorf("registering %s: %w", path, err)
		}
		loaded++
	}
	return loaded, nil
}

// parseTemplate builds an entry from raw file content with optional YAML
// frontmatter. The body keeps its whitespace except for one trailing newline.
func parseTemplate(stem, raw string) (Entry, error) {
	header, body := splitFrontmatter(raw)

	var meta frontmatter
	if header != "" {
		if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
			return Entry{}, fmt.Errorf("invalid frontmatter: %w", err)
		}
	}

	name := meta.Name
	if name == "" {
		name = stem
	}

	body = strings.TrimSuffix(body, "\n")

	return Entry{
		Name:        name,
		Body:        body,
		Description: meta.Description,
	}, nil
}

// splitFrontmatter separates a leading "---" delimited YAML block from the body.
// Unlike prose templates the body is not trimmed.
func splitFrontmatter(raw string) (header, body string) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	if !strings.HasPrefix(raw, "---\n") {
		return "", raw
	}

	rest := raw[len("---\n"):]
	if strings.HasPrefix(rest, "---\n") {
		return "", rest[len("---\n"):]
	}

	before, after, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		if trimmed, found := strings.CutSuffix(rest, "\n---"); found {
			return strings.TrimSpace(trimmed), ""
		}
		return "", raw
	}
	return strings.TrimSpace(before), after
}
