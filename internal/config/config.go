package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/gorewood/chatfmt/internal/resolve"
)

// Config is a run configuration. Field names follow the training-config
// convention of chat_template / chat_template_jinja.
type Config struct {
	ChatTemplate      string            `yaml:"chat_template"       json:"chat_template"`
	ChatTemplateJinja string            `yaml:"chat_template_jinja" json:"chat_template_jinja"`
	Tokenizer         string            `yaml:"tokenizer"           json:"tokenizer"`
	TemplateDirs      []string          `yaml:"template_dirs"       json:"template_dirs"`
	Templates         map[string]string `yaml:"templates"           json:"templates"`
	Datasets          []Dataset         `yaml:"datasets"            json:"datasets"`

	// Path is the file the config was loaded from, if any.
	Path string `yaml:"-" json:"-"`
}

// Dataset is a per-dataset override block.
type Dataset struct {
	Path              string `yaml:"path"                json:"path"`
	ChatTemplate      string `yaml:"chat_template"       json:"chat_template"`
	ChatTemplateJinja string `yaml:"chat_template_jinja" json:"chat_template_jinja"`
}

// ErrUnsupportedFormat is returned for config files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Load reads a config file. YAML (.yaml, .yml) and JSON with comments
// (.json, .jsonc) are accepted. Relative tokenizer and template_dirs paths
// are resolved against the config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Path = path
	base := filepath.Dir(path)
	cfg.Tokenizer = relativeTo(base, cfg.Tokenizer)
	for i, dir := range cfg.TemplateDirs {
		cfg.TemplateDirs[i] = relativeTo(base, dir)
	}
	return cfg, nil
}

// Parse decodes config data in the format named by ext.
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return &cfg, nil
}

// ExtractArgs returns the effective choice and inline template for a dataset.
// ds may be nil. The dataset value wins when non-empty, then the top-level
// value; the choice defaults to resolve.TokenizerDefaultChoice. The two
// fields are resolved independently.
func ExtractArgs(cfg *Config, ds *Dataset) (choice, inline string) {
	if ds != nil {
		choice = ds.ChatTemplate
		inline = ds.ChatTemplateJinja
	}
	if cfg != nil {
		if choice == "" {
			choice = cfg.ChatTemplate
		}
		if inline == "" {
			inline = cfg.ChatTemplateJinja
		}
	}
	if choice == "" {
		choice = resolve.TokenizerDefaultChoice
	}
	return choice, inline
}

func relativeTo(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
