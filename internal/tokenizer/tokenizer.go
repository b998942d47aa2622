// Package tokenizer reads the chat template attributes of a HuggingFace
// style tokenizer configuration. It does not tokenize text.
package tokenizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/jsonc"
)

// File names looked up inside a model directory.
const (
	ConfigFile       = "tokenizer_config.json"
	ChatTemplateFile = "chat_template.jinja"
)

// defaultTemplateName selects the default from a list-form chat_template.
const defaultTemplateName = "default"

// ErrNotFound is returned when a model directory has no tokenizer config.
var ErrNotFound = errors.New("tokenizer config not found")

// Config is the subset of tokenizer_config.json chatfmt reads.
type Config struct {
	chatTemplate string
	named        map[string]string

	BOSToken string
	EOSToken string
	// Path is the file the config was read from.
	Path string
}

// rawConfig mirrors the on-disk layout. chat_template is either a string or
// a list of {name, template} objects; special tokens are either strings or
// objects with a content field.
type rawConfig struct {
	ChatTemplate json.RawMessage `json:"chat_template"`
	BOSToken     json.RawMessage `json:"bos_token"`
	EOSToken     json.RawMessage `json:"eos_token"`
}

type namedTemplate struct {
	Name     string `json:"name"`
	Template string `json:"template"`
}

type addedToken struct {
	Content string `json:"content"`
}

// ChatTemplate returns the tokenizer's default chat template, or "".
func (c *Config) ChatTemplate() string {
	return c.chatTemplate
}

// NamedTemplate returns a template from a list-form chat_template.
func (c *Config) NamedTemplate(name string) (string, bool) {
	tmpl, ok := c.named[name]
	return tmpl, ok
}

// TemplateNames lists the names of a list-form chat_template, sorted.
func (c *Config) TemplateNames() []string {
	names := make([]string, 0, len(c.named))
	for name := range c.named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads a tokenizer config from path, which is either a model
// directory or a tokenizer_config.json file. In a directory, a
// chat_template.jinja file supplies the default when the JSON has none.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading tokenizer %s: %w", path, err)
	}

	if !info.IsDir() {
		return loadFile(path)
	}

	configPath := filepath.Join(path, ConfigFile)
	cfg, err := loadFile(configPath)
	if errors.Is(err, ErrNotFound) {
		cfg = &Config{named: map[string]string{}}
	} else if err != nil {
		return nil, err
	}

	if cfg.chatTemplate == "" {
		templatePath := filepath.Join(path, ChatTemplateFile)
		data, readErr := os.ReadFile(templatePath)
		switch {
		case readErr == nil:
			cfg.chatTemplate = string(data)
			if cfg.Path == "" {
				cfg.Path = templatePath
			}
		case os.IsNotExist(readErr):
			if cfg.Path == "" {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
		default:
			return nil, fmt.Errorf("reading %s: %w", templatePath, readErr)
		}
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes tokenizer_config.json content.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("decoding tokenizer config: %w", err)
	}

	cfg := &Config{named: map[string]string{}}

	if err := cfg.decodeChatTemplate(raw.ChatTemplate); err != nil {
		return nil, err
	}

	var err error
	if cfg.BOSToken, err = decodeToken(raw.BOSToken); err != nil {
		return nil, fmt.Errorf("decoding bos_token: %w", err)
	}
	if cfg.EOSToken, err = decodeToken(raw.EOSToken); err != nil {
		return nil, fmt.Errorf("decoding eos_token: %w", err)
	}
	return cfg, nil
}

func (c *Config) decodeChatTemplate(raw json.RawMessage) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		c.chatTemplate = single
		return nil
	}

	var list []namedTemplate
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("decoding chat_template: expected string or list of {name, template}: %w", err)
	}
	for _, item := range list {
		c.named[item.Name] = item.Template
	}
	c.chatTemplate = c.named[defaultTemplateName]
	return nil
}

func decodeToken(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var tok addedToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", err
	}
	return tok.Content, nil
}
