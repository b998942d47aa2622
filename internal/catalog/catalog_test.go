package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
)

func TestRegisterThenLookup(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"custom1", "BODY"},
		{"empty_body", ""},
		{"whitespace", "  {{ bos_token }}\n\n"},
		{"unicode", "<｜User｜>{{ message['content'] }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewEmpty()
			if err := c.Register(tt.name, tt.body); err != nil {
				t.Fatalf("Register(%q) error = %v", tt.name, err)
			}
			got, ok := c.Lookup(tt.name)
			if !ok {
				t.Fatalf("Lookup(%q) not found after Register", tt.name)
			}
			if got != tt.body {
				t.Errorf("Lookup(%q) = %q, want %q", tt.name, got, tt.body)
			}
		})
	}
}

func TestRegisterDuplicateKeepsFirst(t *testing.T) {
	c := NewEmpty()
	if err := c.Register("dup", "first"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	err := c.Register("dup", "second")
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("second Register() error = %v, want ErrDuplicateName", err)
	}
	if !strings.Contains(err.Error(), `"dup"`) {
		t.Errorf("error %q should name the template", err)
	}

	got, _ := c.Lookup("dup")
	if got != "first" {
		t.Errorf("Lookup(dup) = %q, want %q", got, "first")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestRegisterCannotOverwriteBuiltin(t *testing.T) {
	c := New()
	before, ok := c.Lookup("chatml")
	if !ok {
		t.Fatal("chatml should be built in")
	}

	if err := c.Register("chatml", "hijacked"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("Register(chatml) error = %v, want ErrDuplicateName", err)
	}

	after, _ := c.Lookup("chatml")
	if after != before {
		t.Error("built-in chatml body changed after rejected registration")
	}
}

func TestLookupMissing(t *testing.T) {
	c := New()
	if body, ok := c.Lookup("made_up_template"); ok {
		t.Errorf("Lookup(made_up_template) = %q, want not found", body)
	}
}

func TestNewSeedsBuiltins(t *testing.T) {
	c := New()

	want := []string{"alpaca", "chatml", "gemma", "llama3", "mistral_v1", "phi_3", "qwen_25"}
	for _, name := range want {
		entry, ok := c.Entry(name)
		if !ok {
			t.Errorf("built-in %q missing", name)
			continue
		}
		if entry.Body == "" {
			t.Errorf("built-in %q has empty body", name)
		}
		if entry.Source != SourceBuiltin {
			t.Errorf("built-in %q source = %q, want %q", name, entry.Source, SourceBuiltin)
		}
		if entry.Description == "" {
			t.Errorf("built-in %q has no description", name)
		}
		if strings.HasPrefix(entry.Body, "---") {
			t.Errorf("built-in %q body still contains frontmatter", name)
		}
	}

	chatml, _ := c.Lookup("chatml")
	if !strings.Contains(chatml, "<|im_start|>") {
		t.Errorf("chatml body = %q, want <|im_start|> markers", chatml)
	}

	if c.Len() != len(BuiltinNames()) {
		t.Errorf("Len() = %d, want %d", c.Len(), len(BuiltinNames()))
	}
}

func TestBuiltinNameSet(t *testing.T) {
	want := []string{
		"alpaca", "chatml", "cohere", "deepseek_v2", "deepseek_v3", "exaone",
		"gemma", "jamba", "llama3", "llama3_2_vision", "metharme", "mistral_v1",
		"mistral_v2v3", "mistral_v3_tekken", "phi_3", "phi_35", "qwen_25",
	}
	if got := BuiltinNames(); !slices.Equal(got, want) {
		t.Errorf("BuiltinNames() = %v, want %v", got, want)
	}
}

func TestBuiltinBodies(t *testing.T) {
	c := New()

	const chatml = `{% if messages|length == 0 or messages[0]['role'] != 'system' %}` +
		`{{ '<|im_start|>system<|im_sep|>You are a helpful assistant<|im_end|>' }}{% endif %}` +
		`{% for message in messages %}{{ '<|im_start|>' + message['role'] + '<|im_sep|>' + message['content'] }}` +
		`{% if message['role'] != 'assistant' %}{{ '<|im_end|>' }}{% else %}{{ eos_token }}{% endif %}{% endfor %}` +
		`{% if add_generation_prompt %}{{ '<|im_start|>assistant<|im_sep|>' }}{% endif %}`
	if got, _ := c.Lookup("chatml"); got != chatml {
		t.Errorf("chatml body = %q, want %q", got, chatml)
	}

	tests := []struct {
		name   string
		length int
		prefix string
		suffix string
	}{
		{"jamba", 9458, "{# Variables #}\n{% set ns = namespace(message_count=0", "{{- eom_str -}}\n  {% endif %}\n{% endif %}\n"},
		{"exaone", 339, "{% for message in messages %}{% if loop.first and message['role'] != 'system' %}", "{{ '[|assistant|]' }}{% endif %}"},
		{"qwen_25", 2540, "{%- if tools %}\n    {{- '<|im_start|>system\\n' }}", "\n"},
		{"llama3_2_vision", 4909, "{{- bos_token }}\n{%- if custom_tools is defined %}", "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ok := c.Lookup(tt.name)
			if !ok {
				t.Fatalf("built-in %q missing", tt.name)
			}
			if len(body) != tt.length {
				t.Errorf("len(body) = %d, want %d", len(body), tt.length)
			}
			if !strings.HasPrefix(body, tt.prefix) {
				t.Errorf("body prefix = %q, want %q", body[:min(len(body), len(tt.prefix))], tt.prefix)
			}
			if !strings.HasSuffix(body, tt.suffix) {
				t.Errorf("body should end with %q", tt.suffix)
			}
		})
	}
}

func TestBuiltinsExcludeSentinels(t *testing.T) {
	names := BuiltinNames()
	for _, reserved := range []string{"jinja", "tokenizer_default"} {
		if slices.Contains(names, reserved) {
			t.Errorf("built-ins should not contain sentinel %q", reserved)
		}
	}
}

func TestNamesInsertionOrder(t *testing.T) {
	c := NewEmpty()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := c.Register(name, name+"-body"); err != nil {
			t.Fatal(err)
		}
	}

	got := c.Names()
	want := []string{"zeta", "alpha", "mid"}
	if !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	got[0] = "mutated"
	if c.Names()[0] != "zeta" {
		t.Error("Names() should return a copy")
	}

	entries := c.Entries()
	if len(entries) != 3 || entries[1].Name != "alpha" || entries[1].Source != SourceAPI {
		t.Errorf("Entries() = %+v", entries)
	}
}

func TestConcurrentRegisterSameName(t *testing.T) {
	c := NewEmpty()

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- c.Register("shared", fmt.Sprintf("body-%d", i))
		}(i)
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case !errors.Is(err, ErrDuplicateName):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("successful registrations = %d, want 1", successes)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
