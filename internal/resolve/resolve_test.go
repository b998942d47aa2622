package resolve

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gorewood/chatfmt/internal/catalog"
)

type stubTokenizer string

func (s stubTokenizer) ChatTemplate() string { return string(s) }

func newTestResolver(t *testing.T) (*Resolver, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return New(catalog.New(), WithLogger(zerolog.New(&buf))), &buf
}

func builtin(t *testing.T, name string) string {
	t.Helper()
	body, ok := catalog.New().Lookup(name)
	if !ok {
		t.Fatalf("built-in %q missing", name)
	}
	return body
}

func TestResolve(t *testing.T) {
	chatml := builtin(t, "chatml")

	tests := []struct {
		name       string
		req        Request
		want       string
		wantSource Source
		wantErr    error
		wantWarn   bool
	}{
		{
			name:       "inline override",
			req:        Request{Choice: "jinja", Inline: "X"},
			want:       "X",
			wantSource: SourceInline,
		},
		{
			name:       "inline ignores tokenizer",
			req:        Request{Choice: "jinja", Inline: "X", Tokenizer: stubTokenizer("T")},
			want:       "X",
			wantSource: SourceInline,
		},
		{
			name:    "inline missing",
			req:     Request{Choice: "jinja"},
			wantErr: ErrMissingInlineTemplate,
		},
		{
			name:       "tokenizer default",
			req:        Request{Choice: "tokenizer_default", Tokenizer: stubTokenizer("T")},
			want:       "T",
			wantSource: SourceTokenizer,
		},
		{
			name:    "tokenizer default without tokenizer",
			req:     Request{Choice: "tokenizer_default"},
			wantErr: ErrMissingTokenizer,
		},
		{
			name:    "tokenizer default empty",
			req:     Request{Choice: "tokenizer_default", Tokenizer: stubTokenizer("")},
			wantErr: ErrTokenizerHasNoDefault,
		},
		{
			name:       "fallback prefers tokenizer",
			req:        Request{Choice: "tokenizer_default_fallback_chatml", Tokenizer: stubTokenizer("T")},
			want:       "T",
			wantSource: SourceTokenizer,
		},
		{
			name:       "fallback to catalog",
			req:        Request{Choice: "tokenizer_default_fallback_chatml", Tokenizer: stubTokenizer("")},
			want:       chatml,
			wantSource: SourceCatalog,
			wantWarn:   true,
		},
		{
			name:    "fallback without tokenizer",
			req:     Request{Choice: "tokenizer_default_fallback_chatml"},
			wantErr: ErrMissingTokenizer,
		},
		{
			name:     "fallback to unknown name",
			req:      Request{Choice: "tokenizer_default_fallback_nope", Tokenizer: stubTokenizer("")},
			wantErr:  ErrUnknownTemplate,
			wantWarn: true,
		},
		{
			name:       "named built-in",
			req:        Request{Choice: "chatml"},
			want:       chatml,
			wantSource: SourceCatalog,
		},
		{
			name:       "named ignores inline and tokenizer",
			req:        Request{Choice: "chatml", Inline: "X", Tokenizer: stubTokenizer("T")},
			want:       chatml,
			wantSource: SourceCatalog,
		},
		{
			name:    "unknown name",
			req:     Request{Choice: "made_up_template"},
			wantErr: ErrUnknownTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, logs := newTestResolver(t)

			res, err := r.ResolveDetailed(tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveDetailed() error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("ResolveDetailed() error = %v", err)
				}
				if res.Template != tt.want {
					t.Errorf("Template = %q, want %q", res.Template, tt.want)
				}
				if res.Source != tt.wantSource {
					t.Errorf("Source = %q, want %q", res.Source, tt.wantSource)
				}
				if (res.Warning != "") != tt.wantWarn {
					t.Errorf("Warning = %q, wantWarn %v", res.Warning, tt.wantWarn)
				}
			}

			logged := strings.Contains(logs.String(), `"level":"warn"`)
			if logged != tt.wantWarn {
				t.Errorf("warning logged = %v, want %v; logs: %s", logged, tt.wantWarn, logs.String())
			}
		})
	}
}

func TestResolveErrorNamesChoice(t *testing.T) {
	r, _ := newTestResolver(t)

	_, err := r.Resolve(Request{Choice: "made_up_template"})
	if err == nil || !strings.Contains(err.Error(), "made_up_template") {
		t.Errorf("error %v should name the choice", err)
	}

	_, err = r.Resolve(Request{Choice: "tokenizer_default_fallback_nope", Tokenizer: stubTokenizer("")})
	if err == nil || !strings.Contains(err.Error(), "tokenizer_default_fallback_nope") {
		t.Errorf("error %v should name the original choice", err)
	}
}

func TestFallbackWarningContent(t *testing.T) {
	r, logs := newTestResolver(t)

	res, err := r.ResolveDetailed(Request{Choice: "tokenizer_default_fallback_chatml", Tokenizer: stubTokenizer("")})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"chatml", "train_on_inputs"} {
		if !strings.Contains(res.Warning, want) {
			t.Errorf("warning %q should mention %q", res.Warning, want)
		}
	}
	if !strings.Contains(logs.String(), `"fallback":"chatml"`) {
		t.Errorf("log should carry fallback field: %s", logs.String())
	}
	if res.Name != "chatml" || res.Kind != "fallback" {
		t.Errorf("Resolution = %+v", res)
	}
}

func TestRegisterTemplateThenResolve(t *testing.T) {
	r, _ := newTestResolver(t)

	if err := r.RegisterTemplate("custom1", "BODY"); err != nil {
		t.Fatalf("RegisterTemplate() error = %v", err)
	}
	got, err := r.Resolve(Request{Choice: "custom1"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "BODY" {
		t.Errorf("Resolve(custom1) = %q, want BODY", got)
	}

	if err := r.RegisterTemplate("custom1", "OTHER"); !errors.Is(err, catalog.ErrDuplicateName) {
		t.Errorf("duplicate RegisterTemplate() error = %v, want ErrDuplicateName", err)
	}
	if got, _ := r.Resolve(Request{Choice: "custom1"}); got != "BODY" {
		t.Errorf("Resolve(custom1) after duplicate = %q, want BODY", got)
	}
}

func TestFallbackToCustomTemplate(t *testing.T) {
	r, _ := newTestResolver(t)
	if err := r.RegisterTemplate("house_style", "HOUSE"); err != nil {
		t.Fatal(err)
	}

	got, err := r.Resolve(Request{Choice: FallbackChoice("house_style"), Tokenizer: stubTokenizer("")})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "HOUSE" {
		t.Errorf("Resolve() = %q, want HOUSE", got)
	}
}

func TestResolveIdempotent(t *testing.T) {
	r, _ := newTestResolver(t)
	reqs := []Request{
		{Choice: "llama3"},
		{Choice: "jinja", Inline: "X"},
		{Choice: "tokenizer_default_fallback_gemma", Tokenizer: stubTokenizer("")},
	}

	for _, req := range reqs {
		first, err := r.Resolve(req)
		if err != nil {
			t.Fatalf("Resolve(%+v) error = %v", req, err)
		}
		for range 5 {
			again, err := r.Resolve(req)
			if err != nil || again != first {
				t.Fatalf("Resolve(%+v) changed between calls", req)
			}
		}
	}
}

func TestIsolatedCatalogs(t *testing.T) {
	a := New(catalog.NewEmpty())
	b := New(catalog.NewEmpty())

	if err := a.RegisterTemplate("only_in_a", "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Resolve(Request{Choice: "only_in_a"}); !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("resolver b saw a's template: %v", err)
	}
}
