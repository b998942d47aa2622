package resolve

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gorewood/chatfmt/internal/catalog"
)

// Tokenizer is the part of a tokenizer the resolver reads. An empty
// ChatTemplate means the tokenizer carries no default template.
type Tokenizer interface {
	ChatTemplate() string
}

// Request is a single resolution input.
type Request struct {
	Choice string
	// Inline is the template used for the "jinja" choice.
	Inline string
	// Tokenizer is nil when no tokenizer was supplied.
	Tokenizer Tokenizer
}

// Source identifies where a resolved template came from.
type Source string

// Resolution sources.
const (
	SourceInline    Source = "inline"
	SourceTokenizer Source = "tokenizer"
	SourceCatalog   Source = "catalog"
)

// Resolution is a resolved template with provenance.
type Resolution struct {
	Template string `json:"template"`
	Source   Source `json:"source"`
	Kind     string `json:"kind"`
	// Name is the catalog entry used, for SourceCatalog.
	Name string `json:"name,omitempty"`
	// Warning is set when the fallback path was taken.
	Warning string `json:"warning,omitempty"`
}

// Resolver resolves requests against a catalog.
type Resolver struct {
	catalog *catalog.Catalog
	log     zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for the fallback warning.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// New returns a resolver over cat.
func New(cat *catalog.Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: cat,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the catalog the resolver reads.
func (r *Resolver) Catalog() *catalog.Catalog {
	return r.catalog
}

// RegisterTemplate adds a named template to the underlying catalog.
// It fails with catalog.ErrDuplicateName if the name exists.
func (r *Resolver) RegisterTemplate(name, body string) error {
	return r.catalog.Register(name, body)
}

// Resolve returns the template selected by req.
func (r *Resolver) Resolve(req Request) (string, error) {
	res, err := r.ResolveDetailed(req)
	if err != nil {
		return "", err
	}
	return res.Template, nil
}

// ResolveDetailed returns the template selected by req along with where it
// came from.
func (r *Resolver) ResolveDetailed(req Request) (Resolution, error) {
	choice := Classify(req.Choice)

	switch choice.Kind {
	case KindInline:
		if req.Inline == "" {
			return Resolution{}, fmt.Errorf("%w: choice %q", ErrMissingInlineTemplate, choice.Raw)
		}
		return Resolution{Template: req.Inline, Source: SourceInline, Kind: choice.Kind.String()}, nil

	case KindTokenizerDefault:
		if req.Tokenizer == nil {
			return Resolution{}, fmt.Errorf("%w: choice %q", ErrMissingTokenizer, choice.Raw)
		}
		tmpl := req.Tokenizer.ChatTemplate()
		if tmpl == "" {
			return Resolution{}, fmt.Errorf("%w: choice %q requires a chat_template in the tokenizer config",
				ErrTokenizerHasNoDefault, choice.Raw)
		}
		return Resolution{Template: tmpl, Source: SourceTokenizer, Kind: choice.Kind.String()}, nil

	case KindFallback:
		if req.Tokenizer == nil {
			return Resolution{}, fmt.Errorf("%w: choice %q", ErrMissingTokenizer, choice.Raw)
		}
		if tmpl := req.Tokenizer.ChatTemplate(); tmpl != "" {
			return Resolution{Template: tmpl, Source: SourceTokenizer, Kind: choice.Kind.String()}, nil
		}

		warning := fallbackWarning(choice.Name)
		r.log.Warn().Str("choice", choice.Raw).Str("fallback", choice.Name).Msg(warning)

		res, err := r.lookup(choice.Name)
		if err != nil {
			return Resolution{}, fmt.Errorf("%w (fallback for choice %q)", err, choice.Raw)
		}
		res.Kind = choice.Kind.String()
		res.Warning = warning
		return res, nil

	case KindNamed:
		res, err := r.lookup(choice.Name)
		if err != nil {
			return Resolution{}, err
		}
		res.Kind = choice.Kind.String()
		return res, nil

	default:
		panic(fmt.Sprintf("resolve: unhandled choice kind %d", choice.Kind))
	}
}

// lookup resolves a bare catalog name.
func (r *Resolver) lookup(name string) (Resolution, error) {
	body, ok := r.catalog.Lookup(name)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return Resolution{Template: body, Source: SourceCatalog, Name: name}, nil
}

func fallbackWarning(name string) string {
	return fmt.Sprintf("no chat template found on tokenizer, falling back to %s; "+
		"it is recommended to set train_on_inputs to true so the model learns this chat template", name)
}
