package resolve

import "strings"

// Reserved choice values recognised before any catalog lookup.
const (
	InlineChoice           = "jinja"
	TokenizerDefaultChoice = "tokenizer_default"
	FallbackPrefix         = "tokenizer_default_fallback_"
)

// Kind identifies how a choice string is resolved.
type Kind int

// Choice kinds. The zero value is not a valid kind.
const (
	_ Kind = iota
	KindInline
	KindTokenizerDefault
	KindFallback
	KindNamed
)

// String returns the kind name used in logs and JSON output.
func (k Kind) String() string {
	switch k {
	case KindInline:
		return "inline"
	case KindTokenizerDefault:
		return "tokenizer_default"
	case KindFallback:
		return "fallback"
	case KindNamed:
		return "named"
	default:
		return "unknown"
	}
}

// Choice is a classified choice string.
type Choice struct {
	Kind Kind
	// Name is the catalog name for KindNamed and the fallback target for
	// KindFallback. It is empty otherwise.
	Name string
	// Raw is the original choice string.
	Raw string
}

// Classify maps a raw choice string to its Kind. It never fails; an
// unrecognised string is a catalog name.
func Classify(raw string) Choice {
	switch {
	case raw == InlineChoice:
		return Choice{Kind: KindInline, Raw: raw}
	case raw == TokenizerDefaultChoice:
		return Choice{Kind: KindTokenizerDefault, Raw: raw}
	case strings.HasPrefix(raw, FallbackPrefix):
		return Choice{Kind: KindFallback, Name: raw[len(FallbackPrefix):], Raw: raw}
	default:
		return Choice{Kind: KindNamed, Name: raw, Raw: raw}
	}
}

// FallbackChoice returns the choice that prefers the tokenizer default and
// falls back to the named catalog entry.
func FallbackChoice(name string) string {
	return FallbackPrefix + name
}
