package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/chatfmt/internal/catalog"
	"github.com/gorewood/chatfmt/internal/resolve"
	"github.com/gorewood/chatfmt/internal/tokenizer"
)

// --- Resolve tool ---

// ResolveInput is the input for the resolve_template tool.
type ResolveInput struct {
	Choice        string  `json:"choice"                   jsonschema:"chat_template choice, e.g. chatml or tokenizer_default_fallback_llama3"`
	Inline        string  `json:"inline,omitempty"         jsonschema:"inline template used when choice is jinja"`
	TokenizerPath string  `json:"tokenizer_path,omitempty" jsonschema:"model directory or tokenizer_config.json path"`
	TokenizerTmpl *string `json:"tokenizer_template,omitempty" jsonschema:"tokenizer chat_template to use instead of reading a file; empty string means the tokenizer has none"`
}

// ResolveOutput is the output for the resolve_template tool.
type ResolveOutput struct {
	Choice   string `json:"choice"            jsonschema:"choice that was resolved"`
	Kind     string `json:"kind"              jsonschema:"choice kind: inline, tokenizer_default, fallback or named"`
	Source   string `json:"source"            jsonschema:"where the template came from: inline, tokenizer or catalog"`
	Name     string `json:"name,omitempty"    jsonschema:"catalog entry used"`
	Template string `json:"template"          jsonschema:"resolved template string"`
	Warning  string `json:"warning,omitempty" jsonschema:"non-fatal warning from the fallback path"`
}

func handleResolve(resolver *resolve.Resolver) mcp.ToolHandlerFor[ResolveInput, ResolveOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ResolveInput) (*mcp.CallToolResult, ResolveOutput, error) {
		tok, err := inputTokenizer(input)
		if err != nil {
			return nil, ResolveOutput{}, err
		}

		choice := input.Choice
		if choice == "" {
			choice = resolve.TokenizerDefaultChoice
		}

		res, err := resolver.ResolveDetailed(resolve.Request{
			Choice:    choice,
			Inline:    input.Inline,
			Tokenizer: tok,
		})
		if err != nil {
			return nil, ResolveOutput{}, err
		}

		return nil, ResolveOutput{
			Choice:   choice,
			Kind:     res.Kind,
			Source:   string(res.Source),
			Name:     res.Name,
			Template: res.Template,
			Warning:  res.Warning,
		}, nil
	}
}

// staticTokenizer is a tokenizer whose template was passed in directly.
type staticTokenizer string

func (s staticTokenizer) ChatTemplate() string { return string(s) }

// inputTokenizer returns nil when the caller supplied no tokenizer.
func inputTokenizer(input ResolveInput) (resolve.Tokenizer, error) {
	switch {
	case input.TokenizerPath != "":
		cfg, err := tokenizer.Load(input.TokenizerPath)
		if err != nil {
			return nil, fmt.Errorf("loading tokenizer: %w", err)
		}
		return cfg, nil
	case input.TokenizerTmpl != nil:
		return staticTokenizer(*input.TokenizerTmpl), nil
	default:
		return nil, nil
	}
}

// --- List tool ---

// ListInput is the input for the list_templates tool.
type ListInput struct {
	Source string `json:"source,omitempty" jsonschema:"only list templates from this source (built-in, global, project, config, api)"`
}

// TemplateSummary describes a catalog entry without its body.
type TemplateSummary struct {
	Name        string `json:"name"                  jsonschema:"template name"`
	Source      string `json:"source"                jsonschema:"where the template was registered from"`
	Description string `json:"description,omitempty" jsonschema:"short description"`
}

// ListOutput is the output for the list_templates tool.
type ListOutput struct {
	Count     int               `json:"count"     jsonschema:"number of templates listed"`
	Templates []TemplateSummary `json:"templates" jsonschema:"templates in registration order"`
}

func handleList(resolver *resolve.Resolver) mcp.ToolHandlerFor[ListInput, ListOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
		entries := resolver.Catalog().Entries()
		out := ListOutput{Templates: make([]TemplateSummary, 0, len(entries))}
		for _, entry := range entries {
			if input.Source != "" && entry.Source != input.Source {
				continue
			}
			out.Templates = append(out.Templates, TemplateSummary{
				Name:        entry.Name,
				Source:      entry.Source,
				Description: entry.Description,
			})
		}
		out.Count = len(out.Templates)
		return nil, out, nil
	}
}

// --- Show tool ---

// ShowInput is the input for the show_template tool.
type ShowInput struct {
	Name string `json:"name" jsonschema:"catalog template name"`
}

// ShowOutput is the output for the show_template tool.
type ShowOutput struct {
	Name        string `json:"name"                  jsonschema:"template name"`
	Source      string `json:"source"                jsonschema:"where the template was registered from"`
	Description string `json:"description,omitempty" jsonschema:"short description"`
	Body        string `json:"body"                  jsonschema:"template body"`
}

func handleShow(resolver *resolve.Resolver) mcp.ToolHandlerFor[ShowInput, ShowOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ShowInput) (*mcp.CallToolResult, ShowOutput, error) {
		entry, ok := resolver.Catalog().Entry(input.Name)
		if !ok {
			return nil, ShowOutput{}, fmt.Errorf("%w: %q", resolve.ErrUnknownTemplate, input.Name)
		}
		return nil, ShowOutput{
			Name:        entry.Name,
			Source:      entry.Source,
			Description: entry.Description,
			Body:        entry.Body,
		}, nil
	}
}

// --- Register tool ---

// RegisterInput is the input for the register_template tool.
type RegisterInput struct {
	Name        string `json:"name"                  jsonschema:"new template name"`
	Body        string `json:"body"                  jsonschema:"template body"`
	Description string `json:"description,omitempty" jsonschema:"short description"`
}

// RegisterOutput is the output for the register_template tool.
type RegisterOutput struct {
	Name  string `json:"name"  jsonschema:"registered template name"`
	Count int    `json:"count" jsonschema:"catalog size after registration"`
}

func handleRegister(resolver *resolve.Resolver) mcp.ToolHandlerFor[RegisterInput, RegisterOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input RegisterInput) (*mcp.CallToolResult, RegisterOutput, error) {
		if input.Name == "" {
			return nil, RegisterOutput{}, errors.New("name is required")
		}

		cat := resolver.Catalog()
		err := cat.RegisterEntry(catalog.Entry{
			Name:        input.Name,
			Body:        input.Body,
			Description: input.Description,
			Source:      catalog.SourceAPI,
		})
		if err != nil {
			return nil, RegisterOutput{}, err
		}
		return nil, RegisterOutput{Name: input.Name, Count: cat.Len()}, nil
	}
}
