package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gorewood/chatfmt/internal/resolve"
)

// newShowCmd creates the show command.
func newShowCmd() *cobra.Command {
	var rawFlag bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a catalog template",
		Long: `Show the body and metadata of a named catalog template.

Sentinel choices such as jinja or tokenizer_default are not catalog entries;
use 'chatfmt resolve' for those.

Examples:
  chatfmt show chatml
  chatfmt show llama3 --raw > llama3.jinja`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], rawFlag)
		},
	}

	cmd.Flags().BoolVar(&rawFlag, "raw", false, "Print only the template body")

	return cmd
}

// runShow executes the show command.
func runShow(cmd *cobra.Command, name string, rawFlag bool) error {
	printer := newPrinter(cmd)

	sess, err := loadSession(cmd)
	if err != nil {
		return fail(printer, err)
	}

	entry, ok := sess.resolver.Catalog().Entry(name)
	if !ok {
		return fail(printer, fmt.Errorf("%w: %q. Run 'chatfmt list' to see available templates",
			resolve.ErrUnknownTemplate, name))
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"name":        entry.Name,
			"source":      entry.Source,
			"description": entry.Description,
			"body":        entry.Body,
		})
	}

	if rawFlag || !printer.IsTTY() {
		printer.Template(entry.Body)
		return nil
	}

	printer.KeyValue("Source", entry.Source)
	if entry.Description != "" {
		printer.KeyValue("Description", entry.Description)
	}
	printer.Box(entry.Name, entry.Body)
	return nil
}
