package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/chatfmt/internal/catalog"
)

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	var sourceFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates in the catalog",
		Long: `List every named template in the catalog, in registration order.

Sources: built-in, global (~/.config/chatfmt/templates), project
(.chatfmt/templates), config (template_dirs, --template-dir and templates).

Examples:
  chatfmt list
  chatfmt list --source built-in
  chatfmt list --config run.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, sourceFlag)
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "", "Only list templates from this source")

	return cmd
}

// runList executes the list command.
func runList(cmd *cobra.Command, sourceFlag string) error {
	printer := newPrinter(cmd)

	sess, err := loadSession(cmd)
	if err != nil {
		return fail(printer, err)
	}

	entries := filterEntries(sess.resolver.Catalog().Entries(), sourceFlag)

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"count":     len(entries),
			"templates": entries,
		})
	}

	if len(entries) == 0 {
		printer.Muted("no templates")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{entry.Name, entry.Source, entry.Description})
	}
	printer.Table([]string{"NAME", "SOURCE", "DESCRIPTION"}, rows)
	return nil
}

// filterEntries keeps entries from source; an empty source keeps all.
func filterEntries(entries []catalog.Entry, source string) []catalog.Entry {
	if source == "" {
		return entries
	}
	kept := make([]catalog.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Source == source {
			kept = append(kept, entry)
		}
	}
	return kept
}
