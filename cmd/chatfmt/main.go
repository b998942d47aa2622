// Package main provides the entry point for the chatfmt CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gorewood/chatfmt/internal/config"
	"github.com/gorewood/chatfmt/internal/envfile"
	"github.com/gorewood/chatfmt/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Environment variables consulted when neither a flag nor the config file
// sets a value.
const (
	envPrefix       = "CHATFMT_"
	envChatTemplate = "CHATFMT_CHAT_TEMPLATE"
	envTokenizer    = "CHATFMT_TOKENIZER"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// colorMode reads the --color persistent flag, defaulting to auto.
func colorMode(cmd *cobra.Command) string {
	flag := cmd.Flags().Lookup("color")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("color")
	}
	if flag == nil {
		return output.ColorAuto
	}
	return flag.Value.String()
}

// useColor reports whether styled output should be written to stdout.
func useColor(cmd *cobra.Command) bool {
	return output.ResolveColorMode(colorMode(cmd), output.IsTTY(cmd.OutOrStdout()))
}

// newPrinter builds the printer every command writes through.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the chatfmt CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatfmt",
		Short: "Resolve which chat template a model run uses",
		Long: `chatfmt resolves a chat_template choice to the exact template string used to
format conversations for a language model.

A choice is one of:
  <name>                              a template from the catalog
  jinja                               the inline template (--jinja, chat_template_jinja)
  tokenizer_default                   the tokenizer's own chat_template
  tokenizer_default_fallback_<name>   the tokenizer's template, else <name>

The catalog holds built-in templates plus any registered from
~/.config/chatfmt/templates, .chatfmt/templates, --template-dir and the
config file. Names are never overwritten.

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'chatfmt --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	// Load CHATFMT_* defaults from env files. Real environment variables win.
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		loadEnvFiles(newPrinter(cmd))
		return nil
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("color", output.ColorAuto, "Color output: auto, always, never")
	cmd.PersistentFlags().String("log-level", "warn", "Log level for diagnostics on stderr (debug, info, warn, error)")
	addSourceFlags(cmd)

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// loadEnvFiles loads env files in priority order. First match for each
// variable wins.
//
// Resolution order:
//  1. $CWD/.env.local
//  2. $CWD/.env
//  3. <config dir>/env
func loadEnvFiles(printer *output.Printer) {
	paths := []string{".env.local", ".env"}
	if dir := config.Dir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "env"))
	}

	for _, path := range paths {
		if _, err := envfile.Load(path, envPrefix); err != nil {
			printer.Warn("ignoring env file: %v", err)
		}
	}
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "catalog", Title: "Catalog Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "agent", Title: "Agent Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newResolveCmd(), "core")
	addGroupedCommand(cmd, newCheckCmd(), "core")

	addGroupedCommand(cmd, newListCmd(), "catalog")
	addGroupedCommand(cmd, newShowCmd(), "catalog")

	addGroupedCommand(cmd, newServeCmd(), "agent")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
