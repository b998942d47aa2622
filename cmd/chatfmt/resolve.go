package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gorewood/chatfmt/internal/config"
	"github.com/gorewood/chatfmt/internal/output"
	"github.com/gorewood/chatfmt/internal/resolve"
)

// resolveFlags holds the flags of the resolve command.
type resolveFlags struct {
	dataset   int
	jinja     string
	jinjaFile string
}

// newResolveCmd creates the resolve command.
func newResolveCmd() *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve [choice]",
		Short: "Print the chat template a choice resolves to",
		Long: `Resolve a chat_template choice and print the selected template.

Without a choice argument the choice comes from the config file: the dataset's
chat_template when --dataset is given and set, else the top-level
chat_template, else $CHATFMT_CHAT_TEMPLATE, else tokenizer_default. The inline
template follows the same dataset-then-top-level order unless --jinja or
--jinja-file is given.

Examples:
  chatfmt resolve chatml
  chatfmt resolve jinja --jinja-file my_template.jinja
  chatfmt resolve tokenizer_default --tokenizer ./models/llama
  chatfmt resolve tokenizer_default_fallback_llama3 --tokenizer ./models/base
  chatfmt resolve --config run.yaml --dataset 1
  chatfmt resolve llama3 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.dataset, "dataset", "d", -1, "Use the chat_template settings of datasets[N] from the config")
	cmd.Flags().StringVar(&flags.jinja, "jinja", "", "Inline template used when the choice is jinja")
	cmd.Flags().StringVar(&flags.jinjaFile, "jinja-file", "", "Read the inline template from a file")
	cmd.MarkFlagsMutuallyExclusive("jinja", "jinja-file")

	return cmd
}

// runResolve executes the resolve command.
func runResolve(cmd *cobra.Command, args []string, flags resolveFlags) error {
	printer := newPrinter(cmd)

	sess, err := loadSession(cmd)
	if err != nil {
		return fail(printer, err)
	}

	ds, err := selectDataset(sess.cfg, flags.dataset)
	if err != nil {
		return fail(printer, err)
	}

	choice, inline := config.ExtractArgs(sess.cfg, ds)
	if len(args) == 1 && args[0] != "" {
		choice = args[0]
	}

	switch {
	case flags.jinja != "":
		inline = flags.jinja
	case flags.jinjaFile != "":
		data, readErr := os.ReadFile(flags.jinjaFile)
		if readErr != nil {
			return fail(printer, fmt.Errorf("reading inline template: %w", readErr))
		}
		inline = string(data)
	}

	res, err := sess.resolver.ResolveDetailed(resolve.Request{
		Choice:    choice,
		Inline:    inline,
		Tokenizer: sess.tokenizerOrNil(),
	})
	if err != nil {
		return fail(printer, err)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(struct {
			Choice string `json:"choice"`
			resolve.Resolution
		}{choice, res})
	}

	printer.Template(res.Template)
	return nil
}

// selectDataset returns datasets[index], or nil for a negative index.
func selectDataset(cfg *config.Config, index int) (*config.Dataset, error) {
	if index < 0 {
		return nil, nil
	}
	if index >= len(cfg.Datasets) {
		return nil, output.NewUserError(fmt.Sprintf("dataset index %d out of range: config has %d datasets",
			index, len(cfg.Datasets)))
	}
	return &cfg.Datasets[index], nil
}
