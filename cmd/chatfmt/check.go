package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gorewood/chatfmt/internal/config"
	"github.com/gorewood/chatfmt/internal/output"
	"github.com/gorewood/chatfmt/internal/resolve"
)

// checkResult is one resolved target in check output.
type checkResult struct {
	Target  string `json:"target"`
	Choice  string `json:"choice"`
	Source  string `json:"source,omitempty"`
	Name    string `json:"name,omitempty"`
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

// newCheckCmd creates the check command.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Resolve the top-level and every dataset template in a config",
		Long: `Resolve the chat template for the top level of a config file and for
each entry under datasets, and report where every template comes from.

Exits non-zero if any target fails to resolve.

Examples:
  chatfmt check --config run.yaml
  chatfmt check --config run.yaml --tokenizer ./models/base --json`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

// runCheck executes the check command.
func runCheck(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	if path, _ := cmd.Flags().GetString("config"); path == "" {
		return fail(printer, output.NewUserError("check requires --config"))
	}

	sess, err := loadSession(cmd)
	if err != nil {
		return fail(printer, err)
	}

	results := checkConfig(sess)
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	if printer.IsJSON() {
		if err := printer.WriteJSON(map[string]any{
			"config":  sess.cfg.Path,
			"ok":      failed == 0,
			"results": results,
		}); err != nil {
			return err
		}
	} else {
		printCheckTable(printer, results)
	}

	if failed > 0 {
		err := output.NewUserError(fmt.Sprintf("%d of %d chat templates failed to resolve", failed, len(results)))
		if !printer.IsJSON() {
			printer.Error(err)
		}
		return err
	}
	return nil
}

// checkConfig resolves the top level followed by each dataset.
func checkConfig(sess *session) []checkResult {
	results := make([]checkResult, 0, len(sess.cfg.Datasets)+1)
	results = append(results, checkOne(sess, "(top-level)", nil))
	for i := range sess.cfg.Datasets {
		ds := &sess.cfg.Datasets[i]
		target := ds.Path
		if target == "" {
			target = fmt.Sprintf("datasets[%d]", i)
		}
		results = append(results, checkOne(sess, target, ds))
	}
	return results
}

func checkOne(sess *session, target string, ds *config.Dataset) checkResult {
	choice, inline := config.ExtractArgs(sess.cfg, ds)
	result := checkResult{Target: target, Choice: choice}

	res, err := sess.resolver.ResolveDetailed(resolve.Request{
		Choice:    choice,
		Inline:    inline,
		Tokenizer: sess.tokenizerOrNil(),
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Source = string(res.Source)
	result.Name = res.Name
	result.Warning = res.Warning
	return result
}

func printCheckTable(printer *output.Printer, results []checkResult) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		switch {
		case r.Error != "":
			status = "error: " + r.Error
		case r.Warning != "":
			status = "fallback"
		}

		source := r.Source
		if r.Name != "" {
			source += " (" + r.Name + ")"
		}
		rows = append(rows, []string{r.Target, r.Choice, source, status})
	}
	printer.Table([]string{"TARGET", "CHOICE", "SOURCE", "STATUS"}, rows)
}
