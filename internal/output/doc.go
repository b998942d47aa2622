// Package output renders chatfmt command results for humans and for tools.
//
// A Printer switches between styled text and JSON based on the --json flag:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonMode, isTTY).WithStderr(cmd.ErrOrStderr())
//	printer.Success(map[string]any{"message": "template registered"})
//	printer.Error(err)
//
// In JSON mode errors are written as {"error": "...", "code": N} on the main
// writer so that callers always read a single JSON document.
//
// # Exit Codes
//
//	output.ExitSuccess     // 0
//	output.ExitUserError   // 1: unknown template, missing inline template or tokenizer
//	output.ExitSystemError // 2: unreadable config or tokenizer files
//	output.ExitConflict    // 3: duplicate template name
package output
