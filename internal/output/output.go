package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes command results in JSON or human-readable form.
type Printer struct {
	w      io.Writer
	errW   io.Writer
	json   bool
	isTTY  bool
	styles *Styles
}

// Styles holds lipgloss styles for human-readable output.
type Styles struct {
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Bold    lipgloss.Style
	Title   lipgloss.Style
	Key     lipgloss.Style
	Muted   lipgloss.Style
	Border  lipgloss.Color
}

// NewPrinter creates a Printer. Colors are enabled only when isTTY is true.
func NewPrinter(writer io.Writer, jsonMode bool, isTTY bool) *Printer {
	styles := &Styles{
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:   lipgloss.NewStyle().Faint(true),
		Border:  lipgloss.Color("8"),
	}

	if !isTTY {
		plain := lipgloss.NewStyle()
		styles = &Styles{
			Error: plain, Success: plain, Warning: plain, Bold: plain,
			Title: plain, Key: plain, Muted: plain, Border: lipgloss.Color(""),
		}
	}

	return &Printer{
		w:      writer,
		errW:   writer,
		json:   jsonMode,
		isTTY:  isTTY,
		styles: styles,
	}
}

// WithStderr sets a separate writer for human-mode errors and warnings.
// JSON mode keeps everything on the main writer.
func (p *Printer) WithStderr(w io.Writer) *Printer {
	p.errW = w
	return p
}

// IsJSON returns true if the printer is in JSON mode.
func (p *Printer) IsJSON() bool {
	return p.json
}

// IsTTY returns true if the printer output is a TTY.
func (p *Printer) IsTTY() bool {
	return p.isTTY
}

// Success outputs a result map. Human mode prints the "message" key when
// present, otherwise each key in sorted order.
func (p *Printer) Success(data map[string]any) error {
	if p.json {
		return p.writeJSON(data)
	}

	if msg, ok := data["message"].(string); ok {
		mustWrite(fmt.Fprintln(p.w, p.styles.Success.Render(msg)))
		return nil
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		mustWrite(fmt.Fprintf(p.w, "%s: %v\n", p.styles.Bold.Render(key), data[key]))
	}
	return nil
}

// Error outputs an error. Non-ExitError values are reported as user errors.
func (p *Printer) Error(err error) {
	exitErr := &ExitError{}
	if !errors.As(err, &exitErr) {
		exitErr = &ExitError{Code: ExitUserError, Message: err.Error()}
	}

	if p.json {
		mustWrite(p.w.Write(ErrorJSON(exitErr.Message, exitErr.Code)))
		mustWrite(fmt.Fprintln(p.w))
		return
	}
	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.Error.Render("Error"), exitErr.Message))
}

// Warn outputs a warning. JSON mode writes {"warning": "..."}.
func (p *Printer) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.json {
		_ = p.writeJSON(map[string]any{"warning": msg})
		return
	}
	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.Warning.Render("Warning"), msg))
}

// Template writes a template body exactly, followed by a newline unless the
// body already ends with one.
func (p *Printer) Template(body string) {
	mustWrite(io.WriteString(p.w, body))
	if !strings.HasSuffix(body, "\n") {
		mustWrite(fmt.Fprintln(p.w))
	}
}

// WriteJSON encodes any value as indented JSON.
func (p *Printer) WriteJSON(data any) error {
	return p.writeJSON(data)
}

func (p *Printer) writeJSON(data any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorJSON returns {"error": message, "code": N} as bytes.
func ErrorJSON(message string, code int) []byte {
	result, _ := json.Marshal(map[string]any{
		"error": message,
		"code":  code,
	})
	return result
}

// mustWrite panics if a write to stdout, stderr or a buffer fails.
func mustWrite(_ int, err error) {
	if err != nil {
		panic(fmt.Sprintf("write failed: %v", err))
	}
}

// Table renders rows under bold headers with auto-sized columns.
func (p *Printer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		if i > 0 {
			mustWrite(fmt.Fprint(p.w, "  "))
		}
		mustWrite(fmt.Fprint(p.w, p.styles.Bold.Render(padCell(h, widths[i], i == len(headers)-1))))
	}
	mustWrite(fmt.Fprintln(p.w))

	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				mustWrite(fmt.Fprint(p.w, "  "))
			}
			mustWrite(fmt.Fprint(p.w, padCell(cell, widths[i], i == len(row)-1)))
		}
		mustWrite(fmt.Fprintln(p.w))
	}
}

// Box renders content in a rounded border on a TTY, and as plain text
// otherwise.
func (p *Printer) Box(title string, content string) {
	if !p.isTTY {
		if title != "" {
			mustWrite(fmt.Fprintln(p.w, title))
			mustWrite(fmt.Fprintln(p.w))
		}
		mustWrite(fmt.Fprintln(p.w, content))
		return
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.styles.Border).
		Padding(0, 1)

	boxContent := content
	if title != "" {
		boxContent = p.styles.Title.Render(title) + "\n\n" + content
	}
	mustWrite(fmt.Fprintln(p.w, style.Render(boxContent)))
}

// KeyValue renders "Key: Value".
func (p *Printer) KeyValue(key string, value string) {
	mustWrite(fmt.Fprintf(p.w, "%s %s\n", p.styles.Key.Render(key+":"), value))
}

// Muted renders a faint line, used for hints.
func (p *Printer) Muted(format string, args ...any) {
	mustWrite(fmt.Fprintln(p.w, p.styles.Muted.Render(fmt.Sprintf(format, args...))))
}

// padCell pads s to width; the last column is left unpadded.
func padCell(s string, width int, last bool) string {
	if last || len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
