package output

import (
	"io"
	"os"
)

// Color modes accepted by --color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ResolveColorMode combines the --color flag with TTY detection.
// Unknown modes behave like "auto".
func ResolveColorMode(colorMode string, isTTY bool) bool {
	switch colorMode {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return isTTY
	}
}

// IsTTY reports whether writer is a terminal.
func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
