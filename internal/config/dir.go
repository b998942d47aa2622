// Package config loads chatfmt run configuration and locates its config
// directory.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chatfmt"

// HomeEnv overrides the global configuration directory.
const HomeEnv = "CHATFMT_CONFIG_HOME"

// ProjectTemplatesDir is the project-local template directory, relative to
// the working directory.
const ProjectTemplatesDir = ".chatfmt/templates"

// Dir returns the chatfmt configuration directory.
//
// Resolution:
//   - $CHATFMT_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/chatfmt if set
//   - %AppData%/chatfmt on Windows
//   - ~/.config/chatfmt elsewhere
func Dir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// GlobalTemplatesDir returns the user-wide template directory, or "" when
// no configuration directory can be determined.
func GlobalTemplatesDir() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "templates")
}
