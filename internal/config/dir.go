// Package config locates and loads the milk configuration file.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the milk configuration directory.
//
// Resolution:
//   - $MILK_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/milk if set
//   - %AppData%/milk on Windows
//   - ~/.config/milk elsewhere
func Dir() string {
	if dir := os.Getenv("MILK_CONFIG_HOME"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "milk")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "milk")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "milk")
}
