// Package theme picks colors for terminal output and highlights diffs.
package theme

import (
	"log/slog"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	darkmode "github.com/thiagokokada/dark-mode-go"
)

type Preference int

const (
	Auto Preference = iota
	Light
	Dark
)

func (p Preference) String() string {
	switch p {
	case Light:
		return "light"
	case Dark:
		return "dark"
	default:
		return "auto"
	}
}

var detectDarkMode = darkmode.IsDarkMode

func PreferenceFromString(raw string) Preference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case Dark.String():
		return Dark
	case Light.String():
		return Light
	default:
		return Auto
	}
}

// Resolve turns Auto into Light or Dark by asking the desktop. Detection
// failures fall back to Light.
func Resolve(pref Preference) Preference {
	if pref != Auto {
		return pref
	}
	if detectDarkMode == nil {
		return Light
	}
	dark, err := detectDarkMode()
	if err != nil {
		slog.Debug("detect dark-mode", slog.Any("error", err))
		return Light
	}
	if dark {
		return Dark
	}
	return Light
}

// Style returns the chroma style matching pref.
func Style(pref Preference) *chroma.Style {
	name := "github"
	if Resolve(pref) == Dark {
		name = "github-dark"
	}
	if st := styles.Get(name); st != nil {
		return st
	}
	return styles.Fallback
}
