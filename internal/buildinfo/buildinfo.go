// Package buildinfo reports how the running binary was built.
package buildinfo

import (
	"runtime/debug"
	"strings"
)

var readBuildInfo = debug.ReadBuildInfo

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	return version(info)
}

// String returns the version followed by the VCS revision and build tags
// when they were recorded, e.g. "v0.3.0 (1a2b3c4-dirty, tags: netgo)".
func String() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	return describe(info)
}

func version(info *debug.BuildInfo) string {
	v := info.Main.Version
	if v == "" || v == "(devel)" {
		return "dev"
	}
	return v
}

func describe(info *debug.BuildInfo) string {
	var (
		revision string
		modified bool
		tags     string
	)
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		case "-tags":
			tags = setting.Value
		}
	}
	var extra []string
	if revision != "" {
		if len(revision) > 7 {
			revision = revision[:7]
		}
		if modified {
			revision += "-dirty"
		}
		extra = append(extra, revision)
	}
	if tags != "" {
		extra = append(extra, "tags: "+tags)
	}
	if len(extra) == 0 {
		return version(info)
	}
	return version(info) + " (" + strings.Join(extra, ", ") + ")"
}
