package config

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestDir_Default(t *testing.T) {
	t.Setenv("MILK_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	dir := Dir()
	if dir == "" {
		t.Fatal("Dir() returned empty string")
	}
	if runtime.GOOS != "windows" && filepath.Base(dir) != "milk" {
		t.Errorf("Dir() = %q, want path ending in 'milk'", dir)
	}
}

func TestDir_ExplicitOverride(t *testing.T) {
	t.Setenv("MILK_CONFIG_HOME", "/custom/path")
	if got := Dir(); got != "/custom/path" {
		t.Errorf("Dir() = %q, want %q", got, "/custom/path")
	}
	if got := Path(); got != filepath.Join("/custom/path", FileName) {
		t.Errorf("Path() = %q", got)
	}
}

func TestDir_XDGOverride(t *testing.T) {
	t.Setenv("MILK_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	if got := Dir(); got != filepath.Join("/xdg/config", "milk") {
		t.Errorf("Dir() = %q, want %q", got, filepath.Join("/xdg/config", "milk"))
	}
}
