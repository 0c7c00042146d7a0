package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Errorf("output should name the target: %q", output)
	}

	contents, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[paths]") {
		t.Errorf("sample missing paths section")
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Error("second init without --overwrite must fail")
	}
}

func TestVersionSkipsConfig(t *testing.T) {
	// Version must work even when no config can be loaded.
	t.Setenv("HOME", t.TempDir())

	output, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(output, "waymark") {
		t.Errorf("version output: %q", output)
	}
}

func TestBuildCommandOverFixture(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	authored := filepath.Join(home, ".local", "share", "waymark", "data", "authored")
	if err := os.MkdirAll(filepath.Join(authored, "pages"), 0o755); err != nil {
		t.Fatal(err)
	}
	page := filepath.Join(authored, "pages", "about.yaml")
	if err := os.WriteFile(page, []byte("title: About\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := runCommand(t, "build")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(output, "Rebuilt 1 of 1") {
		t.Errorf("first build output: %q", output)
	}

	output, err = runCommand(t, "build")
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if !strings.Contains(output, "Nothing changed") {
		t.Errorf("second build output: %q", output)
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	output, err := runCommand(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(output, "No build runs recorded yet") {
		t.Errorf("history output: %q", output)
	}
}
