package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunWithoutArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(nil, &stdout, &stderr)

	if code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
	if !strings.HasPrefix(stderr.String(), "Please provide folder to search, and pattern file (2 arguments)\n") {
		t.Errorf("stderr should start with the usage message, got: %s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Errorf("stderr should include usage text, got: %s", stderr.String())
	}
}

func TestRunWithOneArgument(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if code := run([]string{t.TempDir()}, &stdout, &stderr); code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
}

func TestRunUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if code := run([]string{"--bogus", "a", "b"}, &stdout, &stderr); code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(stderr.String(), "bogus") {
		t.Errorf("stderr should name the unknown flag, got: %s", stderr.String())
	}
}

func TestRunScan(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"cat.gif":   "GIF89a\x01\x00",
		"notes.txt": "nothing to see here",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	patterns := filepath.Join(t.TempDir(), "patterns.db")
	if err := os.WriteFile(patterns, []byte(`1;"GIF89a";"GIF image"`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"--log-level", "error", dir, patterns}, &stdout, &stderr)

	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	want := "cat.gif: GIF image\nnotes.txt: Unknown file type\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRunMissingPatternFile(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{t.TempDir(), filepath.Join(t.TempDir(), "missing.db")}, &stdout, &stderr)

	if code != exitError {
		t.Errorf("exit code = %d, want %d", code, exitError)
	}
	if !strings.HasPrefix(stderr.String(), "Error: ") {
		t.Errorf("stderr = %q, want an Error: line", stderr.String())
	}
}
