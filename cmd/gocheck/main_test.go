package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestCLIHelp verifies the help output lists every subcommand
func TestCLIHelp(t *testing.T) {
	binary := buildTestBinary(t)

	output, _ := exec.Command(binary, "--help").CombinedOutput()

	outputStr := string(output)
	for _, want := range []string{"check", "imports", "add-import", "install", "history", "container", "--mode", "--format"} {
		if !strings.Contains(outputStr, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

// TestCLIInvalidFlag verifies invalid flags are rejected
func TestCLIInvalidFlag(t *testing.T) {
	binary := buildTestBinary(t)

	if err := exec.Command(binary, "--nonexistent-flag").Run(); err == nil {
		t.Error("expected error for invalid flag, got nil")
	}
}

// TestCheckMissingFile verifies a nonexistent file fails with a nonzero exit
func TestCheckMissingFile(t *testing.T) {
	binary := buildTestBinary(t)

	cmd := exec.Command(binary, "check", filepath.Join(t.TempDir(), "missing.go"), "--root", t.TempDir())
	if err := cmd.Run(); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

// TestAddImport verifies the binary edits a file in place
func TestAddImport(t *testing.T) {
	binary := buildTestBinary(t)

	file := filepath.Join(t.TempDir(), "main.go")
	if err := os.WriteFile(file, []byte("package main\n"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	output, err := exec.Command(binary, "add-import", file, "fmt").CombinedOutput()
	if err != nil {
		t.Fatalf("add-import failed: %v\nOutput: %s", err, output)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\"fmt\"") {
		t.Errorf("import not added:\n%s", data)
	}
}

// buildTestBinary builds the binary for testing and returns the path
func buildTestBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get package directory: %v", err)
	}

	binary := filepath.Join(t.TempDir(), "gocheck-test")
	cmd := exec.Command("go", "build", "-o", binary, ".")
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build test binary: %v\nOutput: %s", err, output)
	}
	return binary
}
