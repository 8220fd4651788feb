package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInitThenCatalog(t *testing.T) {
	t.Setenv("RECCASTER_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "reccaster.yaml")

	out, err := execute(t, "init", "--config", path)
	if err != nil {
		t.Fatalf("init error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "SUCCESS") {
		t.Errorf("init output:\n%s", out)
	}

	if _, err := execute(t, "init", "--config", path); err == nil {
		t.Error("second init without --force should fail")
	}

	out, err = execute(t, "catalog", "--config", path)
	if err != nil {
		t.Fatalf("catalog error = %v\n%s", err, out)
	}
	for _, want := range []string{"EXAMPLE:TEMP", "LAB:TEMPERATURE", "AddInfo", "UploadDone"} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog output missing %q", want)
		}
	}
}

func TestCatalogMissingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := execute(t, "catalog", "--config", path); err == nil {
		t.Error("catalog with a missing explicit config should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "reccaster ") || !strings.Contains(out, "commit:") {
		t.Errorf("version output = %q", out)
	}
}
