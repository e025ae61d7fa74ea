package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[gc]
threshold-bytes = 4096
growth-factor = 1.5

[trace]
enabled = true

[history]
enabled = true
path = "calc.db"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.GC.ThresholdBytes != 4096 {
		t.Errorf("gc threshold = %d, want 4096", c.GC.ThresholdBytes)
	}
	if c.GC.GrowthFactor != 1.5 {
		t.Errorf("gc growth factor = %v, want 1.5", c.GC.GrowthFactor)
	}
	if !c.Trace.Enabled {
		t.Error("trace not enabled")
	}
	if !c.History.Enabled {
		t.Error("history not enabled")
	}
	if c.History.Path != "calc.db" {
		t.Errorf("history path = %q, want calc.db", c.History.Path)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[trace]
enabled = true
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Default()
	if c.GC.ThresholdBytes != want.GC.ThresholdBytes {
		t.Errorf("gc threshold = %d, want default %d", c.GC.ThresholdBytes, want.GC.ThresholdBytes)
	}
	if c.GC.GrowthFactor != want.GC.GrowthFactor {
		t.Errorf("gc growth factor = %v, want default %v", c.GC.GrowthFactor, want.GC.GrowthFactor)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[gc]
threshold-bytes = -1
`)
	if _, err := Load(dir); err == nil {
		t.Error("Load accepted a negative threshold")
	}

	writeConfig(t, dir, `
[gc]
growth-factor = 0.5
`)
	if _, err := Load(dir); err == nil {
		t.Error("Load accepted a growth factor below 1.0")
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
[gc]
threshold-bytes = 2048
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c.GC.ThresholdBytes != 2048 {
		t.Errorf("gc threshold = %d, want 2048", c.GC.ThresholdBytes)
	}
}

func TestFindAndLoadDefaultsWhenMissing(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	want := Default()
	if c.GC.ThresholdBytes != want.GC.ThresholdBytes || c.Trace.Enabled {
		t.Errorf("FindAndLoad = %+v, want defaults", c)
	}
}

func TestHistoryPathResolution(t *testing.T) {
	c := Default()
	c.Dir = "/etc/bytecalc"
	c.History.Path = "calc.db"
	if got := c.HistoryPath(); got != filepath.Join("/etc/bytecalc", "calc.db") {
		t.Errorf("HistoryPath = %q", got)
	}

	c.History.Path = "/var/lib/calc.db"
	if got := c.HistoryPath(); got != "/var/lib/calc.db" {
		t.Errorf("absolute HistoryPath = %q", got)
	}
}
