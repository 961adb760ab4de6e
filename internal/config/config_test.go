package config

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cndtool.yaml")
	c := &Config{OutputDir: "out", MaxTex: 256, CachePath: "cache.db"}

	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *c {
		t.Fatalf("Load() = %+v, want %+v", got, c)
	}
}

func TestMergeOverridesOnlyNonZero(t *testing.T) {
	c := &Config{OutputDir: "fileout", MaxTex: 128, CachePath: "filecache.db"}

	merged := c.Merge("cliout", 0, "")
	if merged.OutputDir != "cliout" {
		t.Fatalf("OutputDir = %q, want cliout", merged.OutputDir)
	}
	if merged.MaxTex != 128 {
		t.Fatalf("MaxTex = %d, want 128 (unset CLI flag should not override)", merged.MaxTex)
	}
	if merged.CachePath != "filecache.db" {
		t.Fatalf("CachePath = %q, want filecache.db", merged.CachePath)
	}
}
