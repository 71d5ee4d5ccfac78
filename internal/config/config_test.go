package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabclean/internal/outlier"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ZScoreThreshold != 5 || c.IQRMultiplier != 5 || c.IQRLowerPct != 0.20 || c.IQRUpperPct != 0.80 {
		t.Fatalf("numeric defaults = %+v", c)
	}
	if !c.Parallel || c.LogLevel != "info" || c.LogFormat != "console" {
		t.Fatalf("defaults = %+v", c)
	}
	if len(c.SweepThresholds) != 3 || c.SweepThresholds[2] != 8 {
		t.Fatalf("sweep thresholds = %v", c.SweepThresholds)
	}
	if !c.Columns.Empty() {
		t.Fatalf("expected no default column groups, got %+v", c.Columns)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.ZScoreThreshold = 3
	c.Columns = outlier.Plan{
		ZScore:   []string{"GPA"},
		IQRRight: []string{"Sleep Duration"},
	}
	if err := Save(c, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".tabclean", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.ZScoreThreshold != 3 {
		t.Fatalf("zscore_threshold = %v", got.ZScoreThreshold)
	}
	if len(got.Columns.ZScore) != 1 || got.Columns.ZScore[0] != "GPA" || got.Columns.IQRRight[0] != "Sleep Duration" {
		t.Fatalf("columns = %+v", got.Columns)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "tabclean.yaml")
	if err := os.WriteFile(path, []byte("zscore_threshold: 4\niqr_multiplier: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TABCLEAN_ZSCORE_THRESHOLD", "3")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ZScoreThreshold != 3 || c.IQRMultiplier != 2 {
		t.Fatalf("got t=%v k=%v", c.ZScoreThreshold, c.IQRMultiplier)
	}
}

func TestEnvSetsColumnGroups(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "tabclean.yaml")
	if err := os.WriteFile(path, []byte("columns:\n  zscore: [Caffeine]\n  iqr_left: [Screen Time]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TABCLEAN_COLUMNS_ZSCORE", "GPA,Sleep Duration")
	t.Setenv("TABCLEAN_COLUMNS_IQR_RIGHT", "Caffeine")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.Join(c.Columns.ZScore, "|") != "GPA|Sleep Duration" {
		t.Fatalf("zscore columns = %v", c.Columns.ZScore)
	}
	if strings.Join(c.Columns.IQRRight, "|") != "Caffeine" {
		t.Fatalf("iqr_right columns = %v", c.Columns.IQRRight)
	}
	if strings.Join(c.Columns.IQRLeft, "|") != "Screen Time" {
		t.Fatalf("iqr_left from file = %v", c.Columns.IQRLeft)
	}
}

func TestLoadMissingExplicitFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ZScoreThreshold != 5 {
		t.Fatalf("zscore_threshold = %v", c.ZScoreThreshold)
	}
}

func TestLoadRejectsInvalidCutPoints(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("iqr_lower_pct: 0.9\niqr_upper_pct: 0.1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, outlier.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("zscore_threshold: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected read error, got %v", err)
	}
}
