package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/driftforge/runweaver/pkg/errors"
	"github.com/driftforge/runweaver/pkg/rules"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	want := []string{
		"generate", "validate", "batch", "render",
		"inspect", "rules", "serve", "cache", "completion",
	}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.SetLogLevel(log.DebugLevel)
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("log level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestLoadRulesPresets(t *testing.T) {
	r, err := loadRules("", "balanced")
	if err != nil {
		t.Fatalf("loadRules(balanced) error: %v", err)
	}
	if r.Name != "balanced" {
		t.Errorf("preset name = %q", r.Name)
	}

	// Empty preset falls back to balanced.
	r, err = loadRules("", "")
	if err != nil || r.Name != "balanced" {
		t.Errorf("loadRules(\"\") = (%q, %v)", r.Name, err)
	}
}

func TestLoadRulesUnknownPreset(t *testing.T) {
	_, err := loadRules("", "chaotic")
	if !errors.Is(err, errors.ErrCodeInvalidPreset) {
		t.Errorf("error code = %q, want INVALID_PRESET", errors.GetCode(err))
	}
}

func TestLoadRulesFileOverridesPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	custom := rules.Balanced()
	custom.Name = "custom"
	if err := rules.WriteFile(custom, path); err != nil {
		t.Fatal(err)
	}

	r, err := loadRules(path, "balanced")
	if err != nil {
		t.Fatalf("loadRules(file) error: %v", err)
	}
	if r.Name != "custom" {
		t.Errorf("rules name = %q, want %q (file should win)", r.Name, "custom")
	}
}

func TestCacheDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-test")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-test", appName) {
		t.Errorf("cacheDir() = %q", dir)
	}
}

func TestValidateFormat(t *testing.T) {
	for _, ok := range []string{"dot", "svg", "png"} {
		if err := validateFormat(ok); err != nil {
			t.Errorf("validateFormat(%q) = %v", ok, err)
		}
	}
	if err := validateFormat("gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("validateFormat(gif) code = %q, want INVALID_FORMAT", errors.GetCode(err))
	}
}

func TestReadSeedsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.txt")
	content := `# regression corpus
seed-one
seed-two

  seed-three
# trailing comment
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	seeds, err := readSeedsFile(path)
	if err != nil {
		t.Fatalf("readSeedsFile() error: %v", err)
	}

	want := []string{"seed-one", "seed-two", "seed-three"}
	if len(seeds) != len(want) {
		t.Fatalf("got %d seeds, want %d: %v", len(seeds), len(want), seeds)
	}
	for i := range want {
		if seeds[i] != want[i] {
			t.Errorf("seeds[%d] = %q, want %q", i, seeds[i], want[i])
		}
	}
}

func TestReadSeedsFileMissing(t *testing.T) {
	if _, err := readSeedsFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("readSeedsFile() of missing file succeeded")
	}
}

func TestScaleBar(t *testing.T) {
	tests := []struct {
		v, max, width, want int
	}{
		{0, 10, 30, 0},
		{10, 10, 30, 30},
		{5, 10, 30, 15},
		{1, 1000, 30, 1}, // nonzero values always show at least one cell
		{3, 0, 30, 0},    // empty histogram
	}
	for _, tt := range tests {
		if got := scaleBar(tt.v, tt.max, tt.width); got != tt.want {
			t.Errorf("scaleBar(%d, %d, %d) = %d, want %d", tt.v, tt.max, tt.width, got, tt.want)
		}
	}
}
