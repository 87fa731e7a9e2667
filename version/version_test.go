package version

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dendrascience/amshared/stage"
)

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"release", Info{Version: "v1.2.3", Commit: "0123456789abcdef", Date: "2024-01-01"}, "v1.2.3 (0123456, built 2024-01-01)"},
		{"no date", Info{Version: "v1.2.3", Commit: "0123456789abcdef", Date: unknown}, "v1.2.3 (0123456)"},
		{"no commit", Info{Version: "v1.2.3", Commit: unknown, Date: "2024-01-01"}, "v1.2.3"},
		{"short commit", Info{Version: "v1.2.3", Commit: "abc", Date: unknown}, "v1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLinkerValuesWin(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })

	Version, Commit, Date = "v2.0.0", "fedcba9876543210", "2025-06-01"
	info := GetInfo()
	if info.Version != "v2.0.0" || info.Commit != "fedcba9876543210" || info.Date != "2025-06-01" {
		t.Errorf("GetInfo() = %+v", info)
	}
	if info.Layout != stage.LayoutVersion.String() {
		t.Errorf("Layout = %q, want %q", info.Layout, stage.LayoutVersion)
	}
	if got, want := GetFullVersion(), "v2.0.0 (fedcba9, built 2025-06-01)"; got != want {
		t.Errorf("GetFullVersion() = %q, want %q", got, want)
	}
}

func TestForRoot(t *testing.T) {
	t.Run("fresh stage", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "stage")
		if _, err := stage.New(root); err != nil {
			t.Fatal(err)
		}
		info, err := ForRoot(root)
		if err != nil {
			t.Fatalf("ForRoot() error = %v", err)
		}
		if info.StageLayout != stage.LayoutVersion.String() {
			t.Errorf("StageLayout = %q, want %q", info.StageLayout, stage.LayoutVersion)
		}
	})

	t.Run("no manifest", func(t *testing.T) {
		info, err := ForRoot(t.TempDir())
		if err != nil {
			t.Fatalf("ForRoot() error = %v", err)
		}
		if info.StageLayout != "" {
			t.Errorf("StageLayout = %q, want empty", info.StageLayout)
		}
	})

	t.Run("bad layout", func(t *testing.T) {
		root := t.TempDir()
		if err := os.WriteFile(filepath.Join(root, stage.ManifestFile), []byte("layout-version: nope\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := ForRoot(root); err == nil {
			t.Error("ForRoot() error = nil, want layout error")
		}
	})
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Info{Version: "v1.0.0", Commit: unknown, Date: unknown, Package: "amshared", Layout: "1.0.0", StageLayout: "1.0.0"}.Print(&buf, "amstage")
	out := buf.String()
	for _, want := range []string{"amstage version v1.0.0\n", "Package: amshared\n", "Layout: 1.0.0\n", "Stage Layout: 1.0.0\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("Print() missing %q in %q", want, out)
		}
	}

	buf.Reset()
	PrintVersion(&buf, "amstage")
	if strings.Contains(buf.String(), "Stage Layout") {
		t.Errorf("PrintVersion() reports a stage layout: %q", buf.String())
	}
}
