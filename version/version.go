package version

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/dendrascience/amshared/stage"
	"github.com/pkg/errors"
)

// Set through -ldflags; empty or placeholder values fall back to build info.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

const unknown = "unknown"

// Info describes the running binary and, when a stage root was given, the
// layout that root was written with.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Package string `json:"package"`
	// Layout is the stage layout this build writes.
	Layout string `json:"layout"`
	// StageLayout is the layout recorded in the stage root's manifest; empty
	// when no root was inspected or the root has no manifest yet.
	StageLayout string `json:"stage_layout,omitempty"`
}

// buildSetting looks up a VCS setting stamped into the binary.
func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	if key == "" {
		if v := info.Main.Version; v != "(devel)" {
			return v
		}
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

func pick(set, placeholder, setting, fallback string) string {
	if set != "" && set != placeholder {
		return set
	}
	if v := buildSetting(setting); v != "" {
		return v
	}
	return fallback
}

// GetVersion returns the release version, "development" for untagged builds.
func GetVersion() string { return pick(Version, "dev", "", "development") }

// GetCommit returns the VCS revision of the build.
func GetCommit() string { return pick(Commit, unknown, "vcs.revision", unknown) }

// GetBuildDate returns the VCS commit time of the build.
func GetBuildDate() string { return pick(Date, unknown, "vcs.time", unknown) }

// GetInfo returns the build information without inspecting any stage.
func GetInfo() Info {
	return Info{
		Version: GetVersion(),
		Commit:  GetCommit(),
		Date:    GetBuildDate(),
		Package: "amshared",
		Layout:  stage.LayoutVersion.String(),
	}
}

// ForRoot returns GetInfo plus the layout recorded under root. A root that
// has no manifest yet is not an error.
func ForRoot(root string) (Info, error) {
	info := GetInfo()
	m, err := stage.ReadManifest(root)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return info, nil
	case err != nil:
		return info, errors.Wrapf(err, "reading manifest under %s", root)
	}
	v, err := m.Version()
	if err != nil {
		return info, err
	}
	info.StageLayout = v.String()
	return info, nil
}

// Short formats the version with the abbreviated commit and build date.
func (i Info) Short() string {
	if i.Commit == unknown || len(i.Commit) <= 7 {
		return i.Version
	}
	if i.Date == unknown {
		return fmt.Sprintf("%s (%s)", i.Version, i.Commit[:7])
	}
	return fmt.Sprintf("%s (%s, built %s)", i.Version, i.Commit[:7], i.Date)
}

// GetFullVersion is GetInfo().Short().
func GetFullVersion() string { return GetInfo().Short() }

// Print writes the information as labelled lines.
func (i Info) Print(w io.Writer, appName string) {
	fmt.Fprintf(w, "%s version %s\n", appName, i.Short())
	fmt.Fprintf(w, "Package: %s\n", i.Package)
	fmt.Fprintf(w, "Commit: %s\n", i.Commit)
	fmt.Fprintf(w, "Build Date: %s\n", i.Date)
	fmt.Fprintf(w, "Layout: %s\n", i.Layout)
	if i.StageLayout != "" {
		fmt.Fprintf(w, "Stage Layout: %s\n", i.StageLayout)
	}
}

// PrintVersion writes GetInfo to w.
func PrintVersion(w io.Writer, appName string) { GetInfo().Print(w, appName) }
