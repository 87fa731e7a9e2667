// Package version reports build metadata for amstage and the stage layout it
// writes.
//
// Version, Commit and Date come from -ldflags when set and otherwise from
// debug.ReadBuildInfo:
//
//	-ldflags "-X github.com/dendrascience/amshared/version.Version=v1.0.0 -X github.com/dendrascience/amshared/version.Commit=abc123"
//
// ForRoot adds the layout version recorded in a stage root's stage.yml.
package version
