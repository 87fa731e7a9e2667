// Package main provides the amstage command-line interface.
//
// amstage stores records as pairs of a JSON metadata file and a content
// file below a stage root directory, addressed by rubric, name and part.
//
// The main binary supports multiple subcommands:
//   - save, load, delete: Operate on records given as a JSON request
//   - ls, heap: Inspect the names and the heap of a rubric
//   - mount: Serve a stage as a read-only FUSE filesystem
//   - validate: Report broken metadata and orphaned content
//   - export: Zip the files of a rubric
//   - count, seed: Testing and sizing utilities
package main
