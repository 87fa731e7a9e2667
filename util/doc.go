// Package util provides small helpers shared by the stage store and the
// amstage command.
//
// Key Components:
//
// Numeric and string parsing:
//   - SafeNumeric and SafeInt parse loosely typed values with a fallback
//   - Split splits a string with control over the number of fields
//
// Files:
//   - WriteFileAtomic commits a file through a hidden temp file and rename
//   - GetHash and GetFileHash compute SHA-256 digests
//   - CountSubfile counts files below a directory with an early stop
//
// Archives:
//   - ZipDirectory packs a directory tree into a zip archive
package util
