// Package stagefs serves a stage as a read-only FUSE filesystem.
//
// The mount mirrors the content tree of the stage: atomic objects appear as
// <rubric>/<name><suffix> and parts as <rubric>/<name>/<part><suffix>. The
// metadata of each object is exposed as extended attributes named
// user.stage.<key>, holding the JSON encoding of the value.
//
// The main entry point is New(), whose result is handed to fs.Serve from the
// bazil.org/fuse library.
package stagefs
