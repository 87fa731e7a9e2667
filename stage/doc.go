// Package stage is a filesystem-backed object store for metadata/content
// pairs.
//
// Every stored object is two files: a JSON metadata file under
// <root>/metadata and a content file under <root>/content, written by the
// driver registered for the record's format. Records are grouped by rubric,
// a slash-separated directory path. Within a rubric an object is either
// atomic (one named file pair), multipart (a named directory of numbered
// parts) or part of the heap, the unnamed multipart object every rubric has.
//
// Requests are dataflows of metadata mappings with optional content. Save,
// Load and Delete never abort on a bad entry: failures come back as records
// with payload=false and an error kind, so one broken object does not hide
// the rest of a batch.
//
//	stg, err := stage.New("/var/lib/amstage")
//	if err != nil {
//		log.Fatal(err)
//	}
//	stg.Save([2]any{map[string]any{"rubric": "post/mail", "name": "note", "format": "txt"}, "hello"})
//	for _, rec := range stg.Load(map[string]any{"rubric": "post/mail", "name": "*"}) {
//		fmt.Println(rec.Meta["name"], rec.Content)
//	}
package stage
