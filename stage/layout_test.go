package stage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFolderNamesAndParts(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"b.meta", "a.meta", ".tmp-1", "notes.txt"} {
		os.WriteFile(filepath.Join(dir, f), nil, 0o644)
	}
	for _, d := range []string{"chain", Heap, ".hidden"} {
		os.Mkdir(filepath.Join(dir, d), 0o755)
	}
	f := Folder{Path: dir}

	tests := []struct {
		kind Kind
		want []string
	}{
		{AtomicNames, []string{"a", "b"}},
		{MultipartNames, []string{"chain"}},
		{AllNames, []string{"a", "b", "chain"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := f.Names(tt.kind)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Names() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	partsDir := t.TempDir()
	for _, f := range []string{"10.meta", "2.meta", "x.meta", "3.json", ".tmp-9.meta"} {
		os.WriteFile(filepath.Join(partsDir, f), nil, 0o644)
	}
	parts, err := Folder{Path: partsDir}.Parts()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 2, 10}, parts); diff != "" {
		t.Errorf("Parts() mismatch (-want +got):\n%s", diff)
	}
}

func TestFolderMissing(t *testing.T) {
	f := Folder{Path: filepath.Join(t.TempDir(), "missing")}
	names, err := f.Names(AllNames)
	if err != nil || len(names) != 0 {
		t.Errorf("Names() = (%v, %v), want empty", names, err)
	}
	parts, err := f.Parts()
	if err != nil || len(parts) != 0 {
		t.Errorf("Parts() = (%v, %v), want empty", parts, err)
	}
}

func TestRubric(t *testing.T) {
	stg, _ := newTestStage(t)
	stg.Save(testDataflow())

	r := stg.Rubric("post/mail")
	if !r.Exists() {
		t.Fatalf("Exists() = false")
	}
	if stg.Rubric("post/none").Exists() {
		t.Errorf("Exists() = true for a missing rubric")
	}
	parts, _ := r.NameParts("chain")
	if diff := cmp.Diff([]int{1, 2, 10}, parts); diff != "" {
		t.Errorf("NameParts() mismatch (-want +got):\n%s", diff)
	}
	heap, _ := r.HeapParts()
	if diff := cmp.Diff([]int{1, 2, 3}, heap); diff != "" {
		t.Errorf("HeapParts() mismatch (-want +got):\n%s", diff)
	}
	atomic, _ := r.AtomicNames()
	multi, _ := r.MultipartNames()
	if diff := cmp.Diff([][]string{{"unique"}, {"chain"}}, [][]string{atomic, multi}); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRubricMatch(t *testing.T) {
	stg, _ := newTestStage(t)
	for _, n := range []string{"st-01", "st-02", "gauge"} {
		stg.Save([2]any{map[string]any{KeyRubric: "sites", KeyName: n, KeyFormat: "txt"}, n})
	}
	got, err := stg.Rubric("sites").Match("st-*", AtomicNames)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"st-01", "st-02"}, got); diff != "" {
		t.Errorf("Match() mismatch (-want +got):\n%s", diff)
	}
	if _, err := stg.Rubric("sites").Match("[", AllNames); err == nil {
		t.Errorf("Match() accepted a bad pattern")
	}
}

func TestPathsStayInsideRoot(t *testing.T) {
	stg, root := newTestStage(t)
	tests := []struct {
		name    string
		meta    map[string]any
		atomic  bool
		wantErr bool
		want    pairPaths
	}{
		{
			name:   "atomic",
			meta:   map[string]any{KeyRubric: "a/b", KeyName: "x", KeyFormat: "json"},
			atomic: true,
			want: pairPaths{
				metaDir:     filepath.Join(root, "metadata/a/b"),
				contentDir:  filepath.Join(root, "content/a/b"),
				metaFile:    filepath.Join(root, "metadata/a/b/x.meta"),
				contentFile: filepath.Join(root, "content/a/b/x.json"),
			},
		},
		{
			name: "part",
			meta: map[string]any{KeyName: "x", KeyPart: 4},
			want: pairPaths{
				metaDir:     filepath.Join(root, "metadata/x"),
				contentDir:  filepath.Join(root, "content/x"),
				metaFile:    filepath.Join(root, "metadata/x/4.meta"),
				contentFile: filepath.Join(root, "content/x/4"),
			},
		},
		{
			name: "heap without part",
			meta: map[string]any{KeyRubric: "r"},
			want: pairPaths{
				metaDir:    filepath.Join(root, "metadata/r", Heap),
				contentDir: filepath.Join(root, "content/r", Heap),
			},
		},
		{name: "parent rubric", meta: map[string]any{KeyRubric: "..", KeyName: "x"}, atomic: true, wantErr: true},
		{name: "dot name", meta: map[string]any{KeyName: ".."}, atomic: true, wantErr: true},
		{name: "slash part", meta: map[string]any{KeyName: "x", KeyPart: "../1"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMetaData(tt.meta)
			var (
				got pairPaths
				err error
			)
			if tt.atomic {
				got, err = stg.atomicPaths(m)
			} else {
				got, err = stg.partPaths(m)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(pairPaths{})); diff != "" {
				t.Errorf("paths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRubricOutsideRoot(t *testing.T) {
	stg, root := newTestStage(t)
	// A heap next to the root must stay invisible to an escaping rubric.
	if err := os.MkdirAll(filepath.Join(filepath.Dir(root), Heap), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(filepath.Dir(root))

	r := stg.Rubric("..")
	if !errors.Is(r.Err(), ErrOutsideRoot) {
		t.Fatalf("Err() = %v, want ErrOutsideRoot", r.Err())
	}
	if r.Exists() {
		t.Errorf("Exists() = true")
	}
	if _, err := r.AtomicNames(); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("AtomicNames() error = %v", err)
	}
	if _, err := r.HeapParts(); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("HeapParts() error = %v", err)
	}
	if _, err := r.Match("*", AllNames); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Match() error = %v", err)
	}
	if rec := stg.LastHeapMeta(".."); !rec.Empty() || rec.Failed() {
		t.Errorf("LastHeapMeta(..) = %v, want empty record", rec.Meta)
	}
	if _, err := stg.Rubric("ok").NameParts("../x"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("NameParts(../x) error = %v", err)
	}
}
