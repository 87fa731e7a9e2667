package stagefs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"syscall"
	"testing"

	"bazil.org/fuse"
	"github.com/dendrascience/amshared/stage"
	"github.com/google/go-cmp/cmp"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()
	stg, err := stage.New(t.TempDir(), stage.WithXtraMeta())
	if err != nil {
		t.Fatalf("stage.New: %v", err)
	}
	flow := []any{
		[2]any{map[string]any{"rubric": "post/mail", "name": "unique", "format": "txt"}, "hello"},
		[2]any{map[string]any{"rubric": "post/chain", "name": "link", "part": 1, "format": "json"}, map[string]any{"n": 1}},
	}
	for _, rec := range stg.Save(flow) {
		if rec.Failed() {
			t.Fatalf("save failed: %v", rec.Meta)
		}
	}
	return New(stg)
}

func lookup(t *testing.T, f *FS, names ...string) any {
	t.Helper()
	root, _ := f.Root()
	node := any(root)
	for _, name := range names {
		d, ok := node.(*Dir)
		if !ok {
			t.Fatalf("%s: parent is not a directory", name)
		}
		n, err := d.Lookup(context.Background(), name)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", name, err)
		}
		node = n
	}
	return node
}

func TestReadDirAll(t *testing.T) {
	f := newTestFS(t)
	tests := []struct {
		path []string
		want []string
	}{
		{nil, []string{"post"}},
		{[]string{"post"}, []string{"chain", "mail"}},
		{[]string{"post", "mail"}, []string{"unique.txt"}},
		{[]string{"post", "chain", "link"}, []string{"1.json"}},
	}
	for _, tt := range tests {
		d := lookup(t, f, tt.path...).(*Dir)
		dirents, err := d.ReadDirAll(context.Background())
		if err != nil {
			t.Fatalf("ReadDirAll(%v): %v", tt.path, err)
		}
		var got []string
		for _, de := range dirents {
			got = append(got, de.Name)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ReadDirAll(%v) mismatch (-want +got):\n%s", tt.path, diff)
		}
	}
}

func TestFileReadAndAttr(t *testing.T) {
	f := newTestFS(t)
	file := lookup(t, f, "post", "mail", "unique.txt").(*File)

	b, err := file.ReadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "hello" {
		t.Errorf("ReadAll() = %q, want hello", b)
	}

	var a fuse.Attr
	if err := file.Attr(context.Background(), &a); err != nil {
		t.Fatal(err)
	}
	if a.Size != 5 || a.Mode != 0o444 {
		t.Errorf("Attr() size=%d mode=%v", a.Size, a.Mode)
	}
	if a.Inode <= 1 || a.Inode != inode("post/mail/unique.txt") {
		t.Errorf("Attr() inode = %d", a.Inode)
	}

	var root fuse.Attr
	d, _ := f.Root()
	if err := d.Attr(context.Background(), &root); err != nil {
		t.Fatal(err)
	}
	if root.Inode != 1 || !root.Mode.IsDir() {
		t.Errorf("root Attr() = %+v", root)
	}
}

func TestLookupMissing(t *testing.T) {
	f := newTestFS(t)
	root, _ := f.Root()
	for _, name := range []string{"nope", ".hidden", ".."} {
		_, err := root.(*Dir).Lookup(context.Background(), name)
		if !errors.Is(err, syscall.ENOENT) {
			t.Errorf("Lookup(%q) error = %v, want ENOENT", name, err)
		}
	}
}

func TestXattr(t *testing.T) {
	f := newTestFS(t)
	ctx := context.Background()
	file := lookup(t, f, "post", "chain", "link", "1.json").(*File)

	var list fuse.ListxattrResponse
	if err := file.Listxattr(ctx, &fuse.ListxattrRequest{}, &list); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"user.stage.format", "user.stage.name", "user.stage.part", "user.stage.rubric"} {
		if !containsName(list.Xattr, want) {
			t.Errorf("Listxattr() missing %s in %q", want, list.Xattr)
		}
	}

	var resp fuse.GetxattrResponse
	if err := file.Getxattr(ctx, &fuse.GetxattrRequest{Name: "user.stage.rubric"}, &resp); err != nil {
		t.Fatal(err)
	}
	var rubric string
	if err := json.Unmarshal(resp.Xattr, &rubric); err != nil || rubric != "post/chain" {
		t.Errorf("Getxattr(rubric) = %s, %v", resp.Xattr, err)
	}

	for _, name := range []string{"user.stage.missing", "user.other"} {
		err := file.Getxattr(ctx, &fuse.GetxattrRequest{Name: name}, &fuse.GetxattrResponse{})
		if !errors.Is(err, fuse.ErrNoXattr) {
			t.Errorf("Getxattr(%s) error = %v, want ErrNoXattr", name, err)
		}
	}
}

func TestEmptyStage(t *testing.T) {
	stg, err := stage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(stg.ContentRoot()); err != nil {
		t.Fatal(err)
	}
	root, _ := New(stg).Root()
	dirents, err := root.(*Dir).ReadDirAll(context.Background())
	if err != nil || len(dirents) != 0 {
		t.Errorf("ReadDirAll() = %v, %v", dirents, err)
	}
}

// containsName checks a NUL separated xattr name list.
func containsName(list []byte, name string) bool {
	start := 0
	for i, b := range list {
		if b == 0 {
			if string(list[start:i]) == name {
				return true
			}
			start = i + 1
		}
	}
	return false
}
