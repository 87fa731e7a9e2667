package stagefs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/amshared/stage"
	"github.com/pkg/errors"
	"github.com/taigrr/colorhash"
)

// XattrPrefix prefixes the extended attribute names of metadata keys.
const XattrPrefix = "user.stage."

// FS implements the stage FUSE filesystem
type FS struct {
	stage *stage.Stage
}

// New creates a filesystem serving stg
func New(stg *stage.Stage) *FS {
	return &FS{stage: stg}
}

// Root returns the root directory node
func (f *FS) Root() (fs.Node, error) {
	return &Dir{fs: f}, nil
}

// contentPath maps a slash separated mount path to the content tree.
func (f *FS) contentPath(rel string) string {
	return filepath.Join(f.stage.ContentRoot(), filepath.FromSlash(rel))
}

// metadata reads the metadata file belonging to the content file at rel.
func (f *FS) metadata(rel string) (map[string]any, error) {
	base := filepath.Join(f.stage.MetadataRoot(), filepath.FromSlash(rel))
	candidates := []string{base + stage.MetaSuffix}
	if ext := filepath.Ext(base); ext != "" {
		candidates = append(candidates, strings.TrimSuffix(base, ext)+stage.MetaSuffix)
	}
	for _, path := range candidates {
		b, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
		return m, nil
	}
	return nil, os.ErrNotExist
}

// inode derives a stable inode number from a mount path. The root owns 1.
func inode(rel string) uint64 {
	if rel == "" {
		return 1
	}
	n := uint64(colorhash.HashString(rel))
	if n <= 1 {
		n += 2
	}
	return n
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// errno turns filesystem errors into the codes the kernel expects.
func errno(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	}
	return err
}

// Dir is a directory of the content tree
type Dir struct {
	fs  *FS
	rel string
}

// Attr returns directory attributes
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	info, err := os.Stat(d.fs.contentPath(d.rel))
	switch {
	case err == nil:
		a.Mtime = info.ModTime()
		a.Ctime = info.ModTime()
	case d.rel != "" || !errors.Is(err, os.ErrNotExist):
		return errno(err)
	}
	a.Inode = inode(d.rel)
	a.Mode = os.ModeDir | 0o555
	return nil
}

// Lookup resolves names to nodes
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	if hidden(name) {
		return nil, syscall.ENOENT
	}
	rel := pathJoin(d.rel, name)
	info, err := os.Stat(d.fs.contentPath(rel))
	if err != nil {
		return nil, errno(err)
	}
	if info.IsDir() {
		return &Dir{fs: d.fs, rel: rel}, nil
	}
	return &File{fs: d.fs, rel: rel}, nil
}

// ReadDirAll lists directory contents
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := os.ReadDir(d.fs.contentPath(d.rel))
	if errors.Is(err, os.ErrNotExist) && d.rel == "" {
		return nil, nil
	}
	if err != nil {
		return nil, errno(err)
	}
	var dirents []fuse.Dirent
	for _, e := range entries {
		if hidden(e.Name()) {
			continue
		}
		typ := fuse.DT_File
		if e.IsDir() {
			typ = fuse.DT_Dir
		}
		dirents = append(dirents, fuse.Dirent{
			Inode: inode(pathJoin(d.rel, e.Name())),
			Name:  e.Name(),
			Type:  typ,
		})
	}
	slices.SortFunc(dirents, func(a, b fuse.Dirent) int {
		return strings.Compare(a.Name, b.Name)
	})
	return dirents, nil
}

// File is the content file of one stored object
type File struct {
	fs  *FS
	rel string
}

// Attr returns file attributes
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	info, err := os.Stat(f.fs.contentPath(f.rel))
	if err != nil {
		return errno(err)
	}
	a.Inode = inode(f.rel)
	a.Mode = 0o444
	a.Size = uint64(info.Size())
	a.Mtime = info.ModTime()
	a.Ctime = info.ModTime()
	return nil
}

// ReadAll reads the entire file content
func (f *File) ReadAll(ctx context.Context) ([]byte, error) {
	b, err := os.ReadFile(f.fs.contentPath(f.rel))
	if err != nil {
		return nil, errno(err)
	}
	return b, nil
}

// Getxattr returns one metadata value as JSON
func (f *File) Getxattr(ctx context.Context, req *fuse.GetxattrRequest, resp *fuse.GetxattrResponse) error {
	key, ok := strings.CutPrefix(req.Name, XattrPrefix)
	if !ok {
		return fuse.ErrNoXattr
	}
	meta, err := f.fs.metadata(f.rel)
	if err != nil {
		return fuse.ErrNoXattr
	}
	v, ok := meta[key]
	if !ok {
		return fuse.ErrNoXattr
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	resp.Xattr = b
	return nil
}

// Listxattr lists the metadata keys of the object
func (f *File) Listxattr(ctx context.Context, req *fuse.ListxattrRequest, resp *fuse.ListxattrResponse) error {
	meta, err := f.fs.metadata(f.rel)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		resp.Append(XattrPrefix + k)
	}
	return nil
}

func pathJoin(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

var (
	_ fs.FS                 = (*FS)(nil)
	_ fs.Node               = (*Dir)(nil)
	_ fs.NodeStringLookuper = (*Dir)(nil)
	_ fs.HandleReadDirAller = (*Dir)(nil)
	_ fs.Node               = (*File)(nil)
	_ fs.HandleReadAller    = (*File)(nil)
	_ fs.NodeGetxattrer     = (*File)(nil)
	_ fs.NodeListxattrer    = (*File)(nil)
)
