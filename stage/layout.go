package stage

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dendrascience/amshared/util"
	"github.com/pkg/errors"
)

// Kind selects which names a listing returns.
type Kind int

const (
	// AllNames lists atomic names followed by multipart names.
	AllNames Kind = iota
	// AtomicNames lists names backed by a file.
	AtomicNames
	// MultipartNames lists names backed by a directory, the heap excluded.
	MultipartNames
)

func (k Kind) String() string {
	switch k {
	case AtomicNames:
		return "atomic"
	case MultipartNames:
		return "multipart"
	}
	return "all"
}

// Folder is one directory of the metadata tree.
type Folder struct {
	Path string
}

// Join returns a path below the folder.
func (f Folder) Join(elem ...string) string {
	return filepath.Join(append([]string{f.Path}, elem...)...)
}

// entries reads the folder, skipping hidden entries. A missing folder is
// empty.
func (f Folder) entries() ([]os.DirEntry, error) {
	all, err := os.ReadDir(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", f.Path)
	}
	out := all[:0]
	for _, e := range all {
		if !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e)
		}
	}
	return out, nil
}

// Names lists object names in the folder, each group sorted.
func (f Folder) Names(kind Kind) ([]string, error) {
	entries, err := f.entries()
	if err != nil {
		return nil, err
	}
	var atomic, multipart []string
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			if name != Heap {
				multipart = append(multipart, name)
			}
		case strings.HasSuffix(name, MetaSuffix):
			atomic = append(atomic, strings.TrimSuffix(name, MetaSuffix))
		}
	}
	slices.Sort(atomic)
	slices.Sort(multipart)
	switch kind {
	case AtomicNames:
		return atomic, nil
	case MultipartNames:
		return multipart, nil
	}
	return append(atomic, multipart...), nil
}

// Parts lists the part numbers of the metadata files in the folder in
// ascending order. Non-numeric stems count as 0.
func (f Folder) Parts() ([]int, error) {
	entries, err := f.entries()
	if err != nil {
		return nil, err
	}
	var parts []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, MetaSuffix) {
			continue
		}
		parts = append(parts, util.SafeInt(strings.TrimSuffix(name, MetaSuffix), 0))
	}
	slices.Sort(parts)
	return parts, nil
}

// Rubric is a handle on one rubric of a stage. A handle on a rubric that
// escapes the stage root carries the error, and every listing returns it.
type Rubric struct {
	name   string
	folder Folder
	err    error
}

// Name returns the rubric path as given.
func (r Rubric) Name() string {
	return r.name
}

// Folder returns the rubric's metadata folder.
func (r Rubric) Folder() Folder {
	return r.folder
}

// Err reports why the handle is unusable, or nil.
func (r Rubric) Err() error {
	return r.err
}

// Exists reports whether the rubric has a metadata directory.
func (r Rubric) Exists() bool {
	if r.err != nil {
		return false
	}
	info, err := os.Stat(r.folder.Path)
	return err == nil && info.IsDir()
}

// Names lists the object names of the given kind.
func (r Rubric) Names(kind Kind) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.folder.Names(kind)
}

// AtomicNames lists the names stored as single objects.
func (r Rubric) AtomicNames() ([]string, error) {
	return r.Names(AtomicNames)
}

// MultipartNames lists the names stored as parts, the heap excluded.
func (r Rubric) MultipartNames() ([]string, error) {
	return r.Names(MultipartNames)
}

// NameParts lists the parts of the multipart object name.
func (r Rubric) NameParts(name string) ([]int, error) {
	if r.err != nil {
		return nil, r.err
	}
	dir, err := fileName(name)
	if err != nil {
		return nil, err
	}
	return Folder{Path: r.folder.Join(dir)}.Parts()
}

// HeapParts lists the parts of the rubric's heap.
func (r Rubric) HeapParts() ([]int, error) {
	return r.NameParts(Heap)
}

// Match lists the names of the given kind matching a doublestar pattern.
func (r Rubric) Match(pattern string, kind Kind) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Wrapf(doublestar.ErrBadPattern, "pattern %q", pattern)
	}
	names, err := r.Names(kind)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range names {
		if ok, _ := doublestar.Match(pattern, n); ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// pairPaths locates the two files of one stored object.
type pairPaths struct {
	metaDir     string
	contentDir  string
	metaFile    string
	contentFile string
}

// atomicPaths places an object directly in its rubric directories.
func (s *Stage) atomicPaths(m *MetaData) (pairPaths, error) {
	metaDir, err := s.under(s.topMeta, m.Rubric())
	if err != nil {
		return pairPaths{}, err
	}
	contentDir, err := s.under(s.topContent, m.Rubric())
	if err != nil {
		return pairPaths{}, err
	}
	name, err := fileName(m.Name())
	if err != nil {
		return pairPaths{}, err
	}
	return pairPaths{
		metaDir:     metaDir,
		contentDir:  contentDir,
		metaFile:    filepath.Join(metaDir, name+MetaSuffix),
		contentFile: filepath.Join(contentDir, name+m.Suffix()),
	}, nil
}

// partPaths places an object in a per-name directory. The file paths stay
// empty until the record has a part.
func (s *Stage) partPaths(m *MetaData) (pairPaths, error) {
	name, err := fileName(m.Name())
	if err != nil {
		return pairPaths{}, err
	}
	metaDir, err := s.under(s.topMeta, m.Rubric(), name)
	if err != nil {
		return pairPaths{}, err
	}
	contentDir, err := s.under(s.topContent, m.Rubric(), name)
	if err != nil {
		return pairPaths{}, err
	}
	p := pairPaths{metaDir: metaDir, contentDir: contentDir}
	if _, ok := m.Part(); ok {
		part, err := fileName(m.PartString())
		if err != nil {
			return pairPaths{}, err
		}
		p.metaFile = filepath.Join(metaDir, part+MetaSuffix)
		p.contentFile = filepath.Join(contentDir, part+m.Suffix())
	}
	return p, nil
}

// under joins rubric and name below top and refuses results outside top.
func (s *Stage) under(top string, elem ...string) (string, error) {
	parts := []string{top}
	for _, e := range elem {
		parts = append(parts, filepath.FromSlash(e))
	}
	p := filepath.Join(parts...)
	rel, err := filepath.Rel(top, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrOutsideRoot, "%s", filepath.Join(elem...))
	}
	return p, nil
}

// fileName checks that a name or part is usable as a single path element.
func fileName(s string) (string, error) {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return "", errors.Wrapf(ErrOutsideRoot, "name %q", s)
	}
	return s, nil
}
