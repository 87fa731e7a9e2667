package stage

import (
	"iter"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/pkg/errors"
)

type action int

const (
	actionRead action = iota
	actionWrite
	actionUnlink
)

func (a action) String() string {
	switch a {
	case actionWrite:
		return "save"
	case actionUnlink:
		return "delete"
	}
	return "load"
}

// Stage stores metadata/content pairs below a root directory:
//
//	<root>/metadata/<rubric>/<name>.meta          atomic metadata
//	<root>/content/<rubric>/<name><suffix>        atomic content
//	<root>/metadata/<rubric>/<name>/<part>.meta   multipart and heap metadata
//	<root>/content/<rubric>/<name>/<part><suffix> multipart and heap content
//
// A Stage holds no state beyond its configuration. It is not safe for
// concurrent appends to the same name: the next part number is computed
// from a directory listing without locking.
type Stage struct {
	root       string
	topContent string
	topMeta    string
	manifest   Manifest
	opts       Options

	mu             sync.Mutex
	manifestOnDisk bool
}

// New opens the stage at root. A missing root is created together with its
// manifest; an existing directory without a manifest gets one on the first
// write. It fails when root exists and is not a directory, or when its
// manifest names an unsupported layout.
func New(root string, opts ...Option) (*Stage, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Drivers == nil {
		o.Drivers = DefaultDrivers()
	}
	o.XtraMeta = slices.Clone(o.XtraMeta)
	for i, x := range o.XtraMeta {
		if c, ok := x.(CTime); ok && c.Now == nil {
			o.XtraMeta[i] = CTime{Now: o.Clock}
		}
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve root")
	}
	info, err := os.Stat(root)
	created := errors.Is(err, os.ErrNotExist)
	switch {
	case err == nil && !info.IsDir():
		return nil, errors.Wrapf(ErrNotDirectory, "%s", root)
	case err != nil && !created:
		return nil, errors.Wrapf(err, "stat root")
	}
	if err := os.MkdirAll(root, o.DirMode); err != nil {
		return nil, errors.Wrapf(err, "create root")
	}
	s := &Stage{
		root:       root,
		topContent: filepath.Join(root, ContentDir),
		topMeta:    filepath.Join(root, MetadataDir),
		manifest:   Manifest{LayoutVersion: LayoutVersion.String()},
		opts:       o,
	}
	m, err := ReadManifest(root)
	switch {
	case err == nil:
		s.manifest = m
		s.manifestOnDisk = true
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	case created:
		if err := s.ensureManifest(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Root returns the absolute stage root.
func (s *Stage) Root() string {
	return s.root
}

// ContentRoot returns the directory holding content files.
func (s *Stage) ContentRoot() string {
	return s.topContent
}

// MetadataRoot returns the directory holding metadata files.
func (s *Stage) MetadataRoot() string {
	return s.topMeta
}

// Manifest returns the manifest of the stage. A stage without one on disk
// reports the layout it will write.
func (s *Stage) Manifest() Manifest {
	return s.manifest
}

// Drivers returns the driver registry.
func (s *Stage) Drivers() *Drivers {
	return s.opts.Drivers
}

func (s *Stage) driver(format string) (Driver, bool) {
	if !s.opts.Drivers.Has(format) {
		return nil, false
	}
	d, err := s.opts.Drivers.Get(format)
	if err != nil {
		s.opts.Logger.Printf("stage: driver %q: %v", format, err)
		return nil, false
	}
	return d, true
}

// Rubric returns a handle on the named rubric. The listings of a rubric
// that would escape the stage root fail with ErrOutsideRoot.
func (s *Stage) Rubric(name string) Rubric {
	dir, err := s.under(s.topMeta, name)
	if err != nil {
		return Rubric{name: name, err: err}
	}
	return Rubric{name: name, folder: Folder{Path: dir}}
}

// LsNames lists the object names of a rubric.
func (s *Stage) LsNames(rubric string, kind Kind) ([]string, error) {
	return s.Rubric(rubric).Names(kind)
}

// GSave lazily writes every entry of flow.
func (s *Stage) GSave(flow any) iter.Seq[Record] {
	return s.dispatch(flow, actionWrite)
}

// GLoad lazily reads every entry of flow.
func (s *Stage) GLoad(flow any) iter.Seq[Record] {
	return s.dispatch(flow, actionRead)
}

// GDelete lazily deletes every entry of flow.
func (s *Stage) GDelete(flow any) iter.Seq[Record] {
	return s.dispatch(flow, actionUnlink)
}

// Save writes every entry of flow and collects the results.
func (s *Stage) Save(flow any) []Record {
	return slices.Collect(s.GSave(flow))
}

// Load reads every entry of flow and collects the results.
func (s *Stage) Load(flow any) []Record {
	return slices.Collect(s.GLoad(flow))
}

// Delete removes every entry of flow and collects the results.
func (s *Stage) Delete(flow any) []Record {
	return slices.Collect(s.GDelete(flow))
}

// Payload loads flow and returns the contents of the records that were
// read successfully.
func (s *Stage) Payload(flow any) []any {
	var out []any
	for rec := range s.GLoad(flow) {
		if rec.Empty() || rec.Failed() {
			continue
		}
		out = append(out, rec.Content)
	}
	return out
}

// LastHeapMeta returns the metadata of the highest heap part of rubric, or
// an empty record when the heap has no part above 0.
func (s *Stage) LastHeapMeta(rubric string) Record {
	parts, err := s.Rubric(rubric).HeapParts()
	if err != nil || len(parts) == 0 || slices.Max(parts) <= 0 {
		return Record{Meta: map[string]any{}}
	}
	req := [2]any{map[string]any{KeyRubric: rubric, KeyPart: slices.Max(parts)}, MetaOnly}
	for rec := range s.GLoad(req) {
		return rec
	}
	return Record{Meta: map[string]any{}}
}

func (s *Stage) dispatch(flow any, act action) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for entry := range Dataflow(flow) {
			meta := NewMetaData(entry.Meta)
			if !meta.Payload() {
				continue
			}
			if meta.Name() == Wild && act != actionWrite {
				kind := MultipartNames
				if meta.IsAtomic() {
					kind = AtomicNames
				}
				names, err := s.LsNames(meta.Rubric(), kind)
				if err != nil {
					if !yield(s.failure(meta, act, err)) {
						return
					}
					continue
				}
				for _, name := range names {
					m := meta.Clone()
					m.Set(KeyName, name)
					if !s.subdispatch(m, entry.Content, act, yield) {
						return
					}
				}
				continue
			}
			if !s.subdispatch(meta, entry.Content, act, yield) {
				return
			}
		}
	}
}

func (s *Stage) subdispatch(meta *MetaData, content any, act action, yield func(Record) bool) bool {
	atomic := meta.IsAtomic()
	ops, err := s.newPairOps(meta, content, atomic)
	if err != nil {
		return yield(s.failure(meta, act, err))
	}
	if atomic {
		return yield(s.guard(ops, act, ops.method(act)))
	}
	if _, ok := meta.Part(); ok && !meta.IsWildPart() {
		return yield(s.guard(ops, act, ops.method(act)))
	}
	if act == actionWrite {
		return yield(s.guard(ops, act, ops.append))
	}
	parts, err := Folder{Path: ops.paths.metaDir}.Parts()
	if err != nil {
		return yield(s.failure(meta, act, err))
	}
	for _, part := range parts {
		p, err := s.newPairOps(meta.Clone(), content, false)
		if err == nil {
			err = p.setPart(part)
		}
		if err != nil {
			if !yield(s.failure(meta, act, err)) {
				return false
			}
			continue
		}
		if !yield(s.guard(p, act, p.method(act))) {
			return false
		}
	}
	return true
}

func (p *pairOps) method(act action) func() (Record, error) {
	switch act {
	case actionWrite:
		return p.write
	case actionUnlink:
		return p.unlink
	}
	return p.read
}

// guard runs fn and turns its error into a failure record.
func (s *Stage) guard(p *pairOps, act action, fn func() (Record, error)) Record {
	rec, err := fn()
	if err != nil {
		return s.failure(p.meta, act, err)
	}
	return rec
}

func (s *Stage) failure(meta *MetaData, act action, err error) Record {
	s.opts.Logger.Printf("stage: %s %s: %v", act, meta, err)
	data := meta.Data()
	data[KeyPayload] = false
	data[KeyError] = ErrorKind(err)
	return Record{Meta: data}
}
