package stage

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dendrascience/amshared/util"
	"github.com/pkg/errors"
)

// metaOnly marks a request whose content must not be read.
type metaOnly struct{}

// MetaOnly, passed as the content of a load request, limits the result to
// metadata. A plain false works the same way.
var MetaOnly any = metaOnly{}

func isMetaOnly(content any) bool {
	return content == MetaOnly || content == false
}

// pairOps performs one operation on the metadata/content pair of a record.
type pairOps struct {
	stage   *Stage
	meta    *MetaData
	content any
	atomic  bool
	paths   pairPaths
}

func (s *Stage) newPairOps(meta *MetaData, content any, atomic bool) (*pairOps, error) {
	p := &pairOps{stage: s, meta: meta, content: content, atomic: atomic}
	if err := p.setPaths(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pairOps) setPaths() error {
	var err error
	if p.atomic {
		p.paths, err = p.stage.atomicPaths(p.meta)
	} else {
		p.paths, err = p.stage.partPaths(p.meta)
	}
	return err
}

func (p *pairOps) setPart(part int) error {
	p.meta.Set(KeyPart, part)
	return p.setPaths()
}

func (p *pairOps) driver() (Driver, bool) {
	d, ok := p.stage.driver(p.meta.Format())
	return d, ok
}

// readMeta replaces the record with the one persisted on disk.
func (p *pairOps) readMeta() error {
	if p.paths.metaFile == "" {
		return errors.Wrapf(os.ErrNotExist, "%s has no part", p.meta)
	}
	v, err := JSONDriver{}.Read(p.paths.metaFile)
	if err != nil {
		return err
	}
	data, ok := v.(map[string]any)
	if !ok {
		return errors.Wrapf(ErrNotObject, "%s", p.paths.metaFile)
	}
	sfx := p.meta.suffix
	p.meta = NewMetaData(data)
	p.meta.suffix = sfx
	return p.setPaths()
}

func (p *pairOps) read() (Record, error) {
	if err := p.readMeta(); err != nil {
		return Record{}, err
	}
	rec := Record{Meta: p.meta.Data()}
	if isMetaOnly(p.content) {
		return rec, nil
	}
	d, ok := p.driver()
	if !ok {
		return rec, nil
	}
	content, err := d.Read(p.paths.contentFile)
	if err != nil {
		return Record{}, err
	}
	rec.Content = content
	return rec, nil
}

func (p *pairOps) write() (Record, error) {
	if p.meta.Name() == Wild {
		return Record{}, errors.Wrapf(ErrWildcardName, "%s", p.meta)
	}
	d, ok := p.driver()
	if !ok {
		return Record{Meta: map[string]any{}}, nil
	}
	if p.paths.metaFile == "" {
		return Record{}, errors.Wrapf(os.ErrInvalid, "%s has no part", p.meta)
	}
	if err := p.stage.ensureManifest(); err != nil {
		return Record{}, err
	}
	for _, x := range p.stage.opts.XtraMeta {
		for k, v := range x.Metadata(p.content) {
			p.meta.Set(k, v)
		}
	}

	mode := p.stage.opts.DirMode
	if err := os.MkdirAll(p.paths.metaDir, mode); err != nil {
		return Record{}, errors.Wrapf(err, "mkdir %s", p.paths.metaDir)
	}
	if err := os.MkdirAll(p.paths.contentDir, mode); err != nil {
		return Record{}, errors.Wrapf(err, "mkdir %s", p.paths.contentDir)
	}

	perm := p.stage.opts.FileMode
	err := util.WriteFileAtomic(p.paths.contentFile, perm, func(tmp string) error {
		return d.Write(p.content, tmp)
	})
	if err != nil {
		return Record{}, errors.Wrapf(err, "write content %s", p.meta)
	}
	data := p.meta.Data()
	err = util.WriteFileAtomic(p.paths.metaFile, perm, func(tmp string) error {
		return JSONDriver{}.Write(data, tmp)
	})
	if err != nil {
		return Record{}, errors.Wrapf(err, "write metadata %s", p.meta)
	}
	return Record{Meta: data}, nil
}

// append writes the record as the part after the current last one.
func (p *pairOps) append() (Record, error) {
	parts, err := Folder{Path: p.paths.metaDir}.Parts()
	if err != nil {
		return Record{}, err
	}
	next := 1
	if len(parts) > 0 {
		next = max(slices.Max(parts), 0) + 1
	}
	if err := p.setPart(next); err != nil {
		return Record{}, err
	}
	return p.write()
}

// unlink removes both files. A record that is already gone is reported as
// an empty success.
func (p *pairOps) unlink() (Record, error) {
	if err := p.readMeta(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{Meta: map[string]any{}}, nil
		}
		return Record{}, err
	}
	rec := Record{Meta: p.meta.Data()}
	metaErr := os.Remove(p.paths.metaFile)
	contentErr := os.Remove(p.paths.contentFile)
	if metaErr != nil || contentErr != nil {
		rec = Record{Meta: map[string]any{}}
	}
	p.stage.cleanupEmptyDirs(p.paths.metaDir, p.stage.topMeta)
	p.stage.cleanupEmptyDirs(p.paths.contentDir, p.stage.topContent)
	return rec, nil
}

// cleanupEmptyDirs removes dir and its parents while they are empty,
// stopping at top.
func (s *Stage) cleanupEmptyDirs(dir, top string) {
	for {
		rel, err := filepath.Rel(top, dir)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
