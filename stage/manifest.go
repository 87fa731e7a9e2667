package stage

import (
	"os"
	"path/filepath"

	"github.com/blang/semver/v4"
	"github.com/dendrascience/amshared/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LayoutVersion is the on-disk layout written by this package.
var LayoutVersion = semver.MustParse("1.0.0")

// Manifest describes a stage root. It lives in ManifestFile.
type Manifest struct {
	LayoutVersion string `yaml:"layout-version"`
}

// Version parses the manifest's layout version.
func (m Manifest) Version() (semver.Version, error) {
	v, err := semver.ParseTolerant(m.LayoutVersion)
	if err != nil {
		return semver.Version{}, errors.Wrapf(ErrIncompatibleLayout, "layout-version %q: %v", m.LayoutVersion, err)
	}
	return v, nil
}

// CheckCompatible fails when the manifest was written by a layout with a
// newer major version.
func (m Manifest) CheckCompatible() error {
	v, err := m.Version()
	if err != nil {
		return err
	}
	if v.Major > LayoutVersion.Major {
		return errors.Wrapf(ErrIncompatibleLayout, "layout-version %s, supported %s", v, LayoutVersion)
	}
	return nil
}

// ReadManifest reads the manifest under root without creating anything. A
// root without a manifest yields os.ErrNotExist.
func ReadManifest(root string) (Manifest, error) {
	path := filepath.Join(root, ManifestFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Manifest{}, errors.Wrapf(ErrIncompatibleLayout, "parse %s: %v", path, err)
	}
	if err := m.CheckCompatible(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func writeManifest(root string, m Manifest, mode os.FileMode) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	err = util.WriteFileAtomic(filepath.Join(root, ManifestFile), mode, func(tmp string) error {
		return os.WriteFile(tmp, out, mode)
	})
	return errors.Wrapf(err, "write manifest")
}

// ensureManifest writes the manifest of a stage that has none yet. It runs
// before the first write, so read-only use leaves an existing directory
// untouched.
func (s *Stage) ensureManifest() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manifestOnDisk {
		return nil
	}
	if _, err := os.Stat(filepath.Join(s.root, ManifestFile)); err == nil {
		s.manifestOnDisk = true
		return nil
	}
	if err := writeManifest(s.root, s.manifest, s.opts.FileMode); err != nil {
		return err
	}
	s.manifestOnDisk = true
	return nil
}
