package util

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// TempPrefix starts the name of every in-flight temp file. Names starting
// with a dot are hidden from stage listings.
const TempPrefix = ".tmp-"

// WriteFileAtomic calls write with a temp path in the directory of path and
// renames the result into place. On any failure the temp file is removed and
// path is left untouched.
func WriteFileAtomic(path string, perm os.FileMode, write func(tmp string) error) error {
	tmp := filepath.Join(filepath.Dir(path), TempPrefix+uuid.NewString())
	if err := write(tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "chmod %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "commit %s", path)
	}
	return nil
}
