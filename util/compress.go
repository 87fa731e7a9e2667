package util

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ZipDirectory writes every regular file below path into a zip archive at
// dest, using slash-separated names relative to path. Hidden entries are
// skipped. Files are stored without compression.
func ZipDirectory(path string, dest string) (count int, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, ErrExpectedDirectory
	}
	absSrc, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return 0, err
	}
	if rel, relErr := filepath.Rel(absSrc, absDest); relErr == nil && !strings.HasPrefix(rel, "..") {
		return 0, ErrArchiveInsideSource
	}

	os.Remove(dest)
	file, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	w := zip.NewWriter(file)

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(path, p)
		if relErr != nil {
			return relErr
		}
		if addErr := addFileToZip(w, p, filepath.ToSlash(rel)); addErr != nil {
			return addErr
		}
		count++
		return nil
	})
	if err != nil {
		w.Close()
		return count, errors.Wrapf(err, "zip %s", path)
	}
	return count, w.Close()
}

func addFileToZip(w *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Store
	writer, err := w.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(writer, f)
	return err
}
