package util

import (
	"os"
	"path/filepath"
	"strings"
)

// CountSubfile counts the regular files below path, skipping hidden entries.
// It stops as soon as the count exceeds target and reports the overage.
func CountSubfile(path string, target int) (count int, overage bool, err error) {
	var info os.FileInfo
	info, err = os.Stat(path)
	if err != nil {
		return
	}
	if !info.IsDir() {
		err = ErrExpectedDirectory
		return
	}
	var files []os.DirEntry
	files, err = os.ReadDir(path)
	if err != nil {
		return
	}
	for _, f := range files {
		if strings.HasPrefix(f.Name(), ".") {
			continue
		}
		if !f.IsDir() {
			count++
			if count > target {
				return count, true, nil
			}
		} else {
			c, o, e := CountSubfile(filepath.Join(path, f.Name()), target-count)
			count += c
			if o {
				return count, true, nil
			}
			err = e
			if err != nil {
				return
			}
		}
	}
	return
}
