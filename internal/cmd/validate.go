package cmd

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dendrascience/amshared/stage"
	"github.com/dendrascience/amshared/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates and returns the validate subcommand.
// It checks that metadata and content files of a stage pair up.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a stage for broken or orphaned files",
		Long: `Validate the files of a stage.

This command reports metadata files that do not hold a JSON object,
metadata files whose content file is missing, and content files that no
metadata file refers to. Leftover temporary files from interrupted writes
are reported as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stg, err := openStage()
			if err != nil {
				return err
			}
			problems, err := validateStage(stg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintf(out, "  - %s\n", p)
			}
			fmt.Fprintf(out, "\nValidation complete:\n")
			fmt.Fprintf(out, "  Total errors: %d\n", len(problems))
			if len(problems) > 0 {
				return errors.Errorf("stage %s has %d errors", stg.Root(), len(problems))
			}
			return nil
		},
	}
	return cmd
}

func validateStage(stg *stage.Stage) ([]string, error) {
	var problems []string
	referenced := map[string]bool{}

	err := walkFiles(stg.MetadataRoot(), func(path, rel string) {
		if isTemp(path) {
			problems = append(problems, "leftover temporary file: metadata/"+rel)
			return
		}
		if !strings.HasSuffix(path, stage.MetaSuffix) {
			problems = append(problems, "unexpected file: metadata/"+rel)
			return
		}
		b, err := os.ReadFile(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("unreadable metadata: metadata/%s: %v", rel, err))
			return
		}
		var data map[string]any
		if err := json.Unmarshal(b, &data); err != nil || data == nil {
			problems = append(problems, "broken metadata: metadata/"+rel)
			return
		}
		stem := strings.TrimSuffix(rel, stage.MetaSuffix)
		content := stem + stage.NewMetaData(data).Suffix()
		if _, err := os.Stat(filepath.Join(stg.ContentRoot(), filepath.FromSlash(content))); err != nil {
			problems = append(problems, "missing content: content/"+content)
			return
		}
		referenced[content] = true
	})
	if err != nil {
		return nil, err
	}

	err = walkFiles(stg.ContentRoot(), func(path, rel string) {
		switch {
		case isTemp(path):
			problems = append(problems, "leftover temporary file: content/"+rel)
		case !referenced[rel]:
			problems = append(problems, "orphaned content: content/"+rel)
		}
	})
	if err != nil {
		return nil, err
	}
	return problems, nil
}

func isTemp(path string) bool {
	return strings.HasPrefix(filepath.Base(path), util.TempPrefix)
}

// walkFiles calls fn for every file below root, temporary files included
// and other hidden entries skipped. rel is slash separated.
func walkFiles(root string, fn func(path, rel string)) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && !isTemp(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		fn(path, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
