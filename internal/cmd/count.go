package cmd

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/dendrascience/amshared/util"
	"github.com/spf13/cobra"
)

// NewCountCmd creates and returns the count subcommand.
// It provides file counting functionality for directory trees.
func NewCountCmd() *cobra.Command {
	var (
		path         string
		showProgress bool
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "count [PATH]",
		Short: "Count files in a directory tree",
		Long: `Count the total number of files in a directory tree.

This is a utility command that recursively walks through a directory
and counts all files (excluding directories and hidden entries). With
--limit the walk stops once the count goes past the limit, which is a
quick way to check whether a rubric has grown too large.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				path = args[0]
			}
			if limit > 0 {
				return runCountLimit(cmd, path, limit)
			}
			return runCount(cmd, path, showProgress)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "./", "Path to count files in")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "Show progress every 10,000 files")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop counting once the count exceeds this limit")

	return cmd
}

func runCount(cmd *cobra.Command, path string, showProgress bool) error {
	out := cmd.OutOrStdout()
	count := 0
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			count++
		}
		if showProgress && count%10000 == 0 && count > 0 {
			fmt.Fprintf(out, "Progress: %d files counted\n", count)
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Total files: %d\n", count)
	return nil
}

func runCountLimit(cmd *cobra.Command, path string, limit int) error {
	count, over, err := util.CountSubfile(path, limit)
	if err != nil {
		return err
	}
	if over {
		fmt.Fprintf(cmd.OutOrStdout(), "More than %d files\n", limit)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Total files: %d\n", count)
	return nil
}
