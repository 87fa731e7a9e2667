package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/dendrascience/amshared/stage"
	"github.com/dendrascience/amshared/util"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export subcommand.
func NewExportCmd() *cobra.Command {
	var metadata bool

	cmd := &cobra.Command{
		Use:   "export RUBRIC DEST.zip",
		Short: "Export the files of a rubric to a zip archive",
		Long: `Export the content files of a rubric, nested rubrics included, to a zip
archive. With --metadata the metadata files are exported instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stg, err := openStage()
			if err != nil {
				return err
			}
			n, err := exportRubric(stg, args[0], args[1], metadata)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d files to %s\n", n, args[1])
			return nil
		},
	}

	cmd.Flags().BoolVar(&metadata, "metadata", false, "Export metadata files instead of content")

	return cmd
}

func exportRubric(stg *stage.Stage, rubric, dest string, metadata bool) (int, error) {
	top := stg.ContentRoot()
	if metadata {
		top = stg.MetadataRoot()
	}
	r := stg.Rubric(rubric)
	if err := r.Err(); err != nil {
		return 0, err
	}
	rel, err := filepath.Rel(stg.MetadataRoot(), r.Folder().Path)
	if err != nil {
		return 0, err
	}
	return util.ZipDirectory(filepath.Join(top, rel), dest)
}
