package cmd

import (
	"github.com/dendrascience/amshared/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root cobra command for the amstage CLI.
// It sets up all subcommands, command groups, and configuration binding.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "amstage",
		Short: "amstage - A filesystem store for metadata/content records",
		Long: `amstage stores records as pairs of a JSON metadata file and a content file
below a stage root directory.

Records are addressed by rubric, name and part. Atomic records are single
files, multipart records and the heap are numbered parts below a directory.

Use subcommands to perform different operations:
  - save, load, delete: Operate on records given as a JSON request
  - ls, heap: Inspect the names and the heap of a rubric
  - mount: Serve a stage as a read-only filesystem
  - validate, export, count, seed: Maintenance utilities

Flags may also be set through AMSTAGE_* environment variables or a .env file.`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}
	setupStageFlags(rootCmd)

	groupRecords := "records"
	groupFilesystem := "filesystem"
	groupUtilities := "utilities"

	// Add command groups for better organization
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupRecords,
		Title: "Record Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	for _, c := range []*cobra.Command{NewSaveCmd(), NewLoadCmd(), NewDeleteCmd(), NewLsCmd(), NewHeapCmd()} {
		c.GroupID = groupRecords
		rootCmd.AddCommand(c)
	}

	mountCmd := NewMountCmd()
	mountCmd.GroupID = groupFilesystem
	rootCmd.AddCommand(mountCmd)

	for _, c := range []*cobra.Command{NewValidateCmd(), NewExportCmd(), NewCountCmd(), NewSeedCmd(), NewVersionCmd()} {
		c.GroupID = groupUtilities
		rootCmd.AddCommand(c)
	}

	return rootCmd
}
