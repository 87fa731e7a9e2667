package cmd

import (
	"github.com/dendrascience/amshared/stage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type stageOp func(stg *stage.Stage, flow any) []stage.Record

// newRecordCmd builds save, load and delete, which share their input and
// output handling.
func newRecordCmd(use, short, long string, op stageOp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [REQUEST.json]",
		Short: short,
		Long: long + `

The request is read from REQUEST.json, or stdin when omitted. It holds one
metadata object or an array whose items are metadata objects or
[metadata, content] pairs. One JSON record is printed per result.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runRecords(cmd, path, op)
		},
	}
	return cmd
}

func runRecords(cmd *cobra.Command, path string, op stageOp) error {
	stg, err := openStage()
	if err != nil {
		return err
	}
	flow, err := readDataflow(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	flow = withDefaultFormat(flow, viper.GetString(keyFormat))
	return writeRecords(cmd.OutOrStdout(), op(stg, flow))
}

// NewSaveCmd creates the save subcommand.
func NewSaveCmd() *cobra.Command {
	cmd := newRecordCmd("save", "Save records to the stage",
		`Save metadata/content pairs. Multipart records without a part are
appended after the last existing part.`,
		(*stage.Stage).Save)
	cmd.Flags().StringSlice(keyXtra, []string{stage.KeyCTime},
		"Extra metadata added to saved records (ctime, uuid, mime, sha256)")
	return cmd
}

// NewLoadCmd creates the load subcommand.
func NewLoadCmd() *cobra.Command {
	return newRecordCmd("load", "Load records from the stage",
		`Load records. A name of "*" loads every name of the rubric and a part
of "*" loads every part.`,
		(*stage.Stage).Load)
}

// NewDeleteCmd creates the delete subcommand.
func NewDeleteCmd() *cobra.Command {
	return newRecordCmd("delete", "Delete records from the stage",
		`Delete records and remove the directories they leave empty. Records
that do not exist are reported as empty results.`,
		(*stage.Stage).Delete)
}
