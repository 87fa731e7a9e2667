package cmd

import (
	"fmt"
	"strings"

	"github.com/dendrascience/amshared/stage"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewLsCmd creates the ls subcommand.
func NewLsCmd() *cobra.Command {
	var (
		kind  string
		match string
	)

	cmd := &cobra.Command{
		Use:   "ls RUBRIC",
		Short: "List the object names of a rubric",
		Long: `List the object names stored under a rubric.

Atomic names are printed before multipart names. The heap is not listed;
use the heap command for it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			stg, err := openStage()
			if err != nil {
				return err
			}
			var names []string
			if match != "" {
				names, err = stg.Rubric(args[0]).Match(match, k)
			} else {
				names, err = stg.LsNames(args[0], k)
			}
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "all", "Names to list: all, atomic or multipart")
	cmd.Flags().StringVarP(&match, "match", "m", "", "Only list names matching a glob pattern")

	return cmd
}

func parseKind(s string) (stage.Kind, error) {
	for _, k := range []stage.Kind{stage.AllNames, stage.AtomicNames, stage.MultipartNames} {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, errors.Errorf("unknown kind %q", s)
}

// NewHeapCmd creates the heap subcommand.
func NewHeapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heap RUBRIC",
		Short: "Show the metadata of the last heap item of a rubric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stg, err := openStage()
			if err != nil {
				return err
			}
			rec := stg.LastHeapMeta(args[0])
			if rec.Empty() {
				return errors.Errorf("rubric %s has no heap", args[0])
			}
			return writeRecords(cmd.OutOrStdout(), []stage.Record{rec})
		},
	}
}
