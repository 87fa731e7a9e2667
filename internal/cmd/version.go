package cmd

import (
	"encoding/json"

	"github.com/dendrascience/amshared/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewVersionCmd creates the version subcommand. Besides the build it reports
// the layout the stage root was written with, when that root has a manifest.
func NewVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and layout information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := version.ForRoot(viper.GetString(keyRoot))
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info)
			}
			info.Print(cmd.OutOrStdout(), "amstage")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")

	return cmd
}
