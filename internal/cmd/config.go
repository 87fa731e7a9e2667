package cmd

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/dendrascience/amshared/stage"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "amstage"

// Keys shared by every subcommand. Each is settable as a flag or as an
// AMSTAGE_* environment variable.
const (
	keyRoot    = "root"
	keyFormat  = "format"
	keyVerbose = "verbose"
	keyXtra    = "xtra"
)

func setupStageFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(keyRoot, ".", "Stage root directory")
	cmd.PersistentFlags().String(keyFormat, "json", "Format applied to records that name none")
	cmd.PersistentFlags().Bool(keyVerbose, false, "Log failed records to stderr")
}

// initConfig loads .env files and binds the command's flags to viper.
func initConfig(cmd *cobra.Command) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	return viper.BindPFlags(cmd.Flags())
}

// xtraMeta resolves provider names to extra-metadata providers.
func xtraMeta(names []string) ([]stage.XtraMeta, error) {
	var out []stage.XtraMeta
	for _, name := range strings.Split(strings.Join(names, ","), ",") {
		switch strings.TrimSpace(name) {
		case "":
		case stage.KeyCTime:
			out = append(out, stage.CTime{})
		case stage.KeyUUID:
			out = append(out, stage.UUID{})
		case stage.KeyMIME:
			out = append(out, stage.ContentType{})
		case stage.KeySHA256:
			out = append(out, stage.Checksum{})
		default:
			return nil, errors.Errorf("unknown extra metadata %q", name)
		}
	}
	return out, nil
}

// openStage opens the stage configured through flags and environment.
func openStage() (*stage.Stage, error) {
	var w io.Writer = io.Discard
	if viper.GetBool(keyVerbose) {
		w = os.Stderr
	}
	opts := []stage.Option{stage.WithLogger(log.New(w, "", log.LstdFlags))}
	if viper.IsSet(keyXtra) {
		x, err := xtraMeta(viper.GetStringSlice(keyXtra))
		if err != nil {
			return nil, err
		}
		opts = append(opts, stage.WithXtraMeta(x...))
	}
	return stage.New(viper.GetString(keyRoot), opts...)
}
