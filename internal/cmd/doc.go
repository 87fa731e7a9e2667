// Package cmd provides the command-line interface implementation for amstage.
//
// This package contains all the subcommand implementations for the amstage CLI
// tool. It uses the Cobra library for command structure, Fang for styling and
// Viper with godotenv for configuration.
//
// The package is organized into the following commands:
//   - root: Main command coordinator and persistent flags (--root, --format, --verbose)
//   - save, load, delete: Stage operations driven by a JSON request
//   - ls, heap: Rubric inspection
//   - mount: Read-only FUSE view of a stage
//   - validate, export, count, seed: Maintenance utilities
//   - version: Build and layout version
//
// Each command is implemented with its own constructor function that returns a
// *cobra.Command. Configuration is bound in the root command's PersistentPreRunE
// so every flag can also be set as an AMSTAGE_* environment variable.
package cmd
