package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	_ "bazil.org/fuse/fs/fstestutil"
	"github.com/dendrascience/amshared/stagefs"
	"github.com/dendrascience/amshared/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewMountCmd creates and returns the mount subcommand.
// It serves a stage read-only at the given mountpoint.
func NewMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount MOUNTPOINT",
		Short: "Mount a stage as a read-only filesystem",
		Long: `Mount the stage selected with --root at the specified mountpoint.

The mount mirrors the content tree of the stage. Metadata is exposed as
extended attributes named user.stage.<key>. The mountpoint must not lie
inside the stage root, nor the stage root inside the mountpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: runMount,
	}
}

func runMount(cmd *cobra.Command, args []string) error {
	fmt.Printf("amstage %s starting...\n", version.GetFullVersion())

	root := viper.GetString(keyRoot)
	mountpoint := args[0]
	if pathsOverlap(root, mountpoint) {
		return errors.Errorf("mountpoint %s overlaps stage root %s", mountpoint, root)
	}

	stg, err := openStage()
	if err != nil {
		return err
	}
	filesystem := stagefs.New(stg)

	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("amstage"),
		fuse.Subtype("amstage"),
		fuse.ReadOnly(),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, shutting down...")

		fuse.Unmount(mountpoint)
		c.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()

	log.Printf("amstage %s mounted at %s (stage: %s)", version.GetVersion(), mountpoint, stg.Root())
	return fs.Serve(c, filesystem)
}

// pathsOverlap reports whether one path is, or lies inside, the other.
func pathsOverlap(path1, path2 string) bool {
	a, err1 := filepath.Abs(path1)
	b, err2 := filepath.Abs(path2)
	if err1 != nil || err2 != nil {
		a, b = filepath.Clean(path1), filepath.Clean(path2)
	}
	return within(a, b) || within(b, a)
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
