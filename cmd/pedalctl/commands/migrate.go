package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/layout"
	"github.com/multifx/pedalctl/internal/storage"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [path]",
	Short: "Migrate a configuration tree to the structured layout",
	Long: `Migrate a flat configuration tree to the structured layout.

Without an argument the on-board tree is migrated. Pass a path to
migrate a card that is mounted but not detected, or any tree copied off
one. Loose top-level files are classified by extension: .json files move
to profiles/, everything else to plugins/. Trees that already have a
payload directory are never reclassified; migration is safe to repeat.`,
	Example: `  # Migrate the on-board tree
  pedalctl migrate

  # Migrate a mounted card directly
  pedalctl migrate /media/user/PEDAL/multifx

  See Also: pedalctl doctor`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func runMigrate(_ *cobra.Command, args []string) error {
	return runMigrateWithWriter(os.Stdout, args)
}

func runMigrateWithWriter(w io.Writer, args []string) error {
	var root storage.Root
	var target string

	if len(args) > 0 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return errors.Wrapf(err, "resolving %s", args[0])
		}
		info, err := os.Stat(abs)
		if err != nil {
			return errors.Wrapf(err, "opening %s", abs)
		}
		if !info.IsDir() {
			return errors.Newf("%s is not a directory", abs)
		}
		root = storage.NewDirRoot(abs)
		target = abs
	} else {
		c := activeConfig()
		r, err := ensureOnboard(c)
		if err != nil {
			return err
		}
		root = r
		target = c.OnboardDir
	}

	before, err := layout.Probe(root)
	if err != nil {
		return errors.Wrapf(err, "probing %s", target)
	}

	if err := layout.Migrate(root, nil); err != nil {
		return errors.Wrapf(err, "migrating %s", target)
	}

	if before == layout.StateStructured {
		fmt.Fprintf(w, "%s is already structured\n", target)
		return nil
	}
	fmt.Fprintf(w, "%s✓ Migrated %s (%s -> structured)%s\n", colorGreen, target, before, colorReset)
	return nil
}
