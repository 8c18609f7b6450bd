package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/layout"
	"github.com/multifx/pedalctl/internal/manifest"
)

func init() {
	manifestCmd.AddCommand(manifestGenCmd)
}

var manifestGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate manifests from plugin metadata",
	Long: `Generate one manifest per plugin directory on the on-board tree.

Each directory under plugins/ (except manifests/) yields a manifest built
from its metadata.json. Directories without usable metadata get defaults
derived from the directory name. Existing manifests are overwritten.`,
	Example: `  # Regenerate all manifests
  pedalctl manifest gen

  See Also:
    pedalctl manifest validate - Check the manifest set for problems
    pedalctl plugin list       - List the resulting plugin chain`,
	RunE: runManifestGen,
}

func runManifestGen(_ *cobra.Command, _ []string) error {
	return runManifestGenWithWriter(os.Stdout, activeConfig())
}

func runManifestGenWithWriter(w io.Writer, c *config.Config) error {
	onboard, err := ensureOnboard(c)
	if err != nil {
		return err
	}

	gen := manifest.NewGenerator(onboard, "", nil)
	written, err := gen.Generate(layout.PluginsDir, manifest.DefaultDir)
	if err != nil {
		return errors.Wrap(err, "generating manifests")
	}

	if len(written) == 0 {
		fmt.Fprintf(w, "No plugin directories found under %s\n", layout.PluginsDir)
		return nil
	}

	for _, path := range written {
		fmt.Fprintf(w, "  %s\n", path)
	}
	fmt.Fprintf(w, "%s✓ Wrote %d manifest(s)%s\n", colorGreen, len(written), colorReset)
	return nil
}
