package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	pcerrors "github.com/multifx/pedalctl/internal/errors"
	"github.com/multifx/pedalctl/internal/logging"
	"github.com/multifx/pedalctl/internal/manifest"
)

func init() {
	manifestCmd.AddCommand(manifestValidateCmd)
}

var manifestValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the manifest set for problems",
	Long: `Load every manifest on the on-board tree and report what a normal
load would silently work around: unreadable or malformed files, entries
that fail to decode, and duplicate plugin URIs or parameter symbols.

Exit codes:
  0 - Manifest set is clean
  1 - Problems found`,
	Example: `  # Validate the on-board manifests
  pedalctl manifest validate

  See Also:
    pedalctl manifest gen - Generate manifests from plugin metadata
    pedalctl doctor       - Run the full diagnostic suite`,
	RunE: runManifestValidate,
}

func runManifestValidate(_ *cobra.Command, _ []string) error {
	return runManifestValidateWithWriter(os.Stdout, activeConfig())
}

func runManifestValidateWithWriter(w io.Writer, c *config.Config) error {
	onboard := openOnboard(c)

	res, err := manifest.NewLoader(onboard, logging.NewDiscard()).LoadDir(manifest.DefaultDir)
	if err != nil {
		return errors.Wrap(err, "loading manifests")
	}

	fmt.Fprintf(w, "Files:   %d parsed\n", len(res.Files))
	fmt.Fprintf(w, "Plugins: %d loaded\n", len(res.Plugins))

	issues := len(res.SkippedFiles) + res.SkippedEntries + len(res.Conflicts)
	if issues == 0 {
		fmt.Fprintf(w, "\n%s✓ Manifest set is clean%s\n", colorGreen, colorReset)
		return nil
	}

	if len(res.SkippedFiles) > 0 {
		fmt.Fprintf(w, "\n%sSkipped files:%s\n", colorBold, colorReset)
		for _, name := range res.SkippedFiles {
			fmt.Fprintf(w, "  %s✗ %s%s\n", colorYellow, name, colorReset)
		}
	}
	if res.SkippedEntries > 0 {
		fmt.Fprintf(w, "\n%sSkipped entries:%s %d\n", colorBold, colorReset, res.SkippedEntries)
	}
	if len(res.Conflicts) > 0 {
		fmt.Fprintf(w, "\n%sConflicts:%s\n", colorBold, colorReset)
		for _, conflict := range res.Conflicts {
			fmt.Fprintf(w, "  %s⚠ %s%s\n", colorYellow, conflict, colorReset)
		}
	}

	fmt.Fprintf(w, "\n%d problem(s) found\n", issues)
	return pcerrors.NewExitError(nil, pcerrors.ExitUser)
}
