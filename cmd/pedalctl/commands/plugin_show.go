package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/logging"
	"github.com/multifx/pedalctl/internal/plugin"
)

func init() {
	pluginCmd.AddCommand(pluginShowCmd)
}

var pluginShowCmd = &cobra.Command{
	Use:   "show [plugin]",
	Short: "Show one plugin in detail",
	Long: `Show one plugin's identity, channel wiring, and parameters.

The plugin is addressed by chain index or by name. With no argument on a
terminal, an interactive picker opens instead.`,
	Example: `  # Show by name
  pedalctl plugin show reverb

  # Show by chain index
  pedalctl plugin show 2

  # Pick interactively
  pedalctl plugin show

  See Also:
    pedalctl plugin list - List the plugin chain
    pedalctl plugin set  - Set a parameter value`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPluginShow,
}

func runPluginShow(_ *cobra.Command, args []string) error {
	return runPluginShowWithWriter(os.Stdout, activeConfig(), args)
}

func runPluginShowWithWriter(w io.Writer, c *config.Config, args []string) error {
	mgr, _, err := loadPlugins(c)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return runPluginPicker(w, mgr)
	}

	idx, err := resolvePluginIndex(mgr, args[0])
	if err != nil {
		return err
	}
	p, ok := mgr.Get(idx)
	if !ok {
		return errors.Newf("no plugin at index %d (chain holds %d)", idx, mgr.Len())
	}

	printPluginDetail(w, idx, p)
	return nil
}

func runPluginPicker(w io.Writer, mgr *plugin.Manager) error {
	plugins := mgr.Plugins()
	if len(plugins) == 0 {
		fmt.Fprintln(w, "No plugins installed")
		return nil
	}

	if !logging.IsTTY(os.Stdout) {
		return errors.New("plugin name or index required when not running interactively")
	}

	idx, err := fuzzyfinder.Find(
		plugins,
		func(i int) string {
			return fmt.Sprintf("%d: %s (%s)", i, plugins[i].Name, plugins[i].URI)
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			p := plugins[i]
			return fmt.Sprintf("Name: %s\nURI: %s\nChannels: %s\nParameters: %d\n\n%s",
				p.Name,
				p.URI,
				p.Channels,
				len(p.Parameters),
				p.Description,
			)
		}),
	)

	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return errors.Wrap(err, "interactive selection failed")
	}

	printPluginDetail(w, idx, plugins[idx])
	return nil
}

func printPluginDetail(w io.Writer, idx int, p *plugin.Plugin) {
	fmt.Fprintf(w, "%s%s%s (index %d)\n", colorCyan+colorBold, p.Name, colorReset, idx)
	fmt.Fprintf(w, "  URI:      %s\n", p.URI)
	fmt.Fprintf(w, "  Channels: %s\n", p.Channels)
	if p.Category != "" {
		fmt.Fprintf(w, "  Category: %s\n", p.Category)
	}
	fmt.Fprintf(w, "  Bypass:   %g\n", p.Bypass)
	fmt.Fprintf(w, "  Inputs:   %s\n", strings.Join(p.Inputs, ", "))
	fmt.Fprintf(w, "  Outputs:  %s\n", strings.Join(p.Outputs, ", "))
	if p.Description != "" {
		fmt.Fprintf(w, "  %s\n", p.Description)
	}

	fmt.Fprintln(w)
	if len(p.Parameters) == 0 {
		fmt.Fprintf(w, "  %s(no parameters)%s\n", colorGray, colorReset)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %sIDX%s\t%sNAME%s\t%sSYMBOL%s\t%sMODE%s\t%sVALUE%s\t%sRANGE%s\n",
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset)

	for i, param := range p.Parameters {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%g\t%g..%g\n",
			i,
			param.Name,
			param.Symbol,
			param.Mode,
			param.Value,
			param.Min,
			param.Max)
	}
	tw.Flush()
}
