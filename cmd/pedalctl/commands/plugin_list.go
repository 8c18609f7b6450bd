package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/plugin"
)

var pluginListJSON bool

func init() {
	pluginListCmd.Flags().BoolVar(&pluginListJSON, "json", false, "Output in JSON format")
	pluginCmd.AddCommand(pluginListCmd)
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the plugin chain",
	Long: `List the plugins loaded from the on-board manifests, in chain order.

The index column addresses plugins in other commands.`,
	Example: `  # List the plugin chain
  pedalctl plugin list

  # Output as JSON
  pedalctl plugin list --json

  See Also:
    pedalctl plugin show - Show one plugin in detail`,
	RunE: runPluginList,
}

// pluginListOutput represents a single plugin in JSON output.
type pluginListOutput struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	URI        string `json:"uri"`
	Category   string `json:"category,omitempty"`
	Channels   string `json:"channels,omitempty"`
	Parameters int    `json:"parameters"`
}

func runPluginList(_ *cobra.Command, _ []string) error {
	return runPluginListWithWriter(os.Stdout, activeConfig())
}

func runPluginListWithWriter(w io.Writer, c *config.Config) error {
	mgr, _, err := loadPlugins(c)
	if err != nil {
		return err
	}

	if pluginListJSON {
		return outputPluginListJSON(w, mgr)
	}
	return outputPluginListTabular(w, mgr)
}

func outputPluginListJSON(w io.Writer, mgr *plugin.Manager) error {
	plugins := mgr.Plugins()
	output := make([]pluginListOutput, len(plugins))
	for i, p := range plugins {
		output[i] = pluginListOutput{
			Index:      i,
			Name:       p.Name,
			URI:        p.URI,
			Category:   p.Category,
			Channels:   p.Channels,
			Parameters: len(p.Parameters),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputPluginListTabular(w io.Writer, mgr *plugin.Manager) error {
	if mgr.Len() == 0 {
		fmt.Fprintln(w, "No plugins installed")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Install plugin directories under the on-board plugins/ tree, then")
		fmt.Fprintln(w, "generate manifests with: pedalctl manifest gen")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%sIDX%s\t%sNAME%s\t%sURI%s\t%sPARAMS%s\n",
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset)

	for i, p := range mgr.Plugins() {
		fmt.Fprintf(tw, "%d\t%s%s%s\t%s\t%d\n",
			i,
			colorGreen, p.Name, colorReset,
			p.URI,
			len(p.Parameters))
	}
	return tw.Flush()
}
