package commands

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/layout"
	"github.com/multifx/pedalctl/internal/manifest"
	"github.com/multifx/pedalctl/internal/plugin"
)

func init() {
	rootCmd.AddCommand(pluginCmd)
}

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Inspect and adjust the plugin chain",
	Long: `Inspect and adjust the plugin chain loaded from the on-board manifests.

Plugins are addressed by chain index or by name. Parameter values set here
live in memory for the duration of the command; the manifests on disk keep
their defaults.`,
	Example: `  # List the plugin chain
  pedalctl plugin list

  # Show one plugin in detail
  pedalctl plugin show reverb

  # Set a parameter value
  pedalctl plugin set reverb decay 3.5

  See Also:
    pedalctl plugin list - List the plugin chain
    pedalctl plugin show - Show one plugin in detail
    pedalctl plugin set  - Set a parameter value`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// loadPlugins ensures manifests exist on the on-board tree, loads them, and
// returns a populated manager plus the load diagnostics.
func loadPlugins(c *config.Config) (*plugin.Manager, *manifest.Result, error) {
	onboard, err := ensureOnboard(c)
	if err != nil {
		return nil, nil, err
	}

	gen := manifest.NewGenerator(onboard, "", nil)
	if _, err := gen.Ensure(layout.PluginsDir, manifest.DefaultDir); err != nil {
		return nil, nil, errors.Wrap(err, "generating manifests")
	}

	res, err := manifest.NewLoader(onboard, nil).LoadDir(manifest.DefaultDir)
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading manifests")
	}

	mgr := plugin.NewManager()
	for _, p := range res.Plugins {
		mgr.Add(p)
	}
	return mgr, res, nil
}

// resolvePluginIndex maps a plugin reference to a chain index. Numeric
// references pass through unchecked, the manager decides what an
// out-of-range index means. Names must match a loaded plugin.
func resolvePluginIndex(mgr *plugin.Manager, ref string) (int, error) {
	if idx, err := strconv.Atoi(ref); err == nil {
		return idx, nil
	}
	for i, p := range mgr.Plugins() {
		if strings.EqualFold(p.Name, ref) {
			return i, nil
		}
	}
	return 0, errors.Newf("no plugin named %q (run: pedalctl plugin list)", ref)
}

// resolveParamIndex maps a parameter reference to an index within the plugin
// at pluginIdx. Numeric references pass through unchecked; names must match
// a parameter name or symbol.
func resolveParamIndex(mgr *plugin.Manager, pluginIdx int, ref string) (int, error) {
	if idx, err := strconv.Atoi(ref); err == nil {
		return idx, nil
	}
	p, ok := mgr.Get(pluginIdx)
	if !ok {
		return 0, errors.Newf("no plugin at index %d", pluginIdx)
	}
	for i, param := range p.Parameters {
		if strings.EqualFold(param.Name, ref) || strings.EqualFold(param.Symbol, ref) {
			return i, nil
		}
	}
	return 0, errors.Newf("no parameter named %q in %s", ref, p.Name)
}
