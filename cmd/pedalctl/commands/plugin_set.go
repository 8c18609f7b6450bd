package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/plugin"
)

func init() {
	pluginCmd.AddCommand(pluginSetCmd)
}

var pluginSetCmd = &cobra.Command{
	Use:   "set <plugin> <parameter> <value>",
	Short: "Set a parameter value",
	Long: `Set one parameter of one plugin.

Plugin and parameter are addressed by index or by name; parameters also
match their port symbol. Values are stored as given, without clamping; a
value outside the declared range is flagged but kept.

An out-of-range index changes nothing and is not an error: the chain is
simply left untouched.`,
	Example: `  # Set by name
  pedalctl plugin set reverb decay 3.5

  # Set by index
  pedalctl plugin set 0 2 0.8

  See Also:
    pedalctl plugin show - Show a plugin's parameters`,
	Args: cobra.ExactArgs(3),
	RunE: runPluginSet,
}

func runPluginSet(_ *cobra.Command, args []string) error {
	return runPluginSetWithWriter(os.Stdout, activeConfig(), args)
}

func runPluginSetWithWriter(w io.Writer, c *config.Config, args []string) error {
	mgr, _, err := loadPlugins(c)
	if err != nil {
		return err
	}

	value, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return errors.Newf("parsing value %q: not a number", args[2])
	}

	pluginIdx, err := resolvePluginIndex(mgr, args[0])
	if err != nil {
		return err
	}
	paramIdx, err := resolveParamIndex(mgr, pluginIdx, args[1])
	if err != nil {
		return err
	}

	// The manager ignores out-of-range indexes; look the target up first
	// so the outcome can be reported.
	var param *plugin.Parameter
	p, ok := mgr.Get(pluginIdx)
	if ok {
		param, ok = p.Parameter(paramIdx)
	}

	mgr.SetParameterValue(pluginIdx, paramIdx, value)

	if !ok {
		fmt.Fprintf(w, "%sNothing changed: no parameter at %s.%s%s\n",
			colorYellow, args[0], args[1], colorReset)
		return nil
	}

	fmt.Fprintf(w, "%s✓ %s.%s = %g%s\n",
		colorGreen, p.Name, param.Name, param.Value, colorReset)
	if value < param.Min || value > param.Max {
		fmt.Fprintf(w, "%sWarning: %g is outside the declared range %g..%g%s\n",
			colorYellow, value, param.Min, param.Max, colorReset)
	}
	fmt.Fprintf(w, "%sNote: values live in memory for this run; manifests keep their defaults.%s\n",
		colorGray, colorReset)
	return nil
}
