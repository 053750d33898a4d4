package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/ryan/internal/model"
	"github.com/rcliao/ryan/internal/plugin"
)

func init() {
	cmd := &cobra.Command{
		Use:   "plugin [name] [input...]",
		Short: "List plugins or run one directly",
		Run:   runPlugin,
	}

	RootCmd.AddCommand(cmd)
}

func runPlugin(cmd *cobra.Command, args []string) {
	a := newApp(cmd.Context(), loadConfig(), false)
	defer a.Close()

	if len(args) == 0 {
		printJSON(cmd.OutOrStdout(), map[string][]string{"plugins": a.plugins.Names()})
		return
	}

	name, input := args[0], strings.Join(args[1:], " ")
	reply, ok, err := a.plugins.Run(cmd.Context(), name, input)
	switch {
	case errors.Is(err, plugin.ErrNotFound):
		exitErr("plugin", err)
	case err != nil:
		printJSON(cmd.OutOrStdout(), model.Error("Error running plugin '"+name+"': "+err.Error()))
	case !ok:
		printJSON(cmd.OutOrStdout(), model.Text("Plugin '"+name+"' did not recognise that input."))
	default:
		printJSON(cmd.OutOrStdout(), model.PluginResult(name, reply))
	}
}
