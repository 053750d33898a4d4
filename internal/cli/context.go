package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/ryan/internal/memory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context [entity]",
		Short: "Show the memory block chat would use for an entity",
		Long:  "Scan stored memories for an entity and print the \"Relevant Memory\" block that would be added to the chat prompt.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runContext,
	}

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	entity := strings.Join(args, " ")

	a := newApp(cmd.Context(), loadConfig(), false)
	defer a.Close()
	if !a.memory.Available() {
		exitErr("context", fmt.Errorf("memory store is not available"))
	}

	block := memory.Assemble(memory.Relevant(a.memory.All(cmd.Context()), entity))
	if block == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "No memories mention %q.\n", entity)
		return
	}
	fmt.Fprint(cmd.OutOrStdout(), block)
}
