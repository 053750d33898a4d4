package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Save documents into memory",
		Long:  "Store each file's content in memory. Code files also get an AI summary; other files have their \"Key: Value\" lines saved as facts.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runIngest,
	}

	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	a := newApp(cmd.Context(), loadConfig(), false)
	defer a.Close()

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			exitErr("read file", err)
		}
		if !utf8.Valid(data) {
			exitErr("ingest", fmt.Errorf("%s is not UTF-8 text", path))
		}
		msg := a.assistant.ProcessDocument(cmd.Context(), filepath.Base(path), string(data))
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
}
