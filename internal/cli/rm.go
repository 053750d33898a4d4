package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/ryan/internal/memory"
	"github.com/rcliao/ryan/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a memory",
		Run:   runRm,
	}

	cmd.Flags().StringP("key", "k", "", "Key to delete")
	cmd.Flags().Bool("all", false, "Delete every memory for the user (irreversible)")

	cmd.MarkFlagsOneRequired("key", "all")
	cmd.MarkFlagsMutuallyExclusive("key", "all")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")
	all, _ := cmd.Flags().GetBool("all")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if all {
		n, err := s.Wipe(cmd.Context(), cfg.UserID)
		if err != nil {
			exitErr("rm", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"user":%q,"removed":%d}`+"\n", cfg.UserID, n)
		return
	}

	sanitized := memory.Sanitize(key)
	if err := s.Rm(cmd.Context(), store.RmParams{User: cfg.UserID, Key: sanitized}); err != nil {
		exitErr("rm", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"user":%q,"key":%q}`+"\n", cfg.UserID, sanitized)
}
