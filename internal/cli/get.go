package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/ryan/internal/memory"
	"github.com/rcliao/ryan/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Retrieve a memory",
		Run:   runGet,
	}

	cmd.Flags().StringP("key", "k", "", "Key (required)")

	cmd.MarkFlagRequired("key")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	e, err := s.Get(cmd.Context(), store.GetParams{User: cfg.UserID, Key: memory.Sanitize(key)})
	if err != nil {
		exitErr("get", err)
	}

	printJSON(cmd.OutOrStdout(), e)
}
