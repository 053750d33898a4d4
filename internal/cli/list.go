package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/ryan/internal/model"
	"github.com/rcliao/ryan/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories",
		Run:   runList,
	}

	cmd.Flags().StringP("category", "c", "", "Filter by category")
	cmd.Flags().IntP("limit", "l", 0, "Max results (0 for all)")
	cmd.Flags().Bool("keys-only", false, "Only output keys")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")
	keysOnly, _ := cmd.Flags().GetBool("keys-only")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.List(cmd.Context(), store.ListParams{
		User:     cfg.UserID,
		Category: category,
		Limit:    limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if keysOnly {
		for _, e := range entries {
			fmt.Fprintln(cmd.OutOrStdout(), e.Key)
		}
		return
	}

	if entries == nil {
		entries = []model.Entry{}
	}
	printJSON(cmd.OutOrStdout(), entries)
}
