package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/ryan/internal/model"
	"github.com/rcliao/ryan/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memories by substring",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("category", "c", "", "Filter by category")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		User:     cfg.UserID,
		Query:    strings.Join(args, " "),
		Category: category,
		Limit:    limit,
	})
	if err != nil {
		exitErr("search", err)
	}
	if results == nil {
		results = []model.Entry{}
	}

	printJSON(cmd.OutOrStdout(), results)
}
