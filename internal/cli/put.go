package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/ryan/internal/memory"
	"github.com/rcliao/ryan/internal/model"
	"github.com/rcliao/ryan/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put [value]",
		Short: "Store a memory",
		Long:  "Store a memory. The value can be a positional arg or piped via stdin.",
		Run:   runPut,
	}

	cmd.Flags().StringP("key", "k", "", "Key (required)")
	cmd.Flags().StringP("category", "c", model.DefaultCategory, "Category")

	cmd.MarkFlagRequired("key")

	RootCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")
	category, _ := cmd.Flags().GetString("category")

	value := strings.TrimSpace(argOrStdin(args))
	if value == "" {
		exitErr("put", fmt.Errorf("value is required (positional arg or stdin)"))
	}

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sanitized := memory.Sanitize(key)
	if sanitized == "" {
		sanitized = memory.GenerateKey()
	}

	e, err := s.Put(cmd.Context(), store.PutParams{
		User:     cfg.UserID,
		Key:      sanitized,
		Value:    value,
		Category: category,
	})
	if err != nil {
		exitErr("put", err)
	}

	printJSON(cmd.OutOrStdout(), e)
}
