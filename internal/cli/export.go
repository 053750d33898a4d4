package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export memories as JSON",
		Long:  "Export memories as a JSON array. Only the selected user is exported unless --all-users is set.",
		Run:   runExport,
	}

	cmd.Flags().Bool("all-users", false, "Export every user's memories")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	allUsers, _ := cmd.Flags().GetBool("all-users")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	user := cfg.UserID
	if allUsers {
		user = ""
	}
	entries, err := s.ExportAll(cmd.Context(), user)
	if err != nil {
		exitErr("export", err)
	}

	printJSON(cmd.OutOrStdout(), entries)
}
