// Package cli implements the ryan CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rcliao/ryan/internal/config"
	"github.com/rcliao/ryan/internal/store"
)

var (
	dbPath  string
	userID  string
	envFile string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "ryan",
	Short: "A personal assistant that remembers",
	Long:  "Chat with Ryan from the terminal or over HTTP. Facts you tell it are kept in a local SQLite memory.",
}

func init() {
	// Only warnings reach stderr until newApp installs the real logger.
	zlog.Logger = zlog.Logger.Level(zerolog.WarnLevel)

	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $RYAN_DB_PATH or ~/.ryan/memory.db)")
	RootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "User whose memory to use (default: $RYAN_USER_ID or default_user)")
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file to load before reading the environment (default: ./"+config.DefaultEnvFile+" when present)")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() *config.Config {
	cfg, err := config.Load(envFile)
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if userID != "" {
		cfg.UserID = userID
	}
	return cfg
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

func printJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// argOrStdin joins args, or reads piped stdin when there are none.
func argOrStdin(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	stat, _ := os.Stdin.Stat()
	if stat != nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		return string(b)
	}
	return ""
}
