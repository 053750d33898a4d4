package cli

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/rcliao/ryan/internal/assistant"
	"github.com/rcliao/ryan/internal/coding"
	"github.com/rcliao/ryan/internal/config"
	"github.com/rcliao/ryan/internal/llm"
	"github.com/rcliao/ryan/internal/logger"
	"github.com/rcliao/ryan/internal/memory"
	"github.com/rcliao/ryan/internal/plugin"
	"github.com/rcliao/ryan/internal/store"
)

// app is the wired service shared by serve, chat and the code commands.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	store     *store.SQLiteStore // nil when the database could not be opened
	memory    *memory.Store
	completer llm.Completer
	plugins   *plugin.Registry
	assistant *assistant.Assistant
	closeLog  func() error
}

// newApp wires every collaborator from cfg. A database or model that cannot
// be opened degrades the service instead of failing it. logToStdout is set
// for the server; CLI commands only log to the log file.
func newApp(ctx context.Context, cfg *config.Config, logToStdout bool) *app {
	var out io.Writer = io.Discard
	if logToStdout {
		out = os.Stdout
	}
	log, closeLog, err := logger.New("ryan", logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Out: out})
	if err != nil {
		exitErr("init logger", err)
	}

	zlog.Logger = log
	a := &app{cfg: cfg, log: log, closeLog: closeLog}

	a.store, err = openStore(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Str("db_path", cfg.DBPath).Msg("memory store unavailable")
		a.memory = memory.New(nil, cfg.UserID, log)
	} else {
		a.memory = memory.New(a.store, cfg.UserID, log)
	}

	opts := []assistant.Option{}
	if cfg.HasModel() {
		g, err := llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:          cfg.GoogleAPIKey,
			Model:           cfg.Model,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		}, log)
		if err != nil {
			log.Error().Err(err).Msg("generative model unavailable")
		} else {
			a.completer = g
			opts = append(opts, assistant.WithCompleter(g))
		}
	} else {
		log.Warn().Msg("GOOGLE_API_KEY not set, general chat and code help are disabled")
	}

	a.plugins = plugin.NewRegistry(log)
	for _, h := range []plugin.Handler{
		plugin.CoinFlip{},
		plugin.Clock{},
		plugin.Joke{LLM: a.completer},
		plugin.NewImageSearch(cfg.SearchAPIKey, cfg.SearchEngineID, ""),
	} {
		if err := a.plugins.Register(h); err != nil {
			log.Error().Err(err).Msg("plugin registration failed")
		}
	}

	executor := coding.NewExecutor(log,
		coding.WithInterpreter("python", cfg.PythonBin, "-c"),
		coding.WithInterpreter("javascript", cfg.NodeBin, "-e"),
		coding.WithTimeout(cfg.ExecTimeout),
		coding.WithGracePeriod(cfg.ExecGrace),
	)
	opts = append(opts, assistant.WithExecutor(executor), assistant.WithPlugins(a.plugins))

	a.assistant = assistant.New(a.memory, log, opts...)
	log.Info().
		Str("user", cfg.UserID).
		Bool("memory", a.memory.Available()).
		Bool("model", a.completer != nil).
		Strs("plugins", a.plugins.Names()).
		Msg("assistant ready")
	return a
}

func (a *app) modelAvailable() bool { return a.completer != nil }

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}
