// Package main is the entry point for the Jarvis assistant.
// Jarvis answers conversational commands through a precedence cascade
// of local handlers, remembers user facts, and falls back to a
// generative AI backend for everything else.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/normanking/jarvis/internal/auth"
	"github.com/normanking/jarvis/internal/brain"
	"github.com/normanking/jarvis/internal/config"
	"github.com/normanking/jarvis/internal/corpus"
	"github.com/normanking/jarvis/internal/dispatch"
	"github.com/normanking/jarvis/internal/intent"
	"github.com/normanking/jarvis/internal/llm"
	"github.com/normanking/jarvis/internal/logging"
	"github.com/normanking/jarvis/internal/memory"
	"github.com/normanking/jarvis/internal/server"
	"github.com/normanking/jarvis/internal/services"
	"github.com/normanking/jarvis/internal/session"
	"github.com/normanking/jarvis/internal/system"
)

var (
	version = "0.1.0"
	cfgPath string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jarvis",
		Short: "Jarvis - conversational command dispatcher",
		Long: `Jarvis routes spoken-style commands through local handlers:
wake words, fact memory, system actions, weather, time, maps, and
media, with a generative AI fallback for open questions.

Run the HTTP server: jarvis serve
Ask one question:    jarvis ask "what is the time in tokyo"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.jarvis/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Jarvis v%s\n", version)
		},
	})

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFromPath(cfgPath)
	}
	return config.Load()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{Level: level, Pretty: cfg.Logging.Pretty})
}

// buildDispatcher wires every collaborator from configuration. The
// returned cleanup closes the fact database.
func buildDispatcher(cfg *config.Config, log zerolog.Logger) (*dispatch.Dispatcher, func(), error) {
	var (
		store       memory.Store
		transcripts memory.TranscriptStore
		cleanup     = func() {}
	)
	if cfg.Memory.DBPath != "" {
		sqlStore, err := memory.OpenSQLite(cfg.Memory.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open memory store: %w", err)
		}
		store = sqlStore
		transcripts = memory.NewSQLiteTranscripts(sqlStore.DB())
		cleanup = func() { sqlStore.Close() }
	} else {
		log.Warn().Msg("no db_path configured, facts will not survive restarts")
		store = memory.NewInMemoryStore()
		transcripts = memory.NewInMemoryTranscripts()
	}

	commands := corpus.Default()
	if cfg.Memory.CorpusPath != "" {
		loaded, err := corpus.Load(cfg.Memory.CorpusPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("load corpus: %w", err)
		}
		commands = loaded
	}

	var aiBridge dispatch.Brain
	if cfg.AI.APIKey != "" {
		provCfg := llm.DefaultConfig(cfg.AI.Provider)
		provCfg.APIKey = cfg.AI.APIKey
		if cfg.AI.Model != "" {
			provCfg.Model = cfg.AI.Model
		}
		if cfg.AI.Timeout > 0 {
			provCfg.Timeout = cfg.AI.Timeout
		}
		provider, err := llm.NewProvider(provCfg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init AI provider: %w", err)
		}
		aiBridge = brain.New(provider, logging.Component(log, "brain"),
			brain.WithTimeout(provCfg.Timeout))
		log.Info().Str("provider", provider.Name()).Msg("AI backend ready")
	} else {
		log.Warn().Msg("no AI api_key configured, fallback replies disabled")
	}

	geo := services.NewGeocoder(cfg.Services.OpenCageAPIKey)
	locator := services.NewIPLocator()

	dispatcher := dispatch.New(dispatch.Config{
		Matcher:     intent.NewMatcher(commands),
		Learner:     memory.NewLearner(store, logging.Component(log, "memory")),
		Transcripts: transcripts,
		Sessions: session.NewStore(
			session.WithMaxSessions(cfg.Session.MaxSessions),
			session.WithTTL(cfg.Session.TTL),
		),
		Brain:   aiBridge,
		System:  system.NewHostExecutor(logging.Component(log, "system")),
		Media:   system.NewMediaOpener(logging.Component(log, "media")),
		Weather: services.NewWeatherClient(cfg.Services.WeatherAPIKey),
		Clock:   services.NewTimeClient(cfg.Services.TimezoneDBAPIKey, geo),
		Nav:     services.NewMapsClient(cfg.Services.OpenRouteAPIKey, geo, locator),
		Locator: locator,
		Geo:     geo,
		Logger:  logging.Component(log, "dispatch"),
	})
	return dispatcher, cleanup, nil
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP command server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			dispatcher, cleanup, err := buildDispatcher(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			if cfg.Server.AuthSecret == "" {
				log.Warn().Msg("no auth_secret configured, all callers run as guest")
			}

			srv := server.New(dispatcher, auth.NewService(cfg.Server.AuthSecret),
				logging.Component(log, "server"))

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [text]",
		Short: "Dispatch one command locally and print the reply",
		Long: `Dispatch a single command without the HTTP server.

Examples:
  jarvis ask "what is the weather in pune"
  jarvis ask "remember my favourite colour is blue"
  jarvis ask "open chrome"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			dispatcher, cleanup, err := buildDispatcher(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			resp := dispatcher.Dispatch(ctx, dispatch.Request{
				Text:      strings.Join(args, " "),
				Role:      dispatch.RoleUser,
				UserID:    "local",
				SessionID: uuid.NewString(),
			})
			fmt.Println(resp.Reply)
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Println("Jarvis Configuration:")
			fmt.Println("─────────────────────")
			fmt.Printf("Listen Addr:   %s\n", cfg.Server.Addr)
			fmt.Printf("AI Provider:   %s\n", cfg.AI.Provider)
			fmt.Printf("AI Configured: %t\n", cfg.AI.APIKey != "")
			fmt.Printf("Database Path: %s\n", cfg.Memory.DBPath)
			fmt.Printf("Log Level:     %s\n", cfg.Logging.Level)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			if cfgPath != "" {
				fmt.Println(cfgPath)
				return
			}
			home, _ := os.UserHomeDir()
			fmt.Println(home + "/.jarvis/config.yaml")
		},
	})

	return cmd
}
