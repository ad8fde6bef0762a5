// Package main is the entry point for the deskbot CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/flemzord/deskbot/internal/chat"
	"github.com/flemzord/deskbot/internal/config"
	"github.com/flemzord/deskbot/internal/memory"
	"github.com/flemzord/deskbot/internal/prompt"
	"github.com/flemzord/deskbot/internal/provider"
	"github.com/flemzord/deskbot/internal/provider/openai"
	"github.com/flemzord/deskbot/internal/status"
	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deskbot",
		Short:         "A customer-support chatbot for your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), chatCmd(), initCmd(), doctorCmd(), configCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("deskbot %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive support conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			logLevel, _ := cmd.Flags().GetString("log-level")

			if cfgPath == "" {
				resolved, err := resolveConfigPath()
				if err != nil {
					return err
				}
				cfgPath = resolved
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			logger, err := newLogger(logLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runChat(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	return cmd
}

// runChat wires the provider, session, loop, and optional status server
// together and runs the conversation until exit or shutdown.
func runChat(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	prov, err := openai.New(cfg.Provider, logger)
	if err != nil {
		return err
	}

	tpl := prompt.MustParseTemplate(prompt.DefaultTemplate)
	if cfg.Chat.Template != "" {
		tpl, err = prompt.ParseTemplate(cfg.Chat.Template)
		if err != nil {
			return err
		}
	}

	buffer := memory.NewBuffer(cfg.Chat.MaxTurns)
	assembler := prompt.NewAssembler(tpl, nil, prompt.Config{
		UserLabel:        cfg.Chat.UserLabel,
		AssistantLabel:   cfg.Chat.AssistantLabel,
		MaxTurns:         cfg.Chat.MaxTurns,
		MaxPromptTokens:  cfg.Chat.MaxPromptTokens,
		ReservedForReply: cfg.Chat.ReservedForReply,
	})
	retrier := provider.NewRetrier(cfg.Retry.RetryConfig(), logger)
	metrics := status.NewMetrics()

	session := chat.NewSession(buffer, assembler, prov, retrier, metrics, logger, chat.SessionConfig{
		MaxTokens:      cfg.Provider.MaxTokens,
		Temperature:    cfg.Provider.Temperature,
		TopP:           cfg.Provider.TopP,
		RequestTimeout: cfg.Chat.ParsedRequestTimeout(),
	})

	if cfg.Status.Addr != "" {
		srv := status.NewServer(cfg.Status.Addr, metrics, func() status.SessionInfo {
			return status.SessionInfo{Model: session.ModelName(), Turns: session.Turns()}
		}, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	loopCfg := chat.LoopConfig{}
	if cfg.Chat.AssistantLabel != "" {
		loopCfg.ReplyLabel = cfg.Chat.AssistantLabel
	}

	loop := chat.NewLoop(session, os.Stdin, os.Stdout, loopCfg)
	return loop.Run(ctx)
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Printf("Configuration OK (model: %s)\n", modelOrDefault(cfg))
			return nil
		},
	})
	return cmd
}

func modelOrDefault(cfg *config.Config) string {
	if cfg.Provider.Model != "" {
		return cfg.Provider.Model
	}
	return "gpt-3.5-turbo"
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})), nil
}

// resolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/deskbot/deskbot.yaml → ./deskbot.yaml
func resolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "deskbot", "deskbot.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "deskbot", "deskbot.yaml"))
	}

	candidates = append(candidates, "deskbot.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v); run 'deskbot init' to create one", candidates)
}
