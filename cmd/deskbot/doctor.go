package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/flemzord/deskbot/internal/config"
	"github.com/flemzord/deskbot/internal/provider"
	"github.com/flemzord/deskbot/internal/provider/openai"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Verify the setup before the first conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			live, _ := cmd.Flags().GetBool("live")

			if cfgPath == "" {
				resolved, err := resolveConfigPath()
				if err != nil {
					fail("config file", err)
					return err
				}
				cfgPath = resolved
			}
			ok("config file", cfgPath)

			cfg, err := config.Load(cfgPath)
			if err != nil {
				fail("config loads", err)
				return err
			}
			ok("config loads", "")

			if err := config.Validate(cfg); err != nil {
				if errors.Is(err, config.ErrCredentialMissing) {
					fail("credential present", errors.New("provider.api_key is empty; export OPENAI_API_KEY or add it to a .env file"))
				} else {
					fail("config valid", err)
				}
				return err
			}
			ok("credential present", "")
			ok("config valid", fmt.Sprintf("model: %s", modelOrDefault(cfg)))

			if !live {
				fmt.Println("\nAll checks passed. Run with --live to verify the remote endpoint.")
				return nil
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))
			prov, err := openai.New(cfg.Provider, logger)
			if err != nil {
				fail("provider constructed", err)
				return err
			}

			if err := prov.HealthCheck(cmd.Context()); err != nil {
				switch provider.ErrorClass(err) {
				case "auth":
					fail("remote reachable", errors.New("the service rejected the credential; check the API key"))
				case "rate_limit":
					fail("remote reachable", errors.New("rate limited; the credential works, try again shortly"))
				default:
					fail("remote reachable", err)
				}
				return err
			}
			ok("remote reachable", prov.ModelName())

			fmt.Println("\nAll checks passed.")
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().Bool("live", false, "Issue a minimal completion against the remote endpoint")
	return cmd
}

func ok(check, detail string) {
	if detail != "" {
		fmt.Printf("  ok  %s (%s)\n", check, detail)
		return
	}
	fmt.Printf("  ok  %s\n", check)
}

func fail(check string, err error) {
	fmt.Printf("  FAIL %s: %v\n", check, err)
}
