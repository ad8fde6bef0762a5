package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

const configTemplate = `version: "1"

provider:
  api_key: ${OPENAI_API_KEY}
  model: %s
  temperature: %s

chat:
  max_turns: 100

retry:
  max_attempts: 3
`

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter configuration interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			force, _ := cmd.Flags().GetBool("force")

			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", output)
				}
			}

			model := "gpt-3.5-turbo"
			temperature := "0.7"
			keyConfirmed := true

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewSelect[string]().
						Title("Model").
						Description("The OpenAI model to answer with.").
						Options(
							huh.NewOption("gpt-3.5-turbo (fast, inexpensive)", "gpt-3.5-turbo"),
							huh.NewOption("gpt-4o-mini", "gpt-4o-mini"),
							huh.NewOption("gpt-4o", "gpt-4o"),
							huh.NewOption("gpt-4.1", "gpt-4.1"),
						).
						Value(&model),
					huh.NewSelect[string]().
						Title("Temperature").
						Description("Higher values give more varied replies.").
						Options(
							huh.NewOption("0.2 (focused)", "0.2"),
							huh.NewOption("0.7 (balanced)", "0.7"),
							huh.NewOption("1.0 (creative)", "1.0"),
						).
						Value(&temperature),
					huh.NewConfirm().
						Title("Read the API key from the OPENAI_API_KEY environment variable?").
						Description("Recommended. Keys never belong in config files.").
						Value(&keyConfirmed),
				),
			)

			if err := form.Run(); err != nil {
				return err
			}
			if !keyConfirmed {
				fmt.Println("Set provider.api_key in the generated file manually, or export OPENAI_API_KEY.")
			}

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			content := fmt.Sprintf(configTemplate, model, temperature)
			if err := os.WriteFile(output, []byte(content), 0o600); err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", output)
			fmt.Println("Run 'deskbot doctor' to verify the setup, then 'deskbot chat' to start.")
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "deskbot.yaml", "Where to write the configuration")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}
