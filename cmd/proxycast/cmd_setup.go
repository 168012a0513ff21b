package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/terryso/proxycast/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("Proxycast Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		cfg.Agent.URL = prompt(scanner, "Agent WebSocket URL", cfg.Agent.URL)
		cfg.Agent.APIKey = prompt(scanner, "Agent API key (optional)", cfg.Agent.APIKey)
		cfg.Chat.Provider = prompt(scanner, "Default provider", cfg.Chat.Provider)
		cfg.Chat.Model = prompt(scanner, "Default model", cfg.Chat.Model)
		cfg.Chat.SystemPrompt = prompt(scanner, "System prompt (optional)", cfg.Chat.SystemPrompt)

		audioStr := prompt(scanner, "Enable audio cues (true/false)", strconv.FormatBool(cfg.Audio.Enabled))
		if b, err := strconv.ParseBool(audioStr); err == nil {
			cfg.Audio.Enabled = b
		}

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}
