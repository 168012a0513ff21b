package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/terryso/proxycast/internal/channel"
	"github.com/terryso/proxycast/pkg/agent/ws"
)

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.AddCommand(agentStartCmd, agentStopCmd, agentStatusCmd)
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage the agent backend",
}

// dialAgent connects to the configured agent endpoint with a short
// timeout. The caller owns the returned client.
func dialAgent(ctx context.Context) (*ws.Client, error) {
	cfg := loadConfig()
	setupLogging(cfg)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := ws.Dial(dialCtx, cfg.Agent.URL, channel.NewBroker(), ws.WithAPIKey(cfg.Agent.APIKey))
	if err != nil {
		return nil, fmt.Errorf("connect to agent at %s: %w", cfg.Agent.URL, err)
	}
	return client, nil
}

var agentStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the agent runtime",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := dialAgent(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.StartAgent(ctx); err != nil {
			return fmt.Errorf("start agent: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Agent started.")
		return nil
	},
}

var agentStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the agent runtime",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := dialAgent(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.StopAgent(ctx); err != nil {
			return fmt.Errorf("stop agent: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Agent stopped.")
		return nil
	},
}

var agentStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := dialAgent(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		status, err := client.Status(ctx)
		if err != nil {
			return fmt.Errorf("query status: %w", err)
		}
		if status.Running {
			fmt.Fprintln(os.Stdout, "Agent is running.")
		} else {
			fmt.Fprintln(os.Stdout, "Agent is not running.")
		}
		return nil
	},
}
