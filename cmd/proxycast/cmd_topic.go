package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/terryso/proxycast/internal/session"
	"github.com/terryso/proxycast/internal/types"
)

func init() {
	rootCmd.AddCommand(topicCmd)
	topicCmd.AddCommand(topicListCmd, topicDeleteCmd)
}

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Manage conversation topics",
}

var topicListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all topics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := dialAgent(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		reg := session.NewRegistry(client)
		list, err := reg.List(ctx)
		if err != nil {
			return fmt.Errorf("list topics: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("No topics found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tMESSAGES\tCREATED")
		for _, s := range list {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				s.ID,
				s.Title,
				s.MessageCount,
				s.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var topicDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := dialAgent(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		reg := session.NewRegistry(client)
		if err := reg.Delete(ctx, types.SessionID(args[0])); err != nil {
			return fmt.Errorf("delete topic: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Topic %s deleted.\n", args[0])
		return nil
	},
}
