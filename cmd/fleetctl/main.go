package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"agent-hub/client"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:5030"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fleetctl",
		Short: "fleetctl: inspect agents and dispatch commands to them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("FLEETCTL_SERVER")
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringP("server", "s", server, "Agent hub base URL (env FLEETCTL_SERVER)")

	cmd.AddCommand(newAgentsCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newQueueCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newDashboardCmd())
	return cmd
}

func apiClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	return client.New(server)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
