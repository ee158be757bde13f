package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"agent-hub/client"
	"agent-hub/entities"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// List registered agents
func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List registered agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			online, _ := cmd.Flags().GetBool("online")
			var minutes *int
			if cmd.Flags().Changed("minutes") {
				m, _ := cmd.Flags().GetInt("minutes")
				minutes = &m
			}
			agents, err := apiClient(cmd).Agents(cmd.Context(), online, minutes)
			if err != nil {
				return err
			}
			window, _ := cmd.Flags().GetInt("minutes")
			printAgents(cmd.OutOrStdout(), agents, time.Now(), time.Duration(window)*time.Minute)
			return nil
		},
	}
	cmd.Flags().Bool("online", false, "Only agents seen within the online window")
	cmd.Flags().Int("minutes", 5, "Online window in minutes")
	return cmd
}

func printAgents(w io.Writer, agents []entities.AgentIdentity, now time.Time, window time.Duration) {
	rows := make([][]string, 0, len(agents))
	online := make([]bool, 0, len(agents))
	for _, a := range sortAgents(agents) {
		rows = append(rows, []string{a.ID, a.MachineName, a.IPAddress, a.OperatingSystem, lastSeen(a, now)})
		online = append(online, a.OnlineSince(now.Add(-window)))
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(offlineStyle).
		Headers("ID", "MACHINE", "IP", "OS", "LAST SEEN").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return labelStyle.Bold(true).Padding(0, 1)
			case col == 4 && online[row]:
				return onlineStyle.Padding(0, 1)
			case col == 4:
				return offlineStyle.Padding(0, 1)
			}
			return cell
		})
	fmt.Fprintln(w, t.Render())
}

// sortAgents orders agents by id in place; the server returns them in no
// particular order.
func sortAgents(agents []entities.AgentIdentity) []entities.AgentIdentity {
	slices.SortFunc(agents, func(a, b entities.AgentIdentity) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return agents
}

func lastSeen(a entities.AgentIdentity, now time.Time) string {
	if a.LastHeartbeat == nil {
		return "never"
	}
	return now.Sub(*a.LastHeartbeat).Truncate(time.Second).String() + " ago"
}

// Show one agent
func newAgentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent <id>",
		Short: "Show one agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := apiClient(cmd).Agent(cmd.Context(), args[0])
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("agent %s not found", args[0])
			}
			if err != nil {
				return err
			}
			printAgent(cmd.OutOrStdout(), *a, time.Now())
			return nil
		},
	}
}

func printAgent(w io.Writer, a entities.AgentIdentity, now time.Time) {
	fmt.Fprintf(w, "ID:          %s\n", a.ID)
	fmt.Fprintf(w, "Machine:     %s\n", a.MachineName)
	fmt.Fprintf(w, "IP:          %s\n", a.IPAddress)
	fmt.Fprintf(w, "MAC:         %s\n", a.MacAddress)
	fmt.Fprintf(w, "OS:          %s\n", a.OperatingSystem)
	fmt.Fprintf(w, "Location:    %s\n", a.Location)
	fmt.Fprintf(w, "Last seen:   %s\n", lastSeen(a, now))
}

// Queue a command
func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Queue a command for an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			agentID, _ := cmd.Flags().GetString("agent")
			cmdType, _ := cmd.Flags().GetInt("type")
			rawParams, _ := cmd.Flags().GetStringArray("param")
			priority, _ := cmd.Flags().GetInt("priority")
			timeout, _ := cmd.Flags().GetInt("timeout")
			confirm, _ := cmd.Flags().GetBool("confirm")

			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}
			id, err := apiClient(cmd).Queue(cmd.Context(), entities.CommandRequest{
				TargetAgentID:       agentID,
				CommandType:         cmdType,
				Parameters:          params,
				Priority:            priority,
				TimeoutSeconds:      timeout,
				RequireConfirmation: confirm,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().String("agent", "", "Target agent id")
	cmd.Flags().Int("type", 0, "Command type code")
	cmd.Flags().StringArray("param", nil, "Command parameter as key=value (repeatable)")
	cmd.Flags().Int("priority", 0, "Priority (informational)")
	cmd.Flags().Int("timeout", 300, "Timeout in seconds")
	cmd.Flags().Bool("confirm", false, "Require confirmation on the agent")
	_ = cmd.MarkFlagRequired("agent")
	return cmd
}

func parseParams(raw []string) (map[string]string, error) {
	params := make(map[string]string, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", kv)
		}
		params[k] = v
	}
	return params, nil
}

// Look up a command
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <commandId>",
		Short: "Show the status of a command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := apiClient(cmd).Status(cmd.Context(), args[0])
			if errors.Is(err, client.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "not found")
				return nil
			}
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func printStatus(w io.Writer, st *client.CommandStatus) {
	if st.Response == nil || st.Pending {
		fmt.Fprintln(w, "pending")
		return
	}
	r := st.Response
	fmt.Fprintf(w, "%s  exit=%d  %dms\n", r.Status, r.ExitCode, r.ExecutionTimeMs)
	if r.Output != "" {
		fmt.Fprintln(w, r.Output)
	}
	if r.ErrorOutput != "" {
		fmt.Fprintln(w, r.ErrorOutput)
	}
}
