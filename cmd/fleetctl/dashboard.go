package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agent-hub/client"
	"agent-hub/entities"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const refreshInterval = 5 * time.Second

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	onlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))
)

type view int

const (
	viewList view = iota
	viewDetail
)

type model struct {
	api      *client.Client
	window   time.Duration
	view     view
	agents   []entities.AgentIdentity
	cursor   int
	selected *entities.AgentIdentity
	summary  map[string]any
	message  string
	loaded   bool
	quitting bool
	now      func() time.Time
}

type agentsMsg []entities.AgentIdentity
type summaryMsg map[string]any
type refreshTickMsg struct{}
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func initialModel(api *client.Client, window time.Duration) model {
	return model{api: api, window: window, now: time.Now}
}

// Init starts the only refresh loop. Manual refreshes fetch once and do not
// schedule ticks.
func (m model) Init() tea.Cmd {
	return tea.Batch(fetchAgents(m.api), tickRefresh())
}

func tickRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func fetchAgents(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		agents, err := api.Agents(ctx, false, nil)
		if err != nil {
			return errMsg{fmt.Errorf("failed to list agents: %w", err)}
		}
		return agentsMsg(agents)
	}
}

func fetchSummary(api *client.Client, agentID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s, err := api.MetricsSummary(ctx, agentID)
		if err != nil {
			return errMsg{fmt.Errorf("failed to load metrics: %w", err)}
		}
		return summaryMsg(s)
	}
}

func (m model) online(a entities.AgentIdentity) bool {
	return a.OnlineSince(m.now().Add(-m.window))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.view == viewList && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.view == viewList && m.cursor < len(m.agents)-1 {
				m.cursor++
			}

		case "esc", "backspace":
			m.view = viewList
			m.selected = nil
			m.summary = nil

		case "r":
			return m, fetchAgents(m.api)

		case "enter":
			if m.view == viewList && len(m.agents) > 0 {
				a := m.agents[m.cursor]
				m.selected = &a
				m.view = viewDetail
				return m, fetchSummary(m.api, a.ID)
			}
		}

	case agentsMsg:
		m.agents = sortAgents([]entities.AgentIdentity(msg))
		m.loaded = true
		m.message = ""
		if m.cursor >= len(m.agents) {
			m.cursor = max(0, len(m.agents)-1)
		}

	case summaryMsg:
		m.summary = map[string]any(msg)

	case refreshTickMsg:
		return m, tea.Batch(fetchAgents(m.api), tickRefresh())

	case errMsg:
		m.message = errorStyle.Render("✗ " + msg.err.Error())
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("Agent Hub Dashboard"))
	s.WriteString("\n")

	if m.message != "" {
		s.WriteString(m.message + "\n\n")
	}

	switch m.view {
	case viewList:
		if !m.loaded {
			s.WriteString("Loading agents...\n")
			break
		}
		if len(m.agents) == 0 {
			s.WriteString("No agents registered yet.\n")
		}
		for i, a := range m.agents {
			marker := offlineStyle.Render("○")
			if m.online(a) {
				marker = onlineStyle.Render("●")
			}
			cursor := " "
			style := normalStyle
			if m.cursor == i {
				cursor = ">"
				style = selectedStyle
			}
			s.WriteString(fmt.Sprintf("%s %s %s (%s)\n", cursor, marker, style.Render(a.MachineName), a.ID))
		}
		s.WriteString("\nUse ↑/↓, Enter for details, r to refresh, q to quit\n")

	case viewDetail:
		a := m.selected
		status := offlineStyle.Render("offline")
		if m.online(*a) {
			status = onlineStyle.Render("online")
		}
		s.WriteString(fmt.Sprintf("%s %s\n\n", selectedStyle.Render(a.MachineName), status))
		row := func(label, value string) {
			s.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)) + " " + value + "\n")
		}
		row("ID", a.ID)
		row("IP", a.IPAddress)
		row("MAC", a.MacAddress)
		row("OS", a.OperatingSystem)
		row("Location", a.Location)
		row("Last seen", lastSeen(*a, m.now()))
		if m.summary != nil {
			s.WriteString("\n")
			row("Samples", fmt.Sprint(m.summary["samples"]))
			row("Avg CPU", fmt.Sprintf("%.1f%%", toFloat(m.summary["avgCpu"])))
			row("Avg mem", fmt.Sprintf("%.1f%%", toFloat(m.summary["avgMemory"])))
			row("Avg disk", fmt.Sprintf("%.1f%%", toFloat(m.summary["avgDisk"])))
		}
		s.WriteString("\nEsc to go back, q to quit\n")
	}

	return s.String()
}

func toFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

// Interactive dashboard
func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive agent dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, _ := cmd.Flags().GetInt("minutes")
			p := tea.NewProgram(initialModel(apiClient(cmd), time.Duration(minutes)*time.Minute), tea.WithContext(cmd.Context()))
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().Int("minutes", 5, "Online window in minutes")
	return cmd
}
