package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/divvy/internal/balance"
	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/money"
)

type MembersModel struct {
	CommonModel
	groupService   *group.Service
	balanceService *balance.Service
	money          *money.Formatter

	table   table.Model
	members []*group.Member
	reports []*balance.MemberReport

	loading bool
	err     error
}

func NewMembersModel(groups *group.Service, balances *balance.Service, fm *money.Formatter) MembersModel {
	return MembersModel{
		groupService:   groups,
		balanceService: balances,
		money:          fm,
		table: newTable([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Email", Width: 28},
			{Title: "Joined", Width: 10},
			{Title: "Net", Width: 16},
		}),
		loading: true,
	}
}

func (m MembersModel) Init() tea.Cmd {
	return m.loadMembersCmd()
}

func (m MembersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadMembersMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.members = msg.members
		m.reports = msg.reports

		rows := make([]table.Row, len(m.members))
		for i, member := range m.members {
			rows[i] = table.Row{member.Name, member.Email, member.CreatedAt.Format(time.DateOnly), m.money.Format(m.reports[i].Total)}
		}

		m.table.SetRows(rows)

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(msg.Height - 10)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadMembersCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m MembersModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading members...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := renderTable(m.table)

	if idx := m.table.Cursor(); idx >= 0 && idx < len(m.reports) {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(44).Render(m.renderDetail(m.reports[idx])))
	}

	content = lipgloss.JoinVertical(lipgloss.Left, content, faintStyle.Render("Esc: back | r: refresh"))

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m MembersModel) renderDetail(report *balance.MemberReport) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(report.MemberName))
	sb.WriteString("\n\n")

	if len(report.PerGroup) == 0 {
		sb.WriteString(faintStyle.Render("Not in any group."))
		return sb.String()
	}

	for _, g := range report.PerGroup {
		fmt.Fprintf(&sb, "%-20s %s\n", g.GroupName, signed(g.Amount, m.money.Format(g.Amount)))
	}

	fmt.Fprintf(&sb, "\n%-20s %s", "Overall", signed(report.Total, m.money.Format(report.Total)))

	return sb.String()
}

type loadMembersMsg struct {
	members []*group.Member
	reports []*balance.MemberReport
	err     error
}

func (m MembersModel) loadMembersCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		members, err := m.groupService.ListMembers(ctx)
		if err != nil {
			return loadMembersMsg{err: err}
		}

		reports := make([]*balance.MemberReport, len(members))

		for i, member := range members {
			report, err := m.balanceService.MemberBalances(ctx, member.ID)
			if err != nil {
				return loadMembersMsg{err: fmt.Errorf("balances for %s: %w", member.Name, err)}
			}

			reports[i] = report
		}

		return loadMembersMsg{members: members, reports: reports}
	}
}
