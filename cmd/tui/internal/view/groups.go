package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/balance"
	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/money"
)

type groupsState int

const (
	groupsStateBrowse groupsState = iota
	groupsStateBalances
	groupsStateAddExpense
)

type GroupsModel struct {
	CommonModel
	groupService   *group.Service
	ledger         *ledger.Ledger
	balanceService *balance.Service
	money          *money.Formatter

	state  groupsState
	table  table.Model
	groups []*group.Group
	totals []groupTotals
	report *balance.GroupReport
	form   *huh.Form
	fields *expenseFields

	loading bool
	err     error
	status  string
}

func NewGroupsModel(groups *group.Service, expenses *ledger.Ledger, balances *balance.Service, fm *money.Formatter) GroupsModel {
	return GroupsModel{
		groupService:   groups,
		ledger:         expenses,
		balanceService: balances,
		money:          fm,
		table: newTable([]table.Column{
			{Title: "Group", Width: 30},
			{Title: "Members", Width: 8},
			{Title: "Expenses", Width: 9},
			{Title: "Total", Width: 16},
		}),
		loading: true,
	}
}

func (m GroupsModel) ShortHelp() string {
	switch m.state {
	case groupsStateBalances:
		return "Esc: back | a: add expense"
	case groupsStateAddExpense:
		return "Navigate form | Esc: cancel"
	default:
		return "Esc: back | Enter: balances | a: add expense | r: refresh"
	}
}

func (m GroupsModel) Init() tea.Cmd {
	return m.loadGroupsCmd()
}

func (m GroupsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadGroupsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.groups = msg.groups
		m.totals = msg.totals
		m.refreshTable()

		return m, nil

	case loadReportMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading balances: %v", msg.err)
			return m, nil
		}

		m.report = msg.report
		m.state = groupsStateBalances

		return m, nil

	case expenseSavedMsg:
		m.form = nil
		m.fields = nil
		m.state = groupsStateBrowse
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Added %q (%s)", msg.expense.Description, m.money.Format(msg.expense.Amount))

		return m, tea.Batch(m.loadGroupsCmd(), m.loadReportCmd(msg.expense.GroupID))

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(msg.Height - 10)

		return m, nil
	}

	switch m.state {
	case groupsStateBalances:
		return m.updateBalances(msg)
	case groupsStateAddExpense:
		return m.updateAddExpense(msg)
	default:
		return m.updateBrowse(msg)
	}
}

func (m GroupsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadGroupsCmd()
		case "enter":
			if g := m.selected(); g != nil {
				return m, m.loadReportCmd(g.ID)
			}

			return m, nil
		case "a":
			return m.enterAddExpense()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m GroupsModel) updateBalances(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = groupsStateBrowse
			m.report = nil

			return m, nil
		case "a":
			return m.enterAddExpense()
		}
	}

	return m, nil
}

func (m GroupsModel) enterAddExpense() (tea.Model, tea.Cmd) {
	g := m.selected()
	if g == nil || len(g.Members) == 0 {
		m.status = "Select a group with members first"
		return m, nil
	}

	m.fields = &expenseFields{payer: g.Members[0].ID.String()}
	m.form = newExpenseForm(g, m.money, m.fields)
	m.state = groupsStateAddExpense
	m.table.Blur()

	return m, m.form.Init()
}

func (m GroupsModel) updateAddExpense(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = groupsStateBrowse
		m.form = nil
		m.fields = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveExpenseCmd()
}

func (m GroupsModel) selected() *group.Group {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.groups) {
		return nil
	}

	return m.groups[idx]
}

func (m *GroupsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.groups))

	for i, g := range m.groups {
		rows = append(rows, table.Row{
			g.Name,
			strconv.Itoa(len(g.Members)),
			strconv.Itoa(m.totals[i].count),
			m.money.Format(m.totals[i].amount),
		})
	}

	m.table.SetRows(rows)
}

func (m GroupsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading groups...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := renderTable(m.table)

	switch m.state {
	case groupsStateBalances:
		if m.report != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(52).Render(renderReport(m.report, m.money)))
		}
	case groupsStateAddExpense:
		if m.form != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content,
				panelStyle.Width(48).Render(fmt.Sprintf("Add Expense\n\n%s", m.form.View())))
		}
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	content = lipgloss.JoinVertical(lipgloss.Left, content, faintStyle.Render(m.ShortHelp()))

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type groupTotals struct {
	count  int
	amount int64
}

type loadGroupsMsg struct {
	groups []*group.Group
	totals []groupTotals
	err    error
}

func (m GroupsModel) loadGroupsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		groups, err := m.groupService.ListGroups(ctx)
		if err != nil {
			return loadGroupsMsg{err: err}
		}

		totals := make([]groupTotals, len(groups))

		for i, g := range groups {
			expenses, err := m.ledger.List(ctx, g.ID)
			if err != nil {
				return loadGroupsMsg{err: err}
			}

			totals[i].count = len(expenses)
			for _, e := range expenses {
				totals[i].amount += e.Amount
			}
		}

		return loadGroupsMsg{groups: groups, totals: totals}
	}
}

type loadReportMsg struct {
	totals []groupTotals
	report *balance.GroupReport
	err    error
}

func (m GroupsModel) loadReportCmd(groupID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		report, err := m.balanceService.GroupBalances(ctx, groupID)

		return loadReportMsg{report: report, err: err}
	}
}

type expenseSavedMsg struct {
	expense *ledger.Expense
	err     error
}

func (m GroupsModel) saveExpenseCmd() tea.Cmd {
	g := m.selected()
	if g == nil {
		return nil
	}

	params, err := m.fields.params(g.ID, m.money)
	if err != nil {
		return func() tea.Msg { return expenseSavedMsg{err: err} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.ledger.Append(ctx, params)

		return expenseSavedMsg{expense: e, err: err}
	}
}
