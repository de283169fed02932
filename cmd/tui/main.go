package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/divvy/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/divvy/internal/balance"
	"github.com/MrJamesThe3rd/divvy/internal/config"
	"github.com/MrJamesThe3rd/divvy/internal/database"
	"github.com/MrJamesThe3rd/divvy/internal/group"
	groupStore "github.com/MrJamesThe3rd/divvy/internal/group/store"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/divvy/internal/ledger/store"
	"github.com/MrJamesThe3rd/divvy/internal/money"
)

type model struct {
	groupService   *group.Service
	ledger         *ledger.Ledger
	balanceService *balance.Service
	money          *money.Formatter
	appName        string

	currentView View

	groupsView  view.GroupsModel
	membersView view.MembersModel
}

type View int

const (
	ViewMenu    View = 0
	ViewGroups  View = 1
	ViewMembers View = 2
)

func initialModel(db *sql.DB, cfg *config.Config) model {
	fm, err := money.NewFormatter(cfg.App.Currency)
	if err != nil {
		slog.Error("failed to set up currency", "error", err)
		os.Exit(1)
	}

	groupSvc := group.NewService(groupStore.New(db))

	expenses := ledger.New(groupSvc, ledger.WithJournal(ledgerStore.New(db)))

	balanceSvc := balance.NewService(groupSvc, expenses)

	return model{
		groupService:   groupSvc,
		ledger:         expenses,
		balanceService: balanceSvc,
		money:          fm,
		appName:        cfg.App.Name,
		currentView:    ViewMenu,
		groupsView:     view.NewGroupsModel(groupSvc, expenses, balanceSvc, fm),
		membersView:    view.NewMembersModel(groupSvc, balanceSvc, fm),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewGroups
				m.groupsView = view.NewGroupsModel(m.groupService, m.ledger, m.balanceService, m.money)

				return m, m.groupsView.Init()
			case "2":
				m.currentView = ViewMembers
				m.membersView = view.NewMembersModel(m.groupService, m.balanceService, m.money)

				return m, m.membersView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewGroups:
		var newModel tea.Model
		newModel, cmd = m.groupsView.Update(msg)
		m.groupsView = newModel.(view.GroupsModel)
	case ViewMembers:
		var newModel tea.Model
		newModel, cmd = m.membersView.Update(msg)
		m.membersView = newModel.(view.MembersModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Groups\n" +
				"2. Members\n\n" +
				"q. Quit",
		)
	case ViewGroups:
		return m.groupsView.View()
	case ViewMembers:
		return m.membersView.View()
	}

	return "Unknown View"
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(db, cfg))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
