package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/kontoflyt/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/kontoflyt/internal/config"
	"github.com/MrJamesThe3rd/kontoflyt/internal/database"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer"
	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
	merchantStore "github.com/MrJamesThe3rd/kontoflyt/internal/merchant/store"
	"github.com/MrJamesThe3rd/kontoflyt/internal/rule"
	ruleStore "github.com/MrJamesThe3rd/kontoflyt/internal/rule/store"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
	txStore "github.com/MrJamesThe3rd/kontoflyt/internal/transaction/store"
)

type model struct {
	appName     string
	txService   *transaction.Service
	ruleService *rule.Service

	currentView View

	importView view.ImportModel
	rulesView  view.RulesModel
	listView   view.ListModel
}

type View int

const (
	ViewMenu   View = 0
	ViewImport View = 1
	ViewRules  View = 2
	ViewList   View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString(), cfg.DB.MaxConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	txs := txStore.New(db)
	txSvc := transaction.NewService(txs)
	merchantSvc := merchant.NewService(merchantStore.New(db))
	impSvc := importer.NewService(txSvc, merchantSvc, cfg.Import.DefaultCurrency)
	ruleSvc := rule.NewService(ruleStore.New(db), txs, cfg.Rules.InstantPaymentCategory)

	return model{
		appName:     cfg.App.Name,
		txService:   txSvc,
		ruleService: ruleSvc,
		currentView: ViewMenu,
		importView:  view.NewImportModel(impSvc),
		rulesView:   view.NewRulesModel(ruleSvc),
		listView:    view.NewListModel(txSvc),
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
				m.currentView = ViewImport
				return m, m.importView.Init()
			case "2":
				m.currentView = ViewRules
				m.rulesView = view.NewRulesModel(m.ruleService)

				return m, m.rulesView.Init()
			case "3":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.txService)

				return m, m.listView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewRules:
		var newModel tea.Model
		newModel, cmd = m.rulesView.Update(msg)
		m.rulesView = newModel.(view.RulesModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewMenu:
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Import Document\n" +
				"2. Rules\n" +
				"3. Transactions\n\n" +
				"q. Quit",
		)
	case ViewImport:
		return m.importView.View()
	case ViewRules:
		return m.rulesView.View()
	case ViewList:
		return m.listView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
