package view

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kontoflyt/internal/rule"
)

type rulesState int

const (
	rulesStateBrowse rulesState = iota
	rulesStateConfirm
	rulesStateApplying
	rulesStateResult
)

type RulesModel struct {
	ruleService *rule.Service

	state   rulesState
	table   table.Model
	rules   []rule.Rule
	form    *huh.Form
	spinner spinner.Model

	confirmed bool
	dryRun    bool

	result *rule.BatchResult
	err    error
}

func NewRulesModel(svc *rule.Service) RulesModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Prio", Width: 5},
			{Title: "On", Width: 3},
			{Title: "Name", Width: 24},
			{Title: "Match", Width: 36},
			{Title: "Action", Width: 30},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = activeStyle

	return RulesModel{
		ruleService: svc,
		table:       t,
		spinner:     s,
	}
}

func (m RulesModel) Title() string { return "Rules" }

func (m RulesModel) ShortHelp() string {
	switch m.state {
	case rulesStateConfirm:
		return "Navigate form | Esc: cancel"
	case rulesStateApplying:
		return "Applying..."
	}

	return "Esc: back | a: apply rules | r: refresh"
}

func (m RulesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m RulesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadRulesMsg:
		m.err = msg.err
		m.rules = msg.rules
		m.refreshTable()

		return m, nil

	case applyRulesMsg:
		m.state = rulesStateResult
		m.result = msg.result
		m.err = msg.err

		return m, nil

	case spinner.TickMsg:
		if m.state != rulesStateApplying {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	switch m.state {
	case rulesStateBrowse:
		return m.updateBrowse(msg)
	case rulesStateConfirm:
		return m.updateConfirm(msg)
	case rulesStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = rulesStateBrowse
			m.result = nil
			m.err = nil
			m.table.Focus()
		}
	case rulesStateApplying:
	}

	return m, nil
}

func (m RulesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "a":
			m.confirmed = false
			m.dryRun = false
			m.form = huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Apply %d rules to all transactions?", len(m.rules))).
						Value(&m.confirmed),
					huh.NewConfirm().
						Title("Dry run (report only, write nothing)?").
						Value(&m.dryRun),
				),
			).WithWidth(50).WithShowHelp(false)
			m.state = rulesStateConfirm
			m.table.Blur()

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m RulesModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = rulesStateBrowse
		m.form = nil
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

	if !m.confirmed {
		m.state = rulesStateBrowse
		m.table.Focus()

		return m, nil
	}

	m.state = rulesStateApplying

	return m, tea.Batch(m.spinner.Tick, m.applyCmd(m.dryRun))
}

func (m RulesModel) View() string {
	switch m.state {
	case rulesStateConfirm:
		return lipgloss.NewStyle().Padding(2).Render(m.form.View())
	case rulesStateApplying:
		return lipgloss.NewStyle().Padding(2).Render(m.spinner.View() + " Applying rules...")
	case rulesStateResult:
		return m.viewResult()
	case rulesStateBrowse:
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)
}

func (m RulesModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	r := m.result

	return style.Render(successStyle.Render("Rules applied.") + fmt.Sprintf(
		"\n\nProcessed:           %d\nMatched:             %d\nUpdated:             %d\nCategory candidates: %d\nErrors:              %d\n\n(Esc to go back)",
		r.Processed, r.Matched, r.Updated, r.CategoryCandidates, r.Errors,
	))
}

func (m *RulesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rules))

	for _, r := range m.rules {
		enabled := "no"
		if r.Enabled {
			enabled = "yes"
		}

		match := fmt.Sprintf("%s %s %q", r.MatchField, r.MatchType, r.MatchValue)
		if r.MatchValueSecondary != "" {
			match += fmt.Sprintf("..%q", r.MatchValueSecondary)
		}

		rows = append(rows, table.Row{
			fmt.Sprint(r.Priority),
			enabled,
			r.Name,
			match,
			fmt.Sprintf("%s %s", r.ActionType, r.ActionValue),
		})
	}

	m.table.SetRows(rows)
}

type loadRulesMsg struct {
	rules []rule.Rule
	err   error
}

func (m RulesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rules, err := m.ruleService.List(ctx)

		return loadRulesMsg{rules: rules, err: err}
	}
}

type applyRulesMsg struct {
	result *rule.BatchResult
	err    error
}

func (m RulesModel) applyCmd(dryRun bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := m.ruleService.ApplyAll(ctx, rule.ApplyOptions{DryRun: dryRun})

		return applyRulesMsg{result: res, err: err}
	}
}
