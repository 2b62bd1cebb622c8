package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kontoflyt/internal/importer"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer/statement"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateSourceSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

type sourceOption struct {
	source transaction.SourceType
	label  string
	exts   []string
}

var sourceOptions = []sourceOption{
	{transaction.SourcePDF, "Statement text (extracted from PDF)", []string{".txt"}},
	{transaction.SourceXLSX, "Spreadsheet export (CSV)", []string{".csv", ".tsv"}},
}

type ImportModel struct {
	importService *importer.Service

	state        importState
	filePicker   filepicker.Model
	sourceCursor int

	result *importer.Result
	status string
	err    error
}

func NewImportModel(impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: impSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Document" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) selected() sourceOption {
	return sourceOptions[m.sourceCursor]
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateSourceSelect {
			return m.updateSourceSelect(msg)
		}

	case importResultMsg:
		m.state = importStateResult
		m.result = msg.result
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Imported %d transactions (%d duplicates, %d invalid).",
				msg.result.Inserted, msg.result.Duplicates, msg.result.Invalid)
		}

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing %s...", filepath.Base(path))

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateResult:
		m.state = importStateSourceSelect
		m.result = nil
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateSourceSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.sourceCursor > 0 {
			m.sourceCursor--
		}
	case tea.KeyDown:
		if m.sourceCursor < len(sourceOptions)-1 {
			m.sourceCursor++
		}
	case tea.KeyEnter:
		m.filePicker.AllowedTypes = m.selected().exts
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateSourceSelect:
		return m.viewSourceSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select file to import (%s):\n\n%s", m.selected().label, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewSourceSelect() string {
	s := "Select document type:\n\n"

	for i, opt := range sourceOptions {
		cursor := " "
		if i == m.sourceCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, opt.label)
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	var b strings.Builder
	b.WriteString(successStyle.Render(m.status))

	if len(m.result.Skipped) > 0 {
		b.WriteString("\n\nSkipped lines:\n")

		reasons := make([]string, 0, len(m.result.Skipped))
		for r := range m.result.Skipped {
			reasons = append(reasons, string(r))
		}

		slices.Sort(reasons)

		for _, r := range reasons {
			fmt.Fprintf(&b, "  %-18s %d\n", r, m.result.Skipped[statement.SkipReason(r)])
		}
	}

	for _, inv := range m.result.InvalidRows {
		fmt.Fprintf(&b, "\n  line %d: %s", inv.LineNumber, inv.Err)
	}

	b.WriteString("\n\n(Esc to go back)")

	return style.Render(b.String())
}

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	source := m.selected().source

	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := m.importService.Ingest(ctx, importer.Document{
			Filename: filepath.Base(path),
			Source:   source,
			Content:  content,
		})

		return importResultMsg{result: res, err: err}
	}
}
