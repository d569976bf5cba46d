package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/planport/planport/internal/infrastructure/wiring"
	"github.com/planport/planport/pkg/domain/imports"
	"github.com/planport/planport/pkg/domain/wizard"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive step-by-step import",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		sess, err := services.Import.PrepareSession(cmd.Context(),
			importEpicsPath, importStoriesPath, importFY, importQuarter)
		if err != nil {
			return MapError(fmt.Errorf("prepare session: %w", err))
		}

		p := tea.NewProgram(newWizardModel(services, sess))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("wizard run failed: %w", err)
		}
		return nil
	},
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var stepDone = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var stepActive = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
var issueErr = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
var issueWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))

type wizardModel struct {
	services  *wiring.AppServices
	sess      wizard.Session
	table     table.Model
	confirmed bool
	report    wizard.ConfirmReport
	err       error
}

func newWizardModel(services *wiring.AppServices, sess wizard.Session) wizardModel {
	columns := []table.Column{
		{Title: "Team", Width: 18},
		{Title: "Epic", Width: 26},
		{Title: "Type", Width: 12},
		{Title: "Sprint", Width: 10},
		{Title: "%", Width: 5},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	return wizardModel{services: services, sess: sess, table: t}
}

func (m wizardModel) Init() tea.Cmd {
	return nil
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if m.confirmed {
				return m, tea.Quit
			}
			m = m.advance()
			m.refreshTable()
			return m, nil
		case "b":
			if !m.confirmed {
				m.sess = m.sess.Back()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// advance runs the transition out of the current step.
func (m wizardModel) advance() wizardModel {
	switch m.sess.Step {
	case wizard.StepUpload:
		m.sess = m.sess.Validate()
	case wizard.StepValidate:
		next, err := m.services.Import.Aggregate(m.sess)
		if err != nil {
			m.err = err
			return m
		}
		m.sess = next
	case wizard.StepAggregate:
		m.sess = m.sess.Resolve()
	case wizard.StepResolve:
		m.sess = m.sess.Preview()
	case wizard.StepPreview:
		_, report, err := m.services.Import.Confirm(m.sess)
		if err != nil {
			m.err = err
			return m
		}
		m.report = report
		m.confirmed = true
	}
	return m
}

func (m *wizardModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.sess.Valid))
	for _, a := range m.sess.Valid {
		rows = append(rows, table.Row{
			a.TeamName, a.EpicName, string(a.EpicType), a.Sprint, strconv.Itoa(a.Percentage),
		})
	}
	m.table.SetRows(rows)
}

func (m wizardModel) View() string {
	s := headerStyle.Render("planport import wizard") + "\n\n"

	for i, step := range wizard.Order() {
		label := string(step)
		switch {
		case step == m.sess.Step:
			label = stepActive.Render("[" + label + "]")
		case step.Index() < m.sess.Step.Index():
			label = stepDone.Render(label)
		}
		if i > 0 {
			s += " > "
		}
		s += label
	}
	s += "\n\n"

	if m.err != nil {
		s += issueErr.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
	}
	for _, i := range m.sess.StepIssues(m.sess.Step) {
		line := "  " + i.String()
		if i.Severity == imports.SeverityWarning {
			s += issueWarn.Render(line) + "\n"
		} else {
			s += issueErr.Render(line) + "\n"
		}
	}

	if m.confirmed {
		s += fmt.Sprintf("\nConfirmed: %d records across %d iterations (%d rejected)\n",
			m.report.Records, m.report.Iterations, m.report.RejectedTeams)
		s += "\nPress enter or q to exit.\n"
		return s
	}

	if len(m.sess.Valid) > 0 {
		s += baseStyle.Render(m.table.View()) + "\n"
	}

	s += "\nenter: next   b: back   q: quit\n"
	return s
}

func init() {
	wizardCmd.Flags().StringVar(&importEpicsPath, "epics", "", "Path to the epic export CSV")
	wizardCmd.Flags().StringVar(&importStoriesPath, "stories", "", "Path to the story export CSV")
	wizardCmd.Flags().StringVar(&importFY, "fy", "", "Target financial year ID (ISO start date)")
	wizardCmd.Flags().StringVar(&importQuarter, "quarter", "", "Target quarter (Q1-Q4)")
	_ = wizardCmd.MarkFlagRequired("epics")
	_ = wizardCmd.MarkFlagRequired("stories")
	_ = wizardCmd.MarkFlagRequired("fy")
	_ = wizardCmd.MarkFlagRequired("quarter")
	importCmd.AddCommand(wizardCmd)
}
