package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sobatea/chartsync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConfirmView ViewState = iota
	SyncView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	engine    *tasks.SyncEngine
	root      string
	recursive bool

	width  int
	height int

	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	added        int
	err          error
	done         bool

	help help.Model
	keys keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	yes  key.Binding
	no   key.Binding
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		yes: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "start"),
		),
		no: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "cancel"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.yes, k.no, k.quit},
	}
}

type progressUpdateMsg tasks.ProgressUpdate

type syncCompleteMsg struct {
	added int
	err   error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.SyncEngine, root string, recursive bool) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title

	return &Model{
		ctx:       ctx,
		view:      ConfirmView,
		engine:    engine,
		root:      root,
		recursive: recursive,
		spinner:   s,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the spinner ticking.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case SyncView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			switch msg.String() {
			case "q", "ctrl+c", "enter":
				return m, tea.Quit
			}
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.added = msg.added
		m.err = msg.err
		m.done = true
		m.view = ResultView
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		return m, tea.Quit
	case "y", "enter":
		m.view = SyncView
		return m, tea.Batch(m.startSync(), m.spinner.Tick)
	}
	return m, nil
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		added, err := m.engine.RunBatch(m.ctx, m.progressChan, m.root, m.recursive)
		m.added = added
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg{added: m.added, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return syncCompleteMsg{added: m.added, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Sync charts to '%s'?", m.engine.PlaylistName()))

	scope := "top-level files only"
	if m.recursive {
		scope = "including subdirectories"
	}
	info := fmt.Sprintf("\nScan root: %s\nScope: %s\n", m.root, scope)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Charts")

	var phase string
	switch m.progress.Phase {
	case tasks.DiscoverCharts:
		phase = "Discovering chart files..."
	case tasks.ExtractChart:
		phase = fmt.Sprintf("Reading charts (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.SearchCatalog:
		phase = fmt.Sprintf("Searching catalog (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ResolvePlaylist:
		phase = "Resolving playlist..."
	case tasks.CheckDuplicate:
		phase = fmt.Sprintf("Checking duplicates (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.AddTrack:
		phase = fmt.Sprintf("Adding tracks (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s", title, m.spinner.View(), phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	report := m.engine.Report()

	var b strings.Builder

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Sync stopped: %v", m.err)))
		b.WriteString("\n\n")
	} else {
		b.WriteString(styles.ok.Render("✓ Sync Complete"))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Processed %d files: %d added, %d duplicates, %d skipped\n",
		report.Total(), len(report.Added), len(report.Duplicates), len(report.Skipped))

	if len(report.Added) > 0 {
		b.WriteString("\n" + styles.ok.Render("Added:") + "\n")
		for _, outcome := range report.Added {
			fmt.Fprintf(&b, "  • %s - %s\n", outcome.Metadata.Artist, outcome.Metadata.Title)
		}
	}

	if len(report.Duplicates) > 0 {
		b.WriteString("\n" + styles.warn.Render("Already in playlist:") + "\n")
		for _, outcome := range report.Duplicates {
			fmt.Fprintf(&b, "  • %s - %s\n", outcome.Metadata.Artist, outcome.Metadata.Title)
		}
	}

	if len(report.Skipped) > 0 {
		b.WriteString("\n" + styles.err.Render("Skipped:") + "\n")
		for _, outcome := range report.Skipped {
			fmt.Fprintf(&b, "  • %s: %s\n", outcome.FilePath, outcome.Reason)
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}
