package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/numlab/internal/domain"
)

type screen int

const (
	screenHome screen = iota
	screenStudies
	screenRunning
	screenResults
	screenTrace
	screenRuns
)

const (
	menuStudies = "Studies"
	menuRuns    = "Runs"
	menuInit    = "Init workspace"
	menuQuit    = "Quit"
)

type menuItem struct {
	title string
	desc  string
	key   string
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

type model struct {
	theme Theme
	deps  Deps

	scr   screen
	menu  list.Model
	pick  list.Model
	spin  spinner.Model
	trace table.Model

	width, height int

	workspaceFound bool
	workspaceRoot  string

	running bool
	run     domain.RunResult
	runID   string
	current int

	toast string
}

func Run(deps Deps) error {
	m := newModel(deps)
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	items := []list.Item{
		menuItem{title: menuStudies, desc: "Run a study and inspect its traces"},
		menuItem{title: menuRuns, desc: "Saved runs, newest first"},
		menuItem{title: menuInit, desc: "Create numlab.yaml, a demo study and profiles here"},
		menuItem{title: menuQuit, desc: "Exit numlab"},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "numlab"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	pick := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	pick.SetShowStatusBar(false)
	pick.SetShowHelp(false)

	return model{
		theme: DefaultTheme(),
		deps:  deps,
		scr:   screenHome,
		menu:  l,
		pick:  pick,
		spin:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m model) Init() tea.Cmd { return cmdRefreshWorkspace(m.deps) }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-10)
		m.pick.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case workspaceRefreshedMsg:
		m.workspaceFound = msg.found
		m.workspaceRoot = msg.root
		return m, nil

	case initWorkspaceDoneMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.toast = "Workspace ready at " + msg.root
		return m, cmdRefreshWorkspace(m.deps)

	case studiesLoadedMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			m.scr = screenHome
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			rel, _ := filepath.Rel(msg.root, r.Path)
			items = append(items, menuItem{title: r.Name, desc: rel, key: r.Path})
		}
		m.pick.Title = "Studies"
		m.pick.SetItems(items)
		m.pick.Select(0)
		return m, nil

	case runsLoadedMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			m.scr = screenHome
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			status := "ok"
			if r.Failures > 0 {
				status = fmt.Sprintf("%d failed", r.Failures)
			}
			items = append(items, menuItem{title: r.ID, desc: fmt.Sprintf("%s · %s", r.Study, status)})
		}
		m.pick.Title = "Runs"
		m.pick.SetItems(items)
		m.pick.Select(0)
		return m, nil

	case runnerDoneMsg:
		m.running = false
		m.run, m.runID = msg.run, msg.id
		if msg.err != nil {
			m.toast = userMessage(msg.err)
		} else if n := msg.run.Failures(); n > 0 {
			m.toast = fmt.Sprintf("%d problem(s) failed", n)
		} else {
			m.toast = "All problems passed"
		}
		if len(msg.run.Results) == 0 {
			m.scr = screenHome
			return m, nil
		}
		m.scr = screenResults
		m.pick.Title = msg.run.StudyName
		m.pick.SetItems(resultItems(msg.run.Results))
		m.pick.Select(0)
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pick.FilterState() == list.Filtering && msg.String() != "ctrl+c" {
		return m.forward(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		if m.scr == screenHome {
			return m, tea.Quit
		}
		if m.scr != screenRunning {
			m.scr = screenHome
		}
		return m, nil

	case "esc", "b":
		switch m.scr {
		case screenTrace:
			m.scr = screenResults
		case screenStudies, screenResults, screenRuns:
			m.scr = screenHome
		}
		return m, nil

	case "enter":
		return m.enter()
	}
	return m.forward(msg)
}

func (m model) enter() (tea.Model, tea.Cmd) {
	switch m.scr {
	case screenHome:
		it, ok := m.menu.SelectedItem().(menuItem)
		if !ok {
			return m, nil
		}
		m.toast = ""
		switch it.title {
		case menuQuit:
			return m, tea.Quit
		case menuInit:
			wd, err := os.Getwd()
			if err != nil {
				m.toast = userMessage(err)
				return m, nil
			}
			return m, cmdInitWorkspaceHere(m.deps, wd)
		case menuStudies, menuRuns:
			if !m.workspaceFound {
				m.toast = "No workspace found (choose Init workspace)"
				return m, nil
			}
			m.pick.SetItems(nil)
			if it.title == menuRuns {
				m.scr = screenRuns
				return m, cmdLoadRuns(m.workspaceRoot)
			}
			m.scr = screenStudies
			return m, cmdLoadStudies(m.workspaceRoot)
		}

	case screenStudies:
		it, ok := m.pick.SelectedItem().(menuItem)
		if !ok || m.running {
			return m, nil
		}
		m.running = true
		m.scr = screenRunning
		m.toast = ""
		_, listen := startRunAsync(m.workspaceRoot, it.key, m.deps.solver(), m.deps.Logger, m.deps.Debug)
		return m, tea.Batch(m.spin.Tick, listen)

	case screenResults:
		it, ok := m.pick.SelectedItem().(menuItem)
		if !ok {
			return m, nil
		}
		i, err := strconv.Atoi(it.key)
		if err != nil || i < 0 || i >= len(m.run.Results) {
			return m, nil
		}
		m.current = i
		m.trace = traceTable(m.run.Results[i].Trace, m.height-16)
		m.scr = screenTrace
		return m, nil
	}
	return m, nil
}

// forward hands msg to the widget of the active screen.
func (m model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.scr {
	case screenHome:
		m.menu, cmd = m.menu.Update(msg)
	case screenStudies, screenResults, screenRuns:
		m.pick, cmd = m.pick.Update(msg)
	case screenTrace:
		m.trace, cmd = m.trace.Update(msg)
	}
	return m, cmd
}

func resultItems(results []domain.ProblemResult) []list.Item {
	items := make([]list.Item, 0, len(results))
	for i, r := range results {
		mark := "✓"
		if r.Failed() {
			mark = "✗"
		}
		desc := fmt.Sprintf("%s · %d iteration(s) · error %s", r.Method, r.Iterations, num(r.FinalError))
		if r.Error != nil {
			desc = fmt.Sprintf("%s · %s", r.Method, r.Error.Kind)
		}
		items = append(items, menuItem{title: mark + " " + r.Name, desc: desc, key: strconv.Itoa(i)})
	}
	return items
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("numlab") + "\n" +
		m.theme.Subtitle.Render("root finding and iterative linear solvers") + "\n"

	var banner string
	if m.workspaceFound {
		banner = m.theme.Help.Render("Workspace: " + m.workspaceRoot)
	} else {
		banner = m.theme.Card.Render("⚠ No workspace found.\n\nChoose Init workspace to create one here.")
	}

	var toast string
	if m.toast != "" {
		toast = "\n" + m.theme.Toast.Render(clampString(m.toast, max(m.width-8, 20)))
	}

	var body, help string
	switch m.scr {
	case screenHome:
		body = m.theme.Card.Render(m.menu.View())
		help = "↑/↓ navigate • enter open • q quit"

	case screenStudies:
		body = m.theme.Card.Render(m.pick.View())
		help = "enter run • / filter • esc back"

	case screenRuns:
		body = m.theme.Card.Render(m.pick.View())
		help = "esc back"

	case screenRunning:
		body = m.theme.Card.Render(m.spin.View() + " Solving…")
		help = "ctrl+c quit"

	case screenResults:
		body = m.theme.Card.Render(m.pick.View())
		if m.runID != "" {
			body += "\n" + m.theme.Help.Render("Saved as "+m.runID)
		}
		help = "enter trace • esc back"

	case screenTrace:
		r := m.run.Results[m.current]
		title := m.theme.Outcome(r.Name, r.Failed())
		details := strings.TrimRight(renderResultDetails(r), "\n")
		body = m.theme.Card.Render(title + "\n\n" + details + "\n\n" + m.trace.View())
		help = "↑/↓ scroll • esc back"

	default:
		body = "unknown state"
	}

	return wrap.Render(header + "\n" + banner + "\n\n" + body + toast + "\n" + m.theme.Help.Render(help))
}
