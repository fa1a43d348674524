package tui

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
)

// maxPanics bounds how many recovered panics the UI tolerates before quitting.
const maxPanics = 3

type safeModel struct {
	m      model
	log    *slog.Logger
	panics int
}

func wrapSafe(m model, log *slog.Logger) safeModel {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return safeModel{m: m, log: log}
}

func (s safeModel) Init() tea.Cmd { return s.m.Init() }

func (s safeModel) Update(msg tea.Msg) (tm tea.Model, cmd tea.Cmd) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s.report("tui.update", r)
		s.panics++

		// Drop whatever the run or screen was doing and go back home.
		s.m.scr = screenHome
		s.m.running = false
		s.m.toast = "Unexpected error (see logs)"

		tm, cmd = s, nil
		if s.panics >= maxPanics {
			cmd = tea.Quit
		}
	}()

	inner, c := s.m.Update(msg)
	if mm, ok := inner.(model); ok {
		s.m = mm
	}
	return s, c
}

func (s safeModel) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.report("tui.view", r)
			out = s.m.theme.Toast.Render("Unexpected error (see logs)")
		}
	}()
	return s.m.View()
}

func (s safeModel) report(where string, r any) {
	s.log.Error("panic.recovered",
		"where", where,
		"screen", s.m.scr,
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	)
}

var _ tea.Model = safeModel{}
