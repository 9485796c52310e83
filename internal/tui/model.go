// Package tui is the live dashboard: streak, today's state, the comfort
// countdown and quick keys for recording outcomes. It hosts the comfort timer
// for as long as it runs; correctness across restarts still comes from the
// persisted state, refreshed on every tick.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"soberly/internal/comfort"
	"soberly/internal/engine"
	"soberly/internal/kvstore"
	"soberly/internal/milestone"
	"soberly/internal/models"
	"soberly/internal/storage"
)

type tickMsg time.Time

type Model struct {
	store      storage.Provider
	kv         *kvstore.Store
	engine     *engine.Engine
	comfort    *comfort.Controller
	milestones *milestone.Evaluator

	keys     KeyMap
	help     help.Model
	progress progress.Model

	state models.DayState
	days  int
	quote models.MotivationalQuote

	flash    string
	err      error
	width    int
	quitting bool
}

func NewModel(store storage.Provider, kv *kvstore.Store, eng *engine.Engine, ctrl *comfort.Controller, eval *milestone.Evaluator) Model {
	m := Model{
		store:      store,
		kv:         kv,
		engine:     eng,
		comfort:    ctrl,
		milestones: eval,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		progress:   progress.New(progress.WithDefaultGradient()),
	}
	m.refresh()
	if quote, err := store.GetRandomQuote(); err == nil {
		m.quote = quote
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// evaluateMilestones re-checks achievements against the current day count and
// surfaces any new one as the flash line.
func (m *Model) evaluateMilestones() {
	days, err := m.engine.SoberDays()
	if err != nil {
		m.err = err
		return
	}
	achieved, err := m.milestones.Evaluate(days)
	if err != nil {
		m.err = err
		return
	}
	for _, title := range achieved {
		m.flash = "🏅 Milestone achieved: " + title
	}
}

// refresh reloads the persisted state into the view model.
func (m *Model) refresh() {
	state, err := m.kv.Snapshot()
	if err != nil {
		m.err = err
		return
	}
	days, err := m.engine.SoberDays()
	if err != nil {
		m.err = err
		return
	}
	m.state = state
	m.days = days
	m.err = nil
}
