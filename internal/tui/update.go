package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		w := msg.Width - 8
		if w > 40 {
			w = 40
		}
		if w > 0 {
			m.progress.Width = w
		}
		return m, nil

	case tickMsg:
		// Day rollover and cross-process shaky records both surface here.
		if reset, err := m.engine.CheckAndResetIfNewDay(); err != nil {
			m.err = err
		} else {
			if reset {
				m.evaluateMilestones()
			}
			if err := m.comfort.Resync(); err != nil {
				m.err = err
			}
		}
		m.refresh()
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Success):
		if recorded, err := m.engine.HasRecordedToday(); err != nil {
			m.err = err
			return m, nil
		} else if recorded {
			m.flash = "Today is already recorded."
			return m, nil
		}
		if err := m.engine.RecordSuccess(); err != nil {
			m.err = err
			return m, nil
		}
		m.comfort.OnClearedByOutcome()
		m.refresh()
		m.flash = "Sober day recorded ✓"
		m.evaluateMilestones()
		return m, nil

	case key.Matches(msg, m.keys.Shaky):
		if err := m.engine.RecordShaky(); err != nil {
			m.err = err
			return m, nil
		}
		m.comfort.OnShakyRecorded()
		m.refresh()
		m.flash = "Urge logged. It passes, every time."
		return m, nil

	case key.Matches(msg, m.keys.Drank):
		if recorded, err := m.engine.HasRecordedToday(); err != nil {
			m.err = err
			return m, nil
		} else if recorded {
			m.flash = "Today is already recorded."
			return m, nil
		}
		if err := m.engine.RecordFail("", ""); err != nil {
			m.err = err
			return m, nil
		}
		m.comfort.OnClearedByOutcome()
		m.refresh()
		m.flash = "Recorded. Tomorrow is day one again."
		m.evaluateMilestones()
		return m, nil

	case key.Matches(msg, m.keys.Comfort):
		if !m.state.ComfortReady {
			m.flash = "No comfort message ready yet."
			return m, nil
		}
		if err := m.engine.MarkComfortMessageShown(); err != nil {
			m.err = err
			return m, nil
		}
		m.comfort.OnClearedByOutcome()
		m.refresh()
		m.flash = "Message dismissed. Proud of you."
		return m, nil
	}

	return m, nil
}
