// Package tui is the interactive terminal front end of cbdemo.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/cbdemo/pkg/session"
	"github.com/naveenspark/cbdemo/pkg/timefmt"
)

type view int

const (
	viewOverview view = iota
	viewHistory
	viewTally
)

// loadedMsg carries the session state after a reload or a booking.
type loadedMsg struct {
	snap snapshot
	note string
	err  error
}

// App is the root Bubbletea model. It owns a signed-in session; the caller
// signs it out after the program exits.
type App struct {
	mgr      *session.Manager
	sess     *session.Session
	version  string
	now      func() time.Time
	view     view
	overview overviewModel
	history  historyModel
	tally    tallyModel
	busy     bool
	status   string
	width    int
	height   int
	frame    int
}

// NewApp creates the TUI for a loaded session.
func NewApp(mgr *session.Manager, s *session.Session, lang timefmt.Lang, version string) App {
	a := App{
		mgr:      mgr,
		sess:     s,
		version:  version,
		now:      time.Now,
		overview: newOverviewModel(lang),
		history:  newHistoryModel(lang),
	}
	a.apply(snapshotOf(s, a.now()))
	return a
}

func (a *App) apply(snap snapshot) {
	a.overview.snap = snap
	a.history.setSnapshot(snap)
}

func (a App) Init() tea.Cmd {
	return shimmerTickCmd()
}

func (a App) reloadCmd() tea.Cmd {
	mgr, s, now := a.mgr, a.sess, a.now
	return func() tea.Msg {
		if err := mgr.Reload(context.Background(), s, true); err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{snap: snapshotOf(s, now()), note: "reloaded"}
	}
}

func (a App) stopBookingCmd() tea.Cmd {
	mgr, s, now := a.mgr, a.sess, a.now
	return func() tea.Msg {
		rec, err := mgr.Book(context.Background(), s, session.BookingRequest{})
		if err != nil {
			return loadedMsg{err: err}
		}
		note := "stopped"
		if len(rec.Actions) > 0 {
			note = "stopped " + rec.Actions[0].ProjectID
		}
		return loadedMsg{snap: snapshotOf(s, now()), note: note}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.overview.width = bodyMsg.Width
		a.history, _ = a.history.Update(bodyMsg)
		a.tally, _ = a.tally.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case loadedMsg:
		a.busy = false
		if msg.err != nil {
			a.status = errorStyle.Render(msg.err.Error())
			return a, nil
		}
		a.apply(msg.snap)
		a.status = okStyle.Render(msg.note)
		return a, nil

	case tallyProgressMsg, tallyDoneMsg:
		if _, done := msg.(tallyDoneMsg); done {
			a.busy = false
		}
		var cmd tea.Cmd
		a.tally, cmd = a.tally.Update(msg)
		return a, cmd

	case copiedMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			a.view = viewOverview
			return a, nil
		case "2":
			a.view = viewHistory
			return a, nil
		case "3":
			a.view = viewTally
			return a, nil
		case "r":
			if a.busy || a.sess == nil {
				return a, nil
			}
			a.busy = true
			a.status = dimStyle.Render("reloading…")
			return a, a.reloadCmd()
		case "s":
			if a.busy || a.sess == nil || a.view != viewOverview {
				return a, nil
			}
			a.busy = true
			a.status = dimStyle.Render("booking stop…")
			return a, a.stopBookingCmd()
		case "t":
			if a.busy || a.sess == nil || a.view != viewTally {
				return a, nil
			}
			a.busy = true
			a.tally = a.tally.start()
			return a, startTallyCmd(a.mgr, a.sess)
		}
	}

	var cmd tea.Cmd
	if a.view == viewHistory {
		a.history, cmd = a.history.Update(msg)
	}
	return a, cmd
}

func centered(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func (a App) View() string {
	header := centered(renderShimmerLogo(a.frame), a.width)
	sub := a.overview.snap.identityKey
	if a.version != "" {
		sub += "  " + a.version
	}
	header += "\n" + centered(metaStyle.Render(sub), a.width)

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Overview", viewOverview},
		{"2", "History", viewHistory},
		{"3", "Tally", viewTally},
	}
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		w := lipgloss.Width(label)
		left := max((colWidth-w)/2, 0)
		right := max(colWidth-w-left, 0)
		tabBar.WriteString(strings.Repeat(" ", left) + label + strings.Repeat(" ", right))
	}

	var body, help string
	switch a.view {
	case viewOverview:
		body = a.overview.View()
		help = " " + helpEntry("1-3", "tabs") + "  " + helpEntry("r", "reload") + "  " + helpEntry("s", "stop booking") + "  " + helpEntry("q", "quit")
	case viewHistory:
		body = a.history.View()
		help = " " + helpEntry("1-3", "tabs") + "  " + helpEntry("j/k", "scroll") + "  " + helpEntry("c", "copy csv") + "  " + helpEntry("r", "reload") + "  " + helpEntry("q", "quit")
	case viewTally:
		body = a.tally.View()
		help = " " + helpEntry("1-3", "tabs") + "  " + helpEntry("t", "count votes") + "  " + helpEntry("q", "quit")
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n %s\n%s", header, tabBar.String(), body, a.status, help)
}
