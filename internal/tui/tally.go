package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/cbdemo/pkg/ledger"
	"github.com/naveenspark/cbdemo/pkg/session"
)

// tallyProgressMsg reports how many ballots have been read so far.
type tallyProgressMsg struct {
	done, total int
	ch          <-chan tea.Msg
}

// tallyDoneMsg carries the evaluated election.
type tallyDoneMsg struct {
	tally ledger.Tally
	err   error
}

// startTallyCmd collects the votes in the background. Progress updates are
// delivered through ch, one message per wait; updates that arrive while the
// model is still rendering the previous one are dropped.
func startTallyCmd(mgr *session.Manager, s *session.Session) tea.Cmd {
	ch := make(chan tea.Msg, 16)
	go func() {
		defer close(ch)
		progress := func(done, total int) {
			select {
			case ch <- tallyProgressMsg{done: done, total: total, ch: ch}:
			default:
			}
		}
		t, err := mgr.Tally(context.Background(), s, progress)
		ch <- tallyDoneMsg{tally: t, err: err}
	}()
	return waitTallyCmd(ch)
}

func waitTallyCmd(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// tallyModel shows the running or finished evaluation of an election.
type tallyModel struct {
	running bool
	done    int
	total   int
	tally   *ledger.Tally
	err     error
	width   int
}

func (m tallyModel) Update(msg tea.Msg) (tallyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tallyProgressMsg:
		m.done, m.total = msg.done, msg.total
		return m, waitTallyCmd(msg.ch)
	case tallyDoneMsg:
		m.running = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		t := msg.tally
		m.tally = &t
		m.err = nil
	}
	return m, nil
}

// start marks the model as running and clears the previous result.
func (m tallyModel) start() tallyModel {
	m.running = true
	m.done, m.total = 0, 0
	m.err = nil
	m.tally = nil
	return m
}

func progressBar(done, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := done * width / total
	return accentStyle.Render(strings.Repeat("█", filled)) + metaStyle.Render(strings.Repeat("░", width-filled))
}

func (m tallyModel) View() string {
	var b strings.Builder
	switch {
	case m.running:
		b.WriteString(" " + dimStyle.Render("reading ballots") + "\n")
		if m.total > 0 {
			b.WriteString(" " + progressBar(m.done, m.total, 30) + " " +
				normalStyle.Render(fmt.Sprintf("%d/%d", m.done, m.total)) + "\n")
		}
		return b.String()
	case m.err != nil:
		return " " + errorStyle.Render(m.err.Error()) + "\n"
	case m.tally == nil:
		return " " + dimStyle.Render("press t to count the votes") + "\n"
	}

	t := m.tally
	title := t.Title
	if title == "" {
		title = "Election"
	}
	b.WriteString(" " + sectionStyle.Render(title) + "\n")
	for _, r := range t.Results {
		b.WriteString("  " + normalStyle.Render(fmt.Sprintf("%-24s", truncStr(r.Choice, 24))) +
			" " + accentStyle.Render(fmt.Sprintf("%4d", r.Votes)) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(row("Bogus", normalStyle.Render(fmt.Sprint(t.Bogus))))
	b.WriteString(row("Not voted", normalStyle.Render(fmt.Sprint(t.Expired))))
	b.WriteString(row("Pending", normalStyle.Render(fmt.Sprint(t.Pending))))

	switch {
	case t.Inconclusive:
		b.WriteString("\n " + warnStyle.Render("inconclusive: a voter is still being validated") + "\n")
	case t.NotStarted:
		b.WriteString("\n " + warnStyle.Render("the election has not started for every voter") + "\n")
	case t.Final:
		b.WriteString("\n " + okStyle.Render("final result") + "\n")
	default:
		b.WriteString("\n " + dimStyle.Render("preliminary result") + "\n")
	}
	return b.String()
}
