package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/ledger"
	"github.com/naveenspark/cbdemo/pkg/timefmt"
)

// copiedMsg reports the result of copying the report to the clipboard.
type copiedMsg struct {
	rows int
	err  error
}

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

func copyReportCmd(entries []ledger.Entry) tea.Cmd {
	return func() tea.Msg {
		out, err := ledger.CSV(entries, time.Local)
		if err != nil {
			return copiedMsg{err: err}
		}
		if err := writeClipboard(out); err != nil {
			return copiedMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{rows: len(entries)}
	}
}

// historyModel lists the booking report of the value asset, or its raw
// transactions when it holds no bookings.
type historyModel struct {
	entries []ledger.Entry
	totals  []ledger.ProjectTotal
	rows    []ledger.HistoryRow
	lang    timefmt.Lang
	offset  int
	width   int
	height  int
	status  string
}

func newHistoryModel(lang timefmt.Lang) historyModel {
	return historyModel{lang: lang}
}

func (m *historyModel) setSnapshot(snap snapshot) {
	history := snap.assets.History(domain.AssetValue)
	m.entries = ledger.Report(history)
	m.totals = ledger.TotalMinutes(m.entries)
	m.rows = ledger.VoucherHistory(history)
	m.offset = 0
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case copiedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
		} else {
			m.status = okStyle.Render(fmt.Sprintf("copied %d entries as CSV", msg.rows))
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			m.offset++
		case "k", "up":
			if m.offset > 0 {
				m.offset--
			}
		case "c":
			if len(m.entries) == 0 {
				m.status = dimStyle.Render("nothing to copy")
				return m, nil
			}
			return m, copyReportCmd(m.entries)
		}
	}
	return m, nil
}

func (m historyModel) View() string {
	var b strings.Builder
	if len(m.entries) > 0 {
		b.WriteString(" " + sectionStyle.Render("Booked time") + "\n")
		for _, e := range m.entries {
			line := fmt.Sprintf("%-14s %s  %s  %s",
				truncStr(e.ProjectID, 14),
				e.Start.Local().Format("2006-01-02 15:04"),
				e.Stop.Local().Format("15:04"),
				timefmt.Minutes(e.Minutes, m.lang))
			b.WriteString("  " + normalStyle.Render(line))
			if e.Comment != "" {
				b.WriteString(" " + dimStyle.Render(truncStr(e.Comment, 40)))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n " + sectionStyle.Render("Totals") + "\n")
		for _, t := range m.totals {
			b.WriteString("  " + accentStyle.Render(fmt.Sprintf("%-14s", truncStr(t.ProjectID, 14))) +
				" " + normalStyle.Render(timefmt.Minutes(t.Minutes, m.lang)) + "\n")
		}
	} else if len(m.rows) > 0 {
		b.WriteString(" " + sectionStyle.Render("Transactions") + "\n")
		for _, r := range m.rows {
			line := r.When.Local().Format("2006-01-02 15:04:05") + "  " +
				fmt.Sprintf("%6s", strconv.FormatInt(r.Amount, 10))
			b.WriteString("  " + normalStyle.Render(line))
			if r.Record != "" {
				b.WriteString("  " + dimStyle.Render(truncStr(oneLine(r.Record), 50)))
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString(" " + dimStyle.Render("no transactions yet") + "\n")
	}

	body := scrollLines(b.String(), m.offset, m.height-1)
	if m.status != "" {
		body += "\n " + m.status
	}
	return body
}
