package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/cbdemo/pkg/ledger"
	"github.com/naveenspark/cbdemo/pkg/session"
	"github.com/naveenspark/cbdemo/pkg/timebomb"
	"github.com/naveenspark/cbdemo/pkg/timefmt"
)

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#34d474"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a844")).Bold(true)

	timerStyles = map[timebomb.Class]lipgloss.Style{
		timebomb.ClassNew:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		timebomb.ClassArmed:   lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24")),
		timebomb.ClassExpired: lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")),
	}
)

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label), value)
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✓ "+msg))
}

func printConsumption(w io.Writer, c session.Consumption) {
	state := "pending confirmation"
	if c.Waited {
		state = "confirmed"
	}
	printSuccess(w, fmt.Sprintf("consumed 1 %s (%s)", c.Asset, state))
	if c.Known {
		printField(w, "Remaining", fmt.Sprint(c.Remaining))
	} else {
		printField(w, "Remaining", dimStyle.Render("unknown"))
	}
}

func printRemainingBookings(w io.Writer, balance int64) {
	n, low := ledger.RemainingBookings(balance)
	text := fmt.Sprintf("%d bookings left", n)
	if low {
		text = warnStyle.Render(text + ", please top up soon")
	}
	printField(w, "Balance", text)
}

func printTimer(w io.Writer, d timebomb.Description) {
	fmt.Fprintf(w, "  %s\n", timerStyles[d.Class].Render("#"+d.Number+" "+d.Text))
}

func printReport(w io.Writer, entries []ledger.Entry, lang timefmt.Lang) {
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no booked time"))
		return
	}
	fmt.Fprintln(w, headStyle.Render(fmt.Sprintf("%-16s %-16s %-5s  %s", "Project", "Start", "Stop", "Time")))
	for _, e := range entries {
		fmt.Fprintf(w, "%-16s %-16s %-5s  %s",
			e.ProjectID,
			e.Start.Local().Format("2006-01-02 15:04"),
			e.Stop.Local().Format("15:04"),
			timefmt.Minutes(e.Minutes, lang))
		if e.Comment != "" {
			fmt.Fprint(w, "  "+dimStyle.Render(e.Comment))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	for _, t := range ledger.TotalMinutes(entries) {
		printField(w, t.ProjectID, timefmt.Minutes(t.Minutes, lang))
	}
}

func printHistory(w io.Writer, rows []ledger.HistoryRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no transactions yet"))
		return
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s  %6d  %s\n",
			r.When.Local().Format("2006-01-02 15:04:05"),
			r.Amount,
			strings.Join(strings.Fields(r.Record), " "))
	}
}

func printTally(w io.Writer, t ledger.Tally) {
	if t.Title != "" {
		fmt.Fprintln(w, headStyle.Render(t.Title))
	}
	for _, r := range t.Results {
		printField(w, r.Choice, fmt.Sprint(r.Votes))
	}
	fmt.Fprintln(w)
	printField(w, "Bogus", fmt.Sprint(t.Bogus))
	printField(w, "Not voted", fmt.Sprint(t.Expired))
	printField(w, "Pending", fmt.Sprint(t.Pending))
	switch {
	case t.Inconclusive:
		fmt.Fprintln(w, warnStyle.Render("inconclusive: a voter is still being validated"))
	case t.NotStarted:
		fmt.Fprintln(w, warnStyle.Render("the election has not started for every voter"))
	case t.Final:
		fmt.Fprintln(w, successStyle.Render("final result"))
	default:
		fmt.Fprintln(w, dimStyle.Render("preliminary result"))
	}
}

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60a5fa")).
		Bold(true).
		Render("C B D E M O")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Vouchers, time booking and elections on the Connictro Blockchain")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	commands := []struct{ cmd, desc string }{
		{"cbdemo", "Show the object (interactive TUI)"},
		{"cbdemo consume", "Burn one unit [--asset value] [--record text]"},
		{"cbdemo activate", "Put a provisioned object into use"},
		{"cbdemo vote <choice>", "Cast a vote"},
		{"cbdemo book start <p>", "Start booking time on a project [--comment text]"},
		{"cbdemo book stop", "Stop the running project [--at YYYY-MM-DDThh:mm]"},
		{"cbdemo project add <p>", "Add a project to the project list"},
		{"cbdemo report", "Booked time per project [--csv file] [--open] [--copy]"},
		{"cbdemo history", "Voucher balance and transactions"},
		{"cbdemo tally", "Count the votes of an election (licensees)"},
		{"cbdemo plan", "Build a timebomb list [--expires] [--starts] [--usage]"},
		{"cbdemo login", "Sign in and keep the tokens for fetch"},
		{"cbdemo fetch <name>", "Pay one unit for a resource from content_dir"},
		{"cbdemo logout", "Sign out and forget the stored tokens"},
		{"cbdemo version", "Show version"},
	}
	flags := []struct{ flag, desc string }{
		{"--config file", "config file (default ~/.cbdemo/config.yaml)"},
		{"--creds file", "credentials file"},
		{"--chain A|B|P", "chain (default: current development chain)"},
		{"--node url", "node endpoint, bypasses node selection"},
		{"--lang de|en", "display language"},
		{"--debug", "log session steps to stderr"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", c.cmd)), dimStyle.Render(c.desc))
	}
	fmt.Fprint(w, "\n  Global flags:\n")
	for _, f := range flags {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", f.flag)), dimStyle.Render(f.desc))
	}
	fmt.Fprintln(w)
}
