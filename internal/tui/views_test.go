package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/ledger"
	"github.com/naveenspark/cbdemo/pkg/timefmt"
)

func TestOverviewView(t *testing.T) {
	m := newOverviewModel(timefmt.EN)
	m.width = 120
	m.snap = snapshotOf(testSession(), testNow)

	view := m.View()
	for _, want := range []string{
		"mo-key-1",
		"end user",
		"In use",
		"60",
		"30 bookings left, running low",
		"alpha",
		"since 2h ago",
		"alpha, beta",
		"#1 ARMED, expires at",
		`next state: "Depleted"`,
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected overview to contain %q, got:\n%s", want, view)
		}
	}
}

func TestOverviewViewGerman(t *testing.T) {
	m := newOverviewModel(timefmt.DE)
	m.snap = snapshotOf(testSession(), testNow)

	view := m.View()
	if !strings.Contains(view, "In Benutzung") {
		t.Errorf("expected German life state, got:\n%s", view)
	}
}

func TestOverviewViewNoAssets(t *testing.T) {
	s := testSession()
	s.Assets = nil
	m := newOverviewModel(timefmt.EN)
	m.snap = snapshotOf(s, testNow)

	view := m.View()
	if !strings.Contains(view, "no life asset") {
		t.Errorf("expected 'no life asset', got:\n%s", view)
	}
	if !strings.Contains(view, "unknown") {
		t.Errorf("expected unknown value balance, got:\n%s", view)
	}
	if strings.Contains(view, "bookings left") {
		t.Errorf("expected no booking line without a value asset, got:\n%s", view)
	}
}

func TestTierName(t *testing.T) {
	tests := []struct {
		fields *domain.Fields
		want   string
	}{
		{nil, "?"},
		{&domain.Fields{MoTier: domain.TierEndUser}, "end user"},
		{&domain.Fields{MoTier: 3}, "licensee (3)"},
		{&domain.Fields{MoTier: 1}, "1"},
	}
	for _, tc := range tests {
		if got := tierName(tc.fields); got != tc.want {
			t.Errorf("tierName(%+v) = %q, want %q", tc.fields, got, tc.want)
		}
	}
}

func bookingHistory() []domain.Transaction {
	at := func(d time.Duration) domain.Instant { return domain.At(testNow.Add(d)) }
	start := func(pid, comment string) string {
		return domain.BookingRecord{Actions: []domain.BookingAction{{ProjectID: pid, Start: true, Comment: comment}}}.Encode()
	}
	stop := func(pid string) string {
		return domain.BookingRecord{Actions: []domain.BookingAction{{ProjectID: pid}}}.Encode()
	}
	return []domain.Transaction{
		{Timestamp: at(0), Amount: 1, Record: start("alpha", "kickoff")},
		{Timestamp: at(90 * time.Minute), Amount: 1, Record: stop("alpha")},
		{Timestamp: at(2 * time.Hour), Amount: 1, Record: start("beta", "")},
		{Timestamp: at(3 * time.Hour), Amount: 1, Record: stop("beta")},
	}
}

func historySnapshot(history []domain.Transaction) snapshot {
	return snapshot{assets: &domain.AssetList{Assets: []domain.Asset{
		{Name: "value#demo", Balance: 10, History: history},
	}}, at: testNow}
}

func TestHistoryViewReport(t *testing.T) {
	m := newHistoryModel(timefmt.EN)
	m.height = 40
	m.setSnapshot(historySnapshot(bookingHistory()))

	if len(m.entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(m.entries))
	}
	view := m.View()
	for _, want := range []string{"Booked time", "alpha", "kickoff", "1 hour 30 minutes", "beta", "Totals"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected history to contain %q, got:\n%s", want, view)
		}
	}
}

func TestHistoryViewVoucher(t *testing.T) {
	m := newHistoryModel(timefmt.EN)
	m.height = 40
	m.setSnapshot(historySnapshot([]domain.Transaction{
		{Timestamp: domain.At(testNow), Amount: 1, Record: "coffee\nlarge"},
	}))

	view := m.View()
	if !strings.Contains(view, "Transactions") {
		t.Errorf("expected voucher transactions, got:\n%s", view)
	}
	if !strings.Contains(view, "coffee large") {
		t.Errorf("expected record on one line, got:\n%s", view)
	}
}

func TestHistoryViewEmpty(t *testing.T) {
	m := newHistoryModel(timefmt.EN)
	m.setSnapshot(snapshot{})
	if !strings.Contains(m.View(), "no transactions yet") {
		t.Errorf("expected empty message, got:\n%s", m.View())
	}
}

func TestHistoryScroll(t *testing.T) {
	m := newHistoryModel(timefmt.EN)
	m.height = 40
	m.setSnapshot(historySnapshot(bookingHistory()))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.offset != 1 {
		t.Errorf("offset after j = %d, want 1", m.offset)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	if m.offset != 0 {
		t.Errorf("offset after k,k = %d, want 0", m.offset)
	}
}

func TestHistoryCopyCSV(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	defer func() { writeClipboard = orig }()

	m := newHistoryModel(timefmt.EN)
	m.setSnapshot(historySnapshot(bookingHistory()))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if cmd == nil {
		t.Fatal("expected copy command, got nil")
	}
	msg := cmd()
	cm, ok := msg.(copiedMsg)
	if !ok {
		t.Fatalf("expected copiedMsg, got %T", msg)
	}
	if cm.err != nil || cm.rows != 2 {
		t.Errorf("copiedMsg = %+v, want 2 rows and no error", cm)
	}
	if !strings.HasPrefix(copied, "project,start,stop,minutes,comment\n") {
		t.Errorf("clipboard = %q, want CSV with header", copied)
	}
	if !strings.Contains(copied, "alpha,") || !strings.Contains(copied, ",90,kickoff") {
		t.Errorf("clipboard = %q, want alpha row with 90 minutes", copied)
	}

	m, _ = m.Update(cm)
	if !strings.Contains(m.View(), "copied 2 entries as CSV") {
		t.Errorf("expected copy status, got:\n%s", m.View())
	}
}

func TestHistoryCopyFailure(t *testing.T) {
	orig := writeClipboard
	writeClipboard = func(string) error { return errors.New("no clipboard utility") }
	defer func() { writeClipboard = orig }()

	cmd := copyReportCmd([]ledger.Entry{{ProjectID: "alpha", Minutes: 5}})
	cm := cmd().(copiedMsg)
	if cm.err == nil || !strings.Contains(cm.err.Error(), "no clipboard utility") {
		t.Errorf("err = %v, want clipboard failure", cm.err)
	}
}

func TestHistoryCopyNothing(t *testing.T) {
	m := newHistoryModel(timefmt.EN)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if cmd != nil {
		t.Error("expected no command without entries")
	}
	if !strings.Contains(m.View(), "nothing to copy") {
		t.Errorf("expected 'nothing to copy', got:\n%s", m.View())
	}
}

func TestTallyModelProgress(t *testing.T) {
	ch := make(chan tea.Msg, 1)
	m := tallyModel{}.start()

	m, cmd := m.Update(tallyProgressMsg{done: 3, total: 10, ch: ch})
	if cmd == nil {
		t.Fatal("expected wait command after progress")
	}
	if !strings.Contains(m.View(), "3/10") {
		t.Errorf("expected progress 3/10, got:\n%s", m.View())
	}

	ch <- tallyDoneMsg{tally: ledger.Tally{Title: "Board"}}
	if _, ok := cmd().(tallyDoneMsg); !ok {
		t.Error("expected wait command to deliver the next channel message")
	}
}

func TestTallyWaitClosedChannel(t *testing.T) {
	ch := make(chan tea.Msg)
	close(ch)
	if msg := waitTallyCmd(ch)(); msg != nil {
		t.Errorf("expected nil message from closed channel, got %T", msg)
	}
}

func TestTallyModelResult(t *testing.T) {
	m := tallyModel{}.start()
	m, _ = m.Update(tallyDoneMsg{tally: ledger.Tally{
		Title:   "Board election",
		Results: []ledger.ChoiceCount{{Choice: "anna", Votes: 4}, {Choice: domain.AbstentionID, Votes: 1}},
		Bogus:   2,
		Expired: 1,
		Final:   true,
	}})

	view := m.View()
	for _, want := range []string{"Board election", "anna", "4", "Bogus", "Not voted", "final result"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected tally to contain %q, got:\n%s", want, view)
		}
	}
}

func TestTallyModelStates(t *testing.T) {
	tests := []struct {
		name  string
		tally ledger.Tally
		want  string
	}{
		{"inconclusive", ledger.Tally{Inconclusive: true}, "inconclusive"},
		{"not started", ledger.Tally{NotStarted: true}, "has not started"},
		{"preliminary", ledger.Tally{Pending: 2}, "preliminary result"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := tallyModel{}.Update(tallyDoneMsg{tally: tc.tally})
			if !strings.Contains(m.View(), tc.want) {
				t.Errorf("expected %q, got:\n%s", tc.want, m.View())
			}
		})
	}
}

func TestTallyModelError(t *testing.T) {
	m := tallyModel{}.start()
	m, _ = m.Update(tallyDoneMsg{err: errors.New("only (sub)licensees allowed")})
	if m.running {
		t.Error("expected running=false after error")
	}
	if !strings.Contains(m.View(), "only (sub)licensees allowed") {
		t.Errorf("expected error in view, got:\n%s", m.View())
	}
}

func TestTallyModelIdle(t *testing.T) {
	if !strings.Contains(tallyModel{}.View(), "press t") {
		t.Error("expected hint before the first count")
	}
}
