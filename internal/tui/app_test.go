package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/session"
	"github.com/naveenspark/cbdemo/pkg/timefmt"
)

var testNow = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

func key(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func testSession() *session.Session {
	payload := `{"ListOfProjects":["alpha","beta"]}`
	start := domain.BookingRecord{Actions: []domain.BookingAction{{ProjectID: "alpha", Start: true}}}.Encode()
	return &session.Session{
		Endpoint:    "https://node1.example.com:58081",
		IdentityKey: "mo-key-1",
		Fields: &domain.Fields{
			MoTier:        domain.TierEndUser,
			CustomPayload: &payload,
			TimeBombs: []domain.Timebomb{
				{TimerNo: 1, TimerState: domain.TimerArmed, ExpirationTime: testNow.Add(24 * time.Hour).UnixMilli(), NextLifeState: domain.LifeDepleted},
			},
		},
		Assets: &domain.AssetList{Assets: []domain.Asset{
			{Name: "life#demo", Balance: int64(domain.LifeInUse)},
			{Name: "value#demo", Balance: 60, History: []domain.Transaction{
				{Timestamp: domain.At(testNow.Add(-2 * time.Hour)), Amount: 1, Record: start},
			}},
		}},
	}
}

func newTestApp(s *session.Session) App {
	a := NewApp(nil, s, timefmt.EN, "v0.1.0")
	a.width = 100
	a.height = 40
	return a
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key      string
		wantView view
	}{
		{"1", viewOverview},
		{"2", viewHistory},
		{"3", viewTally},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			app := newTestApp(nil)
			app.view = (tc.wantView + 1) % 3
			model, _ := app.Update(key(tc.key))
			a := model.(App)
			if a.view != tc.wantView {
				t.Errorf("after key %q: expected view=%d, got %d", tc.key, tc.wantView, a.view)
			}
		})
	}
}

func TestAppGlobalQuitOnQ(t *testing.T) {
	a := newTestApp(nil)
	_, cmd := a.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
}

func TestAppReloadWithoutSession(t *testing.T) {
	a := newTestApp(nil)
	model, cmd := a.Update(key("r"))
	if cmd != nil {
		t.Error("expected no command without a session")
	}
	if model.(App).busy {
		t.Error("expected busy=false without a session")
	}
}

func TestAppReloadWhileBusy(t *testing.T) {
	a := newTestApp(testSession())

	model, cmd := a.Update(key("r"))
	a = model.(App)
	if cmd == nil {
		t.Fatal("expected reload command, got nil")
	}
	if !a.busy {
		t.Fatal("expected busy=true while reloading")
	}

	_, cmd = a.Update(key("r"))
	if cmd != nil {
		t.Error("expected second reload to be ignored while busy")
	}
}

func TestAppStopOnlyOnOverview(t *testing.T) {
	a := newTestApp(testSession())
	a.view = viewHistory
	if _, cmd := a.Update(key("s")); cmd != nil {
		t.Error("expected stop key to be ignored outside the overview")
	}
	a.view = viewOverview
	model, cmd := a.Update(key("s"))
	if cmd == nil {
		t.Fatal("expected booking command on overview")
	}
	if !model.(App).busy {
		t.Error("expected busy=true while booking")
	}
}

func TestAppTallyStartsOnlyOnTallyView(t *testing.T) {
	a := newTestApp(testSession())
	if _, cmd := a.Update(key("t")); cmd != nil {
		t.Error("expected t to be ignored outside the tally view")
	}
}

func TestAppLoadedMsg(t *testing.T) {
	a := newTestApp(nil)
	a.busy = true

	model, _ := a.Update(loadedMsg{snap: snapshotOf(testSession(), testNow), note: "reloaded"})
	a = model.(App)
	if a.busy {
		t.Error("expected busy=false after load")
	}
	if a.overview.snap.identityKey != "mo-key-1" {
		t.Errorf("identityKey = %q, want %q", a.overview.snap.identityKey, "mo-key-1")
	}
	if !strings.Contains(a.View(), "reloaded") {
		t.Errorf("expected status 'reloaded' in view, got:\n%s", a.View())
	}
}

func TestAppLoadedMsgError(t *testing.T) {
	a := newTestApp(testSession())
	a.busy = true

	model, _ := a.Update(loadedMsg{err: errors.New("no running project to book")})
	a = model.(App)
	if a.busy {
		t.Error("expected busy=false after a failed command")
	}
	if a.overview.snap.identityKey != "mo-key-1" {
		t.Error("expected failed command to keep the previous snapshot")
	}
	if !strings.Contains(a.View(), "no running project to book") {
		t.Errorf("expected error in view, got:\n%s", a.View())
	}
}

func TestAppTallyDoneClearsBusy(t *testing.T) {
	a := newTestApp(testSession())
	a.busy = true
	a.tally = a.tally.start()

	model, _ := a.Update(tallyDoneMsg{err: errors.New("less than 2 voters defined")})
	a = model.(App)
	if a.busy {
		t.Error("expected busy=false after tally finished")
	}
	if a.tally.running {
		t.Error("expected tally to stop running")
	}
}

func TestAppViewShowsTabs(t *testing.T) {
	a := newTestApp(testSession())
	view := a.View()
	for _, want := range []string{"Overview", "History", "Tally", "mo-key-1", "v0.1.0"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q, got:\n%s", want, view)
		}
	}
}
