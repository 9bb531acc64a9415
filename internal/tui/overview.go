package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/ledger"
	"github.com/naveenspark/cbdemo/pkg/session"
	"github.com/naveenspark/cbdemo/pkg/timebomb"
	"github.com/naveenspark/cbdemo/pkg/timefmt"
)

// snapshot is a copy of the session state taken after a command finished.
// Views render snapshots so they never touch the session concurrently with
// a running command.
type snapshot struct {
	identityKey string
	endpoint    string
	fields      *domain.Fields
	assets      *domain.AssetList
	at          time.Time
}

func snapshotOf(s *session.Session, now time.Time) snapshot {
	if s == nil {
		return snapshot{at: now}
	}
	return snapshot{
		identityKey: s.IdentityKey,
		endpoint:    s.Endpoint,
		fields:      s.Fields,
		assets:      s.Assets,
		at:          now,
	}
}

// overviewModel shows the object's fields, balances and timers.
type overviewModel struct {
	snap  snapshot
	lang  timefmt.Lang
	width int
}

func newOverviewModel(lang timefmt.Lang) overviewModel {
	return overviewModel{lang: lang}
}

func tierName(f *domain.Fields) string {
	switch {
	case f == nil:
		return "?"
	case f.EndUser():
		return "end user"
	case f.Licensee():
		return fmt.Sprintf("licensee (%d)", f.MoTier)
	default:
		return strconv.Itoa(f.MoTier)
	}
}

func (m overviewModel) View() string {
	var b strings.Builder
	snap := m.snap

	b.WriteString(row("Object", selectedStyle.Render(snap.identityKey)))
	b.WriteString(row("Node", dimStyle.Render(snap.endpoint)))
	b.WriteString(row("Tier", normalStyle.Render(tierName(snap.fields))))
	if snap.fields != nil && snap.fields.CustomID != "" {
		b.WriteString(row("Custom ID", normalStyle.Render(snap.fields.CustomID)))
	}

	if life, ok := snap.assets.Balance(domain.AssetLife); ok {
		state := domain.LifeState(life)
		b.WriteString(row("Life", lifeStyle(state).Render(state.Name(m.lang))))
	} else {
		b.WriteString(row("Life", dimStyle.Render("no life asset")))
	}

	if value, ok := snap.assets.Balance(domain.AssetValue); ok {
		b.WriteString(row("Value", normalStyle.Render(strconv.FormatInt(value, 10))))
		history := snap.assets.History(domain.AssetValue)
		if len(ledger.Report(history)) > 0 || ledger.Running(history).Running {
			n, low := ledger.RemainingBookings(value)
			text := fmt.Sprintf("%d bookings left", n)
			if low {
				b.WriteString(row("Bookings", warnStyle.Render(text+", running low")))
			} else {
				b.WriteString(row("Bookings", normalStyle.Render(text)))
			}
		}
		if st := ledger.Running(history); st.Running {
			b.WriteString(row("Running", accentStyle.Render(st.ProjectID)+" "+
				dimStyle.Render("since "+formatAgo(st.Since, snap.at))))
		}
	} else {
		b.WriteString(row("Value", dimStyle.Render("unknown")))
	}

	if pl := domain.ParseProjectList(snap.fields.Payload()); len(pl.Projects) > 0 {
		b.WriteString(row("Projects", normalStyle.Render(strings.Join(pl.Projects, ", "))))
	}

	if snap.fields != nil && len(snap.fields.TimeBombs) > 0 {
		b.WriteString("\n " + sectionStyle.Render("Timers") + "\n")
		for _, d := range timebomb.DecodeAll(snap.fields.TimeBombs, m.lang) {
			line := "#" + d.Number + " " + d.Text
			b.WriteString("  " + timerStyle(d.Class).Render(truncStr(line, m.width-3)) + "\n")
		}
	}

	if !snap.at.IsZero() {
		b.WriteString("\n " + metaStyle.Render("loaded "+timefmt.DateTime(snap.at)) + "\n")
	}
	return b.String()
}
