// Package timebomb renders timebombs as human readable text and builds the
// timebomb list for a newly created object.
package timebomb

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/timefmt"
)

// Class is the display class of a timebomb, used to pick its color.
type Class string

const (
	ClassNew     Class = "timer-new"
	ClassArmed   Class = "timer-armed"
	ClassExpired Class = "timer-expired"
)

// Kind tells which of the three description forms was produced.
type Kind int

const (
	KindExpired Kind = iota
	KindAbsolute
	KindTrigger
)

// Description is a decoded timebomb.
type Description struct {
	Class  Class
	Number string
	Kind   Kind
	Text   string
}

type phrases struct {
	states       [3]string
	expired      string
	expires      string
	expiresNow   string
	expiresAfter string
	nextState    string
	triggers     string
	stateOf      string
	valueOf      string
	and          string
}

var phrasesEN = phrases{
	states:       [3]string{"NEW", "ARMED", "EXPIRED"},
	expired:      "EXPIRED at ",
	expires:      "expires at ",
	expiresNow:   ", then expires immediately",
	expiresAfter: ", then expires after ",
	nextState:    "next state: ",
	triggers:     ", triggers at ",
	stateOf:      "state of ",
	valueOf:      "value of ",
	and:          " and ",
}

var phrasesDE = phrases{
	states:       [3]string{"NEU", "AKTIV", "ABGELAUFEN"},
	expired:      "ABGELAUFEN am ",
	expires:      "läuft ab am ",
	expiresNow:   ", läuft dann sofort ab",
	expiresAfter: ", läuft ab nach ",
	nextState:    "nächster Status: ",
	triggers:     ", triggert auf ",
	stateOf:      "Status: ",
	valueOf:      "Wert: ",
	and:          " und ",
}

func phrasesFor(lang timefmt.Lang) phrases {
	if lang.German() {
		return phrasesDE
	}
	return phrasesEN
}

// Decode describes a single timebomb. An expired timer only reports when it
// expired; a timer with an expiration time reports that instant; anything
// else is described by its triggers.
func Decode(t domain.Timebomb, lang timefmt.Lang) Description {
	p := phrasesFor(lang)
	d := Description{Class: ClassNew, Number: strconv.Itoa(t.TimerNo)}

	state := domain.TimerNew
	switch {
	case t.TimerState >= domain.TimerExpired:
		d.Class = ClassExpired
		d.Kind = KindExpired
		d.Text = p.expired + timefmt.DateTime(timefmt.FromMillis(t.ExpirationTime))
		return d
	case t.TimerState == domain.TimerArmed:
		state = domain.TimerArmed
		d.Class = ClassArmed
	}

	if t.Absolute() {
		d.Kind = KindAbsolute
		d.Text = p.states[state] + ", " + p.expires +
			timefmt.DateTime(timefmt.FromMillis(t.ExpirationTime)) + ", " +
			p.nextState + quote(t.NextLifeState.Name(lang))
		return d
	}

	var b strings.Builder
	b.WriteString(p.states[state])
	b.WriteString(p.triggers)
	if t.LifeTrigger > 0 {
		b.WriteString(p.stateOf + quote(t.LifeTrigger.Name(lang)))
		if t.ValueTrigger > 0 {
			b.WriteString(p.and)
		}
	}
	if t.ValueTrigger > 0 {
		b.WriteString(p.valueOf + strconv.FormatInt(t.ValueTrigger, 10))
	}
	switch {
	case t.DeltaTime == 1:
		b.WriteString(p.expiresNow)
	case t.DeltaTime != 0:
		b.WriteString(p.expiresAfter + timefmt.Duration(t.DeltaTime, lang))
	}
	b.WriteString(", " + p.nextState + quote(t.NextLifeState.Name(lang)))

	d.Kind = KindTrigger
	d.Text = b.String()
	return d
}

// DecodeAll describes every timebomb in order.
func DecodeAll(bombs []domain.Timebomb, lang timefmt.Lang) []Description {
	out := make([]Description, 0, len(bombs))
	for _, t := range bombs {
		out = append(out, Decode(t, lang))
	}
	return out
}

func quote(s string) string { return `"` + s + `"` }

// --- Encoder ---

// Plan describes the timers requested for a new object.
type Plan struct {
	Expiration    time.Time     // object depletes at this instant
	Start         time.Time     // object goes into use at this instant
	UsageDuration time.Duration // object depletes this long after going into use
}

// Clamp caps the expiration at now+limit, setting it when none is planned.
// Unregistered demo objects are limited this way.
func (p Plan) Clamp(now time.Time, limit time.Duration) Plan {
	maxExp := now.Add(limit)
	if p.Expiration.IsZero() || p.Expiration.After(maxExp) {
		p.Expiration = maxExp
	}
	return p
}

// Timebombs returns the timebomb list for the plan, or nil when it asks for
// no timers.
func (p Plan) Timebombs() []domain.Timebomb {
	var out []domain.Timebomb
	if !p.Expiration.IsZero() {
		out = append(out, domain.Timebomb{
			ExpirationTime: timefmt.ToMillis(p.Expiration),
			NextLifeState:  domain.LifeDepleted,
		})
	}
	if !p.Start.IsZero() {
		out = append(out, domain.Timebomb{
			ExpirationTime: timefmt.ToMillis(p.Start),
			NextLifeState:  domain.LifeInUse,
		})
	}
	if p.UsageDuration > 0 {
		out = append(out, domain.Timebomb{
			LifeTrigger:   domain.LifeInUse,
			DeltaTime:     p.UsageDuration.Milliseconds(),
			NextLifeState: domain.LifeDepleted,
		})
	}
	return out
}

// Marshal encodes the planned timebombs as the JSON array stored in the
// timeBombs field. A plan without timers encodes as "".
func (p Plan) Marshal() (string, error) {
	bombs := p.Timebombs()
	if len(bombs) == 0 {
		return "", nil
	}
	data, err := json.Marshal(bombs)
	if err != nil {
		return "", fmt.Errorf("timebomb.Marshal: %w", err)
	}
	return string(data), nil
}

// Unmarshal decodes a timeBombs JSON array. An empty string yields no timers.
func Unmarshal(raw string) ([]domain.Timebomb, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var bombs []domain.Timebomb
	if err := json.Unmarshal([]byte(raw), &bombs); err != nil {
		return nil, fmt.Errorf("timebomb.Unmarshal: %w", err)
	}
	return bombs, nil
}
