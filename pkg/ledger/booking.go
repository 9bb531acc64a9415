// Package ledger interprets the transaction history of an asset: booked
// project time, election ballots and plain voucher use.
package ledger

import (
	"errors"
	"time"

	"github.com/naveenspark/cbdemo/pkg/domain"
)

var (
	// ErrAlreadyRunning means the project to start is the one already running.
	ErrAlreadyRunning = errors.New("project already running")
	// ErrNothingRunning means a stop was requested with no project running.
	ErrNothingRunning = errors.New("no running project to book")
)

// significantMillis is the smallest bookable span. Shorter work is dropped.
const significantMillis = 60000

// Entry is one booked span of project time.
type Entry struct {
	ProjectID string
	Start     time.Time
	Stop      time.Time
	Minutes   int64
	Comment   string
}

type pending struct {
	projectID string
	comment   string
	at        time.Time
}

// Report reconstructs the booked project time from the history of the
// booking asset. Within one transaction the stop is applied before the
// start. Only the latest start is remembered, so a start that is never
// stopped is dropped when another start follows.
func Report(history []domain.Transaction) []Entry {
	var (
		out []Entry
		cur pending
	)
	for _, tx := range history {
		rec, ok := domain.ParseBookingRecord(tx.Record)
		if !ok {
			continue
		}

		var start, stop *domain.BookingAction
		for i := range rec.Actions {
			a := &rec.Actions[i]
			if a.ProjectID == "" {
				continue
			}
			if a.Start {
				start = a
			} else {
				stop = a
			}
		}

		if stop != nil && stop.ProjectID == cur.projectID {
			stopAt := tx.Timestamp.Time
			if !stop.Time.IsZero() {
				stopAt = stop.Time.Time
			}
			elapsed := stopAt.Sub(cur.at).Milliseconds()
			if elapsed >= significantMillis {
				out = append(out, Entry{
					ProjectID: cur.projectID,
					Start:     cur.at,
					Stop:      stopAt,
					Minutes:   elapsed / significantMillis,
					Comment:   cur.comment,
				})
			}
			cur = pending{}
		}
		if start != nil {
			cur = pending{projectID: start.ProjectID, comment: start.Comment, at: tx.Timestamp.Time}
		}
	}
	return out
}

// TotalMinutes sums the booked minutes per project in first-seen order.
func TotalMinutes(entries []Entry) []ProjectTotal {
	var out []ProjectTotal
	idx := make(map[string]int)
	for _, e := range entries {
		i, ok := idx[e.ProjectID]
		if !ok {
			i = len(out)
			idx[e.ProjectID] = i
			out = append(out, ProjectTotal{ProjectID: e.ProjectID})
		}
		out[i].Minutes += e.Minutes
	}
	return out
}

// ProjectTotal is the booked time of one project.
type ProjectTotal struct {
	ProjectID string
	Minutes   int64
}

// RunningState describes the booking state after the last transaction.
type RunningState struct {
	Running    bool
	ProjectID  string
	Since      time.Time
	HistoryLen int
}

// Running inspects the last transaction of the booking history. A start
// action in it means that project is still running.
func Running(history []domain.Transaction) RunningState {
	st := RunningState{HistoryLen: len(history)}
	if len(history) == 0 {
		return st
	}
	last := history[len(history)-1]
	st.Since = last.Timestamp.Time
	rec, ok := domain.ParseBookingRecord(last.Record)
	if !ok {
		return st
	}
	for _, a := range rec.Actions {
		if a.Start {
			st.Running = true
			st.ProjectID = a.ProjectID
			break
		}
	}
	return st
}

// StartRecord builds the record that starts project. A project that is
// still running is stopped in the same record, at stopAt when set.
func StartRecord(st RunningState, project, comment string, stopAt time.Time) (domain.BookingRecord, error) {
	start := domain.BookingAction{ProjectID: project, Start: true, Comment: comment}
	if !st.Running {
		return domain.BookingRecord{Actions: []domain.BookingAction{start}}, nil
	}
	if st.ProjectID == project {
		return domain.BookingRecord{}, ErrAlreadyRunning
	}
	return domain.BookingRecord{Actions: []domain.BookingAction{start, stopAction(st, stopAt)}}, nil
}

// StopRecord builds the record that stops the running project, at stopAt
// when set and at the ledger's timestamp otherwise.
func StopRecord(st RunningState, stopAt time.Time) (domain.BookingRecord, error) {
	if !st.Running {
		return domain.BookingRecord{}, ErrNothingRunning
	}
	return domain.BookingRecord{Actions: []domain.BookingAction{stopAction(st, stopAt)}}, nil
}

func stopAction(st RunningState, stopAt time.Time) domain.BookingAction {
	a := domain.BookingAction{ProjectID: st.ProjectID}
	if !stopAt.IsZero() {
		a.Time = domain.At(stopAt)
	}
	return a
}

// LowBalance is the balance under which the remaining bookings are shown
// as a warning.
const LowBalance = 100

// RemainingBookings returns how many bookings the balance still covers.
// Every booking is a start and a stop, so each takes two units. low is
// true when the supply is running out.
func RemainingBookings(balance int64) (n int64, low bool) {
	if balance <= 0 {
		return 0, false
	}
	return balance / 2, balance < LowBalance
}
