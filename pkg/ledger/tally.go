package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/cbdemo/pkg/domain"
)

// ErrTooFewVoters means the election has fewer than two voter objects.
var ErrTooFewVoters = errors.New("less than 2 voters defined")

// Ballot is what one voter object shows: its life state and the record of
// its most recent transaction.
type Ballot struct {
	VoterKey  string
	Known     bool // false when the voter has no life asset
	State     domain.LifeState
	Record    string
	HasRecord bool
}

// ChoiceCount is the number of votes for one choice.
type ChoiceCount struct {
	Choice string
	Votes  int
}

// Tally is the evaluated state of an election.
type Tally struct {
	Title        string
	Results      []ChoiceCount // in choice order, abstentions last
	Bogus        int
	Expired      int // depleted without a vote
	Pending      int
	NotStarted   bool
	Inconclusive bool // a voter is in pairing or validation
	Final        bool
}

// Evaluate tallies ballots against the election config. Ballots are scanned
// in order; a voter in pairing or validation makes the tally inconclusive
// and ends the scan. Evaluate has no side effects and can be called any
// number of times.
func Evaluate(cfg domain.ElectionConfig, ballots []Ballot) Tally {
	choices := cfg.Choices()
	t := Tally{Title: cfg.Title, Results: make([]ChoiceCount, len(choices))}
	idx := make(map[string]int, len(choices))
	for i, c := range choices {
		t.Results[i].Choice = c
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}

	for _, b := range ballots {
		if !b.Known {
			t.Pending++
			continue
		}
		switch {
		case b.State == domain.LifePendingPairing || b.State == domain.LifePendingValidation:
			t.Inconclusive = true
		case b.State == domain.LifeInvalid || b.State == domain.LifeReturned || b.State == domain.LifeNew:
			if b.State == domain.LifeNew {
				t.NotStarted = true
			}
			// Only a voter with a recorded transaction can have cast a bogus vote.
			if b.HasRecord {
				t.Bogus++
			} else {
				t.Pending++
			}
		case b.State == domain.LifeDepleted:
			if !b.HasRecord {
				t.Expired++
				break
			}
			if i, ok := idx[b.Record]; ok {
				t.Results[i].Votes++
			} else {
				slog.Debug("dropping vote for unknown choice", "voter", b.VoterKey, "choice", b.Record)
			}
		default:
			t.Pending++
		}
		if t.Inconclusive {
			break
		}
	}

	t.Final = !t.Inconclusive && !t.NotStarted && t.Pending == 0
	return t
}

// Total returns the number of counted votes.
func (t Tally) Total() int {
	n := 0
	for _, r := range t.Results {
		n += r.Votes
	}
	return n
}

// OwnVote reports the choice a voter submitted, read from the last
// transaction of its life asset. ok is false when no vote was cast.
func OwnVote(history []domain.Transaction, cfg domain.ElectionConfig) (choice string, ok bool) {
	if len(history) == 0 {
		return "", false
	}
	rec := history[len(history)-1].Record
	for _, c := range cfg.Choices() {
		if c == rec {
			return c, true
		}
	}
	return "", false
}

// VoterSource reads the objects of other voters.
type VoterSource interface {
	ReadForeignField(ctx context.Context, identityKey, field string) (string, bool, error)
	ReadForeignAsset(ctx context.Context, identityKey, asset string, history bool) (*domain.Asset, error)
}

// Progress is told how many voters have been read so far.
type Progress func(done, total int)

// CollectVotes reads every voter concurrently and evaluates the election once
// all reads have finished. The config is read from the first voter. Any read
// failure aborts the whole collection.
func CollectVotes(ctx context.Context, src VoterSource, voters []domain.Dependent, progress Progress) (Tally, error) {
	if len(voters) < 2 {
		return Tally{}, ErrTooFewVoters
	}

	var (
		cfg     domain.ElectionConfig
		ballots = make([]Ballot, len(voters))
		done    atomic.Int64
		total   = len(voters)
	)
	report := func() {
		n := done.Add(1)
		if progress != nil {
			progress(int(n), total)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, ok, err := src.ReadForeignField(ctx, voters[0].ClientKey, "customPayload")
		if err != nil {
			return fmt.Errorf("read vote choices: %w", err)
		}
		if ok {
			cfg, _ = domain.ParseElectionConfig(raw)
		}
		return nil
	})
	for i, v := range voters {
		g.Go(func() error {
			b, err := readBallot(ctx, src, v.ClientKey)
			if err != nil {
				return fmt.Errorf("read vote of %s: %w", v.ClientKey, err)
			}
			ballots[i] = b
			report()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Tally{}, fmt.Errorf("ledger.CollectVotes: %w", err)
	}
	return Evaluate(cfg, ballots), nil
}

func readBallot(ctx context.Context, src VoterSource, key string) (Ballot, error) {
	b := Ballot{VoterKey: key}
	life, err := src.ReadForeignAsset(ctx, key, domain.AssetLife, true)
	if err != nil {
		return b, err
	}
	if life == nil {
		return b, nil
	}
	b.Known = true
	b.State = domain.LifeState(life.Balance)
	if n := len(life.History); n > 0 {
		b.Record = life.History[n-1].Record
		b.HasRecord = true
	}
	return b, nil
}
