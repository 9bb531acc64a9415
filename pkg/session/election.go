package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/ledger"
)

// ErrNotLicensee means the operation needs a licensee or sublicensee object.
var ErrNotLicensee = errors.New("only (sub)licensees allowed")

// foreign reads other objects with the session's token.
type foreign struct{ s *Session }

func (f foreign) ReadForeignField(ctx context.Context, identityKey, field string) (string, bool, error) {
	return f.s.t.ReadForeignField(ctx, f.s.Tokens.AccessToken, identityKey, field)
}

func (f foreign) ReadForeignAsset(ctx context.Context, identityKey, asset string, history bool) (*domain.Asset, error) {
	return f.s.t.ReadForeignAsset(ctx, f.s.Tokens.AccessToken, identityKey, asset, history)
}

// Voters returns a ledger.VoterSource that reads with the session's token.
func (s *Session) Voters() ledger.VoterSource { return foreign{s: s} }

// Dependents lists the sub-objects of the session's own object.
func (m *Manager) Dependents(ctx context.Context, s *Session) ([]domain.Dependent, error) {
	if s.closed {
		return nil, ErrClosed
	}
	deps, err := s.t.ReadDependents(ctx, s.Tokens.AccessToken, s.IdentityKey)
	if err != nil {
		return nil, fmt.Errorf("session.Dependents: %w", err)
	}
	return deps, nil
}

// Tally evaluates the election whose voters are the dependents of the
// session's licensee object.
func (m *Manager) Tally(ctx context.Context, s *Session, progress ledger.Progress) (ledger.Tally, error) {
	if s.closed {
		return ledger.Tally{}, ErrClosed
	}
	if !s.Fields.Licensee() {
		return ledger.Tally{}, ErrNotLicensee
	}
	voters, err := m.Dependents(ctx, s)
	if err != nil {
		return ledger.Tally{}, err
	}
	t, err := ledger.CollectVotes(ctx, s.Voters(), voters, progress)
	if err != nil {
		return ledger.Tally{}, fmt.Errorf("session.Tally: %w", err)
	}
	s.log(m.logger).Debug("tallied election", "voters", len(voters), "final", t.Final)
	return t, nil
}
