package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/naveenspark/cbdemo/pkg/client"
	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/ledger"
)

// ErrProjectExists means the project is already in the project list.
var ErrProjectExists = errors.New("project already exists")

// Consumption reports how a burn was confirmed.
type Consumption struct {
	Asset string
	// Waited is true when the burn was confirmed synchronously and the
	// assets were read again afterwards.
	Waited bool
	// Remaining is the cached balance after the burn, when known.
	Remaining int64
	Known     bool
}

// EstablishConsumeAndLoad signs in, loads the object and burns one unit of
// asset with record. Burns of the last unit, of an unknown balance or of
// any asset other than "value" wait for confirmation and re-read the
// assets. Other burns are deferred and the cached balance is updated from
// the node's provisional snapshot.
func (m *Manager) EstablishConsumeAndLoad(ctx context.Context, creds domain.Credentials, endpoint, asset, record string, needHistory bool) (*Session, Consumption, error) {
	s, err := m.EstablishAndLoad(ctx, creds, endpoint, needHistory)
	if err != nil {
		return nil, Consumption{}, err
	}
	c, err := m.Consume(ctx, s, asset, record, needHistory)
	if err != nil {
		m.SignOut(ctx, s)
		return nil, Consumption{}, fmt.Errorf("session.EstablishConsumeAndLoad: %w", err)
	}
	return s, c, nil
}

// Consume burns one unit of asset on an open, loaded session.
func (m *Manager) Consume(ctx context.Context, s *Session, asset, record string, needHistory bool) (Consumption, error) {
	if s.closed {
		return Consumption{}, ErrClosed
	}
	if asset == "" {
		asset = domain.AssetValue
	}
	log := s.log(m.logger).With("asset", asset)

	before, known := s.Assets.Balance(asset)
	wait := asset != domain.AssetValue || !known || before <= 1

	res, err := s.t.UpdateAsset(ctx, s.Tokens.AccessToken, asset, client.UpdateOptions{Defer: !wait, Record: record})
	if err != nil {
		return Consumption{}, fmt.Errorf("session.Consume: %w", err)
	}

	c := Consumption{Asset: asset, Waited: wait}
	if wait {
		assets, err := s.t.ReadAssets(ctx, s.Tokens.AccessToken, needHistory)
		if err != nil {
			return Consumption{}, fmt.Errorf("session.Consume: re-read: %w", err)
		}
		s.Assets = assets
		log.Debug("burned with confirmation", "before", before, "known", known)
	} else {
		applyRemaining(s.Assets, asset, res)
		log.Debug("burned deferred", "before", before)
	}
	c.Remaining, c.Known = s.Assets.Balance(asset)
	return c, nil
}

// applyRemaining updates the cached balance from the update response, or
// decrements it when the response does not carry the asset.
func applyRemaining(assets *domain.AssetList, asset string, res *domain.UpdateResult) {
	a, ok := assets.Find(asset)
	if !ok {
		return
	}
	if rem, ok := res.Remaining(asset); ok {
		a.Balance = rem
		return
	}
	a.Balance--
}

// Activate puts a provisioned object into use by burning one unit of life.
func (m *Manager) Activate(ctx context.Context, creds domain.Credentials, endpoint string, needHistory bool) (*Session, Consumption, error) {
	return m.EstablishConsumeAndLoad(ctx, creds, endpoint, domain.AssetLife, "", needHistory)
}

// Vote casts choice by burning the voter's last unit of life.
func (m *Manager) Vote(ctx context.Context, creds domain.Credentials, endpoint, choice string) (*Session, Consumption, error) {
	return m.EstablishConsumeAndLoad(ctx, creds, endpoint, domain.AssetLife, choice, true)
}

// Charge deducts one unit of value for access to resource without waiting
// for confirmation. The session's access token must be valid.
func (m *Manager) Charge(ctx context.Context, s *Session, resource string) error {
	if s.closed {
		return ErrClosed
	}
	record := "Deducted for consumption of " + resource
	if _, err := s.t.UpdateAsset(ctx, s.Tokens.AccessToken, domain.AssetValue, client.UpdateOptions{Defer: true, Record: record}); err != nil {
		return fmt.Errorf("session.Charge: %w", err)
	}
	s.log(m.logger).Debug("charged", "resource", resource)
	return nil
}

// ModifyField writes a field and reads the fields back.
func (m *Manager) ModifyField(ctx context.Context, s *Session, name, value string) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.t.UpdateField(ctx, s.Tokens.AccessToken, name, value); err != nil {
		return fmt.Errorf("session.ModifyField: %w", err)
	}
	f, err := s.t.ReadFields(ctx, s.Tokens.AccessToken)
	if err != nil {
		return fmt.Errorf("session.ModifyField: re-read: %w", err)
	}
	s.Fields = f
	return nil
}

// AddProject appends name to the project list kept in customPayload.
func (m *Manager) AddProject(ctx context.Context, s *Session, name string) error {
	pl := domain.ParseProjectList(s.Fields.Payload())
	if pl.Contains(name) {
		return ErrProjectExists
	}
	pl.Projects = append(pl.Projects, name)
	return m.ModifyField(ctx, s, "customPayload", pl.Encode())
}

// BookingRequest starts or stops project time.
type BookingRequest struct {
	Start     bool
	ProjectID string    // project to start
	Comment   string    // optional comment on a start
	StopAt    time.Time // explicit stop time; zero means now
}

// Book writes a start or stop record to the booking asset, waiting for
// confirmation, and re-reads the assets with history.
func (m *Manager) Book(ctx context.Context, s *Session, req BookingRequest) (domain.BookingRecord, error) {
	if s.closed {
		return domain.BookingRecord{}, ErrClosed
	}
	st := ledger.Running(s.Assets.History(domain.AssetValue))

	var (
		rec domain.BookingRecord
		err error
	)
	if req.Start {
		rec, err = ledger.StartRecord(st, req.ProjectID, req.Comment, req.StopAt)
	} else {
		rec, err = ledger.StopRecord(st, req.StopAt)
	}
	if err != nil {
		return domain.BookingRecord{}, err
	}

	if _, err := s.t.UpdateAsset(ctx, s.Tokens.AccessToken, domain.AssetValue, client.UpdateOptions{Record: rec.Encode()}); err != nil {
		return domain.BookingRecord{}, fmt.Errorf("session.Book: %w", err)
	}
	assets, err := s.t.ReadAssets(ctx, s.Tokens.AccessToken, true)
	if err != nil {
		return domain.BookingRecord{}, fmt.Errorf("session.Book: re-read: %w", err)
	}
	s.Assets = assets
	project := st.ProjectID
	if req.Start {
		project = req.ProjectID
	}
	s.log(m.logger).Debug("booked", "start", req.Start, "project", project)
	return rec, nil
}
