// Package session runs the multi-step sign-in, read and consume sequences
// against a ledger node and keeps the session state consistent.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/cbdemo/pkg/client"
	"github.com/naveenspark/cbdemo/pkg/domain"
)

var (
	// ErrClosed means the session was signed out.
	ErrClosed = errors.New("session closed")
	// ErrReauthRequired means no stored token is valid any more and the
	// credentials must be entered again.
	ErrReauthRequired = errors.New("please sign in again")
	// ErrIncompleteCredentials means a credential part is missing.
	ErrIncompleteCredentials = errors.New("incomplete credentials")
)

// Transport is the node API a session runs on. *client.Client implements it.
type Transport interface {
	SignIn(ctx context.Context, clientKey, encHash, clientCertificate string) (*domain.TokenSet, error)
	SignInWithRefreshToken(ctx context.Context, refreshToken string) (*domain.TokenSet, error)
	SignOut(ctx context.Context, accessToken string) error
	ReadFields(ctx context.Context, accessToken string) (*domain.Fields, error)
	ReadAssets(ctx context.Context, accessToken string, history bool) (*domain.AssetList, error)
	ReadForeignField(ctx context.Context, accessToken, identityKey, field string) (string, bool, error)
	ReadForeignAsset(ctx context.Context, accessToken, identityKey, asset string, history bool) (*domain.Asset, error)
	ReadDependents(ctx context.Context, accessToken, identityKey string) ([]domain.Dependent, error)
	UpdateField(ctx context.Context, accessToken, name, value string) error
	UpdateAsset(ctx context.Context, accessToken, asset string, opts client.UpdateOptions) (*domain.UpdateResult, error)
}

// Dialer returns the transport for a node endpoint.
type Dialer func(endpoint string) Transport

// ClientDialer dials nodes with client.New sharing httpClient.
func ClientDialer(httpClient *http.Client) Dialer {
	return func(endpoint string) Transport {
		return client.New(endpoint, httpClient)
	}
}

// Session is one signed-in object on one pinned node. It is not safe for
// concurrent use.
type Session struct {
	ID          uuid.UUID
	Endpoint    string
	IdentityKey string
	Tokens      domain.TokenSet
	Fields      *domain.Fields
	Assets      *domain.AssetList // nil when the object has no assets

	t      Transport
	closed bool
}

// Closed reports whether the session was signed out.
func (s *Session) Closed() bool { return s.closed }

// Balance returns the cached balance of asset. ok is false when unknown.
func (s *Session) Balance(asset string) (int64, bool) {
	return s.Assets.Balance(asset)
}

// LifeState returns the cached lifecycle state. ok is false when the object
// has no life asset.
func (s *Session) LifeState() (domain.LifeState, bool) {
	b, ok := s.Assets.Balance(domain.AssetLife)
	return domain.LifeState(b), ok
}

func (s *Session) log(l *slog.Logger) *slog.Logger {
	return l.With("session", s.ID.String(), "endpoint", s.Endpoint)
}

// Manager creates sessions and runs operations on them.
type Manager struct {
	dial   Dialer
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock sets the time source used for token validity.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager that reaches nodes through dial.
func NewManager(dial Dialer, opts ...Option) *Manager {
	m := &Manager{dial: dial, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

func newSession(t Transport, endpoint, identityKey string, tokens domain.TokenSet) *Session {
	return &Session{
		ID:          uuid.New(),
		Endpoint:    endpoint,
		IdentityKey: identityKey,
		Tokens:      tokens,
		t:           t,
	}
}

// --- Establish ---

// EstablishAndLoad signs in and reads fields and assets concurrently. The
// session is returned only when both reads succeeded; otherwise it is
// discarded and its token signed out.
func (m *Manager) EstablishAndLoad(ctx context.Context, creds domain.Credentials, endpoint string, needHistory bool) (*Session, error) {
	s, err := m.signIn(ctx, creds, endpoint)
	if err != nil {
		return nil, fmt.Errorf("session.EstablishAndLoad: %w", err)
	}
	if err := m.load(ctx, s, needHistory); err != nil {
		m.SignOut(ctx, s)
		return nil, fmt.Errorf("session.EstablishAndLoad: %w", err)
	}
	return s, nil
}

func (m *Manager) signIn(ctx context.Context, creds domain.Credentials, endpoint string) (*Session, error) {
	if !creds.Complete() {
		return nil, ErrIncompleteCredentials
	}
	t := m.dial(endpoint)
	tokens, err := t.SignIn(ctx, creds.ClientKey, creds.EncHash, creds.ClientCertificate)
	if err != nil {
		return nil, err
	}
	s := newSession(t, endpoint, creds.ClientKey, *tokens)
	s.log(m.logger).Debug("signed in", "identity", creds.ClientKey)
	return s, nil
}

// load reads fields and assets without sequencing one after the other and
// replaces the cached state only when both succeed.
func (m *Manager) load(ctx context.Context, s *Session, needHistory bool) error {
	var (
		fields *domain.Fields
		assets *domain.AssetList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := s.t.ReadFields(gctx, s.Tokens.AccessToken)
		fields = f
		return err
	})
	g.Go(func() error {
		a, err := s.t.ReadAssets(gctx, s.Tokens.AccessToken, needHistory)
		assets = a
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.Fields = fields
	s.Assets = assets
	if s.IdentityKey == "" && fields != nil {
		s.IdentityKey = fields.ClientKey
	}
	s.log(m.logger).Debug("loaded object", "history", needHistory, "has_assets", assets != nil)
	return nil
}

// Reload re-reads fields and assets of an open session.
func (m *Manager) Reload(ctx context.Context, s *Session, needHistory bool) error {
	if s.closed {
		return ErrClosed
	}
	if err := m.load(ctx, s, needHistory); err != nil {
		return fmt.Errorf("session.Reload: %w", err)
	}
	return nil
}

// --- Sign out ---

// SignOut invalidates the session's access token. Failures are logged and
// never returned; the session is closed either way.
func (m *Manager) SignOut(ctx context.Context, s *Session) {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	if s.Tokens.AccessToken == "" {
		return
	}
	if err := s.t.SignOut(context.WithoutCancel(ctx), s.Tokens.AccessToken); err != nil {
		s.log(m.logger).Warn("sign out failed", "error", err)
		return
	}
	s.log(m.logger).Debug("signed out")
}

// Run calls fn with the session and signs out afterwards, also when fn fails.
func (m *Manager) Run(ctx context.Context, s *Session, fn func(*Session) error) error {
	defer m.SignOut(ctx, s)
	return fn(s)
}
