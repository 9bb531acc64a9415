package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/naveenspark/cbdemo/pkg/domain"
)

// TokenMargin is how long before its expiry a token is no longer used.
const TokenMargin = 30 * time.Second

// TokenValid reports whether a token expiring at expiry can still be used at
// now. A token expiring exactly at now+TokenMargin is not valid.
func TokenValid(now, expiry time.Time) bool {
	if expiry.IsZero() {
		return false
	}
	return now.Add(TokenMargin).Before(expiry)
}

// Resume opens a session on endpoint from stored tokens without credentials.
// A valid access token is used as is; otherwise a valid refresh token is
// exchanged for a new token set. With neither, ErrReauthRequired is returned.
func (m *Manager) Resume(ctx context.Context, endpoint string, tokens domain.TokenSet, needHistory bool) (*Session, error) {
	now := m.now()
	t := m.dial(endpoint)

	switch {
	case tokens.AccessToken != "" && TokenValid(now, tokens.AccessTokenExpires.Time):
	case tokens.RefreshToken != "" && TokenValid(now, tokens.RefreshTokenExpires.Time):
		fresh, err := t.SignInWithRefreshToken(ctx, tokens.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("session.Resume: %w", err)
		}
		tokens = *fresh
	default:
		return nil, ErrReauthRequired
	}

	s := newSession(t, endpoint, "", tokens)
	if err := m.load(ctx, s, needHistory); err != nil {
		m.SignOut(ctx, s)
		return nil, fmt.Errorf("session.Resume: %w", err)
	}
	s.log(m.logger).Debug("resumed")
	return s, nil
}

// Stored is what the token store keeps between runs: the pinned node and
// the last token set.
type Stored struct {
	NodeURL string          `json:"nodeUrl"`
	Tokens  domain.TokenSet `json:"tokens"`
}

// TokenStore persists tokens in a file only the user can read.
type TokenStore struct {
	Path string
}

// DefaultTokenPath returns ~/.cbdemo/tokens.json.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cbdemo", "tokens.json"), nil
}

// Load reads the stored tokens. The access token is dropped so that a
// resumed session always starts from the refresh token. A missing file
// yields an empty Stored.
func (ts TokenStore) Load() (Stored, error) {
	var st Stored
	data, err := os.ReadFile(ts.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("read token file: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return Stored{}, fmt.Errorf("parse token file: %w", err)
	}
	st.Tokens.AccessToken = ""
	st.Tokens.AccessTokenExpires = domain.Instant{}
	return st, nil
}

// Save writes st with mode 0600, creating the directory when needed.
func (ts TokenStore) Save(st Stored) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(ts.Path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(ts.Path, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear removes the token file. A missing file is not an error.
func (ts TokenStore) Clear() error {
	if err := os.Remove(ts.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
