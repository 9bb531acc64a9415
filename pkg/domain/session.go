package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Credentials authenticate an end-user object. They are issued out of band
// and used once per session to sign in.
type Credentials struct {
	ClientKey         string `json:"clientKey"`
	EncHash           string `json:"encHash"`
	ClientCertificate string `json:"clientCertificate"`
}

// Complete reports whether all three credential parts are present.
func (c Credentials) Complete() bool {
	return c.ClientKey != "" && c.EncHash != "" && c.ClientCertificate != ""
}

// TokenSet is the token bundle returned by sign-in and sign-in refresh.
type TokenSet struct {
	AccessToken         string  `json:"accessToken"`
	AccessTokenExpires  Instant `json:"accessTokenExpires"`
	RefreshToken        string  `json:"refreshToken"`
	RefreshTokenExpires Instant `json:"refreshTokenExpires"`
}

// Instant is a point in time as the node reports it. On the wire it may be
// epoch milliseconds (number or numeric string) or an RFC 3339 string.
type Instant struct {
	time.Time
}

// At wraps t as an Instant.
func At(t time.Time) Instant { return Instant{Time: t} }

// InstantMillis returns the Instant for epoch milliseconds.
func InstantMillis(ms int64) Instant { return Instant{Time: time.UnixMilli(ms)} }

// Millis returns the epoch milliseconds, or 0 for the zero Instant.
func (i Instant) Millis() int64 {
	if i.IsZero() {
		return 0
	}
	return i.UnixMilli()
}

// isoMillis matches the browser's Date.toISOString output.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// MarshalJSON encodes the Instant as an ISO string in UTC, or null when zero.
func (i Instant) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(i.UTC().Format(isoMillis))
}

// UnmarshalJSON accepts a number, a numeric string, an RFC 3339 string,
// an empty string or null.
func (i *Instant) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = Instant{}
		return nil
	}
	if data[0] != '"' {
		var ms float64
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("instant: %w", err)
		}
		*i = InstantMillis(int64(ms))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("instant: %w", err)
	}
	parsed, err := ParseInstant(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// ParseInstant parses the string forms accepted by UnmarshalJSON.
func ParseInstant(s string) (Instant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Instant{}, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return InstantMillis(ms), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Instant{}, fmt.Errorf("instant %q: %w", s, err)
	}
	return Instant{Time: t}, nil
}
