package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/session"
)

// Environment variables that override single credential parts.
const (
	envClientKey   = "CBDEMO_CLIENT_KEY"
	envEncHash     = "CBDEMO_ENC_HASH"
	envCertificate = "CBDEMO_CLIENT_CERTIFICATE"
)

// credentialsFile is the layout of an issued credentials file. Issued files
// wrap the credentials in moCredentials and keep key and certificate in a
// list; hand-written files may put all three parts at the top level.
type credentialsFile struct {
	MoCredentials *credentialsFile `json:"moCredentials"`
	EncHash       string           `json:"encHash"`
	ClientKey     string           `json:"clientKey"`
	Certificate   string           `json:"clientCertificate"`
	Clients       []struct {
		ClientKey   string `json:"clientKey"`
		Certificate string `json:"clientCertificate"`
	} `json:"ListOfClientCredentials"`
}

// parseCredentials decodes a credentials file. Comments and trailing commas
// are allowed.
func parseCredentials(data []byte) (domain.Credentials, error) {
	var f credentialsFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
		return domain.Credentials{}, fmt.Errorf("parsing credentials: %w", err)
	}
	inner := &f
	if f.MoCredentials != nil {
		inner = f.MoCredentials
	}
	c := domain.Credentials{
		ClientKey:         inner.ClientKey,
		EncHash:           inner.EncHash,
		ClientCertificate: inner.Certificate,
	}
	if len(inner.Clients) > 0 {
		c.ClientKey = inner.Clients[0].ClientKey
		c.ClientCertificate = inner.Clients[0].Certificate
	}
	return c, nil
}

// loadCredentials reads the credentials file at path, when set, and applies
// the environment overrides.
func loadCredentials(path string) (domain.Credentials, error) {
	var c domain.Credentials
	if path != "" {
		// #nosec G304 -- path comes from the user's own flags or config
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("reading credentials: %w", err)
		}
		if c, err = parseCredentials(data); err != nil {
			return c, err
		}
	}
	if v := os.Getenv(envClientKey); v != "" {
		c.ClientKey = v
	}
	if v := os.Getenv(envEncHash); v != "" {
		c.EncHash = v
	}
	if v := os.Getenv(envCertificate); v != "" {
		c.ClientCertificate = v
	}
	if !c.Complete() {
		if path == "" {
			return c, errors.Join(session.ErrIncompleteCredentials,
				errors.New("pass --creds or set credentials_file in the config"))
		}
		return c, fmt.Errorf("%s: %w", path, session.ErrIncompleteCredentials)
	}
	return c, nil
}
