// Package config loads the cbdemo configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/naveenspark/cbdemo/pkg/client"
	"github.com/naveenspark/cbdemo/pkg/timefmt"
)

// Environment variables read on top of the file.
const (
	EnvConfig = "CBDEMO_CONFIG"
	EnvChain  = "CBDEMO_CHAIN"
	EnvLang   = "CBDEMO_LANG"
)

// Config holds the complete cbdemo configuration.
type Config struct {
	// Chain is A, B or P. Empty selects the development chain with the
	// shortest remaining lifetime.
	Chain           string        `yaml:"chain"`
	Nodes           []string      `yaml:"nodes"`
	Language        string        `yaml:"language"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	TokenFile       string        `yaml:"token_file"`
	CredentialsFile string        `yaml:"credentials_file"`
	// ContentDir holds the resources served by the fetch command.
	ContentDir string `yaml:"content_dir"`
}

// DefaultPath returns ~/.cbdemo/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cbdemo", "config.yaml"), nil
}

// Load reads the config file at path. A missing file yields the defaults.
// ${VAR} references in the file are expanded from the environment, and
// CBDEMO_CHAIN and CBDEMO_LANG override the file values.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		// #nosec G304 -- path comes from the user's own flags or environment
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			data = []byte(expandEnvVars(string(data)))
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if v := os.Getenv(EnvChain); v != "" {
		cfg.Chain = v
	}
	if v := os.Getenv(EnvLang); v != "" {
		cfg.Language = v
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the environment value of VAR.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

func applyDefaults(cfg *Config) {
	if len(cfg.Nodes) == 0 {
		cfg.Nodes = append([]string(nil), client.DefaultNodes...)
	}
	if cfg.Language == "" {
		cfg.Language = os.Getenv("LANG")
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 60 * time.Second
	}
	if cfg.TokenFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.TokenFile = filepath.Join(home, ".cbdemo", "tokens.json")
		}
	}
	cfg.TokenFile = expandHome(cfg.TokenFile)
	cfg.CredentialsFile = expandHome(cfg.CredentialsFile)
	cfg.ContentDir = expandHome(cfg.ContentDir)
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string
	if c.Chain != "" {
		if _, err := client.ParseChain(c.Chain); err != nil {
			errs = append(errs, "chain: "+err.Error())
		}
	}
	for i, n := range c.Nodes {
		if !strings.HasPrefix(n, "http://") && !strings.HasPrefix(n, "https://") {
			errs = append(errs, fmt.Sprintf("nodes[%d]: %q is not an http(s) URL", i, n))
		}
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, "http_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ResolveChain returns the configured chain, or the current development
// chain at now when none is configured.
func (c *Config) ResolveChain(now time.Time) client.Chain {
	if ch, err := client.ParseChain(c.Chain); err == nil {
		return ch
	}
	return client.CurrentDevChain(now)
}

// Lang returns the display language.
func (c *Config) Lang() timefmt.Lang {
	return timefmt.ParseLang(langTag(c.Language))
}

// langTag turns a POSIX locale such as de_DE.UTF-8 into a BCP 47 tag.
func langTag(s string) string {
	s, _, _ = strings.Cut(s, ".")
	return strings.ReplaceAll(s, "_", "-")
}
