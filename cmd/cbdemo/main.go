package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"github.com/naveenspark/cbdemo/internal/config"
	"github.com/naveenspark/cbdemo/pkg/client"
	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/session"
	"github.com/naveenspark/cbdemo/pkg/timefmt"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are accepted before the command name.
type globalFlags struct {
	configPath string
	chain      string
	lang       string
	creds      string
	node       string
	debug      bool
}

// env is everything a command needs, built once from flags and config.
type env struct {
	cfg       *config.Config
	lang      timefmt.Lang
	logger    *slog.Logger
	mgr       *session.Manager
	store     session.TokenStore
	credsPath string
	node      string
	stdout    io.Writer
	stderr    io.Writer
	pick      func(n int) int
	now       func() time.Time
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var g globalFlags
	fs := pflag.NewFlagSet("cbdemo", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.StringVar(&g.configPath, "config", "", "config file (default ~/.cbdemo/config.yaml or $"+config.EnvConfig+")")
	fs.StringVar(&g.chain, "chain", "", "chain to use: A, B or P (default: current development chain)")
	fs.StringVar(&g.lang, "lang", "", "display language, e.g. en or de")
	fs.StringVar(&g.creds, "creds", "", "credentials file")
	fs.StringVar(&g.node, "node", "", "node endpoint including port, bypasses node selection")
	fs.BoolVar(&g.debug, "debug", false, "log every session step to stderr")
	fs.BoolP("help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout)
			return nil
		}
		return err
	}
	if help, _ := fs.GetBool("help"); help {
		printHelp(stdout)
		return nil
	}

	cmd, rest := "show", fs.Args()
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}
	switch cmd {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, "cbdemo "+version)
		return nil
	case "help":
		printHelp(stdout)
		return nil
	}

	e, err := newEnv(g, stdout, stderr)
	if err != nil {
		return err
	}

	switch cmd {
	case "show":
		return e.runShow(ctx)
	case "consume":
		return e.runConsume(ctx, rest)
	case "activate":
		return e.runActivate(ctx)
	case "vote":
		return e.runVote(ctx, rest)
	case "book":
		return e.runBook(ctx, rest)
	case "project":
		return e.runProject(ctx, rest)
	case "report":
		return e.runReport(ctx, rest)
	case "history":
		return e.runHistory(ctx)
	case "tally":
		return e.runTally(ctx)
	case "plan":
		return e.runPlan(rest)
	case "login":
		return e.runLogin(ctx)
	case "fetch":
		return e.runFetch(ctx, rest)
	case "logout":
		return e.runLogout(ctx)
	}
	return fmt.Errorf("unknown command %q, see cbdemo help", cmd)
}

func newEnv(g globalFlags, stdout, stderr io.Writer) (*env, error) {
	path := g.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if g.chain != "" {
		cfg.Chain = g.chain
	}
	if g.lang != "" {
		cfg.Language = g.lang
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if g.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	credsPath := g.creds
	if credsPath == "" {
		credsPath = cfg.CredentialsFile
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	return &env{
		cfg:       cfg,
		lang:      cfg.Lang(),
		logger:    logger,
		mgr:       session.NewManager(session.ClientDialer(httpClient), session.WithLogger(logger)),
		store:     session.TokenStore{Path: cfg.TokenFile},
		credsPath: credsPath,
		node:      g.node,
		stdout:    stdout,
		stderr:    stderr,
		pick:      rand.IntN,
		now:       time.Now,
	}, nil
}

// endpoint returns the node a new session is pinned to.
func (e *env) endpoint() (string, error) {
	if e.node != "" {
		return e.node, nil
	}
	chain := e.cfg.ResolveChain(e.now())
	ep, err := client.ChooseNode(chain, e.cfg.Nodes, e.pick)
	if err != nil {
		return "", err
	}
	e.logger.Debug("selected node", "chain", string(chain), "endpoint", ep)
	return ep, nil
}

// credentials loads the credentials and picks a node.
func (e *env) credentials() (domain.Credentials, string, error) {
	creds, err := loadCredentials(e.credsPath)
	if err != nil {
		return creds, "", err
	}
	ep, err := e.endpoint()
	return creds, ep, err
}

// withSession signs in, loads the object and runs fn, signing out afterwards.
func (e *env) withSession(ctx context.Context, needHistory bool, fn func(*session.Session) error) error {
	creds, ep, err := e.credentials()
	if err != nil {
		return err
	}
	s, err := e.mgr.EstablishAndLoad(ctx, creds, ep, needHistory)
	if err != nil {
		return explain(err)
	}
	return explain(e.mgr.Run(ctx, s, fn))
}

// explain adds a hint to errors a user can act on.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrExhausted):
		return fmt.Errorf("%w: please purchase a new voucher", err)
	case errors.Is(err, client.ErrAuth):
		return fmt.Errorf("%w: check the credentials file", err)
	case errors.Is(err, session.ErrReauthRequired):
		return fmt.Errorf("%w: run cbdemo login", err)
	}
	return err
}
