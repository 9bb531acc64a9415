package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/naveenspark/cbdemo/internal/browser"
	"github.com/naveenspark/cbdemo/internal/tui"
	"github.com/naveenspark/cbdemo/pkg/client"
	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/ledger"
	"github.com/naveenspark/cbdemo/pkg/session"
	"github.com/naveenspark/cbdemo/pkg/timebomb"
	"github.com/naveenspark/cbdemo/pkg/timefmt"
)

// publicDemoLimit caps the lifetime of objects planned for the public
// development chains.
const publicDemoLimit = 6 * time.Hour

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// openFile is replaced in tests.
var openFile = browser.OpenFile

func (e *env) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("cbdemo "+name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func (e *env) runShow(ctx context.Context) error {
	return e.withSession(ctx, true, func(s *session.Session) error {
		app := tui.NewApp(e.mgr, s, e.lang, version)
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui error: %w", err)
		}
		return nil
	})
}

func (e *env) runConsume(ctx context.Context, args []string) error {
	fs := e.flagSet("consume")
	asset := fs.String("asset", domain.AssetValue, "asset to burn one unit of")
	record := fs.String("record", "", "transaction record to attach")
	if err := fs.Parse(args); err != nil {
		return err
	}

	creds, ep, err := e.credentials()
	if err != nil {
		return err
	}
	s, c, err := e.mgr.EstablishConsumeAndLoad(ctx, creds, ep, *asset, *record, false)
	if err != nil {
		return explain(err)
	}
	defer e.mgr.SignOut(ctx, s)
	printConsumption(e.stdout, c)
	return nil
}

// errNoLife is returned when an object carries no life asset.
var errNoLife = errors.New("this object holds no life asset")

// requireLife fails unless the object's life state is want.
func (e *env) requireLife(s *session.Session, want domain.LifeState, action string) error {
	state, ok := s.LifeState()
	if !ok {
		return errNoLife
	}
	if state != want {
		return fmt.Errorf("%s needs an object in state %q, this one is %q",
			action, want.Name(e.lang), state.Name(e.lang))
	}
	return nil
}

func (e *env) runActivate(ctx context.Context) error {
	return e.withSession(ctx, false, func(s *session.Session) error {
		if err := e.requireLife(s, domain.LifeProvisioned, "activation"); err != nil {
			return err
		}
		c, err := e.mgr.Consume(ctx, s, domain.AssetLife, "", false)
		if err != nil {
			return err
		}
		printSuccess(e.stdout, "activated")
		if c.Known {
			printField(e.stdout, "Life", domain.LifeState(c.Remaining).Name(e.lang))
		}
		return nil
	})
}

// minVoteOptions is the smallest election that can be voted on.
const minVoteOptions = 2

func (e *env) runVote(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: cbdemo vote <choice>")
	}
	choice := args[0]
	return e.withSession(ctx, true, func(s *session.Session) error {
		cfg, _ := domain.ParseElectionConfig(s.Fields.Payload())
		if prev, ok := ledger.OwnVote(s.Assets.History(domain.AssetLife), cfg); ok {
			return fmt.Errorf("already voted for %q", prev)
		}
		if err := e.requireLife(s, domain.LifeInUse, "voting"); err != nil {
			return err
		}
		if len(cfg.Options) < minVoteOptions {
			return errors.New("no election configured for this voter")
		}
		if choices := cfg.Choices(); !slices.Contains(choices, choice) {
			return fmt.Errorf("unknown choice %q, want one of %s", choice, strings.Join(choices, ", "))
		}
		c, err := e.mgr.Consume(ctx, s, domain.AssetLife, choice, true)
		if err != nil {
			return err
		}
		printSuccess(e.stdout, "vote cast for "+choice)
		if c.Known {
			printField(e.stdout, "Life", domain.LifeState(c.Remaining).Name(e.lang))
		}
		return nil
	})
}

func (e *env) runBook(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: cbdemo book start <project> | cbdemo book stop")
	}
	fs := e.flagSet("book " + args[0])
	comment := fs.String("comment", "", "comment on the started project")
	at := fs.String("at", "", "stop time as YYYY-MM-DDThh:mm (default: now)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var req session.BookingRequest
	switch args[0] {
	case "start":
		if fs.NArg() != 1 {
			return errors.New("usage: cbdemo book start <project> [--comment text]")
		}
		req.Start = true
		req.ProjectID = fs.Arg(0)
		req.Comment = *comment
	case "stop":
	default:
		return fmt.Errorf("unknown book command %q", args[0])
	}
	if *at != "" {
		t, err := timefmt.ParseInputStamp(*at)
		if err != nil {
			return err
		}
		req.StopAt = t
	}

	return e.withSession(ctx, true, func(s *session.Session) error {
		if req.Start {
			if pl := domain.ParseProjectList(s.Fields.Payload()); !pl.Contains(req.ProjectID) {
				return fmt.Errorf("unknown project %q, add it with cbdemo project add", req.ProjectID)
			}
		}
		rec, err := e.mgr.Book(ctx, s, req)
		if err != nil {
			return err
		}
		for _, a := range rec.Actions {
			if a.Start {
				printSuccess(e.stdout, "started "+a.ProjectID)
			} else {
				printSuccess(e.stdout, "stopped "+a.ProjectID)
			}
		}
		if balance, ok := s.Balance(domain.AssetValue); ok {
			printRemainingBookings(e.stdout, balance)
		}
		return nil
	})
}

func (e *env) runProject(ctx context.Context, args []string) error {
	if len(args) != 2 || args[0] != "add" {
		return errors.New("usage: cbdemo project add <name>")
	}
	name := strings.TrimSpace(args[1])
	if name == "" {
		return errors.New("project name must not be empty")
	}
	return e.withSession(ctx, false, func(s *session.Session) error {
		if err := e.mgr.AddProject(ctx, s, name); err != nil {
			return err
		}
		pl := domain.ParseProjectList(s.Fields.Payload())
		printField(e.stdout, "Projects", strings.Join(pl.Projects, ", "))
		return nil
	})
}

func (e *env) runReport(ctx context.Context, args []string) error {
	fs := e.flagSet("report")
	csvPath := fs.String("csv", "", "write the report as CSV to this file")
	open := fs.Bool("open", false, "open the CSV file with the default viewer")
	copyCSV := fs.Bool("copy", false, "copy the report as CSV to the clipboard")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *open && *csvPath == "" {
		return errors.New("--open needs --csv")
	}

	return e.withSession(ctx, true, func(s *session.Session) error {
		entries := ledger.Report(s.Assets.History(domain.AssetValue))
		printReport(e.stdout, entries, e.lang)

		if *csvPath != "" {
			if err := writeCSVFile(*csvPath, entries); err != nil {
				return err
			}
			printSuccess(e.stdout, "wrote "+*csvPath)
			if *open {
				if err := openFile(*csvPath); err != nil {
					e.logger.Warn("could not open report", "path", *csvPath, "error", err)
				}
			}
		}
		if *copyCSV {
			out, err := ledger.CSV(entries, time.Local)
			if err != nil {
				return err
			}
			if err := writeClipboard(out); err != nil {
				return fmt.Errorf("copy to clipboard: %w", err)
			}
			printSuccess(e.stdout, fmt.Sprintf("copied %d entries", len(entries)))
		}
		return nil
	})
}

func writeCSVFile(path string, entries []ledger.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := ledger.WriteCSV(f, entries, time.Local); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return f.Close()
}

func (e *env) runHistory(ctx context.Context) error {
	return e.withSession(ctx, true, func(s *session.Session) error {
		balance, ok := s.Balance(domain.AssetValue)
		if !ok {
			return errors.New("this object holds no value asset")
		}
		printField(e.stdout, "Balance", fmt.Sprint(balance))
		printHistory(e.stdout, ledger.VoucherHistory(s.Assets.History(domain.AssetValue)))
		return nil
	})
}

func (e *env) runTally(ctx context.Context) error {
	return e.withSession(ctx, false, func(s *session.Session) error {
		progress := func(done, total int) {
			fmt.Fprintf(e.stderr, "\rreading ballots %d/%d", done, total)
		}
		t, err := e.mgr.Tally(ctx, s, progress)
		fmt.Fprintln(e.stderr)
		if err != nil {
			return err
		}
		printTally(e.stdout, t)
		return nil
	})
}

func (e *env) runPlan(args []string) error {
	fs := e.flagSet("plan")
	expires := fs.String("expires", "", "deplete at YYYY-MM-DDThh:mm")
	starts := fs.String("starts", "", "go into use at YYYY-MM-DDThh:mm")
	usage := fs.Duration("usage", 0, "deplete this long after going into use, e.g. 2h")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var p timebomb.Plan
	for _, f := range []struct {
		raw string
		dst *time.Time
	}{{*expires, &p.Expiration}, {*starts, &p.Start}} {
		if f.raw == "" {
			continue
		}
		t, err := timefmt.ParseInputStamp(f.raw)
		if err != nil {
			return err
		}
		*f.dst = t
	}
	p.UsageDuration = *usage

	if e.node == "" && e.cfg.ResolveChain(e.now()) != client.ChainProduction {
		p = p.Clamp(e.now(), publicDemoLimit)
	}
	raw, err := p.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, raw)
	for _, d := range timebomb.DecodeAll(p.Timebombs(), e.lang) {
		printTimer(e.stdout, d)
	}
	return nil
}

func (e *env) runLogin(ctx context.Context) error {
	creds, ep, err := e.credentials()
	if err != nil {
		return err
	}
	s, err := e.mgr.EstablishAndLoad(ctx, creds, ep, false)
	if err != nil {
		return explain(err)
	}
	if err := e.store.Save(session.Stored{NodeURL: s.Endpoint, Tokens: s.Tokens}); err != nil {
		e.mgr.SignOut(ctx, s)
		return err
	}
	printSuccess(e.stdout, "signed in as "+s.IdentityKey)
	printField(e.stdout, "Node", s.Endpoint)
	if exp := s.Tokens.RefreshTokenExpires.Time; !exp.IsZero() {
		printField(e.stdout, "Valid until", timefmt.DateTime(exp))
	}
	return nil
}

// resume opens a session from the token store and saves the refreshed
// tokens back.
func (e *env) resume(ctx context.Context) (*session.Session, error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if st.NodeURL == "" {
		return nil, session.ErrReauthRequired
	}
	s, err := e.mgr.Resume(ctx, st.NodeURL, st.Tokens, false)
	if err != nil {
		return nil, err
	}
	if err := e.store.Save(session.Stored{NodeURL: s.Endpoint, Tokens: s.Tokens}); err != nil {
		e.logger.Warn("could not save refreshed tokens", "error", err)
	}
	return s, nil
}

func (e *env) runFetch(ctx context.Context, args []string) error {
	fs := e.flagSet("fetch")
	output := fs.StringP("output", "o", "", "write the resource to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: cbdemo fetch <resource> [-o file]")
	}
	if e.cfg.ContentDir == "" {
		return errors.New("content_dir is not configured")
	}

	resource := filepath.Base(fs.Arg(0))
	path := filepath.Join(e.cfg.ContentDir, resource)
	// #nosec G304 -- resource is reduced to a base name inside content_dir
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("requested resource not found: %s", resource)
	}
	defer src.Close() //nolint:errcheck

	s, err := e.resume(ctx)
	if err != nil {
		if errors.Is(err, client.ErrAuth) {
			return explain(session.ErrReauthRequired)
		}
		return explain(err)
	}
	if err := e.mgr.Charge(ctx, s, resource); err != nil {
		if errors.Is(err, client.ErrAuth) {
			return explain(session.ErrReauthRequired)
		}
		return explain(err)
	}

	var dst io.Writer = e.stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close() //nolint:errcheck
		dst = f
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("send %s: %w", resource, err)
	}
	return nil
}

func (e *env) runLogout(ctx context.Context) error {
	st, err := e.store.Load()
	if err != nil {
		return err
	}
	if st.NodeURL == "" {
		fmt.Fprintln(e.stdout, "Already logged out.")
		return nil
	}
	if s, err := e.mgr.Resume(ctx, st.NodeURL, st.Tokens, false); err == nil {
		e.mgr.SignOut(ctx, s)
	} else {
		e.logger.Debug("stored tokens no longer usable", "error", err)
	}
	if err := e.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, "Logged out.")
	return nil
}
