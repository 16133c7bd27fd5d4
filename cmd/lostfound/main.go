package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"lostfound/internal/client"
	"lostfound/internal/db"
	"lostfound/internal/query"
	"lostfound/internal/session"
	"lostfound/internal/store"
)

// levelRouter is a slog.Handler that routes records below ERROR to stdout
// and ERROR+ to stderr, dropping anything below the configured threshold.
type levelRouter struct {
	level  slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. WARN goes to stdout, ERROR to
// stderr; INFO is suppressed so command output stays clean. -verbose lowers
// the threshold to INFO. If logPath is non-empty, all levels are also
// written to that file. Returns a cleanup function that closes the log
// file (if opened).
func setupLogger(verbose bool, logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelInfo
	}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		level:  opts.Level.Level(),
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

const usageText = `Usage: lostfound [flags] <command> [args]

Browse and report lost and found items.

Commands:
  items               list item reports (filterable)
  item <id>           show one item report
  report              report a new lost or found item
  update <id>         edit an owned item report
  mark <id> <status>  switch an item between LOST and FOUND
  flag <id>           flag an item for moderation review
  delete <id>         remove an owned item report
  mine                list your own item reports
  login               sign in and persist the session
  logout              sign out and clear the session
  whoami              show the active session
  register            create a new account
  admin               moderation commands (flagged, approve, reject)

Flags:
  -url <base>     backend base URL (default: $LOSTFOUND_URL or http://localhost:8000)
  -mock           use the built-in seeded store instead of a backend
  -state <path>   session/state database path (default: user config dir)
  -verbose        log informational messages
  -log <path>     also write logs to this file
  -h, -help       show this help and exit

Run 'lostfound <command> -h' for command-specific flags.
`

// app bundles the data-access service with the persisted session. Both the
// REST client and the built-in store satisfy the same contract, wrapped in
// the freshness cache either way.
type app struct {
	svc     query.Service
	session *session.Store
	rest    *client.Client // nil in mock mode
	db      *sql.DB
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// statePath resolves the local state database location.
func statePath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	dir = filepath.Join(dir, "lostfound")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating state dir: %w", err)
	}
	return filepath.Join(dir, "state.sqlite3"), nil
}

// newApp opens the state database and wires up the data-access service.
// In mock mode the seeded local store serves every operation; otherwise a
// REST client does, carrying the persisted session token.
func newApp(ctx context.Context, baseURL, stateOverride string, mock bool) (*app, error) {
	path, err := statePath(stateOverride)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("preparing state database: %w", err)
	}

	slog.Info("state database ready", "path", path)

	a := &app{session: session.New(database), db: database}

	if mock {
		if err := store.Seed(ctx, database); err != nil {
			database.Close()
			return nil, fmt.Errorf("seeding demo data: %w", err)
		}
		local, err := store.NewLocal(ctx, database)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("preparing local store: %w", err)
		}
		slog.Info("using seeded local store")
		a.svc = query.NewCached(local)
		return a, nil
	}

	rest := client.New(baseURL)
	if sess := a.session.Load(ctx); sess != nil {
		rest.SetToken(sess.Token)
		slog.Info("resumed session", "email", sess.Email)
	}
	a.rest = rest
	a.svc = query.NewCached(rest)
	return a, nil
}

func main() {
	fs := flag.NewFlagSet("lostfound", flag.ContinueOnError)

	defaultURL := os.Getenv("LOSTFOUND_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8000"
	}

	var baseURL string
	fs.StringVar(&baseURL, "url", defaultURL, "")

	var mock bool
	fs.BoolVar(&mock, "mock", false, "")

	var stateOverride string
	fs.StringVar(&stateOverride, "state", "", "")

	var verbose bool
	fs.BoolVar(&verbose, "verbose", false, "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, usageText)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := setupLogger(verbose, logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	ctx := context.Background()
	a, err := newApp(ctx, baseURL, stateOverride, mock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	cmd, args := fs.Arg(0), fs.Args()[1:]

	var runErr error
	switch cmd {
	case "items":
		runErr = a.runItems(ctx, args)
	case "item":
		runErr = a.runItem(ctx, args)
	case "report":
		runErr = a.runReport(ctx, args)
	case "update":
		runErr = a.runUpdate(ctx, args)
	case "mark":
		runErr = a.runMark(ctx, args)
	case "flag":
		runErr = a.runFlag(ctx, args)
	case "delete":
		runErr = a.runDelete(ctx, args)
	case "mine":
		runErr = a.runMine(ctx, args)
	case "login":
		runErr = a.runLogin(ctx, args)
	case "logout":
		runErr = a.runLogout(ctx)
	case "whoami":
		runErr = a.runWhoami(ctx)
	case "register":
		runErr = a.runRegister(ctx, args)
	case "admin":
		runErr = a.runAdmin(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		fs.Usage()
		os.Exit(1)
	}

	if runErr != nil {
		if runErr == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}
