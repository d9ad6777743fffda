// Command gamevault tracks a personal game collection and wishlist.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/and161185/gamevault/internal/config"
	"github.com/and161185/gamevault/internal/migrate"
	"github.com/and161185/gamevault/internal/model"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// errUsage is returned by commands that were called with bad arguments.
var errUsage = errors.New("usage")

func usage() {
	fmt.Fprint(os.Stderr, usageText)
	os.Exit(2)
}

const usageText = `gamevault
Usage:
  gamevault [-env-file file] [-dsn url] [-v] <cmd> [args]

Commands:
  version
  migrate    [-status]
  signup     -email <email> [-p <password>] [-name <display name>]
  signin     -email <email> [-p <password>]
  signout
  whoami
  profile    -name <display name>
  list       [-tab collection|favorites|wishlist] [-q text] [-platform name] [-sort key] [-json]
  summary
  add        -title <t> -platform <p> [-wishlist] [-from <catalogue id>] [fields]
  edit       -id <id> [fields]
  fav        -id <id>
  move       -id <id>
  rm         -id <id>
  search     <query>
  details    -id <catalogue id>
  platforms
  shell

Fields: -cover -year -date YYYY-MM-DD -publisher -notes -condition -paid -value -fav
Ids may be shortened to any unique prefix.
`

// main parses global flags and dispatches the subcommand.
func main() {
	envFile := flag.String("env-file", "", "load settings from this .env file")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (overrides GAMEVAULT_DATABASE_URL)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fail(err)
	}
	if *dsn != "" {
		cfg.DatabaseURL = *dsn
	}
	os.Exit(run(cfg, *verbose, flag.Arg(0), flag.Args()[1:]))
}

// run executes one command and returns the process exit code.
func run(cfg *config.Config, verbose bool, cmd string, args []string) int {
	logger := newLogger(cfg, verbose)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "version":
		fmt.Printf("gamevault %s (%s)\n", version, buildDate)
		return 0

	case "platforms":
		for _, p := range model.Platforms {
			fmt.Println(p)
		}
		return 0

	case "migrate":
		return exitCode(runMigrate(ctx, cfg, args, os.Stdout))

	case "search", "details":
		lookup, closeLookup := newLookup(cfg, logger)
		defer closeLookup()
		a := &app{lookup: lookup, out: os.Stdout, log: logger}
		return exitCode(a.dispatch(ctx, cmd, args))
	}

	if _, ok := commands[cmd]; !ok && cmd != "shell" {
		fmt.Fprint(os.Stderr, usageText)
		return 2
	}
	if err := cfg.RequireStore(); err != nil {
		return exitCode(err)
	}

	a, err := newApp(ctx, cfg, logger, os.Stdout)
	if err != nil {
		return exitCode(err)
	}
	defer a.Close()

	if cmd == "shell" {
		return exitCode(a.shell(ctx))
	}
	return exitCode(a.dispatch(ctx, cmd, args))
}

func runMigrate(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	status := fs.Bool("status", false, "print the applied schema version only")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if cfg.DatabaseURL == "" {
		return errors.New("GAMEVAULT_DATABASE_URL is not set")
	}
	if !*status {
		if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	}
	v, err := migrate.Version(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "schema version %d\n", v)
	return nil
}

func newLogger(cfg *config.Config, verbose bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Local() || verbose {
		logger, err = zap.NewDevelopment()
	} else {
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
		logger, err = zc.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// exitCode maps a command outcome to a process status. Errors other than
// bad usage are printed unless the command already reported them.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	case errors.Is(err, errReported):
		return 1
	default:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
