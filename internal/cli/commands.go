package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"ledger/internal/backend"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/report"
	"ledger/internal/services"
)

// ErrUsage is returned when the command line cannot be understood. The
// usage text has already been written.
var ErrUsage = errors.New("invalid usage")

const usage = `Usage: ledger <command> [flags]

Commands:
  init     create the ledger table if it does not exist
  add      record a transaction
  update   overwrite the transaction at an index
  delete   remove the transaction at an index
  query    list transactions and totals within a date range
  list     list every transaction with its index
  mirror   copy the ledger to the configured mirror sinks

Run "ledger <command> -h" for the flags of a command.
`

// Env carries what every subcommand needs.
type Env struct {
	Config  *config.Config
	Factory backend.Factory
	Logger  *log.Logger
	Out     io.Writer
	ErrOut  io.Writer

	// Today supplies the default date for add.
	Today func() core.Date
}

type command func(ctx context.Context, env *Env, args []string) error

var commands = map[string]command{
	"init":   runInit,
	"add":    runAdd,
	"update": runUpdate,
	"delete": runDelete,
	"query":  runQuery,
	"list":   runList,
	"mirror": runMirror,
}

// Run dispatches args[0] to its subcommand.
func Run(ctx context.Context, env *Env, args []string) error {
	if env.Out == nil {
		env.Out = io.Discard
	}
	if env.ErrOut == nil {
		env.ErrOut = io.Discard
	}
	if env.Logger == nil {
		env.Logger = log.New(log.Config{Output: io.Discard})
	}
	if env.Today == nil {
		env.Today = core.Today
	}
	if len(args) == 0 {
		fmt.Fprint(env.ErrOut, usage)
		return ErrUsage
	}
	name := args[0]
	if name == "-h" || name == "--help" || name == "help" {
		fmt.Fprint(env.Out, usage)
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(env.ErrOut, "unknown command %q\n\n%s", name, usage)
		return ErrUsage
	}
	env.Logger.Debug("Running command", "command", name)
	return cmd(ctx, env, args[1:])
}

func runInit(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("init", env)
	if err := parse(fs, args); err != nil {
		return err
	}
	return env.withService(ctx, func(svc *services.LedgerService) error {
		if err := svc.Init(ctx); err != nil {
			return err
		}
		fmt.Fprintln(env.Out, "Ledger initialized")
		return nil
	})
}

func runAdd(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("add", env)
	in := bindTransactionFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	tx, err := in.transaction(env.Config.DateFormat(), env.Today())
	if err != nil {
		return err
	}
	return env.withService(ctx, func(svc *services.LedgerService) error {
		if err := svc.Init(ctx); err != nil {
			return err
		}
		if _, err := svc.Add(ctx, tx); err != nil {
			return err
		}
		fmt.Fprintln(env.Out, "Entry added successfully")
		return nil
	})
}

func runUpdate(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("update", env)
	index := fs.Int("index", 0, "position of the transaction to update (required)")
	in := bindTransactionFlags(fs)
	if err := parse(fs, args, "index", "date"); err != nil {
		return err
	}
	tx, err := in.transaction(env.Config.DateFormat(), core.Date{})
	if err != nil {
		return err
	}
	return env.withService(ctx, func(svc *services.LedgerService) error {
		out, err := svc.Update(ctx, *index, tx)
		if err != nil {
			return err
		}
		if out == ledger.Success {
			fmt.Fprintln(env.Out, "Entry updated successfully")
		} else {
			fmt.Fprintln(env.Out, "Invalid index. No entry updated.")
		}
		return nil
	})
}

func runDelete(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("delete", env)
	index := fs.Int("index", 0, "position of the transaction to delete (required)")
	if err := parse(fs, args, "index"); err != nil {
		return err
	}
	return env.withService(ctx, func(svc *services.LedgerService) error {
		out, err := svc.Delete(ctx, *index)
		if err != nil {
			return err
		}
		switch out {
		case ledger.Success:
			fmt.Fprintln(env.Out, "Entry deleted successfully")
		case ledger.NoData:
			fmt.Fprintln(env.Out, "No data available to delete.")
		default:
			fmt.Fprintln(env.Out, "Invalid index. No entry deleted.")
		}
		return nil
	})
}

func runQuery(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("query", env)
	start := fs.String("start", "", "first date of the range, inclusive (required)")
	end := fs.String("end", "", "last date of the range, inclusive (required)")
	match := fs.String("match", "", "keep only transactions whose description fuzzily matches")
	chart := fs.Bool("chart", false, "also print the daily income/expense series")
	if err := parse(fs, args, "start", "end"); err != nil {
		return err
	}
	format := env.Config.DateFormat()
	from, to, err := ledger.ParseRange(format, *start, *end)
	if err != nil {
		return err
	}

	return env.withService(ctx, func(svc *services.LedgerService) error {
		rep, err := svc.Report(ctx, *start, *end, *match)
		if err != nil {
			return err
		}
		if !rep.Found {
			fmt.Fprintln(env.Out, "No transaction found in the given date range.")
			return nil
		}
		fmt.Fprintf(env.Out, "Transaction from %s to %s\n", format.Format(from), format.Format(to))
		if err := report.WriteEntries(env.Out, rep.Entries, format); err != nil {
			return err
		}
		fmt.Fprintln(env.Out)
		if err := report.WriteSummary(env.Out, rep.Summary, env.Config.CurrencySymbol); err != nil {
			return err
		}
		if *chart {
			fmt.Fprintln(env.Out)
			return report.WriteSeries(env.Out, rep.Series, format)
		}
		return nil
	})
}

func runList(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("list", env)
	if err := parse(fs, args); err != nil {
		return err
	}
	return env.withService(ctx, func(svc *services.LedgerService) error {
		entries, err := svc.List(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(env.Out, "No transactions recorded.")
			return nil
		}
		return report.WriteEntries(env.Out, entries, env.Config.DateFormat())
	})
}

func runMirror(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("mirror", env)
	if err := parse(fs, args); err != nil {
		return err
	}
	cfg, err := backend.FromAppConfig(env.Config)
	if err != nil {
		return err
	}
	res, err := env.Factory.CreateBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup(env.Logger, res.Cleanup)

	sinks, err := env.Factory.CreateSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup(env.Logger, sinks.Cleanup)
	if len(sinks.Sinks) == 0 {
		return errors.New("no mirror sinks configured: set MIRROR_SQLITE or GOOGLE_SPREADSHEET_ID")
	}

	m := services.NewMirror(res.Store, env.Logger, sinks.Sinks...)
	n, err := m.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Mirrored %d transactions to %s\n", n, strings.Join(m.Sinks(), ", "))
	return nil
}

// withService builds the configured backend, runs fn and releases it.
func (env *Env) withService(ctx context.Context, fn func(*services.LedgerService) error) error {
	cfg, err := backend.FromAppConfig(env.Config)
	if err != nil {
		return err
	}
	res, err := env.Factory.CreateBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup(env.Logger, res.Cleanup)
	return fn(services.NewLedgerService(res.Store, res.Publisher, env.Logger))
}

func cleanup(logger *log.Logger, fn backend.CleanupFunc) {
	if fn == nil {
		return
	}
	if err := fn(); err != nil {
		logger.Warn("Cleanup failed", log.FieldError, err)
	}
}

func newFlagSet(name string, env *Env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.ErrOut)
	return fs
}

// parse parses args and checks that every required flag was given.
func parse(fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return ErrUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return ErrUsage
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, name := range required {
		if !set[name] {
			fmt.Fprintf(fs.Output(), "missing required flag -%s\n", name)
			fs.Usage()
			return ErrUsage
		}
	}
	return nil
}
