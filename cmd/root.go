// Package cmd implements the CLI command structure for todolist.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/config"
	"github.com/nibzard/todolist-go/internal/exitcode"
	"github.com/nibzard/todolist-go/internal/logging"
	"github.com/nibzard/todolist-go/internal/session"
	"github.com/nibzard/todolist-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// stdoutIsTTY reports whether the editor can take over the terminal.
var stdoutIsTTY = func() bool { return ui.IsTTY(os.Stdout) }

// cli carries the resolved config and output streams through a single
// invocation.
type cli struct {
	cfg    *config.Config
	cws    *config.ConfigWithSources
	stdout io.Writer
	stderr io.Writer
}

// Run executes the todolist CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todolist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return exitcode.Wrap(exitcode.ConfigError, fmt.Errorf("loading config: %w", err))
	}

	c := &cli{
		cfg:    cws.Config,
		cws:    cws,
		stdout: stdout,
		stderr: stderr,
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return c.versionCommand()
	}

	// No args, or a leading flag, opens the editor.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	err = c.dispatch(ctx, fs, subcommand, remainingArgs)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

func (c *cli) dispatch(ctx context.Context, fs *flag.FlagSet, subcommand string, args []string) error {
	switch subcommand {
	case "tui":
		return c.tuiCommand(ctx, args)
	case "add":
		return c.addCommand(ctx, args)
	case "rm", "remove":
		return c.removeCommand(ctx, args)
	case "edit":
		return c.editCommand(ctx, args)
	case "up":
		return c.moveCommand(ctx, "up", args)
	case "down":
		return c.moveCommand(ctx, "down", args)
	case "toggle":
		return c.toggleCommand(ctx, args)
	case "reset":
		return c.resetCommand(ctx, args)
	case "list", "ls":
		return c.listCommand(ctx, args)
	case "export":
		return c.exportCommand(ctx, args)
	case "doctor":
		return c.doctorCommand(args)
	case "config":
		return c.configCommand(args)
	case "logs", "tail":
		return c.logsCommand(ctx, args)
	case "version":
		return c.versionCommand()
	case "help":
		printUsage(fs, c.stdout)
		return nil
	default:
		fmt.Fprintf(c.stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, c.stderr)
		return exitcode.Wrap(exitcode.UserError, fmt.Errorf("unknown command: %s", subcommand))
	}
}

// tuiCommand launches the interactive editor.
func (c *cli) tuiCommand(ctx context.Context, args []string) error {
	fs := c.flagSet("tui")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := c.fileArg(fs.Args()); err != nil {
		return err
	}
	if !stdoutIsTTY() {
		return exitcode.Wrap(exitcode.UserError, fmt.Errorf("tui requires a TTY; use list, add, toggle and friends in scripts"))
	}

	runLog, err := logging.NewRunLogger(c.cfg.LogDir, c.cfg.TodoFile)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer runLog.Close()

	logger := logging.NewFromConfig(runLog.Writer(), c.cfg.LogLevel, c.cfg.LogFormat, true, c.cfg.LogCaller)
	logger.Info("session started", "run_id", runLog.RunID, "version", Version, "file", c.cfg.TodoFile)

	sess, err := c.openSession(ctx, logger, runLog.Writer())
	if err != nil {
		logger.Error("open failed", "err", err)
		return err
	}

	err = ui.RunTUI(ctx, sess,
		ui.WithMouse(c.cfg.UI.Mouse),
		ui.WithDoubleClick(c.cfg.DoubleClick()),
		ui.WithConfirmReset(c.cfg.UI.ConfirmReset),
	)
	if err != nil {
		logger.Error("session ended", "err", err)
		return err
	}
	logger.Info("session ended", "tasks", sess.Len())
	return nil
}

// logsCommand tails the latest TUI session log for the task file.
func (c *cli) logsCommand(ctx context.Context, args []string) error {
	fs := c.flagSet("logs")
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := c.fileArg(fs.Args()); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(c.cfg.LogDir, c.cfg.TodoFile)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(c.stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(c.stderr, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(c.stderr, "(Ctrl+C to stop)")
	}
	err = logging.TailLog(ctx, c.stdout, logPath, *n, *follow)
	if *follow && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// configCommand prints the effective configuration and where each value came from.
func (c *cli) configCommand(args []string) error {
	fs := c.flagSet("config")
	example := fs.Bool("example", false, "Print an example config file")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return exitcode.Wrap(exitcode.UserError, fmt.Errorf("unexpected arguments: %v", fs.Args()))
	}
	if *example {
		fmt.Fprint(c.stdout, config.ExampleConfig())
		return nil
	}

	fmt.Fprintln(c.stdout, "Config files:")
	if len(c.cws.Files) == 0 {
		fmt.Fprintln(c.stdout, "  (none)")
	}
	for _, f := range c.cws.Files {
		fmt.Fprintf(c.stdout, "  %s\n", f)
	}
	fmt.Fprintln(c.stdout)

	entries := c.cws.Entries()
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Key))
	}
	for _, e := range entries {
		value := e.Value
		if value == "" {
			value = `""`
		}
		fmt.Fprintf(c.stdout, "%-*s  %s  %s\n", width, e.Key, value, dim("("+string(e.Source)+")"))
	}
	return nil
}

// versionCommand prints version information.
func (c *cli) versionCommand() error {
	fmt.Fprintf(c.stdout, "todolist version %s\n", Version)
	return nil
}

// openSession loads the configured task file. Hook output goes to hookOut.
func (c *cli) openSession(ctx context.Context, logger *log.Logger, hookOut io.Writer) (*session.Session, error) {
	schema, err := c.cfg.Schema()
	if err != nil {
		return nil, exitcode.Wrap(exitcode.ConfigError, err)
	}
	layout, err := c.cfg.Layout()
	if err != nil {
		return nil, exitcode.Wrap(exitcode.ConfigError, err)
	}
	return session.Open(ctx, session.Options{
		Path:             c.cfg.TodoFile,
		Schema:           schema,
		Layout:           layout,
		KeepStatusOnEdit: c.cfg.KeepStatusOnEdit,
		HookCommand:      c.cfg.HookCommand,
		HookOutput:       hookOut,
		Logger:           logger,
	})
}

// consoleLogger logs to stderr. One-shot commands stay quiet unless a log
// level was configured explicitly.
func (c *cli) consoleLogger() *log.Logger {
	level := c.cfg.LogLevel
	if c.cws.Sources["log_level"] == config.SourceDefault {
		level = "warn"
	}
	return logging.NewFromConfig(c.stderr, level, c.cfg.LogFormat, c.cfg.LogTimestamps, c.cfg.LogCaller)
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("todolist "+name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// fileArg applies an optional trailing task file argument.
func (c *cli) fileArg(args []string) error {
	if len(args) > 1 {
		return exitcode.Wrap(exitcode.UserError, fmt.Errorf("unexpected arguments: %v", args[1:]))
	}
	if len(args) == 1 {
		path := args[0]
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.cfg.ProjectRoot, path)
		}
		c.cfg.TodoFile = path
	}
	return nil
}

// parseArgs parses subcommand flags. Parse errors are user errors; -h is
// passed through as flag.ErrHelp.
func parseArgs(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return exitcode.Wrap(exitcode.UserError, err)
	}
	return nil
}

func usageError(format string, a ...any) error {
	return exitcode.Wrap(exitcode.UserError, fmt.Errorf(format, a...))
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todolist - a to-do list editor with status flags")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todolist [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui [file]                Open the interactive editor (default command)")
	fmt.Fprintln(w, "  add <label>               Append a task")
	fmt.Fprintln(w, "  rm <n>                    Remove task n")
	fmt.Fprintln(w, "  edit <n> <label>          Replace the label of task n (clears its flags)")
	fmt.Fprintln(w, "  up <n>, down <n>          Move task n one position")
	fmt.Fprintln(w, "  toggle <n> [flag]         Flip a status flag (name, title, or number)")
	fmt.Fprintln(w, "  reset                     Clear every status flag")
	fmt.Fprintln(w, "  list [file]               Print the list")
	fmt.Fprintln(w, "  export [-format f] [-out file]")
	fmt.Fprintln(w, "                            Export as json, csv, markdown, or pdf")
	fmt.Fprintln(w, "  doctor [file]             Check config and task file validity")
	fmt.Fprintln(w, "  config [-example]         Show effective config and its sources")
	fmt.Fprintln(w, "  logs [-n N] [-f]          Tail the latest editor session log")
	fmt.Fprintln(w, "  version                   Show version information")
	fmt.Fprintln(w, "  help                      Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Task positions start at 1.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 user error, 2 config error, 3 storage error, 130 interrupted")
}
