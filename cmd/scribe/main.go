// Command scribe uploads audio for transcription and works with the
// results from the command line.
//
//	scribe [global flags] <command> [flags] [args]
//
// Run "scribe help" for the command list.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/kbukum/scribekit/bootstrap"
	"github.com/kbukum/scribekit/config"
	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/scribe"
	"github.com/kbukum/scribekit/version"
)

// env is what a command runs with.
type env struct {
	client *scribe.Client
	out    io.Writer
	errOut io.Writer
	in     io.Reader
	json   bool
}

type command struct {
	usage string
	run   func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"transcribe": {"[-lang ko|en] [-type sermon|phonecall|conversation] [-correct] [-summary short|detailed] <file>", runTranscribe},
	"status":     {"<task_id>", runStatus},
	"result":     {"<task_id>", runResult},
	"history":    {"", runHistory},
	"records":    {"", runRecords},
	"summarize":  {"[-kind short|detailed] <file|->", runSummarize},
	"draft":      {"-category <name> [-lang ko|en] <file|->", runDraft},
	"save":       {"-category <name> -title <title> [-task <task_id>] <file|->", runSave},
	"login":      {"-email <email> [-password <password>]", runLogin},
	"signup":     {"-email <email> [-password <password>] [-name <name>]", runSignup},
	"logout":     {"", runLogout},
	"whoami":     {"", runWhoami},
	"oauth-url":  {"-provider <name>", runOAuthURL},
	"health":     {"", runHealth},
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("scribe", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configFile := fs.String("config", "", "config `file` (default: ./config.yml or the user config dir)")
	envFile := fs.String("env-file", "", "dotenv `file` to load")
	baseURL := fs.String("api", "", "API base `url`, overrides api.base_url")
	store := fs.String("session", "", "credential store: memory, file or redis")
	debug := fs.Bool("debug", false, "log debug output")
	asJSON := fs.Bool("json", false, "print results as JSON")
	fs.Usage = func() { usage(errOut, fs) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	name, cmdArgs := fs.Arg(0), fs.Args()
	if len(cmdArgs) > 0 {
		cmdArgs = cmdArgs[1:]
	}

	switch name {
	case "", "help":
		usage(errOut, fs)
		if name == "" {
			return 2
		}
		return 0
	case "version":
		fmt.Fprintln(out, version.Get().String())
		return 0
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(errOut, "scribe: unknown command %q\n", name)
		usage(errOut, fs)
		return 2
	}

	cfg := scribe.DefaultConfig()
	cfg.Logging.Level = "warn"
	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	if err := config.LoadConfig("scribe", cfg, opts...); err != nil {
		fmt.Fprintf(errOut, "scribe: %v\n", err)
		return 1
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}
	if *store != "" {
		cfg.Session.Store = *store
	}
	if *debug {
		cfg.Debug = true
		cfg.Logging.Level = "debug"
	}

	app, err := bootstrap.NewApp(cfg, bootstrap.WithQuiet())
	if err != nil {
		fmt.Fprintf(errOut, "scribe: %v\n", err)
		return 1
	}
	client, err := scribe.New(cfg, scribe.WithLogger(app.Logger))
	if err != nil {
		fmt.Fprintf(errOut, "scribe: %v\n", err)
		return 1
	}
	if err := app.RegisterComponent(client); err != nil {
		fmt.Fprintf(errOut, "scribe: %v\n", err)
		return 1
	}

	e := &env{client: client, out: out, errOut: errOut, in: in, json: *asJSON}
	err = app.RunTask(ctx, func(ctx context.Context) error {
		return cmd.run(ctx, e, cmdArgs)
	})
	if err != nil {
		fmt.Fprintf(errOut, "scribe %s: %s\n", name, errors.UserMessage(err))
		if errors.HasCode(err, errors.ErrCodeInvalidInput) {
			return 2
		}
		return 1
	}
	return 0
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: scribe [global flags] <command> [flags] [args]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-11s %s\n", n, commands[n].usage)
	}
	fmt.Fprintf(w, "  %-11s\n", "version")
	fmt.Fprintln(w, "\nglobal flags:")
	fs.PrintDefaults()
	fmt.Fprintln(w, "\nEnvironment variables override config keys, with the SCRIBE_ prefix, e.g. SCRIBE_API_BASE_URL or SCRIBE_SESSION_STORE.")
}

// newFlags returns a flag set for a subcommand that reports errors instead
// of exiting.
func newFlags(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.errOut)
	return fs
}

// parse parses args and converts flag errors to validation errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Validation(strings.TrimSpace(err.Error()))
	}
	return nil
}
