// Command hids trains the threat detection model and analyzes session
// records from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Emmyme/hids-cli/internal/infrastructure/config"
	"github.com/Emmyme/hids-cli/internal/presentation/cli"
	"github.com/Emmyme/hids-cli/pkg/observability"
)

const usage = `Usage: hids <command> [flags]

Commands:
  train      train the model on a labelled CSV dataset and save it
  predict    analyze every record of a CSV file
  demo       analyze three built-in sample records
  info       show whether a trained model is available
  rules      list the attack classification rules
  generate   write a synthetic labelled dataset to CSV or Kafka
  token      mint a bearer token for hidsd (requires JWT_SECRET or JWT_PRIVATE_KEY_FILE)
  keys       write an RSA key pair for signing and validating tokens
  certs      write a self-signed development CA and server certificate

Run 'hids <command> -h' for command flags.
`

// errUsage marks errors already explained by the flag package.
var errUsage = errors.New("usage")

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    *cli.Renderer
	stdout io.Writer
	stderr io.Writer
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"train":    runTrain,
	"predict":  runPredict,
	"demo":     runDemo,
	"info":     runInfo,
	"rules":    runRules,
	"generate": runGenerate,
	"token":    runToken,
	"keys":     runKeys,
	"certs":    runCerts,
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	a := &app{
		cfg: cfg,
		logger: observability.InitLogger(observability.LogConfig{
			Level:       cfg.LogLevel,
			Format:      cfg.LogFormat,
			ServiceName: "hids",
			Output:      stderr,
		}),
		out:    cli.NewRenderer(stdout),
		stdout: stdout,
		stderr: stderr,
	}

	if err := cmd(ctx, a, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := a.out.Err(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("hids "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(a.stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return errUsage
	}
	return nil
}
