// Command examctl is the operator CLI for the exam-prep API: it runs
// migrations, inspects the catalog and a learner's progress, and mints
// access tokens for testing.
//
// Usage:
//
//	examctl migrate up|down|status|version
//	examctl packs [-system ielts|toefl|general]
//	examctl progress -user <uuid>
//	examctl token -user <uuid>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// errUsage marks errors caused by bad arguments; they print the usage text.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		color.New(color.FgRed).Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "examctl: %v\n", err)
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run dispatches args to a subcommand, writing its output to out.
func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", errUsage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		return runMigrate(ctx, rest, out)
	case "packs":
		return runPacks(ctx, rest, out)
	case "progress":
		return runProgress(ctx, rest, out)
	case "token":
		return runToken(ctx, rest, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func printUsage(w io.Writer) {
	color.New(color.Bold).Fprintln(w, "examctl - exam-prep operator tool")
	fmt.Fprintln(w, `
Commands:
  migrate up|down|status|version   manage the database schema
  packs [-system ielts]            list packs and the exam serving each section
  progress -user <uuid>            show a learner's per-pack progress
  token -user <uuid>               mint an access token for a user

Configuration comes from config.yaml, .env and EXAMPREP_* variables.`)
}
