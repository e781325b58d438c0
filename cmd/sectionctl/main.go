// Command sectionctl reads and writes sections and talks to devices through
// the translation boundaries, using the backend and device named in its
// configuration file.
//
// Every failure ends the command with a status chosen by its error kind, so
// scripts can branch on the exit code alone.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/jmgilman/go/boundary/errors"
)

// Exit statuses by error kind.
const (
	exitOK                = 0
	exitFailure           = 1
	exitInvalidArgument   = 2
	exitNotFound          = 3
	exitPermissionDenied  = 4
	exitDeviceUnavailable = 5
	exitStorageFailure    = 6
	exitTimeout           = 7
	exitCancelled         = 130
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	a := newApp(stdin, stdout, stderr)
	cmd := a.rootCommand()
	cmd.SetArgs(args)

	return a.finish(ctx, cmd.ExecuteContext(ctx))
}

func exitCode(kind errors.ErrorKind) int {
	switch kind {
	case errors.KindInvalidArgument:
		return exitInvalidArgument
	case errors.KindNotFound:
		return exitNotFound
	case errors.KindPermissionDenied:
		return exitPermissionDenied
	case errors.KindDeviceUnavailable:
		return exitDeviceUnavailable
	case errors.KindStorageFailure:
		return exitStorageFailure
	case errors.KindTimeout:
		return exitTimeout
	case errors.KindCancelled:
		return exitCancelled
	default:
		return exitFailure
	}
}
