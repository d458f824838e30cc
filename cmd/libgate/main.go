// Command libgate is the library's entry page in a terminal: choose
// librarian mode, or enter a patron email to be sent to that patron's page.
//
//	libgate --base_url https://library.example
//	printf '2\nreader@example.com\n' | libgate --locale ru
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dalemusser/libgate/app"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

func main() {
	err := app.Run(context.Background(), app.Options{
		Name:           "libgate",
		Args:           os.Args[1:],
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Interactive:    term.IsTerminal(int(os.Stdin.Fd())),
		RuntimeMetrics: true,
	})
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode maps Run's error to a process status. --help is a clean exit;
// any other error is printed, since Run does not log every failure.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
		return 0
	default:
		fmt.Fprintf(stderr, "libgate: %v\n", err)
		return 1
	}
}
