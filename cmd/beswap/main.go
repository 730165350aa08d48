package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

const usageLine = "Usage: beswap <checkpoint_file> <converted_file>"

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	f := &appFlags{}
	return &cli.Command{
		Name:      "beswap",
		Usage:     "Convert a llama2 checkpoint to the opposite byte order",
		ArgsUsage: "<checkpoint_file> <converted_file>",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     append(append(orderFlags(f), outputFlags(f)...), loggingFlags(f)...),
		Before:    setup(f, stderr),
		Action:    convertAction(f, stdout),
		// main owns printing and the exit code.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			inspectCmd(f, stdout),
			verifyCmd(f, stdout),
			versionCmd(stdout),
		},
	}
}
