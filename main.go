// Command qrrapido serves the QRRapido generator page and API, and renders
// QR codes from the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"
)

func main() {
	root := &ffcli.Command{
		Name:       "qrrapido",
		ShortUsage: "qrrapido <serve|generate> [flags]",
		ShortHelp:  "QR code generator",
		FlagSet:    flag.NewFlagSet("qrrapido", flag.ExitOnError),
		Subcommands: []*ffcli.Command{
			newServeCmd(),
			newGenerateCmd(os.Stdout, os.Stderr),
		},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}

	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "qrrapido:", err)
		os.Exit(1)
	}
}
