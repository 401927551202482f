package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// cliFlags holds the parsed command line.
type cliFlags struct {
	config  string
	format  string
	serve   bool
	addr    string
	verbose bool
	version bool
}

// parseFlags parses args (excluding the program name).
func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet("markedit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &cliFlags{}
	fs.StringVarP(&f.config, "config", "c", "markedit.yaml", "book project config file")
	fs.StringVarP(&f.format, "format", "f", "all", "build target: epub, pdf, html, or all")
	fs.BoolVar(&f.serve, "serve", false, "run the admin server instead of a one-shot build")
	fs.StringVar(&f.addr, "addr", ":8000", "admin server listen address")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: markedit [flags]\n\nBuilds the book described by the config file, or serves the admin API.\n\nFlags:\n%s", fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
