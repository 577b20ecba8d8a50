package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"schemap/internal/cli"
	"schemap/internal/dispatch"
	"schemap/internal/fsys"
	"schemap/internal/pipeline"
	"schemap/internal/report"
	"schemap/internal/settings"
)

func main() {
	os.Exit(run(os.Args[1:], os.Environ(), os.Stdout, os.Stderr))
}

// run orchestrates the full execution flow and returns an exit code:
//
//	0 - success
//	1 - at least one validation failed
//	2 - usage or settings error
//	3 - validator executable unavailable
//	4 - invalid start directory for at least one document
//
// It is separated from main() to enable testing.
func run(args []string, environ []string, stdout, stderr io.Writer) int {
	cmd, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 2
	}

	s, origins, err := settings.Load(cmd.SettingsPath, environ)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 2
	}

	// Command-line flags beat the file and the environment.
	if cmd.DirPattern != "" {
		s.DirPattern, origins.DirPattern = cmd.DirPattern, "flag"
	}
	if cmd.FilePattern != "" {
		s.FilePattern, origins.FilePattern = cmd.FilePattern, "flag"
	}
	if cmd.Validator != "" {
		s.ValidatorCommand, origins.Validator = cmd.Validator, "flag"
	}

	cfg, err := s.Compile()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 2
	}

	if cmd.Subcommand == cli.SubcommandSettings {
		printSettings(stdout, s, origins, cmd.JSONOutput)
		return 0
	}

	p := pipeline.New(fsys.NewOS(), cfg)

	var (
		results      []pipeline.Result
		invalidStart bool
	)
	for _, doc := range cmd.Documents {
		abs, err := filepath.Abs(doc)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", doc, err)
			invalidStart = true
			continue
		}

		res, err := p.Resolve(abs)
		if err != nil {
			// An invalid starting point fails this document only;
			// the remaining documents still get resolved.
			fmt.Fprintf(stderr, "Error: %v\n", err)
			invalidStart = true
			continue
		}

		if !cmd.Quiet {
			report.Warnings(stderr, res)
		}
		results = append(results, res)
	}

	switch cmd.Subcommand {
	case cli.SubcommandResolve:
		if cmd.JSONOutput {
			data, err := report.ResolutionJSON(results)
			if err != nil {
				fmt.Fprintln(stderr, "Error:", err)
				return 2
			}
			fmt.Fprintln(stdout, string(data))
		} else {
			for _, res := range results {
				report.Resolution(stdout, res)
			}
		}
		if invalidStart {
			return 4
		}
		return 0

	case cli.SubcommandCheck:
		d := dispatch.New(cfg.ValidatorCommand)
		if !d.Available() {
			fmt.Fprintf(stderr, "Error: validator not found: %s\n", d.Command())
			return 3
		}

		var reports []dispatch.Report
		for _, res := range results {
			reports = append(reports, d.Dispatch(context.Background(), res.DocumentPath, res.Schemas)...)
		}

		if cmd.JSONOutput {
			data, err := report.ValidationJSON(reports)
			if err != nil {
				fmt.Fprintln(stderr, "Error:", err)
				return 2
			}
			fmt.Fprintln(stdout, string(data))
		} else {
			report.Validation(stdout, reports)
		}

		for _, r := range reports {
			if !r.Passed() {
				return 1
			}
		}
		if invalidStart {
			return 4
		}
		return 0
	}

	return 2
}

// printSettings shows the effective knobs and where each one came from.
func printSettings(w io.Writer, s settings.Settings, o settings.Origins, jsonOut bool) {
	if jsonOut {
		fmt.Fprintf(w, `{"dirPattern":%q,"filePattern":%q,"validator":%q}`+"\n",
			s.DirPattern, s.FilePattern, s.ValidatorCommand)
		return
	}
	fmt.Fprintf(w, "dirPattern:  %s  (%s)\n", s.DirPattern, o.DirPattern)
	fmt.Fprintf(w, "filePattern: %s  (%s)\n", s.FilePattern, o.FilePattern)
	fmt.Fprintf(w, "validator:   %s  (%s)\n", s.ValidatorCommand, o.Validator)
}
