// Package cli parses the command line into a Command.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSubcommand is returned when no subcommand is provided.
var ErrNoSubcommand = errors.New("missing subcommand: usage: schemap <resolve|check|settings> [flags] [document...]")

// ErrNoDocuments is returned when resolve/check is given nothing to work on.
var ErrNoDocuments = errors.New("no documents provided")

// ErrMissingFlagValue is returned when a flag requires a value but none is provided.
var ErrMissingFlagValue = errors.New("flag requires a value")

// Subcommand represents the CLI subcommand.
type Subcommand string

const (
	SubcommandResolve  Subcommand = "resolve"
	SubcommandCheck    Subcommand = "check"
	SubcommandSettings Subcommand = "settings"
)

// Command represents the parsed CLI input.
type Command struct {
	Subcommand Subcommand
	Documents  []string // documents to resolve or check

	// Settings overrides
	SettingsPath string // --settings <path>
	DirPattern   string // --dir-pattern <regexp>
	FilePattern  string // --file-pattern <regexp>
	Validator    string // --validator <command>

	// Output control
	JSONOutput bool // --json
	Quiet      bool // --quiet: suppress warnings
}

// ParseArgs parses CLI arguments into a Command. It expects args to be
// os.Args[1:]. Everything after the flags is taken as document paths.
func ParseArgs(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, ErrNoSubcommand
	}

	var cmd Command
	switch args[0] {
	case string(SubcommandResolve), string(SubcommandCheck), string(SubcommandSettings):
		cmd.Subcommand = Subcommand(args[0])
	default:
		return Command{}, ErrNoSubcommand
	}

	i := 1
	for i < len(args) {
		arg := args[i]

		if !strings.HasPrefix(arg, "--") {
			break
		}

		flagName := strings.TrimPrefix(arg, "--")
		switch flagName {
		case "settings":
			if i+1 >= len(args) {
				return Command{}, ErrMissingFlagValue
			}
			i++
			cmd.SettingsPath = args[i]
		case "dir-pattern":
			if i+1 >= len(args) {
				return Command{}, ErrMissingFlagValue
			}
			i++
			cmd.DirPattern = args[i]
		case "file-pattern":
			if i+1 >= len(args) {
				return Command{}, ErrMissingFlagValue
			}
			i++
			cmd.FilePattern = args[i]
		case "validator":
			if i+1 >= len(args) {
				return Command{}, ErrMissingFlagValue
			}
			i++
			cmd.Validator = args[i]
		case "json":
			cmd.JSONOutput = true
		case "quiet":
			cmd.Quiet = true
		default:
			return Command{}, fmt.Errorf("unknown flag: --%s", flagName)
		}
		i++
	}

	cmd.Documents = args[i:]

	if cmd.Subcommand != SubcommandSettings && len(cmd.Documents) == 0 {
		return Command{}, ErrNoDocuments
	}

	return cmd, nil
}
