package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandPrepare Command = "prepare"
	CommandStart   Command = "start"
	CommandStop    Command = "stop"
	CommandSkip    Command = "skip"
	CommandRepeat  Command = "repeat"
	CommandStatus  Command = "status"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandPrepare: {},
	CommandStart:   {},
	CommandStop:    {},
	CommandSkip:    {},
	CommandRepeat:  {},
	CommandStatus:  {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	SessionID  string
	ShowHelp   bool
}

// Parse reads global flags up to the first positional argument, which names
// the command. Nothing may follow the command.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	i := 0
	next := func(errMsg string) (string, error) {
		i++
		if i >= len(args) {
			return "", errors.New(errMsg)
		}
		return args[i], nil
	}

	for ; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") {
			switch arg {
			case "-h", "--help":
				parsed.ShowHelp = true
				parsed.Command = CommandHelp
			case "--version":
				parsed.ShowHelp = false
				parsed.Command = CommandVersion
			case "--config":
				value, err := next("--config requires a path")
				if err != nil {
					return Parsed{}, err
				}
				parsed.ConfigPath = value
			case "--session":
				value, err := next("--session requires a session id")
				if err != nil {
					return Parsed{}, err
				}
				parsed.SessionID = value
			default:
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}
			continue
		}

		cmd := Command(arg)
		if _, ok := validCommands[cmd]; !ok {
			return Parsed{}, fmt.Errorf("unknown command: %s", arg)
		}
		if i != len(args)-1 {
			return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
		}

		parsed.Command = cmd
		parsed.ShowHelp = cmd == CommandHelp
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--session ID] <command>

Commands:
  prepare   Request a new interview session and store its descriptor
  start     Run the prepared interview session end to end
  stop      Stop the active answer recording and submit it
  skip      Skip the current question
  repeat    Replay the current question's audio
  status    Print the running session phase
  devices   List available audio input devices
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/intervuai/config.conf)
  --session ID    Expected session id for start (must match the stored descriptor)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
