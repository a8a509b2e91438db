package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/intervuai.conf", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/intervuai.conf", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseStartWithSession(t *testing.T) {
	parsed, err := Parse([]string{"--session", "abc-123", "start"})
	require.NoError(t, err)
	require.Equal(t, CommandStart, parsed.Command)
	require.Equal(t, "abc-123", parsed.SessionID)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
	}{
		{name: "help short flag", args: []string{"-h"}, wantCmd: CommandHelp, wantHelp: true},
		{name: "help long flag", args: []string{"--help"}, wantCmd: CommandHelp, wantHelp: true},
		{name: "version flag", args: []string{"--version"}, wantCmd: CommandVersion},
		{name: "config after command", args: []string{"status", "--config", "/tmp/cfg"}, wantErr: "unexpected arguments after command"},
		{name: "missing config path", args: []string{"--config"}, wantErr: "requires a path"},
		{name: "missing session id", args: []string{"--session"}, wantErr: "requires a session id"},
		{name: "unknown flag", args: []string{"--bogus"}, wantErr: "unknown flag"},
		{name: "unknown command", args: []string{"bogus"}, wantErr: "unknown command"},
		{name: "extra args after command", args: []string{"doctor", "extra"}, wantErr: "unexpected arguments"},
		{name: "valid skip command", args: []string{"skip"}, wantCmd: CommandSkip},
		{name: "valid repeat command", args: []string{"repeat"}, wantCmd: CommandRepeat},
		{name: "valid prepare command", args: []string{"prepare"}, wantCmd: CommandPrepare},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
		})
	}
}

func TestHelpTextMentionsEveryCommand(t *testing.T) {
	text := HelpText("intervuai")
	for cmd := range validCommands {
		require.Contains(t, text, string(cmd))
	}
}
