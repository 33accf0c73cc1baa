package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmdReportsUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown flag", args: []string{"--bogus"}, want: "unknown flag: --bogus"},
		{name: "stray argument", args: []string{"extra"}, want: `unknown command "extra"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd(envConfig{})
			var stderr bytes.Buffer
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&stderr)
			cmd.SetArgs(tt.args)

			if err := cmd.Execute(); err == nil {
				t.Fatal("Execute() succeeded, want error")
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.want)
			}
		})
	}
}

func TestRootCmdFlagDefaultsFromEnv(t *testing.T) {
	cmd := newRootCmd(envConfig{Engine: "espeak", Host: "console", LogFile: "x.log"})
	for name, want := range map[string]string{"engine": "espeak", "host": "console", "log-file": "x.log"} {
		if got := cmd.Flags().Lookup(name).DefValue; got != want {
			t.Errorf("--%s default = %q, want %q", name, got, want)
		}
	}
}
