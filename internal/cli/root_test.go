package cli

import (
	"context"
	"os"
	"testing"
)

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name            string
		ver, sha, built string
	}{
		{"release build", "v0.3.0", "9f2c1ab", "2026-08-29T10:00:00Z"},
		{"dev build", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersion(tt.ver, tt.sha, tt.built)

			if version != tt.ver {
				t.Errorf("version = %q, want %q", version, tt.ver)
			}
			if commit != tt.sha {
				t.Errorf("commit = %q, want %q", commit, tt.sha)
			}
			if date != tt.built {
				t.Errorf("date = %q, want %q", date, tt.built)
			}
		})
	}
}

func TestExecuteReturnsCommandError(t *testing.T) {
	old := os.Args
	defer func() { os.Args = old }()
	os.Args = []string{"sheetpress", "no-such-command"}

	// The error must come back to the caller for the exit status even
	// though the command tree reports it in user terms itself.
	if err := Execute(context.Background()); err == nil {
		t.Fatal("Unknown subcommand should fail")
	}
}
