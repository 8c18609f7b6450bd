package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/multifx/pedalctl/internal/doctor"
	pcerrors "github.com/multifx/pedalctl/internal/errors"
)

func TestValidateDoctorFlags(t *testing.T) {
	tests := []struct {
		name    string
		json    bool
		quiet   bool
		verbose bool
		wantErr bool
	}{
		{"no flags", false, false, false, false},
		{"json only", true, false, false, false},
		{"quiet only", false, true, false, false},
		{"verbose only", false, false, true, false},
		{"json and quiet", true, true, false, true},
		{"json and verbose", true, false, true, true},
		{"quiet and verbose", false, true, true, true},
		{"all three", true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save and restore globals
			origJSON, origQuiet, origVerbose := doctorJSON, doctorQuiet, doctorVerbose
			defer func() {
				doctorJSON, doctorQuiet, doctorVerbose = origJSON, origQuiet, origVerbose
			}()

			doctorJSON = tt.json
			doctorQuiet = tt.quiet
			doctorVerbose = tt.verbose

			err := validateDoctorFlags(nil, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDoctorFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && !strings.Contains(err.Error(), "mutually exclusive") {
				t.Errorf("error = %v, want mention of mutual exclusion", err)
			}
		})
	}
}

func TestStatusIcon(t *testing.T) {
	tests := []struct {
		sev  doctor.Severity
		want string
	}{
		{doctor.SeverityPass, "✓"},
		{doctor.SeverityInfo, "ℹ"},
		{doctor.SeverityWarning, "⚠"},
		{doctor.SeverityError, "✗"},
		{doctor.Severity(99), "?"},
	}

	for _, tt := range tests {
		if got := statusIcon(tt.sev); got != tt.want {
			t.Errorf("statusIcon(%v) = %q, want %q", tt.sev, got, tt.want)
		}
	}
}

// resetDoctorFlags clears the output-mode flags and restores them when the
// test finishes.
func resetDoctorFlags(t *testing.T) {
	t.Helper()
	origJSON, origQuiet, origVerbose := doctorJSON, doctorQuiet, doctorVerbose
	t.Cleanup(func() {
		doctorJSON, doctorQuiet, doctorVerbose = origJSON, origQuiet, origVerbose
	})
	doctorJSON, doctorQuiet, doctorVerbose = false, false, false
}

// stubConfigLoadErr replaces the startup config load result for the duration
// of a test.
func stubConfigLoadErr(t *testing.T, err error) {
	t.Helper()
	orig := configLoadErr
	t.Cleanup(func() { configLoadErr = orig })
	configLoadErr = err
}

func TestRunDoctorWithWriter(t *testing.T) {
	t.Run("clean empty system exits zero", func(t *testing.T) {
		resetDoctorFlags(t)
		stubConfigLoadErr(t, nil)

		var buf bytes.Buffer
		if err := runDoctorWithWriter(context.Background(), &buf, testConfig(t)); err != nil {
			t.Fatalf("runDoctorWithWriter() error = %v", err)
		}

		if !strings.Contains(buf.String(), "0 warnings, 0 errors") {
			t.Errorf("output = %q, want a clean summary", buf.String())
		}
	})

	t.Run("broken config exits with system code", func(t *testing.T) {
		resetDoctorFlags(t)
		stubConfigLoadErr(t, errors.New("yaml: line 3: mapping values are not allowed in this context"))

		var buf bytes.Buffer
		err := runDoctorWithWriter(context.Background(), &buf, testConfig(t))

		var exitErr *pcerrors.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("runDoctorWithWriter() error = %v, want *ExitError", err)
		}
		if exitErr.Code != pcerrors.ExitSystem {
			t.Errorf("exit code = %d, want %d", exitErr.Code, pcerrors.ExitSystem)
		}

		output := buf.String()
		if !strings.Contains(output, "configuration failed to load") {
			t.Errorf("output = %q, want the load failure reported", output)
		}
		if !strings.Contains(output, "pedalctl init --force") {
			t.Errorf("output = %q, want the fix hint", output)
		}
	})

	t.Run("quiet suppresses output", func(t *testing.T) {
		resetDoctorFlags(t)
		doctorQuiet = true
		stubConfigLoadErr(t, errors.New("broken"))

		var buf bytes.Buffer
		err := runDoctorWithWriter(context.Background(), &buf, testConfig(t))
		if err == nil {
			t.Fatal("expected an exit error for a broken config")
		}
		if buf.Len() != 0 {
			t.Errorf("output = %q, want none in quiet mode", buf.String())
		}
	})

	t.Run("json output", func(t *testing.T) {
		resetDoctorFlags(t)
		doctorJSON = true
		stubConfigLoadErr(t, nil)

		var buf bytes.Buffer
		if err := runDoctorWithWriter(context.Background(), &buf, testConfig(t)); err != nil {
			t.Fatalf("runDoctorWithWriter() error = %v", err)
		}

		var report doctor.Report
		if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
			t.Fatalf("output should be valid JSON: %v\nOutput:\n%s", err, buf.String())
		}
		if len(report.Results) != 5 {
			t.Errorf("results = %d, want 5 checks", len(report.Results))
		}
		if report.Summary.Errors != 0 {
			t.Errorf("errors = %d, want 0", report.Summary.Errors)
		}
	})

	t.Run("verbose shows passing checks", func(t *testing.T) {
		resetDoctorFlags(t)
		doctorVerbose = true
		stubConfigLoadErr(t, nil)

		var buf bytes.Buffer
		if err := runDoctorWithWriter(context.Background(), &buf, testConfig(t)); err != nil {
			t.Fatalf("runDoctorWithWriter() error = %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "config-file") {
			t.Errorf("output = %q, want the config check listed", output)
		}
		if !strings.Contains(output, "no device connected") {
			t.Errorf("output = %q, want the device scan result", output)
		}
	})
}

func TestDoctorCommand_Metadata(t *testing.T) {
	if doctorCmd.Use != "doctor" {
		t.Errorf("Use = %q, want %q", doctorCmd.Use, "doctor")
	}

	if doctorCmd.Short == "" {
		t.Error("Short should not be empty")
	}

	for _, flag := range []string{"json", "quiet", "verbose"} {
		if doctorCmd.Flags().Lookup(flag) == nil {
			t.Errorf("--%s flag not registered", flag)
		}
	}
}
