package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/agentstation/rollcall/internal/metrics"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := New("1.2.3", "abc123", "2026-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app
}

// TestNew verifies version information and defaults.
func TestNew(t *testing.T) {
	app := newTestApp(t)

	if app.Version() != "1.2.3" || app.Commit() != "abc123" || app.Date() != "2026-01-01" || app.BuiltBy() != "test" {
		t.Errorf("version info not stored: %s %s %s %s", app.Version(), app.Commit(), app.Date(), app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
	if err := app.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
}

// TestMetrics verifies metrics are created once.
func TestMetrics(t *testing.T) {
	app := newTestApp(t)
	if app.Metrics() != app.Metrics() {
		t.Error("Metrics() must return the same instance")
	}

	injected := metrics.New()
	app, err := New("dev", "", "", "", WithMetrics(injected))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if app.Metrics() != injected {
		t.Error("WithMetrics not applied")
	}
}

// TestRootCommand verifies the registered commands.
func TestRootCommand(t *testing.T) {
	root := newTestApp(t).createRootCommand()

	for _, name := range []string{"merge", "canon", "amount", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

// TestExecuteVersion runs the version command through the root command.
func TestExecuteVersion(t *testing.T) {
	root := newTestApp(t).createRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version", "-v"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "rollcall 1.2.3") || !strings.Contains(out, "abc123") {
		t.Errorf("unexpected version output: %q", out)
	}
}

// TestExecuteCanon runs the canon command with the global format flag.
func TestExecuteCanon(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	root := newTestApp(t).createRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"canon", "Ananthapur", "Andhra Pradesh", "-o", "yaml"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !strings.Contains(buf.String(), "ANANTAPUR:ANDHRA PRADESH") {
		t.Errorf("unexpected canon output: %q", buf.String())
	}
}

// TestExecuteInvalidFormat verifies an unknown format is rejected.
func TestExecuteInvalidFormat(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	root := newTestApp(t).createRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"amount", "Rs 10", "-o", "xml"})
	if err := root.Execute(); err == nil {
		t.Error("expected error for format xml")
	}
}
