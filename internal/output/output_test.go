package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsole_PlainWriter(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Info("checking %s", "files")
	c.Success("done")
	c.Warn("careful")
	c.Fail("broken")

	got := buf.String()
	for _, want := range []string{"• checking files", "✓ done", "! careful", "✗ broken"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	// A non-TTY writer must receive no escape sequences.
	if strings.Contains(got, "\x1b[") {
		t.Error("output contains ANSI escapes on a non-TTY writer")
	}
}

func TestConsole_Header(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Header("Machine identity reset")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Header() printed %d lines, want 2", len(lines))
	}
	if lines[0] != "Machine identity reset" {
		t.Errorf("title line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "---") {
		t.Errorf("rule line = %q", lines[1])
	}
}

func TestSpinner_NonTTYPrintsOnce(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Patching workbench.desktop.main.js")
	s.SetWriter(&buf)

	s.Start()
	s.Stop()

	got := buf.String()
	if got != "Patching workbench.desktop.main.js...\n" {
		t.Errorf("non-TTY spinner output = %q, want the message printed once", got)
	}
}
