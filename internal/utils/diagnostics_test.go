package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufferedDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level).
		WithOutput(&out, &errOut).
		WithColors(false).
		WithTimestamps(false)
	return d, &out, &errOut
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	tests := []struct {
		name   string
		level  DiagnosticLevel
		out    string
		errOut string
	}{
		{
			name:   "silent",
			level:  DiagnosticSilent,
			out:    "",
			errOut: "",
		},
		{
			name:   "quiet",
			level:  DiagnosticError,
			out:    "",
			errOut: "[ERROR] broken 1\n",
		},
		{
			name:   "info",
			level:  DiagnosticInfo,
			out:    "[WARN] careful\n[INFO] hello\n[SUCCESS] done\n",
			errOut: "[ERROR] broken 1\n",
		},
		{
			name:   "debug",
			level:  DiagnosticDebug,
			out:    "[WARN] careful\n[INFO] hello\n[SUCCESS] done\n[VERBOSE] details\n[DEBUG] internals\n",
			errOut: "[ERROR] broken 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, out, errOut := newBufferedDiagnostics(tt.level)

			d.Error("broken %d", 1)
			d.Warn("careful")
			d.Info("hello")
			d.Success("done")
			d.Verbose("details")
			d.Debug("internals")

			assert.Equal(t, tt.out, out.String())
			assert.Equal(t, tt.errOut, errOut.String())
		})
	}
}

func TestDiagnosticSystem_Indent(t *testing.T) {
	d, out, _ := newBufferedDiagnostics(DiagnosticInfo)

	d.Indent()
	d.Info("nested")
	d.List("item %s", "a")
	d.Unindent()
	d.Unindent()
	d.Info("top")

	assert.Equal(t, "  [INFO] nested\n  - item a\n[INFO] top\n", out.String())
}

func TestDiagnosticSystem_Summary(t *testing.T) {
	d, out, _ := newBufferedDiagnostics(DiagnosticInfo)

	d.Summary("Generation Complete!", map[string]interface{}{
		"Routes found":       3,
		"Controllers found":  1,
		"Packages processed": 2,
	})

	assert.Equal(t, "\nGeneration Complete!\n"+
		"   Controllers found: 1\n"+
		"   Packages processed: 2\n"+
		"   Routes found: 3\n\n", out.String())
}

func TestDiagnosticSystem_Phases(t *testing.T) {
	d, out, _ := newBufferedDiagnostics(DiagnosticInfo)

	d.Section("Dispatch Code Generator")
	d.SourcePath("./demo")
	d.PhaseHeader("Scanning")
	d.PhaseItem("Parsed app")
	d.PhaseProgress("Writing app/autogen_components.go")
	d.PhaseProgress("Skipping app.empty")
	d.GenerationComplete()

	assert.Equal(t, "Dispatch Code Generator\n"+
		"Source Path: ./demo\n\n"+
		"Scanning:\n"+
		"✓ Parsed app\n"+
		"✏ Writing app/autogen_components.go\n"+
		"- Skipping app.empty\n"+
		"\nDispatch: Generation complete!\n", out.String())
}

func TestDiagnosticSystem_QuietHidesPhases(t *testing.T) {
	d, out, _ := newBufferedDiagnostics(DiagnosticError)

	d.Section("header")
	d.PhaseHeader("Scanning")
	d.PhaseItem("Parsed app")
	d.GenerationComplete()

	assert.Empty(t, out.String())
	assert.Equal(t, DiagnosticError, d.Level())
}

func TestDiagnosticSystem_Colors(t *testing.T) {
	d, _, errOut := newBufferedDiagnostics(DiagnosticError)
	d.WithColors(true)

	d.Error("boom")

	assert.Contains(t, errOut.String(), "\x1b[31m[ERROR]\x1b[0m boom")
}
