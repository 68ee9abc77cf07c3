package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// resetState returns every flag on every command to its default so runs
// don't leak into each other (pflag keeps Changed set across Execute).
func resetState(t *testing.T) {
	t.Helper()
	cmds := append([]*pflag.FlagSet{rootCmd.PersistentFlags()},
		generateCmd.Flags(), solveCmd.Flags(), coresCmd.Flags(), checkCmd.Flags())
	for _, fs := range cmds {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				if err := f.Value.Set(f.DefValue); err != nil {
					t.Fatalf("resetting --%s: %v", f.Name, err)
				}
				f.Changed = false
			}
		})
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetState(t)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestGenerateE2E(t *testing.T) {
	tmp := t.TempDir()

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "basic T68",
			args: []string{"generate", "-c", "T68", "-t", "20", "-a", "0.5",
				"-o", filepath.Join(tmp, "t68.kicad_pcb")},
			wantContain: []string{
				"DESIGN CONFIGURATION",
				"T68",
				"Turns: 20",
				"Wrote",
				"t68.kicad_pcb",
			},
		},
		{
			name: "multi-set with taps and verbose",
			args: []string{"generate", "-v", "-c", "T68", "-t", "54", "-a", "0.5",
				"--taps", "18,36", "-o", filepath.Join(tmp, "t54")},
			wantContain: []string{
				"DESIGN CONFIGURATION",
				"Turns: 54",
				"Pitch at OD:",
				"Edge margin:",
				"t54.kicad_pcb",
			},
		},
		{
			name: "infeasible prints remediation",
			args: []string{"generate", "-c", "T37", "-t", "60", "-a", "0.2",
				"-l", "1", "-o", filepath.Join(tmp, "nope.kicad_pcb")},
			wantErr: true,
			wantContain: []string{
				"DESIGN REJECTED",
				"Max turns on this core:",
				"Min core ID for 60 turns:",
			},
		},
		{
			name:    "unknown core lists the database",
			args:    []string{"generate", "-c", "T-999", "-t", "10", "-o", filepath.Join(tmp, "x")},
			wantErr: true,
			wantContain: []string{
				"Available cores:",
				"T68",
				"T200",
			},
		},
		{
			name:    "missing output flag",
			args:    []string{"generate", "-c", "T68", "-t", "20"},
			wantErr: true,
		},
		{
			name:    "zero turns rejected",
			args:    []string{"generate", "-c", "T68", "-t", "0", "-o", filepath.Join(tmp, "z")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := runCLI(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none\nOutput: %s", output)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v\nOutput: %s", err, output)
				return
			}

			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing: %q\nGot:\n%s", want, output)
				}
			}
		})
	}

	// The basic run must leave a parseable board behind.
	if _, err := os.Stat(filepath.Join(tmp, "t68.kicad_pcb")); err != nil {
		t.Errorf("generate did not write the board file: %v", err)
	}
}

func TestSolveE2E(t *testing.T) {
	output, err := runCLI(t, "solve", "-c", "T68", "-t", "20", "-a", "0.5")
	if err != nil {
		t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
	}
	for _, want := range []string{"DESIGN CONFIGURATION", "T68", "Turns: 20", "Trace:"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing: %q\nGot:\n%s", want, output)
		}
	}

	// Solve must not leave files behind.
	output, err = runCLI(t, "solve", "-c", "T37", "-t", "60", "-a", "0.2", "-l", "1")
	if err == nil {
		t.Fatalf("Expected rejection, got:\n%s", output)
	}
	if !strings.Contains(output, "DESIGN REJECTED") {
		t.Errorf("Rejection block missing\nGot:\n%s", output)
	}
}

func TestCoresE2E(t *testing.T) {
	output, err := runCLI(t, "cores")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"Name", "T37", "T50", "T68", "T200", "17.50", "9.40"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing: %q\nGot:\n%s", want, output)
		}
	}
}

func TestCoresCatalogE2E(t *testing.T) {
	tmp := t.TempDir()
	catalogFile := filepath.Join(tmp, "extra.cores")
	src := "-- shop specials\ncore T94 od 23.9 id 14.2 height 7.9\n"
	if err := os.WriteFile(catalogFile, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := runCLI(t, "cores", "--catalog", catalogFile)
	if err != nil {
		t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
	}
	for _, want := range []string{"T94", "23.90", "14.20"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing: %q\nGot:\n%s", want, output)
		}
	}
}

func TestCheckE2E(t *testing.T) {
	tmp := t.TempDir()
	board := filepath.Join(tmp, "coil.kicad_pcb")

	output, err := runCLI(t, "generate", "-c", "T68", "-t", "20", "-a", "0.5", "-o", board)
	if err != nil {
		t.Fatalf("generate failed: %v\nOutput: %s", err, output)
	}

	output, err = runCLI(t, "check", board)
	if err != nil {
		t.Fatalf("check failed: %v\nOutput: %s", err, output)
	}
	for _, want := range []string{"segments", "vias", "clean"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing: %q\nGot:\n%s", want, output)
		}
	}

	if _, err := runCLI(t, "check", filepath.Join(tmp, "missing.kicad_pcb")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestVersionE2E(t *testing.T) {
	output, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output, "fpcwind") {
		t.Errorf("Version output missing program name: %q", output)
	}
}
