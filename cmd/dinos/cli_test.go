package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/dinos/internal/codec"
	"github.com/hpungsan/dinos/internal/config"
	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
	"github.com/hpungsan/dinos/internal/ops"
)

// testConfig returns a config whose import/export paths are unrestricted,
// so tests can use t.TempDir().
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	return cfg
}

// runCLI runs the app with stdin replaced by the given content and returns
// captured stdout. An empty stdin means "not piped": stdin is pointed at the
// null device so commands fall back to the sample collection.
func runCLI(t *testing.T, cfg *config.Config, stdin string, args ...string) (string, error) {
	t.Helper()

	oldStdin := os.Stdin
	defer func() { os.Stdin = oldStdin }()

	if stdin == "" {
		devNull, err := os.Open(os.DevNull)
		if err != nil {
			t.Fatalf("open %s: %v", os.DevNull, err)
		}
		defer devNull.Close()
		os.Stdin = devNull
	} else {
		stdinR, stdinW, err := os.Pipe()
		if err != nil {
			t.Fatalf("failed to create stdin pipe: %v", err)
		}
		go func() {
			_, _ = stdinW.WriteString(stdin)
			stdinW.Close()
		}()
		os.Stdin = stdinR
	}

	// Capture stdout
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	app := newCLIApp(cfg, nil)
	runErr := app.Run(append([]string{"dinos"}, args...))

	w.Close()
	<-done
	os.Stdout = oldStdout

	return buf.String(), runErr
}

func speciesOf(ds []dino.Dino) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Species
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

const twoRecordsJSONL = `{"species":"Eoraptor","period":"Triassic","carnivore":true,"extinct":false}
{"species":"T-Rex","period":"Cretaceous","carnivore":true,"extinct":true}
`

// TestCLIMake tests the make command.
func TestCLIMake(t *testing.T) {
	cfg := testConfig()

	t.Run("defaults to living", func(t *testing.T) {
		out, err := runCLI(t, cfg, "", "make", "--species=Eoraptor", "--period=Triassic", "--carnivore")
		if err != nil {
			t.Fatalf("make command failed: %v", err)
		}
		var d dino.Dino
		if err := json.Unmarshal([]byte(out), &d); err != nil {
			t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
		}
		want := dino.New("Eoraptor", dino.Triassic, true)
		if d != want {
			t.Errorf("expected %+v, got %+v", want, d)
		}
	})

	t.Run("extinct flag", func(t *testing.T) {
		out, err := runCLI(t, cfg, "", "make", "-s", "T-Rex", "-p", "Cretaceous", "--carnivore", "--extinct")
		if err != nil {
			t.Fatalf("make command failed: %v", err)
		}
		var d dino.Dino
		if err := json.Unmarshal([]byte(out), &d); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if !d.Extinct {
			t.Error("expected extinct=true")
		}
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := runCLI(t, cfg, "", "make", "--species=Nessie", "--period=Devonian")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "INVALID_PERIOD") {
			t.Errorf("expected INVALID_PERIOD in error, got %v", err)
		}
	})
}

// TestCLIApply tests the apply command.
func TestCLIApply(t *testing.T) {
	cfg := testConfig()

	t.Run("sample through pipeline", func(t *testing.T) {
		out, err := runCLI(t, cfg, "", "apply", "--op=carnivores_only", "--op=by_period")
		if err != nil {
			t.Fatalf("apply command failed: %v", err)
		}
		var output ops.RunOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
		}
		if output.InputCount != 6 || output.Count != 3 {
			t.Errorf("expected 6 in / 3 out, got %d / %d", output.InputCount, output.Count)
		}
		want := []string{"Eoraptor", "Archaeopteryx", "T-Rex"}
		if got := speciesOf(output.Records); !equalStrings(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if len(output.Steps) != 2 {
			t.Errorf("expected 2 steps, got %d", len(output.Steps))
		}
	})

	t.Run("piped jsonl out as jsonl", func(t *testing.T) {
		out, err := runCLI(t, cfg, twoRecordsJSONL, "apply", "--op=extinct_only", "--format=jsonl")
		if err != nil {
			t.Fatalf("apply command failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 1 {
			t.Fatalf("expected 1 line, got %d: %q", len(lines), out)
		}
		var d dino.Dino
		if err := json.Unmarshal([]byte(lines[0]), &d); err != nil {
			t.Fatalf("failed to parse line: %v", err)
		}
		if d.Species != "T-Rex" {
			t.Errorf("expected T-Rex, got %s", d.Species)
		}
	})

	t.Run("markdown output", func(t *testing.T) {
		out, err := runCLI(t, cfg, "", "apply", "--op=triassic_only", "--format=markdown")
		if err != nil {
			t.Fatalf("apply command failed: %v", err)
		}
		if !strings.Contains(out, "| Species | Period | Diet | Status |") {
			t.Errorf("expected table header, got %q", out)
		}
		if !strings.Contains(out, "| Eoraptor | Triassic | carnivore | living |") {
			t.Errorf("expected Eoraptor row, got %q", out)
		}
		if strings.Contains(out, "T-Rex") {
			t.Errorf("expected T-Rex filtered out, got %q", out)
		}
	})

	t.Run("default pipeline from config", func(t *testing.T) {
		cfg := testConfig()
		cfg.DefaultPipeline = []string{"herbivores_only"}
		out, err := runCLI(t, cfg, "", "apply")
		if err != nil {
			t.Fatalf("apply command failed: %v", err)
		}
		var output ops.RunOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Count != 3 {
			t.Errorf("expected 3 herbivores, got %d", output.Count)
		}
	})

	t.Run("from path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "two.jsonl")
		if err := os.WriteFile(path, []byte(twoRecordsJSONL), 0600); err != nil {
			t.Fatal(err)
		}
		out, err := runCLI(t, cfg, "", "apply", "--path="+path, "--op=by_species")
		if err != nil {
			t.Fatalf("apply command failed: %v", err)
		}
		var output ops.RunOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		want := []string{"Eoraptor", "T-Rex"}
		if got := speciesOf(output.Records); !equalStrings(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

// TestCLICompare tests the compare command.
func TestCLICompare(t *testing.T) {
	cfg := testConfig()

	t.Run("two records", func(t *testing.T) {
		out, err := runCLI(t, cfg, twoRecordsJSONL, "compare")
		if err != nil {
			t.Fatalf("compare command failed: %v", err)
		}
		var output ops.CompareOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Species != -1 {
			t.Errorf("expected species=-1, got %d", output.Species)
		}
		if output.ExtinctLast != -1 {
			t.Errorf("expected extinct_last=-1, got %d", output.ExtinctLast)
		}
		if output.CarnivoresFirst != 0 {
			t.Errorf("expected carnivores_first=0, got %d", output.CarnivoresFirst)
		}
		if output.Period != -1 {
			t.Errorf("expected period=-1, got %d", output.Period)
		}
	})

	t.Run("sample is not two records", func(t *testing.T) {
		_, err := runCLI(t, cfg, "", "compare")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "exactly 2 records, got 6") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestCLICheck tests the check command.
func TestCLICheck(t *testing.T) {
	out, err := runCLI(t, testConfig(), "", "check", "--species=Brachiosaurus", "--period=Jurassic", "--extinct")
	if err != nil {
		t.Fatalf("check command failed: %v", err)
	}
	var output ops.CheckOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if output.IsCarnivore || !output.IsExtinct || !output.IsJurassic || output.IsTriassic || output.IsCretaceous {
		t.Errorf("unexpected predicates: %+v", output)
	}
}

// TestCLIPartition tests the partition command.
func TestCLIPartition(t *testing.T) {
	cfg := testConfig()

	out, err := runCLI(t, cfg, "", "partition", "--by=status")
	if err != nil {
		t.Fatalf("partition command failed: %v", err)
	}
	var output ops.PartitionOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(output.Groups["extinct"]) != 3 || len(output.Groups["not_extinct"]) != 3 {
		t.Errorf("expected 3/3 split, got %d/%d", len(output.Groups["extinct"]), len(output.Groups["not_extinct"]))
	}

	if _, err := runCLI(t, cfg, "", "partition", "--by=size"); err == nil {
		t.Error("expected error for unknown partition key, got nil")
	}
}

// TestCLISampleAndOps tests the sample and ops commands.
func TestCLISampleAndOps(t *testing.T) {
	cfg := testConfig()

	out, err := runCLI(t, cfg, "", "sample", "--format=jsonl")
	if err != nil {
		t.Fatalf("sample command failed: %v", err)
	}
	records, lineErrs, err := codec.Decode(strings.NewReader(out))
	if err != nil || len(lineErrs) > 0 {
		t.Fatalf("sample output did not decode: %v %v", err, lineErrs)
	}
	if got, want := speciesOf(records), speciesOf(dino.Sample()); !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	out, err = runCLI(t, cfg, "", "ops")
	if err != nil {
		t.Fatalf("ops command failed: %v", err)
	}
	var listing struct {
		Operations []ops.Operation `json:"operations"`
	}
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(listing.Operations) != len(ops.Names()) {
		t.Errorf("expected %d operations, got %d", len(ops.Names()), len(listing.Operations))
	}
}

// TestCLIRender tests the render command.
func TestCLIRender(t *testing.T) {
	cfg := testConfig()

	out, err := runCLI(t, cfg, "", "render", "--format=html")
	if err != nil {
		t.Fatalf("render command failed: %v", err)
	}
	if !strings.Contains(out, "<table>") || !strings.Contains(out, "<td>Styracosaurus</td>") {
		t.Errorf("expected html table, got %q", out)
	}

	if _, err := runCLI(t, cfg, "", "render", "--format=jsonl"); err == nil {
		t.Error("expected error for non-table format, got nil")
	}
}

// TestCLIExportImport tests export followed by import.
func TestCLIExportImport(t *testing.T) {
	cfg := testConfig()
	path := filepath.Join(t.TempDir(), "herd.jsonl")

	out, err := runCLI(t, cfg, twoRecordsJSONL, "export", "--path="+path)
	if err != nil {
		t.Fatalf("export command failed: %v", err)
	}
	var exported ops.ExportOutput
	if err := json.Unmarshal([]byte(out), &exported); err != nil {
		t.Fatalf("failed to parse export output: %v", err)
	}
	if exported.Count != 2 {
		t.Errorf("expected count=2, got %d", exported.Count)
	}
	if exported.ExportID == "" {
		t.Error("expected non-empty export_id")
	}

	out, err = runCLI(t, cfg, "", "import", "--path="+path)
	if err != nil {
		t.Fatalf("import command failed: %v", err)
	}
	var imported ops.ImportOutput
	if err := json.Unmarshal([]byte(out), &imported); err != nil {
		t.Fatalf("failed to parse import output: %v", err)
	}
	if imported.Imported != 2 || imported.Skipped != 0 {
		t.Errorf("expected 2 imported / 0 skipped, got %d / %d", imported.Imported, imported.Skipped)
	}
	if got := speciesOf(imported.Records); !equalStrings(got, []string{"Eoraptor", "T-Rex"}) {
		t.Errorf("unexpected records %v", got)
	}
}

// TestCLIErrorHandling tests error handling in CLI commands.
func TestCLIErrorHandling(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"unknown operation", "", []string{"apply", "--op=by_mass"}, "UNKNOWN_OPERATION"},
		{"bad format", "", []string{"apply", "--format=yaml"}, "INVALID_REQUEST"},
		{"invalid piped record", `{"species":"Nessie","period":"Devonian","carnivore":true}`, []string{"apply"}, "line 1"},
		{"import missing file", "", []string{"import", "--path=" + filepath.Join(t.TempDir(), "missing.jsonl")}, "NOT_FOUND"},
		{"import bad mode", "", []string{"import", "--path=x.jsonl", "--mode=merge"}, "INVALID_REQUEST"},
		{"bad port", "", []string{"serve", "--port=70000"}, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// cli.Exit writes to stderr, so just verify the error is returned
			_, err := runCLI(t, cfg, tt.stdin, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

// TestLineErrorsToError tests the invalid-record summary.
func TestLineErrorsToError(t *testing.T) {
	err := lineErrorsToError([]codec.LineError{
		{Line: 2, Code: "INVALID_PERIOD", Message: "bad period"},
		{Line: 5, Code: "INVALID_REQUEST", Message: "species is required"},
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("expected INVALID_REQUEST, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2: bad period (and 1 more invalid records)") {
		t.Errorf("unexpected message: %v", err)
	}
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"dinos"}, false},
		{"apply command", []string{"dinos", "apply"}, true},
		{"serve command", []string{"dinos", "serve"}, true},
		{"help flag", []string{"dinos", "--help"}, true},
		{"version flag", []string{"dinos", "--version"}, true},
		{"short help flag", []string{"dinos", "-h"}, true},
		{"short version flag", []string{"dinos", "-v"}, true},
		{"unknown arg defaults to MCP", []string{"dinos", "--unknown"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isCLIMode(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"dinos"}, false},
		{"help flag", []string{"dinos", "--help"}, true},
		{"short help flag", []string{"dinos", "-h"}, true},
		{"version flag", []string{"dinos", "--version"}, true},
		{"short version flag", []string{"dinos", "-v"}, true},
		{"help subcommand", []string{"dinos", "help"}, true},
		{"apply command is not help", []string{"dinos", "apply"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isHelpOrVersion(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestNewCLIAppNilConfig tests that help works before config is loaded.
func TestNewCLIAppNilConfig(t *testing.T) {
	app := newCLIApp(nil, nil)
	if app.Name != "dinos" {
		t.Errorf("expected app name dinos, got %s", app.Name)
	}
	if len(app.Commands) != 11 {
		t.Errorf("expected 11 commands, got %d", len(app.Commands))
	}
}

// TestReadStdinWithLimit tests the readStdin function respects size limits.
func TestReadStdinWithLimit(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		content := "small content"
		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("Failed to create pipe: %v", err)
		}
		go func() {
			_, _ = w.WriteString(content)
			w.Close()
		}()

		oldStdin := os.Stdin
		os.Stdin = r
		defer func() { os.Stdin = oldStdin }()

		result, err := readStdin(1000)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result != content {
			t.Errorf("expected %q, got %q", content, result)
		}
	})

	t.Run("exceeds limit", func(t *testing.T) {
		content := strings.Repeat("x", 100)
		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("Failed to create pipe: %v", err)
		}
		go func() {
			_, _ = w.WriteString(content)
			w.Close()
		}()

		oldStdin := os.Stdin
		os.Stdin = r
		defer func() { os.Stdin = oldStdin }()

		// Limit is 50 bytes, content is 100
		if _, err := readStdin(50); err == nil {
			t.Error("expected error for content exceeding limit, got nil")
		}
	})
}
