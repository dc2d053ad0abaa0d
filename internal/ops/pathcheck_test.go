package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/dinos/internal/config"
	"github.com/hpungsan/dinos/internal/errors"
)

func unsafeConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	return cfg
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

func TestValidatePath_TraversalRejected(t *testing.T) {
	cfg := unsafeConfig()

	for _, path := range []string{
		"../herd.jsonl",
		"/tmp/../etc/herd.jsonl",
		"/tmp/safe/../../../etc/shadow.jsonl",
	} {
		t.Run(path, func(t *testing.T) {
			err := ValidatePath(path, PathCheckWrite, cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_Extension(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := unsafeConfig()
	jsonFile := filepath.Join(tmpDir, "herd.json")
	writeFile(t, jsonFile, "[]")

	tests := []struct {
		name    string
		path    string
		mode    PathCheckMode
		wantErr bool
	}{
		{name: "jsonl write", path: filepath.Join(tmpDir, "out.jsonl"), mode: PathCheckWrite},
		{name: "json write rejected", path: filepath.Join(tmpDir, "out.json"), mode: PathCheckWrite, wantErr: true},
		{name: "json read", path: jsonFile, mode: PathCheckRead},
		{name: "txt read rejected", path: filepath.Join(tmpDir, "herd.txt"), mode: PathCheckRead, wantErr: true},
		{name: "no extension", path: filepath.Join(tmpDir, "herd"), mode: PathCheckWrite, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, tt.mode, cfg)
			if tt.wantErr && !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePath_DirectoryRestriction(t *testing.T) {
	err := ValidatePath("/tmp/herd.jsonl", PathCheckWrite, config.DefaultConfig())
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for path outside allowed dirs, got: %v", err)
	}
}

func TestValidatePath_AllowedPaths(t *testing.T) {
	allowedDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowedDir}

	inside := filepath.Join(allowedDir, "herd.jsonl")
	writeFile(t, inside, "")
	if err := ValidatePath(inside, PathCheckRead, cfg); err != nil {
		t.Errorf("expected success for path in AllowedPaths, got: %v", err)
	}

	outside := filepath.Join(t.TempDir(), "herd.jsonl")
	writeFile(t, outside, "")
	if err := ValidatePath(outside, PathCheckRead, cfg); err == nil {
		t.Error("expected error for path outside AllowedPaths, got nil")
	}

	subDir := filepath.Join(allowedDir, "nested")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}
	if err := ValidatePath(filepath.Join(subDir, "out.jsonl"), PathCheckWrite, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for nested path, got: %v", err)
	}
}

func TestValidatePath_FileNotFound_ReadMode(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.jsonl")
	err := ValidatePath(missing, PathCheckRead, unsafeConfig())
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestValidatePath_SymlinkRejected_EvenWithUnsafePaths(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "target.jsonl")
	writeFile(t, target, "")

	link := filepath.Join(tmpDir, "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	err := ValidatePath(link, PathCheckRead, unsafeConfig())
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path     string
		contains bool
	}{
		{"/home/user/herd.jsonl", false},
		{"../herd.jsonl", true},
		{"/home/../etc/passwd", true},
		{"./herd.jsonl", false},
		{"herd..old.jsonl", false},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := containsTraversal(tc.path); got != tc.contains {
				t.Errorf("containsTraversal(%q) = %v, want %v", tc.path, got, tc.contains)
			}
		})
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"jurassic", "jurassic"},
		{"late/cretaceous", "late-cretaceous"},
		{"../../../etc/passwd", "etc-passwd"},
		{"foo\x00bar", "foobar"},
		{"../../..", "unnamed"},
		{"a---b", "a-b"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := SanitizeForFilename(tc.input); got != tc.expected {
				t.Errorf("SanitizeForFilename(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
