package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/canoeh/nocs/internal/builder"
	"github.com/canoeh/nocs/internal/fixtures"
	"github.com/canoeh/nocs/internal/models"
	"github.com/canoeh/nocs/internal/storage"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NOCS_HOST", "NOCS_PORT", "PORT", "NOCS_SNAPSHOT", "NOCS_SOURCE", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

// run executes the root command with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// buildFixture writes the fixture table and builds a snapshot with the given extension.
func buildFixture(t *testing.T, ext string) (configPath, snapshot string) {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	source := filepath.Join(dir, "noc.csv")
	if err := os.WriteFile(source, fixtures.CSV(), 0644); err != nil {
		t.Fatal(err)
	}
	configPath = filepath.Join(dir, "missing-config.yaml")
	snapshot = filepath.Join(dir, "noc"+ext)

	out, err := run(t, "--config", configPath, "build", "--source", source, "--out", snapshot)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, "Wrote 14 occupations to "+snapshot) {
		t.Errorf("build output = %q", out)
	}
	t.Setenv("NOCS_SNAPSHOT", snapshot)
	return configPath, snapshot
}

func TestBuildAndQuery(t *testing.T) {
	for _, ext := range []string{".json", ".db"} {
		t.Run(ext, func(t *testing.T) {
			configPath, _ := buildFixture(t, ext)

			out, err := run(t, "--config", configPath, "get", "21234", "-o", "json")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			var occ models.Occupation
			if err := json.Unmarshal([]byte(out), &occ); err != nil {
				t.Fatalf("get output is not JSON: %v\n%s", err, out)
			}
			if occ.Title != "Web developers and programmers" || occ.Hierarchy.Minor.Code != "2123" {
				t.Errorf("get 21234 = %+v", occ)
			}

			out, err = run(t, "--config", configPath, "search", "software", "-o", "compact")
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 3 || !strings.HasPrefix(lines[0], "21230\t") {
				t.Errorf("search software (compact) = %q", out)
			}

			out, err = run(t, "--config", configPath, "info")
			if err != nil {
				t.Fatalf("info: %v", err)
			}
			if !strings.Contains(out, builder.DefaultVersion) || !strings.Contains(out, "Entries:      14") {
				t.Errorf("info = %q", out)
			}
		})
	}
}

func TestSearch_Paging(t *testing.T) {
	configPath, _ := buildFixture(t, ".json")
	out, err := run(t, "--config", configPath, "search", "--page", "2", "--limit", "5")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "Found 14 occupations (page 2 of 3, 5 per page)") || !strings.Contains(out, "--page 3") {
		t.Errorf("search output:\n%s", out)
	}
}

func TestSearch_BadOutput(t *testing.T) {
	configPath, _ := buildFixture(t, ".json")
	if _, err := run(t, "--config", configPath, "search", "cook", "-o", "xml"); err == nil {
		t.Error("expected an error for an unknown output format")
	}
}

func TestGet_NotFound(t *testing.T) {
	configPath, _ := buildFixture(t, ".json")
	_, err := run(t, "--config", configPath, "get", "99999")
	if err == nil || !strings.Contains(err.Error(), "occupation 99999 not found") {
		t.Errorf("get 99999 err = %v", err)
	}
}

func TestSuggest(t *testing.T) {
	configPath, _ := buildFixture(t, ".json")
	out, err := run(t, "--config", configPath, "suggest", "web", "developr", "--limit", "3")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !strings.Contains(out, " 1. 21234") {
		t.Errorf("suggest output:\n%s", out)
	}
}

func TestQuery_MissingSnapshot(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("NOCS_SNAPSHOT", filepath.Join(dir, "absent.json"))
	_, err := run(t, "--config", filepath.Join(dir, "none.yaml"), "info")
	if err == nil || !strings.Contains(err.Error(), "could not be loaded") {
		t.Errorf("info without snapshot err = %v", err)
	}
}

func TestBuild_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "none.yaml")

	if _, err := run(t, "--config", configPath, "build"); err == nil || !strings.Contains(err.Error(), "no source table") {
		t.Errorf("build without source err = %v", err)
	}
	if _, err := run(t, "--config", configPath, "build", "--source", filepath.Join(dir, "x.csv"), "--out", filepath.Join(dir, "out.txt")); err == nil {
		t.Error("expected an error for an unsupported snapshot extension")
	}
	if _, err := run(t, "--config", configPath, "build", "--source", filepath.Join(dir, "absent.csv"), "--out", filepath.Join(dir, "out.json")); err == nil {
		t.Error("expected an error for a missing source")
	}
}

func TestSnapshotBuilder_Watch(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "noc.csv")
	out := filepath.Join(dir, "noc.json")
	b := &snapshotBuilder{logger: zap.NewNop(), out: io.Discard}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.watch(ctx, source, out) }()

	// the watcher starts asynchronously; keep rewriting until the snapshot appears
	deadline := time.Now().Add(10 * time.Second)
	for {
		if err := os.WriteFile(source, fixtures.CSV(), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(600 * time.Millisecond)
		if _, err := os.Stat(out); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("snapshot was not built after the source was written")
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}

	store, err := storage.NewStore(out)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Metadata.TotalEntries != 14 {
		t.Errorf("watched build entries = %d", snap.Metadata.TotalEntries)
	}
}

func TestLoadConfig_CwdFallback(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 9191\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, path, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want 9191 from ./config.yaml", cfg.Server.Port)
	}
	if filepath.Base(path) != "config.yaml" || path == defaultConfigPath {
		t.Errorf("resolved path = %q", path)
	}
}

func TestConfigInit(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nocs.yaml")

	out, err := run(t, "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("config init output = %q", out)
	}
	if _, err := run(t, "--config", path, "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := run(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	out, err = run(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "# loaded from "+path) || !strings.Contains(out, "port: 8080") {
		t.Errorf("config show output:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "nocs version dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestBuildSearchTerm(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"web", "developer"}, "web developer"},
		{[]string{" cooks "}, "cooks"},
	}
	for _, tt := range tests {
		if got := buildSearchTerm(tt.args); got != tt.want {
			t.Errorf("buildSearchTerm(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
