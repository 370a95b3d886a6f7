package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/zsy-dream/aigcguard/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := filepath.Dir(cfg.Paths.DataDir)

	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal test config: %v", err)
	}
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		outputDir:  cfg.Paths.OutputDir,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	if configPath != "" {
		args = append(args, "--config", configPath)
	}

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("output %q does not contain %q", output, substr)
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[watermark]")
	requireContains(t, out, "qim_step")
}

func TestTextCommandsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "article.txt")
	if err := os.WriteFile(carrier, []byte("An article worth protecting."), 0o644); err != nil {
		t.Fatalf("write carrier: %v", err)
	}

	marked := filepath.Join(dir, "marked.txt")
	if _, _, err := runCLI(t, []string{"text", "embed", carrier, "owner-42", "-o", marked}, ""); err != nil {
		t.Fatalf("text embed: %v", err)
	}

	out, _, err := runCLI(t, []string{"text", "extract", marked}, "")
	if err != nil {
		t.Fatalf("text extract: %v", err)
	}
	requireContains(t, out, "owner-42")

	out, _, err = runCLI(t, []string{"text", "extract", carrier}, "")
	if err != nil {
		t.Fatalf("text extract clean: %v", err)
	}
	requireContains(t, out, "no watermark")
}

func TestCorpusAddAndList(t *testing.T) {
	env := setupCLITestEnv(t)
	fp := testsupport.RandomHex(3, 64)

	out, _, err := runCLI(t, []string{
		"corpus", "add", fp,
		"--owner", "studio-1",
		"--owner-name", "Studio One",
		"--asset-ref", "poster.jpg",
	}, env.configPath)
	if err != nil {
		t.Fatalf("corpus add: %v", err)
	}
	requireContains(t, out, "Added record")

	out, _, err = runCLI(t, []string{"corpus", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("corpus list: %v", err)
	}
	requireContains(t, out, "studio-1")
	requireContains(t, out, "poster.jpg")
}

func TestCorpusImportCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	lines := `{"fingerprint":"` + testsupport.RandomHex(5, 64) + `","owner_id":"a"}
{"fingerprint":"` + testsupport.RandomHex(6, 64) + `","owner_id":"b"}
`
	path := filepath.Join(t.TempDir(), "records.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write import file: %v", err)
	}

	out, _, err := runCLI(t, []string{"corpus", "import", path}, env.configPath)
	if err != nil {
		t.Fatalf("corpus import: %v", err)
	}
	requireContains(t, out, "Imported 2 records")
}

func TestEmbedExtractDetectCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	source := filepath.Join(t.TempDir(), "asset.jpg")
	data := testsupport.JPEGFromPlane(t, testsupport.GradientPlane(640, 480), 95)
	if err := os.WriteFile(source, data, 0o644); err != nil {
		t.Fatalf("write source image: %v", err)
	}
	fp := strings.Repeat("a7c3e5f91b2d4a6c", 4)
	marked := filepath.Join(env.outputDir, "asset_marked.jpg")

	out, _, err := runCLI(t, []string{
		"embed", source, fp,
		"--owner", "studio-1",
		"-o", marked,
	}, env.configPath)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	requireContains(t, out, "Embedded 256 bits")

	if _, err := os.Stat(filepath.Join(env.baseDir, "logs", "aigcguard.log")); err != nil {
		t.Fatalf("expected command log file: %v", err)
	}

	out, _, err = runCLI(t, []string{"extract", marked}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, out, "Fingerprint:")

	out, _, err = runCLI(t, []string{"detect", marked}, env.configPath)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	requireContains(t, out, "corpus_match")
}
