package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tropestats/internal/config"
)

const testTags = `id,type,name,canonical,cached_count,merger_id
1,Freeform,Slow Burn,true,10,
2,Freeform,slowburn alias,false,1,1
3,Relationship,F/M,true,4,
4,Freeform,broken alias,false,0,2
`

const testWorks = `creation date,language,restricted,complete,word_count,tags
2021-03-01,en,false,true,100,1+3
2021-03-02,en,false,true,200,2
`

// setup resets the package globals the commands read.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tags.csv"), []byte(testTags), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "works.csv"), []byte(testWorks), 0644); err != nil {
		t.Fatal(err)
	}

	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	cfg.Input.Tags = filepath.Join(dir, "tags.csv")
	cfg.Input.Works = filepath.Join(dir, "works.csv")
	cfg.Output.Dir = filepath.Join(dir, "out")
	tagsPath, worksPath, outDir = "", "", ""
	noProgress = true
	strict = false
	rawMarkdown = true
	return dir
}

func newCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestRunThenSummary(t *testing.T) {
	dir := setup(t)

	cmd, buf := newCmd()
	if err := runAggregate(cmd, nil); err != nil {
		t.Fatalf("runAggregate returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "works:  2") {
		t.Fatalf("expected work count in report, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "alias issues: 1") {
		t.Fatalf("expected alias issue count in report, got: %s", buf.String())
	}

	doc := filepath.Join(dir, "out", "works.json")
	cmd, buf = newCmd()
	if err := runSummary(cmd, []string{doc}); err != nil {
		t.Fatalf("runSummary returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"# Works summary", "**Works:** 2", "## pining-tropes", "| slow burn | 2 |", "## straightness", "_No matching works._"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRunFlagOverrides(t *testing.T) {
	dir := setup(t)
	outDir = filepath.Join(dir, "elsewhere")

	cmd, _ := newCmd()
	if err := runAggregate(cmd, nil); err != nil {
		t.Fatalf("runAggregate returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "total_count.csv")); err != nil {
		t.Fatalf("expected totals file in overridden dir: %v", err)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	setup(t)
	cfg.Logging.Format = "xml"

	cmd, _ := newCmd()
	if err := runAggregate(cmd, nil); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestValidate(t *testing.T) {
	setup(t)

	cmd, buf := newCmd()
	if err := runValidate(cmd, nil); err != nil {
		t.Fatalf("runValidate returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "alias_chain: 4 -> 2 -> 1") {
		t.Fatalf("expected alias chain issue, got: %s", out)
	}
	if !strings.Contains(out, "Freeform=3") {
		t.Fatalf("expected tag type counts, got: %s", out)
	}

	strict = true
	cmd, _ = newCmd()
	if err := runValidate(cmd, nil); !errors.Is(err, errAliasIssues) {
		t.Fatalf("expected errAliasIssues, got %v", err)
	}
}

func TestSummaryMissingFile(t *testing.T) {
	setup(t)
	cmd, _ := newCmd()
	if err := runSummary(cmd, []string{filepath.Join(t.TempDir(), "none.json")}); err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestConfigInit(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "tropestats.yaml")

	cmd, _ := newCmd()
	if err := configInitCmd.RunE(cmd, []string{path}); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Output.Document != "works.json" {
		t.Fatalf("unexpected document name %q", loaded.Output.Document)
	}

	if err := configInitCmd.RunE(cmd, []string{path}); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
}
