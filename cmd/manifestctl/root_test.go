package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const basicManifests = "../../internal/sim/catalogs/testdata/basic"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	base := []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "--manifests", basicManifests}
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCheck_ReportsDangling(t *testing.T) {
	out, err := run(t, "check", "--metrics")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, want := range []string{
		"items: 4 (5 names)",
		"recipes: 3",
		`dangling: recipe "forge" input references unknown item "coal"`,
		`manifest_entries{category="item"} 4`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCheck_StrictFails(t *testing.T) {
	if _, err := run(t, "--strictness", "strict", "check"); err == nil {
		t.Fatalf("expected strict load to fail on the dangling coal reference")
	}
}

func TestLookup(t *testing.T) {
	out, err := run(t, "lookup", "item", "ingot")
	if err != nil {
		t.Fatalf("lookup item: %v", err)
	}
	if !strings.Contains(out, "item#1 ingot: stack_size=50") {
		t.Fatalf("lookup item: got %q", out)
	}

	out, err = run(t, "lookup", "item", "coal")
	if err != nil || !strings.Contains(out, "referenced but not defined") {
		t.Fatalf("lookup coal: got %q,%v", out, err)
	}

	out, err = run(t, "lookup", "recipe", "smelt")
	if err != nil {
		t.Fatalf("lookup recipe: %v", err)
	}
	for _, want := range []string{"recipe#3 smelt: craft_time=1s", "in  item#4 ore x2", "out item#1 ingot x1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("lookup recipe missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "lookup", "item", "mithril"); err == nil {
		t.Fatalf("expected error for unknown item")
	}
	if _, err := run(t, "lookup", "unit", "ore"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestDumpAndIndex(t *testing.T) {
	dir := t.TempDir()
	dump := filepath.Join(dir, "out.jsonl.zst")
	if _, err := run(t, "dump", "-o", dump); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if st, err := os.Stat(dump); err != nil || st.Size() == 0 {
		t.Fatalf("dump file: %v", err)
	}

	db := filepath.Join(dir, "index.sqlite")
	if _, err := run(t, "index", "--db", db); err != nil {
		t.Fatalf("index: %v", err)
	}
	if _, err := os.Stat(db); err != nil {
		t.Fatalf("index file: %v", err)
	}
}
