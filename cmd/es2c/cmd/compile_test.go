package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunCompileWritesOutputForSingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.js")
	if err := os.WriteFile(src, []byte("var x = 1; x;"), 0o644); err != nil {
		t.Fatal(err)
	}
	outBase := filepath.Join(dir, "out.cc")
	outputBase = outBase
	defer func() { outputBase = "" }()

	if err := runCompile(compileCmd, []string{src}); err != nil {
		t.Fatalf("runCompile: %v", err)
	}
	if _, err := os.Stat(outBase); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if _, err := os.Stat(outBase + ".ir"); err != nil {
		t.Fatalf("expected IR dump: %v", err)
	}
}

func TestRunCompileDerivesOutputPerFileForMultipleInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.js")
	b := filepath.Join(dir, "b.js")
	if err := os.WriteFile(a, []byte("1;"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("2;"), 0o644); err != nil {
		t.Fatal(err)
	}
	outputBase = ""

	if err := runCompile(compileCmd, []string{a, b}); err != nil {
		t.Fatalf("runCompile: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.cc")); err != nil {
		t.Fatalf("expected a.cc: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "b.cc")); err != nil {
		t.Fatalf("expected b.cc: %v", err)
	}
}

func TestRunCompileReturnsErrorWhenAnyFileFails(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.js")
	if err := os.WriteFile(good, []byte("1;"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.js")
	if err := os.WriteFile(bad, []byte("var ="), 0o644); err != nil {
		t.Fatal(err)
	}
	outputBase = ""

	if err := runCompile(compileCmd, []string{good, bad}); err == nil {
		t.Fatalf("expected an error when one of the inputs fails to compile")
	}
}

func TestOutputBaseForSingleFileDefaultsEmpty(t *testing.T) {
	outputBase = ""
	if got := outputBaseFor("prog.js", 1); got != "" {
		t.Fatalf("expected empty output base to defer to the driver default, got %q", got)
	}
}

func TestOutputBaseForMultipleFilesDerivesFromEachInput(t *testing.T) {
	outputBase = "ignored.cc"
	defer func() { outputBase = "" }()
	if got := outputBaseFor("dir/prog.js", 2); got != "dir/prog.cc" {
		t.Fatalf("expected dir/prog.cc, got %q", got)
	}
	if got := outputBaseFor("noext", 2); got != "noext.cc" {
		t.Fatalf("expected noext.cc, got %q", got)
	}
}
