package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/archifinance/internal/model"
)

// writeImport creates a JSONL file named name under dir.
func writeImport(t *testing.T, dir, name string, lines ...string) DiscoveredFile {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return discovered(path)
}

func TestParseFile_Entries(t *testing.T) {
	df := writeImport(t, t.TempDir(), "casa-moderna-laureles.jsonl",
		`{"type":"income","amount":5000000,"description":"Second payment","date":"2024-03-01"}`,
		`{"type":"expense","amount":"2.500.000","description":"Material delivery"}`,
		`{"type":"Expense","project":"2","amount":"1.2M","description":"Contractor"}`,
	)

	res := ParseFile(df)
	if res.Err != nil || res.ParseErrors != 0 {
		t.Fatalf("err=%v parseErrors=%d", res.Err, res.ParseErrors)
	}
	if len(res.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(res.Entries))
	}

	e := res.Entries[0]
	if e.Kind != model.Income || e.Amount != 5_000_000 || e.Project != "casa moderna laureles" {
		t.Fatalf("entry 0 = %+v", e)
	}
	if want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local); !e.Date.Equal(want) {
		t.Fatalf("date = %v, want %v", e.Date, want)
	}
	if res.Entries[1].Amount != 2_500_000 || !res.Entries[1].Date.IsZero() {
		t.Fatalf("entry 1 = %+v", res.Entries[1])
	}
	if e := res.Entries[2]; e.Kind != model.Expense || e.Project != "2" || e.Amount != 1_200_000 || e.Line != 3 {
		t.Fatalf("entry 2 = %+v", e)
	}
}

func TestParseFile_SkipsAndCountsErrors(t *testing.T) {
	df := writeImport(t, t.TempDir(), "2.jsonl",
		`# exported 2024-03-05`,
		``,
		`{"type":"balance","amount":100}`,
		`{"type":"income","amount":"lots","description":"x"}`,
		`{not json`,
		`{"type":"expense","description":"no amount"}`,
		`{"type":"expense","amount":100,"description":"bad date","date":"05/03/2024"}`,
		`{"type":"expense","amount":100,"description":"ok"}`,
	)

	res := ParseFile(df)
	if res.Skipped != 3 {
		t.Fatalf("Skipped = %d, want 3", res.Skipped)
	}
	if res.ParseErrors != 4 || len(res.Errors) != 4 {
		t.Fatalf("ParseErrors = %d (%d errors), want 4", res.ParseErrors, len(res.Errors))
	}
	if !strings.Contains(res.Errors[0].Error(), "2.jsonl:4:") {
		t.Fatalf("error %q should carry the line number", res.Errors[0])
	}
	if len(res.Entries) != 1 || res.Entries[0].Line != 8 {
		t.Fatalf("entries = %+v, want the last line only", res.Entries)
	}
}

func TestParseFile_DeduplicatesByRef(t *testing.T) {
	df := writeImport(t, t.TempDir(), "1.jsonl",
		`{"type":"expense","ref":"a","amount":100,"description":"first"}`,
		`{"type":"expense","amount":50,"description":"no ref"}`,
		`{"type":"expense","ref":"a","amount":300,"description":"corrected"}`,
		`{"type":"expense","amount":50,"description":"no ref"}`,
	)

	res := ParseFile(df)
	if res.Duplicates != 1 {
		t.Fatalf("Duplicates = %d, want 1", res.Duplicates)
	}
	if len(res.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(res.Entries))
	}
	if e := res.Entries[0]; e.Amount != 300 || e.Description != "corrected" {
		t.Fatalf("entry 0 = %+v, want the corrected line in first position", e)
	}
}

func TestParseFile_MissingFile(t *testing.T) {
	res := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "nope.jsonl")})
	if res.Err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestScanPath(t *testing.T) {
	dir := t.TempDir()
	writeImport(t, dir, "b-project.jsonl", `{}`)
	writeImport(t, dir, "nested/a_project.ndjson", `{}`)
	writeImport(t, dir, "notes.txt", `{}`)

	files, err := ScanPath(dir)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %d, want 2", len(files))
	}
	if files[0].Project != "b project" || files[1].Project != "a project" {
		t.Fatalf("projects = %q, %q", files[0].Project, files[1].Project)
	}
	if n := CountProjects(files); n != 2 {
		t.Fatalf("CountProjects = %d, want 2", n)
	}

	single, err := ScanPath(filepath.Join(dir, "notes.txt"))
	if err != nil || len(single) != 1 {
		t.Fatalf("single file: %v, %d files", err, len(single))
	}
	if _, err := ScanPath(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}

func TestDecodeProjectName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"casa-moderna-laureles.jsonl", "casa moderna laureles"},
		{"2.jsonl", "2"},
		{"coastal__villa.ndjson", "coastal villa"},
	}
	for _, tt := range tests {
		if got := decodeProjectName(tt.in); got != tt.want {
			t.Errorf("decodeProjectName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseAll_KeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var files []DiscoveredFile
	for _, name := range []string{"1.jsonl", "2.jsonl", "3.jsonl"} {
		files = append(files, writeImport(t, dir, name, `{"type":"income","amount":1,"description":"x"}`))
	}

	results, err := ParseAll(context.Background(), files, 2)
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	for i, r := range results {
		if r.File.Path != files[i].Path || len(r.Entries) != 1 {
			t.Fatalf("result %d = %+v", i, r)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ParseAll(ctx, files, 1); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
