package memory_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/petasbytes/mcp-agent/memory"
)

func TestHistory_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "history.json")

	in := []memory.Message{{Role: "user", Text: "hi"}, {Role: "assistant", Text: "hello"}}
	if err := memory.SaveHistory(p, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := memory.LoadHistory(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("mismatch at %d: got %+v want %+v", i, out[i], in[i])
		}
	}
}

func TestHistory_LoadMissing_ReturnsNil(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "does-not-exist.json")

	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("expected missing file in tempdir")
	}

	msgs, err := memory.LoadHistory(p)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if msgs != nil {
		t.Fatalf("expected nil slice for missing file, got %#v", msgs)
	}
}

func TestHistory_LoadInvalidJSON_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(p, []byte("{oops"), 0o664); err != nil {
		t.Fatalf("prep: %v", err)
	}
	if _, err := memory.LoadHistory(p); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestHistory_RecordPersists(t *testing.T) {
	p := filepath.Join(t.TempDir(), "h.json")

	h, err := memory.OpenHistory(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := h.Record("what time is it?", "It is 1712345678."); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := h.Record("silent", ""); err != nil {
		t.Fatalf("record: %v", err)
	}

	reopened, err := memory.OpenHistory(p)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Exchanges(); got != 2 {
		t.Fatalf("exchanges: got %d want 2", got)
	}
	if len(reopened.Messages) != 3 {
		t.Fatalf("messages: got %d want 3 (empty transcript is not stored)", len(reopened.Messages))
	}
}

func TestHistory_SaveError_NamesPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing-dir", "history.json")

	err := memory.SaveHistory(p, []memory.Message{{Role: memory.RoleUser, Text: "hi"}})
	if err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
	if !strings.Contains(err.Error(), "save history "+p) {
		t.Fatalf("error should name the history file: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cause should be preserved: %v", err)
	}
}
