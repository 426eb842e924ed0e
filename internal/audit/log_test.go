package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestRecordChainsHashes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entries := []Entry{
		{Kind: "capability", Capability: "session.read_file", Decision: "confirm_required"},
		{Kind: "capability", Capability: "session.read_file", Decision: "allow"},
		{Kind: "consistency", Decision: "rewrite", RuleIDs: "ungrounded_recall"},
	}
	for _, e := range entries {
		if err := log.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	log.Close()

	result := Verify(path)
	if !result.Valid {
		t.Fatalf("chain should verify: %s (line %d)", result.Error, result.ErrorLine)
	}
	if result.Lines != 3 {
		t.Errorf("expected 3 lines, got %d", result.Lines)
	}
}

func TestFirstEntryUsesGenesisHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log, _ := Open(path)
	log.Record(Entry{Kind: "resolution", Decision: "matched"})
	log.Close()

	f, _ := os.Open(path)
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("expected one line")
	}
	var e Entry
	if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.PrevHash != GenesisHash {
		t.Errorf("first entry prev_hash must be genesis, got %s", e.PrevHash)
	}
	if e.Timestamp == "" {
		t.Error("timestamp must be filled when empty")
	}
}

func TestReopenRecoversChainTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	log, _ := Open(path)
	log.Record(Entry{Kind: "capability", Decision: "allow"})
	log.Close()

	log, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	log.Record(Entry{Kind: "capability", Decision: "rejected"})
	log.Close()

	result := Verify(path)
	if !result.Valid {
		t.Fatalf("chain broken across reopen: %s (line %d)", result.Error, result.ErrorLine)
	}
	if result.Lines != 2 {
		t.Errorf("expected 2 lines, got %d", result.Lines)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log, _ := Open(path)
	log.Record(Entry{Kind: "capability", Capability: "session.exit", Decision: "allow"})
	log.Record(Entry{Kind: "capability", Capability: "session.exit", Decision: "allow"})
	log.Close()

	data, _ := os.ReadFile(path)
	tampered := []byte(string(data))
	for i := range tampered {
		if tampered[i] == 'x' {
			tampered[i] = 'y'
			break
		}
	}
	os.WriteFile(path, tampered, 0600)

	result := Verify(path)
	if result.Valid {
		t.Fatal("tampered log must fail verification")
	}
	if result.ErrorLine == 0 {
		t.Errorf("expected the broken line reported, got %+v", result)
	}
}

func TestVerifyMissingFile(t *testing.T) {
	result := Verify(filepath.Join(t.TempDir(), "nope.jsonl"))
	if result.Valid {
		t.Error("missing file must not verify")
	}
}
