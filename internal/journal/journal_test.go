package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndRecent(t *testing.T) {
	j := Open(t.TempDir())

	for _, agent := range []string{"first", "second", "third"} {
		err := j.Append(Record{
			Agent:   agent,
			Event:   "pre_commit",
			Mode:    "blocking",
			Status:  "completed",
			Started: time.Now(),
		})
		if err != nil {
			t.Fatalf("Append(%s): %v", agent, err)
		}
	}

	recs, err := j.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Agent != "second" || recs[1].Agent != "third" {
		t.Errorf("got %s, %s; want the two newest", recs[0].Agent, recs[1].Agent)
	}
}

func TestRecentMissingJournal(t *testing.T) {
	j := Open(t.TempDir())
	recs, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent on missing file: %v", err)
	}
	if recs != nil {
		t.Errorf("expected empty history, got %v", recs)
	}
}

func TestRecentSkipsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	j := Open(dir)
	if err := j.Append(Record{Agent: "good", Status: "completed"}); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(filepath.Join(dir, fileName), os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{not json\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := j.Append(Record{Agent: "also-good", Status: "failed"}); err != nil {
		t.Fatal(err)
	}

	recs, err := j.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
}

func TestAppendPermissions(t *testing.T) {
	dir := t.TempDir()
	j := Open(dir)
	if err := j.Append(Record{Agent: "a", Status: "completed"}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("journal permissions = %o, want 600", perm)
	}
}
