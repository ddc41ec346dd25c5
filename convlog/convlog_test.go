package convlog

import (
	"path/filepath"
	"testing"

	"github.com/scoreflow-xyz/go-scoreflow/convert"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "sessions.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_BeginAndFinish(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Begin("lilypond", "lilypond")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if id == "" {
		t.Fatal("expected a session id")
	}

	warnings := []convert.Warning{
		{Location: "n1", Message: "slur never closed"},
		{Message: "general problem"},
	}
	if err := store.Finish(id, 42, warnings, true); err != nil {
		t.Fatalf("finish: %v", err)
	}

	sessions, err := store.Sessions(10)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	sess := sessions[0]
	if sess.ID != id {
		t.Errorf("expected id %s, got %s", id, sess.ID)
	}
	if sess.SourceFormat != "lilypond" || sess.TargetFormat != "lilypond" {
		t.Errorf("unexpected formats: %s -> %s", sess.SourceFormat, sess.TargetFormat)
	}
	if sess.NoteCount != 42 || sess.WarningCount != 2 || !sess.OK {
		t.Errorf("unexpected outcome: %+v", sess)
	}
	if sess.EndedAt == nil {
		t.Error("expected ended timestamp")
	}
}

func TestStore_SessionWarnings(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Begin("lilypond", "parts")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	warnings := []convert.Warning{
		{Location: "n1", Message: "first"},
		{Message: "second"},
	}
	if err := store.Finish(id, 3, warnings, false); err != nil {
		t.Fatalf("finish: %v", err)
	}

	got, err := store.SessionWarnings(id)
	if err != nil {
		t.Fatalf("session warnings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(got))
	}
	if got[0].Location != "n1" || got[0].Message != "first" {
		t.Errorf("unexpected first warning: %+v", got[0])
	}
	if got[1].Location != "" || got[1].Message != "second" {
		t.Errorf("unexpected second warning: %+v", got[1])
	}
}

func TestStore_SessionsNewestFirst(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Begin("lilypond", "lilypond")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := store.Finish(first, 1, nil, true); err != nil {
		t.Fatalf("finish: %v", err)
	}
	second, err := store.Begin("lilypond", "parts")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := store.Finish(second, 2, nil, true); err != nil {
		t.Fatalf("finish: %v", err)
	}

	sessions, err := store.Sessions(1)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected limit applied, got %d sessions", len(sessions))
	}
}

func TestStore_UnfinishedSession(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Begin("lilypond", "lilypond"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	sessions, err := store.Sessions(10)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].EndedAt != nil {
		t.Error("unfinished session must have no end timestamp")
	}
	if sessions[0].OK {
		t.Error("unfinished session must not be ok")
	}
}
