package memory

import (
	"context"
	"testing"

	"gameshow-service/internal/domain"
)

func TestPlayStoreAnswerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewPlayStore()

	if _, ok, err := store.GetAnswer(ctx, "alice", "q1"); err != nil || ok {
		t.Fatalf("expected no recorded answer, got ok=%v err=%v", ok, err)
	}

	if err := store.SetAnswer(ctx, "alice", "q1", domain.First); err != nil {
		t.Fatalf("set answer: %v", err)
	}
	// Last write wins.
	if err := store.SetAnswer(ctx, "alice", "q1", domain.Third); err != nil {
		t.Fatalf("overwrite answer: %v", err)
	}

	// Reads are idempotent.
	for i := 0; i < 2; i++ {
		answer, ok, err := store.GetAnswer(ctx, "alice", "q1")
		if err != nil || !ok || answer != domain.Third {
			t.Fatalf("read %d: answer=%s ok=%v err=%v", i, answer, ok, err)
		}
	}
}

func TestPlayStoreStatusesAndScore(t *testing.T) {
	ctx := context.Background()
	store := NewPlayStore()

	_ = store.SetAnswerStatus(ctx, "alice", "q1", domain.Correct)
	_ = store.SetAnswerStatus(ctx, "alice", "q2", domain.NoAnswer)
	_ = store.SetAnswerStatus(ctx, "bob", "q1", domain.Incorrect)

	statuses, err := store.AnswerStatuses(ctx, "alice")
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}

	if err := store.SetScore(ctx, "alice", 1); err != nil {
		t.Fatalf("set score: %v", err)
	}
	if score, ok := store.Score("alice"); !ok || score != 1 {
		t.Fatalf("expected score 1, got %d (ok=%v)", score, ok)
	}
}

func TestFailingPlayStore(t *testing.T) {
	store := NewFailingPlayStore()
	if err := store.SetAnswer(context.Background(), "alice", "q1", domain.First); err == nil {
		t.Fatalf("expected failure")
	}
}
