package memory

import (
	"context"
	"testing"

	"classroom-quiz-service/internal/domain"
)

func submission(userID, quizID string, entries ...domain.ResultEntry) domain.ResultSubmission {
	return domain.ResultSubmission{UserID: userID, QuizID: quizID, Results: entries}
}

func TestResultStoreSaveReplaces(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	first := submission("u1", "s-001-3-1-1",
		domain.ResultEntry{QuestionNum: 1, UserAnswer: "A", CorrectAnswer: "B", IsCorrect: false},
		domain.ResultEntry{QuestionNum: 2, UserAnswer: "true", CorrectAnswer: "true", IsCorrect: true},
	)
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second save for the same attempt replaces, never appends.
	second := submission("u1", "s-001-3-1-1",
		domain.ResultEntry{QuestionNum: 1, UserAnswer: "B", CorrectAnswer: "B", IsCorrect: true},
	)
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("resave: %v", err)
	}

	rows, err := store.ByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(rows) != 1 || rows[0].UserAnswer != "B" || !rows[0].Correct {
		t.Fatalf("expected replaced rows, got %+v", rows)
	}
}

func TestResultStoreUpdateOverwritesInPlace(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	if err := store.Save(ctx, submission("u1", "s-001-3-1-1",
		domain.ResultEntry{QuestionNum: 1, UserAnswer: "A", CorrectAnswer: "B", IsCorrect: false},
		domain.ResultEntry{QuestionNum: 2, UserAnswer: "false", CorrectAnswer: "true", IsCorrect: false},
	)); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.Update(ctx, submission("u1", "s-001-3-1-1",
		domain.ResultEntry{QuestionNum: 2, UserAnswer: "true", CorrectAnswer: "true", IsCorrect: true},
	)); err != nil {
		t.Fatalf("update: %v", err)
	}

	rows, _ := store.ByUser(ctx, "u1")
	if len(rows) != 2 {
		t.Fatalf("update must not change row count, got %d", len(rows))
	}
	if rows[0].UserAnswer != "A" || rows[0].Correct {
		t.Fatalf("untouched question mutated: %+v", rows[0])
	}
	if rows[1].UserAnswer != "true" || !rows[1].Correct {
		t.Fatalf("updated question unchanged: %+v", rows[1])
	}
}

func TestResultStoreExists(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	ok, err := store.Exists(ctx, "u1", "s-001-3-1-1")
	if err != nil || ok {
		t.Fatalf("expected no attempt yet, got %v/%v", ok, err)
	}

	store.Save(ctx, submission("u1", "s-001-3-1-1",
		domain.ResultEntry{QuestionNum: 1, UserAnswer: "B", CorrectAnswer: "B", IsCorrect: true},
	))

	ok, _ = store.Exists(ctx, "u1", "s-001-3-1-1")
	if !ok {
		t.Fatalf("expected attempt to exist")
	}
	ok, _ = store.Exists(ctx, "u2", "s-001-3-1-1")
	if ok {
		t.Fatalf("exists must be scoped per user")
	}
}

func TestResultStoreByQuizPrefix(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	store.Save(ctx, submission("u1", "t-001-3-1-1",
		domain.ResultEntry{QuestionNum: 2, UserAnswer: "A", CorrectAnswer: "A", IsCorrect: true},
		domain.ResultEntry{QuestionNum: 1, UserAnswer: "B", CorrectAnswer: "B", IsCorrect: true},
	))
	store.Save(ctx, submission("u2", "t-001-3-1-2",
		domain.ResultEntry{QuestionNum: 1, UserAnswer: "C", CorrectAnswer: "B", IsCorrect: false},
	))
	store.Save(ctx, submission("u1", "t-002-1-1-1",
		domain.ResultEntry{QuestionNum: 1, UserAnswer: "A", CorrectAnswer: "A", IsCorrect: true},
	))

	rows, err := store.ByQuizPrefix(ctx, "t-001-3-1-")
	if err != nil {
		t.Fatalf("by prefix: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows for the classroom, got %d", len(rows))
	}
	// Deterministic order: quiz id then question number.
	if rows[0].QuizID != "t-001-3-1-1" || rows[0].QuestionNum != 1 || rows[2].QuizID != "t-001-3-1-2" {
		t.Fatalf("unexpected ordering %+v", rows)
	}
}
