package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"classroom-quiz-service/internal/domain"
)

// countingLoader wraps a ContentLoader and counts backing-store hits.
type countingLoader struct {
	ContentLoader
	quizLoads int32
}

func (l *countingLoader) LoadQuizContent(ctx context.Context, roomCode string) ([]domain.Question, error) {
	atomic.AddInt32(&l.quizLoads, 1)
	return l.ContentLoader.LoadQuizContent(ctx, roomCode)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{QuizID: "s-001-3-1-1", CreatorID: "001-3-1-07", Number: 1, Kind: domain.KindMultiple, Text: "Q1", Answer: "B"},
		{QuizID: "s-001-3-1-1", CreatorID: "001-3-1-07", Number: 2, Kind: domain.KindTrueFalse, Text: "Q2", Answer: "true"},
		{QuizID: "t-001-3-1-1", CreatorID: "teacher-1", Number: 1, Kind: domain.KindMultiple, Text: "Q3", Answer: "A"},
		{QuizID: "t-002-1-2-1", CreatorID: "teacher-2", Number: 1, Kind: domain.KindMultiple, Text: "Q4", Answer: "C"},
	}
}

func TestContentCacheServesFromCache(t *testing.T) {
	loader := &countingLoader{ContentLoader: NewStaticContentLoader(sampleQuestions())}
	cache := NewContentCache(loader, time.Minute)

	for i := 0; i < 3; i++ {
		questions, err := cache.QuizContent(context.Background(), "s-001-3-1-1")
		if err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		if len(questions) != 2 {
			t.Fatalf("load %d: expected 2 questions, got %d", i, len(questions))
		}
	}
	if n := atomic.LoadInt32(&loader.quizLoads); n != 1 {
		t.Fatalf("expected a single backing load, got %d", n)
	}
}

func TestContentCacheExpires(t *testing.T) {
	loader := &countingLoader{ContentLoader: NewStaticContentLoader(sampleQuestions())}
	cache := NewContentCache(loader, time.Minute)

	now := time.Now()
	cache.clock = func() time.Time { return now }

	if _, err := cache.QuizContent(context.Background(), "s-001-3-1-1"); err != nil {
		t.Fatalf("first load: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.QuizContent(context.Background(), "s-001-3-1-1"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := atomic.LoadInt32(&loader.quizLoads); n != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", n)
	}
}

func TestContentCacheCollapsesConcurrentLoads(t *testing.T) {
	loader := &countingLoader{ContentLoader: NewStaticContentLoader(sampleQuestions())}
	cache := NewContentCache(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.QuizContent(context.Background(), "s-001-3-1-1"); err != nil {
				t.Errorf("load: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&loader.quizLoads); n != 1 {
		t.Fatalf("concurrent loads must collapse to one, got %d", n)
	}
}

func TestContentCachePropagatesMiss(t *testing.T) {
	cache := NewContentCache(NewStaticContentLoader(nil), time.Minute)
	if _, err := cache.QuizContent(context.Background(), "s-404-1-1-1"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestStaticLoaderClassroomScope(t *testing.T) {
	loader := NewStaticContentLoader(sampleQuestions())

	questions, err := loader.LoadClassroomContent(context.Background(), "001", "3", "1")
	if err != nil {
		t.Fatalf("classroom load: %v", err)
	}
	if len(questions) != 1 || questions[0].QuizID != "t-001-3-1-1" {
		t.Fatalf("expected only the classroom's teacher rooms, got %+v", questions)
	}
}

func TestStaticLoaderCreatedBy(t *testing.T) {
	loader := NewStaticContentLoader(sampleQuestions())

	questions, err := loader.LoadCreatedBy(context.Background(), "001-3-1-07")
	if err != nil {
		t.Fatalf("created-by load: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}
