package redis

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/infra/memory"
)

type countingLoader struct {
	memory.ContentLoader
	quizLoads int32
}

func (l *countingLoader) LoadQuizContent(ctx context.Context, roomCode string) ([]domain.Question, error) {
	atomic.AddInt32(&l.quizLoads, 1)
	return l.ContentLoader.LoadQuizContent(ctx, roomCode)
}

func testClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func contentFixture() []domain.Question {
	return []domain.Question{
		{QuizID: "s-001-3-1-1", Number: 1, Kind: domain.KindMultiple, Text: "Q1", Answer: "B"},
		{QuizID: "s-001-3-1-1", Number: 2, Kind: domain.KindTrueFalse, Text: "Q2", Answer: "true"},
	}
}

func TestQuizContentFillsRedis(t *testing.T) {
	mr, client := testClient(t)
	loader := &countingLoader{ContentLoader: memory.NewStaticContentLoader(contentFixture())}
	cache := NewContentCache(client, loader, time.Minute)

	questions, err := cache.QuizContent(context.Background(), "s-001-3-1-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if !mr.Exists("quiz:content:s-001-3-1-1") {
		t.Fatalf("expected cache fill under the room key")
	}

	// Second call is served from Redis, not the loader.
	if _, err := cache.QuizContent(context.Background(), "s-001-3-1-1"); err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if n := atomic.LoadInt32(&loader.quizLoads); n != 1 {
		t.Fatalf("expected a single backing load, got %d", n)
	}
}

func TestQuizContentReloadsAfterExpiry(t *testing.T) {
	mr, client := testClient(t)
	loader := &countingLoader{ContentLoader: memory.NewStaticContentLoader(contentFixture())}
	cache := NewContentCache(client, loader, time.Minute)

	if _, err := cache.QuizContent(context.Background(), "s-001-3-1-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := cache.QuizContent(context.Background(), "s-001-3-1-1"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := atomic.LoadInt32(&loader.quizLoads); n != 2 {
		t.Fatalf("expected reload after TTL, got %d loads", n)
	}
}

func TestQuizContentMissPropagates(t *testing.T) {
	_, client := testClient(t)
	cache := NewContentCache(client, memory.NewStaticContentLoader(nil), time.Minute)

	if _, err := cache.QuizContent(context.Background(), "s-404-1-1-1"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestQuizContentIgnoresCorruptCacheEntry(t *testing.T) {
	mr, client := testClient(t)
	loader := &countingLoader{ContentLoader: memory.NewStaticContentLoader(contentFixture())}
	cache := NewContentCache(client, loader, time.Minute)

	mr.Set("quiz:content:s-001-3-1-1", "not json")

	questions, err := cache.QuizContent(context.Background(), "s-001-3-1-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected loader fallback, got %+v", questions)
	}
	if n := atomic.LoadInt32(&loader.quizLoads); n != 1 {
		t.Fatalf("expected one backing load, got %d", n)
	}
}
