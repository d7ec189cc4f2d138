package memory

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"classroom-quiz-service/internal/domain"
)

// ContentLoader fetches quiz content from a backing store (e.g., Postgres).
type ContentLoader interface {
	LoadQuizContent(ctx context.Context, roomCode string) ([]domain.Question, error)
	LoadClassroomContent(ctx context.Context, schoolCode, grade, class string) ([]domain.Question, error)
	LoadCreatedBy(ctx context.Context, userID string) ([]domain.Question, error)
}

// ContentCache caches per-room quiz content with TTL to avoid repeated
// backing-store hits during play. Report-side lookups (classroom,
// created-by) pass straight through; they change with every new quiz.
type ContentCache struct {
	loader ContentLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedContent
}

type cachedContent struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewContentCache(loader ContentLoader, ttl time.Duration) *ContentCache {
	return &ContentCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedContent),
	}
}

func (c *ContentCache) QuizContent(ctx context.Context, roomCode string) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[roomCode]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(roomCode, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[roomCode]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.loader.LoadQuizContent(ctx, roomCode)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[roomCode] = cachedContent{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *ContentCache) ClassroomContent(ctx context.Context, schoolCode, grade, class string) ([]domain.Question, error) {
	return c.loader.LoadClassroomContent(ctx, schoolCode, grade, class)
}

func (c *ContentCache) CreatedBy(ctx context.Context, userID string) ([]domain.Question, error) {
	return c.loader.LoadCreatedBy(ctx, userID)
}

func (c *ContentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticContentLoader serves questions from an in-memory slice (useful
// for tests/demos).
type StaticContentLoader struct {
	questions []domain.Question
}

func NewStaticContentLoader(questions []domain.Question) *StaticContentLoader {
	return &StaticContentLoader{questions: questions}
}

func (l *StaticContentLoader) LoadQuizContent(_ context.Context, roomCode string) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range l.questions {
		if q.QuizID == roomCode {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrQuizNotFound
	}
	return out, nil
}

func (l *StaticContentLoader) LoadClassroomContent(_ context.Context, schoolCode, grade, class string) ([]domain.Question, error) {
	prefix := "t-" + schoolCode + "-" + grade + "-" + class + "-"
	var out []domain.Question
	for _, q := range l.questions {
		if strings.HasPrefix(q.QuizID, prefix) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (l *StaticContentLoader) LoadCreatedBy(_ context.Context, userID string) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range l.questions {
		if q.CreatorID == userID {
			out = append(out, q)
		}
	}
	return out, nil
}
