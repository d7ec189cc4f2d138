package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/infra/memory"
)

// ContentCache caches quiz content in Redis (one JSON blob per room) and
// falls back to a loader on cache miss. Report-side lookups are not
// cached; they must see freshly created quizzes.
type ContentCache struct {
	client *redis.Client
	loader memory.ContentLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewContentCache(client *redis.Client, loader memory.ContentLoader, ttl time.Duration) *ContentCache {
	return &ContentCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ContentCache) QuizContent(ctx context.Context, roomCode string) ([]domain.Question, error) {
	key := c.key(roomCode)

	if questions, ok := c.fromCache(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(roomCode, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.fromCache(ctx, key); ok {
			return questions, nil
		}

		questions, err := c.loader.LoadQuizContent(ctx, roomCode)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(questions); err == nil {
			// best-effort fill
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
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

func (c *ContentCache) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (c *ContentCache) key(roomCode string) string {
	return "quiz:content:" + roomCode
}

func (c *ContentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
