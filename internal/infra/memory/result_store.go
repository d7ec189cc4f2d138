package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"classroom-quiz-service/internal/domain"
)

// ResultStore is an in-memory implementation of app.ResultStore.
// Save replaces any previous rows for the same (user, quiz) pair, so a
// resubmitted attempt never leaves stale rows behind; Update overwrites
// answer and correctness per question in place.
type ResultStore struct {
	mu      sync.RWMutex
	records map[attemptKey][]domain.ResultRecord
}

type attemptKey struct {
	userID string
	quizID string
}

func NewResultStore() *ResultStore {
	return &ResultStore{records: make(map[attemptKey][]domain.ResultRecord)}
}

func (s *ResultStore) Exists(_ context.Context, userID, quizID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.records[attemptKey{userID, quizID}]
	return ok && len(rows) > 0, nil
}

func (s *ResultStore) Save(_ context.Context, sub domain.ResultSubmission) error {
	rows := make([]domain.ResultRecord, 0, len(sub.Results))
	for _, entry := range sub.Results {
		rows = append(rows, domain.ResultRecord{
			UserID:        sub.UserID,
			QuizID:        sub.QuizID,
			QuestionNum:   entry.QuestionNum,
			UserAnswer:    entry.UserAnswer,
			CorrectAnswer: entry.CorrectAnswer,
			Correct:       entry.IsCorrect,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[attemptKey{sub.UserID, sub.QuizID}] = rows
	return nil
}

func (s *ResultStore) Update(_ context.Context, sub domain.ResultSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.records[attemptKey{sub.UserID, sub.QuizID}]
	for _, entry := range sub.Results {
		for i := range rows {
			if rows[i].QuestionNum == entry.QuestionNum {
				rows[i].UserAnswer = entry.UserAnswer
				rows[i].Correct = entry.IsCorrect
			}
		}
	}
	return nil
}

func (s *ResultStore) ByUser(_ context.Context, userID string) ([]domain.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ResultRecord
	for key, rows := range s.records {
		if key.userID == userID {
			out = append(out, rows...)
		}
	}
	sortRecords(out)
	return out, nil
}

func (s *ResultStore) ByQuizPrefix(_ context.Context, prefix string) ([]domain.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ResultRecord
	for key, rows := range s.records {
		if strings.HasPrefix(key.quizID, prefix) {
			out = append(out, rows...)
		}
	}
	sortRecords(out)
	return out, nil
}

func sortRecords(records []domain.ResultRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].QuizID != records[j].QuizID {
			return records[i].QuizID < records[j].QuizID
		}
		return records[i].QuestionNum < records[j].QuestionNum
	})
}
