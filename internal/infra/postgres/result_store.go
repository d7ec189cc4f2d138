package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-quiz-service/internal/domain"
)

// ResultStore persists quiz attempt results in Postgres.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Exists(ctx context.Context, userID, quizID string) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM quiz_results WHERE user_id=$1 AND question_id=$2`, userID, quizID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check result exists: %w", err)
	}
	return count > 0, nil
}

// Save replaces any previous submission for the same (user, quiz) pair
// inside one transaction, so resubmitting is idempotent.
func (s *ResultStore) Save(ctx context.Context, sub domain.ResultSubmission) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM quiz_results WHERE user_id=$1 AND question_id=$2`, sub.UserID, sub.QuizID); err != nil {
		return fmt.Errorf("clear previous results: %w", err)
	}
	for _, entry := range sub.Results {
		if _, err := tx.Exec(ctx,
			`INSERT INTO quiz_results (user_id, question_id, question_num, user_answer, correct_answer, is_correct)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			sub.UserID, sub.QuizID, entry.QuestionNum, entry.UserAnswer, entry.CorrectAnswer, entry.IsCorrect); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// Update overwrites answer and correctness per existing row; rows that
// were never saved are left alone.
func (s *ResultStore) Update(ctx context.Context, sub domain.ResultSubmission) error {
	for _, entry := range sub.Results {
		if _, err := s.pool.Exec(ctx,
			`UPDATE quiz_results SET user_answer=$1, is_correct=$2
			 WHERE user_id=$3 AND question_id=$4 AND question_num=$5`,
			entry.UserAnswer, entry.IsCorrect, sub.UserID, sub.QuizID, entry.QuestionNum); err != nil {
			return fmt.Errorf("update result: %w", err)
		}
	}
	return nil
}

func (s *ResultStore) ByUser(ctx context.Context, userID string) ([]domain.ResultRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, question_id, question_num, user_answer, correct_answer, is_correct
		 FROM quiz_results WHERE user_id=$1 ORDER BY question_id, question_num`, userID)
	if err != nil {
		return nil, fmt.Errorf("load user results: %w", err)
	}
	return scanResults(rows)
}

func (s *ResultStore) ByQuizPrefix(ctx context.Context, prefix string) ([]domain.ResultRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, question_id, question_num, user_answer, correct_answer, is_correct
		 FROM quiz_results WHERE question_id LIKE $1 || '%' ORDER BY question_id, question_num`, prefix)
	if err != nil {
		return nil, fmt.Errorf("load class results: %w", err)
	}
	return scanResults(rows)
}

func scanResults(rows pgx.Rows) ([]domain.ResultRecord, error) {
	defer rows.Close()

	var records []domain.ResultRecord
	for rows.Next() {
		var r domain.ResultRecord
		if err := rows.Scan(&r.UserID, &r.QuizID, &r.QuestionNum, &r.UserAnswer, &r.CorrectAnswer, &r.Correct); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return records, nil
}
