package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-quiz-service/internal/domain"
)

const questionColumns = `question_id, user_id, question_num, question_type, question_text, options, answer, explanation, unit1, unit2, unit3`

// ContentStore loads quiz content rows from Postgres. It implements
// memory.ContentLoader so it can sit behind either content cache.
type ContentStore struct {
	pool *pgxpool.Pool
}

func NewContentStore(pool *pgxpool.Pool) *ContentStore {
	return &ContentStore{pool: pool}
}

func (s *ContentStore) LoadQuizContent(ctx context.Context, roomCode string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE question_id=$1 ORDER BY question_num`, roomCode)
	if err != nil {
		return nil, fmt.Errorf("load quiz content: %w", err)
	}
	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrQuizNotFound
	}
	return questions, nil
}

func (s *ContentStore) LoadClassroomContent(ctx context.Context, schoolCode, grade, class string) ([]domain.Question, error) {
	prefix := "t-" + schoolCode + "-" + grade + "-" + class + "-"
	rows, err := s.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE question_id LIKE $1 || '%' ORDER BY question_id, question_num`, prefix)
	if err != nil {
		return nil, fmt.Errorf("load classroom content: %w", err)
	}
	return scanQuestions(rows)
}

func (s *ContentStore) LoadCreatedBy(ctx context.Context, userID string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE user_id=$1 ORDER BY question_id, question_num`, userID)
	if err != nil {
		return nil, fmt.Errorf("load created content: %w", err)
	}
	return scanQuestions(rows)
}

// scanQuestions maps rows to domain questions. A row with malformed
// options keeps its other fields; only the option list degrades.
func scanQuestions(rows pgx.Rows) ([]domain.Question, error) {
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			rawOptions *string
			rawAnswer  string
		)
		if err := rows.Scan(&q.QuizID, &q.CreatorID, &q.Number, &q.Kind, &q.Text,
			&rawOptions, &rawAnswer, &q.Explanation, &q.Unit1, &q.Unit2, &q.Unit3); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Answer = domain.NormalizeAnswerText(rawAnswer)
		if rawOptions != nil {
			if opts, err := domain.ParseOptionList(*rawOptions); err == nil {
				q.Options = opts
			}
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return questions, nil
}
