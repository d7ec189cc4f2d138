package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-quiz-service/internal/domain"
)

// RosterStore lists classroom students from the users table. Student
// ids are prefixed with their classroom code.
type RosterStore struct {
	pool *pgxpool.Pool
}

func NewRosterStore(pool *pgxpool.Pool) *RosterStore {
	return &RosterStore{pool: pool}
}

func (s *RosterStore) Students(ctx context.Context, classroom string) ([]domain.Student, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, student_number, name FROM users
		 WHERE id LIKE $1 || '-%' AND user_type='student' ORDER BY student_number`, classroom)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		var stu domain.Student
		if err := rows.Scan(&stu.ID, &stu.StudentNumber, &stu.Name); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, stu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return students, nil
}
