package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

const createQuestionsSQL = `
CREATE TABLE IF NOT EXISTS questions (
	id BIGSERIAL PRIMARY KEY,
	question_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	question_num INT NOT NULL,
	question_type TEXT NOT NULL,
	question_text TEXT NOT NULL,
	options TEXT,
	answer TEXT NOT NULL,
	explanation TEXT NOT NULL DEFAULT '',
	unit1 TEXT NOT NULL DEFAULT '',
	unit2 TEXT NOT NULL DEFAULT '',
	unit3 TEXT NOT NULL DEFAULT '',
	UNIQUE (question_id, question_num)
);
CREATE INDEX IF NOT EXISTS questions_user_id_idx ON questions (user_id);
`

const createResultsSQL = `
CREATE TABLE IF NOT EXISTS quiz_results (
	id BIGSERIAL PRIMARY KEY,
	user_id TEXT NOT NULL,
	question_id TEXT NOT NULL,
	question_num INT NOT NULL,
	user_answer TEXT NOT NULL DEFAULT '',
	correct_answer TEXT NOT NULL DEFAULT '',
	is_correct BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (user_id, question_id, question_num)
);
CREATE INDEX IF NOT EXISTS quiz_results_question_id_idx ON quiz_results (question_id);
`

const createUsersSQL = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	student_number TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	user_type TEXT NOT NULL DEFAULT 'student'
);
`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, stmt := range []string{createQuestionsSQL, createResultsSQL, createUsersSQL} {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS users; DROP TABLE IF EXISTS quiz_results; DROP TABLE IF EXISTS questions`)
			return err
		},
	)
}
