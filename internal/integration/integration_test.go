package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/infra/postgres"
	pgmigrations "classroom-quiz-service/internal/infra/postgres/migrations"
	infraredis "classroom-quiz-service/internal/infra/redis"
)

func TestPlayAndReportEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedDatabase(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)

	contentStore := postgres.NewContentStore(pool)
	resultStore := postgres.NewResultStore(pool)
	rosterStore := postgres.NewRosterStore(pool)
	contentCache := infraredis.NewContentCache(redisClient, contentStore, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)

	playService := app.NewPlayService(contentCache, resultStore, sessionStore, log)
	reportService := app.NewReportService(contentCache, resultStore, rosterStore, log)

	// Alice plays the teacher room and gets one of two right.
	session, err := playService.Start(ctx, "t-001-3-1-1", "001-3-1-07")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if out := session.Select(domain.TextAnswer("B")); !out.Accepted || !out.Correct {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if _, err := session.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if out := session.Select(domain.BoolAnswer(false)); !out.Accepted || out.Correct {
		t.Fatalf("unexpected outcome %+v", out)
	}
	summary, err := session.Advance(ctx)
	if err != nil {
		t.Fatalf("final advance: %v", err)
	}
	if summary == nil || summary.Score != 50 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	playService.Close(session.ID())

	// The attempt is now visible as alreadySolved.
	exists, err := resultStore.Exists(ctx, "001-3-1-07", "t-001-3-1-1")
	if err != nil || !exists {
		t.Fatalf("expected persisted attempt, got %v/%v", exists, err)
	}

	// A teacher-room resubmission is silently dropped.
	retake, err := playService.Start(ctx, "t-001-3-1-1", "001-3-1-07")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	retake.Select(domain.TextAnswer("B"))
	if _, err := retake.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	retake.Select(domain.BoolAnswer(true))
	if _, err := retake.Advance(ctx); err != nil {
		t.Fatalf("final advance: %v", err)
	}
	rows, err := resultStore.ByUser(ctx, "001-3-1-07")
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(rows) != 2 || rows[1].Correct {
		t.Fatalf("resubmission must not overwrite the first attempt: %+v", rows)
	}

	// The teacher's classroom report sees the attempt.
	view, err := reportService.Classroom(ctx, "001-3-1", "teacher-1", domain.RoleTeacher)
	if err != nil {
		t.Fatalf("classroom report: %v", err)
	}
	if len(view.Roster) != 2 {
		t.Fatalf("expected 2 students, got %+v", view.Roster)
	}
	rep, ok := view.ClassReports["t-001-3-1-1"]
	if !ok {
		t.Fatalf("expected class report, got %+v", view.ClassReports)
	}
	if rep.Total != 2 || rep.Submitted != 1 || len(rep.NotSubmitted) != 1 {
		t.Fatalf("unexpected submission stats %+v", rep)
	}

	studentView, err := reportService.Classroom(ctx, "001-3-1", "001-3-1-07", domain.RoleStudent)
	if err != nil {
		t.Fatalf("student classroom report: %v", err)
	}
	if len(studentView.History) != 1 {
		t.Fatalf("expected 1 history row, got %+v", studentView.History)
	}
	item := studentView.History[0]
	if item.Score == nil || *item.Score != 50 || len(item.WrongAnswers) != 1 {
		t.Fatalf("unexpected history item %+v", item)
	}
	if item.WrongAnswers[0].QuestionText != "The sun is a star." {
		t.Fatalf("wrong answer not joined to content: %+v", item.WrongAnswers[0])
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedDatabase(t *testing.T, ctx context.Context, dsn string) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	questions := []struct {
		num         int
		kind        string
		text        string
		options     string
		answer      string
		explanation string
	}{
		{1, "multiple", "Which planet is closest to the sun?",
			`[{"id":"A","text":"Venus"},{"id":"B","text":"Mercury"}]`, "B", "Mercury orbits closest."},
		{2, "truefalse", "The sun is a star.", "", "true", "It is a main-sequence star."},
	}
	for _, q := range questions {
		var options any
		if q.options != "" {
			options = q.options
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO questions (question_id, user_id, question_num, question_type, question_text, options, answer, explanation, unit1, unit2, unit3)
			 VALUES ('t-001-3-1-1', 'teacher-1', ?, ?, ?, ?, ?, ?, 'Science', 'Space', 'Planets')`,
			q.num, q.kind, q.text, options, q.answer, q.explanation); err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}

	students := []struct{ id, number, name string }{
		{"001-3-1-07", "7", "Alice"},
		{"001-3-1-12", "12", "Bob"},
	}
	for _, s := range students {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO users (id, student_number, name, user_type) VALUES (?, ?, ?, 'student')`,
			s.id, s.number, s.name); err != nil {
			t.Fatalf("insert student: %v", err)
		}
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (id, student_number, name, user_type) VALUES ('teacher-1', '', 'Ms. Kim', 'teacher')`); err != nil {
		t.Fatalf("insert teacher: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
