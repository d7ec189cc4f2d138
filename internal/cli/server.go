package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/config"
	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/infra/memory"
	infrapg "classroom-quiz-service/internal/infra/postgres"
	infraredis "classroom-quiz-service/internal/infra/redis"
	"classroom-quiz-service/internal/logging"
	transport "classroom-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log := logging.New("classroom-quiz")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var (
		loader  memory.ContentLoader = memory.NewStaticContentLoader(sampleQuestions())
		results app.ResultStore      = memory.NewResultStore()
		roster  app.RosterStore      = memory.NewRosterStore(sampleRoster())
	)
	if pool != nil {
		loader = infrapg.NewContentStore(pool)
		results = infrapg.NewResultStore(pool)
		roster = infrapg.NewRosterStore(pool)
	}

	var content app.ContentStore
	if redisClient != nil {
		content = infraredis.NewContentCache(redisClient, loader, contentTTL)
	} else {
		content = memory.NewContentCache(loader, contentTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = infraredis.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	playService := app.NewPlayService(content, results, sessions, log)
	reportService := app.NewReportService(content, results, roster, log)
	wsHandler := transport.NewWSHandler(playService, log)
	reportHandler := transport.NewReportHandler(reportService, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/play", wsHandler.ServePlay)
	mux.HandleFunc("GET /api/reports/user/{userId}", reportHandler.UserHistory)
	mux.HandleFunc("GET /api/reports/classroom/{classroom}", reportHandler.Classroom)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting classroom quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions provides a minimal quiz for demo runs without Postgres.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			QuizID:    "s-001-3-1-1",
			CreatorID: "001-3-1-07",
			Number:    1,
			Kind:      domain.KindMultiple,
			Text:      "Which planet is closest to the sun?",
			Options: []domain.Option{
				{ID: "A", Text: "Venus"},
				{ID: "B", Text: "Mercury"},
				{ID: "C", Text: "Mars"},
			},
			Answer:      "B",
			Explanation: "Mercury orbits closest to the sun.",
			Unit1:       "Science", Unit2: "Space", Unit3: "Planets",
		},
		{
			QuizID:      "s-001-3-1-1",
			CreatorID:   "001-3-1-07",
			Number:      2,
			Kind:        domain.KindTrueFalse,
			Text:        "The sun is a star.",
			Answer:      "true",
			Explanation: "The sun is a main-sequence star.",
			Unit1:       "Science", Unit2: "Space", Unit3: "Stars",
		},
		{
			QuizID:      "s-001-3-1-1",
			CreatorID:   "001-3-1-07",
			Number:      3,
			Kind:        domain.KindSubjective,
			Text:        "Name the galaxy we live in.",
			Answer:      "Milky Way",
			Explanation: "Earth sits in the Milky Way galaxy.",
			Unit1:       "Science", Unit2: "Space", Unit3: "Galaxies",
		},
	}
}

func sampleRoster() map[string][]domain.Student {
	return map[string][]domain.Student{
		"001-3-1": {
			{ID: "001-3-1-07", StudentNumber: "7", Name: "Alice"},
			{ID: "001-3-1-12", StudentNumber: "12", Name: "Bob"},
		},
	}
}
