package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"classroom-quiz-service/internal/domain"
)

// ContentStore loads quiz content (from cache/backing store).
type ContentStore interface {
	// QuizContent returns the ordered question list for one room code.
	QuizContent(ctx context.Context, roomCode string) ([]domain.Question, error)
	// ClassroomContent returns every question created for a classroom.
	ClassroomContent(ctx context.Context, schoolCode, grade, class string) ([]domain.Question, error)
	// CreatedBy returns every question a user generated.
	CreatedBy(ctx context.Context, userID string) ([]domain.Question, error)
}

// ResultStore persists and fetches quiz attempt results.
type ResultStore interface {
	Exists(ctx context.Context, userID, quizID string) (bool, error)
	Save(ctx context.Context, sub domain.ResultSubmission) error
	Update(ctx context.Context, sub domain.ResultSubmission) error
	ByUser(ctx context.Context, userID string) ([]domain.ResultRecord, error)
	ByQuizPrefix(ctx context.Context, prefix string) ([]domain.ResultRecord, error)
}

// RosterStore lists the students of a classroom (teacher views only).
type RosterStore interface {
	Students(ctx context.Context, classroom string) ([]domain.Student, error)
}

// SessionRepository abstracts how in-flight play sessions are tracked
// (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *PlaySession)
	Get(id string) (*PlaySession, bool)
	Delete(id string)
}

// PlayService starts and tracks quiz play sessions.
type PlayService struct {
	content  ContentStore
	results  ResultStore
	sessions SessionRepository
	log      *logrus.Logger
}

func NewPlayService(content ContentStore, results ResultStore, sessions SessionRepository, log *logrus.Logger) *PlayService {
	return &PlayService{content: content, results: results, sessions: sessions, log: log}
}

// Start loads quiz content for a room code and opens a play session.
// Invalid room codes are rejected before any fetch; a content-load
// failure blocks the session from starting.
func (s *PlayService) Start(ctx context.Context, rawRoomCode, userID string) (*PlaySession, error) {
	code, err := domain.ParseRoomCode(rawRoomCode)
	if err != nil {
		return nil, err
	}

	questions, err := s.content.QuizContent(ctx, rawRoomCode)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrQuizNotFound
	}

	// A failed lookup only loses the resubmission distinction; starting
	// the session matters more than the flag.
	alreadySolved, err := s.results.Exists(ctx, userID, rawRoomCode)
	if err != nil {
		s.log.WithError(err).WithField("roomCode", rawRoomCode).Warn("already-solved lookup failed")
		alreadySolved = false
	}

	session := NewPlaySession(uuid.NewString(), code, userID, questions, alreadySolved, s.results, s.log)
	s.sessions.Put(session)
	return session, nil
}

// Session looks up a tracked play session by id.
func (s *PlayService) Session(id string) (*PlaySession, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Close drops a session from tracking, answered or not. The ledger dies
// with it.
func (s *PlayService) Close(id string) {
	s.sessions.Delete(id)
}
