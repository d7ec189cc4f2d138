package app

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"classroom-quiz-service/internal/domain"
)

// State is the play-session phase. Loading is the pre-session phase
// handled by PlayService.Start; a constructed session is already
// presenting its first question.
type State int

const (
	StateLoading State = iota
	StatePresenting
	StateAnswered
	StateSubmitting
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePresenting:
		return "presenting"
	case StateAnswered:
		return "answered"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// feedbackDelay is how long the transient correct/incorrect indicator
// stays visible. Presentation decoration only; nothing downstream
// depends on it firing.
const feedbackDelay = time.Second

// SelectOutcome reports what Select did with a submitted answer.
type SelectOutcome struct {
	Accepted bool
	Correct  bool
}

// WrongReview is one incorrectly answered question in the completion
// summary.
type WrongReview struct {
	Number        int                 `json:"questionNum"`
	Text          string              `json:"questionText"`
	UserAnswer    string              `json:"userAnswer"`
	CorrectAnswer string              `json:"correctAnswer"`
	Explanation   string              `json:"explanation"`
	Options       []domain.Option     `json:"options"`
	Kind          domain.QuestionKind `json:"questionType"`
}

// Summary is the terminal view of a completed session.
type Summary struct {
	Score   int           `json:"score"`
	Correct int           `json:"correctAnswers"`
	Total   int           `json:"totalQuestions"`
	Wrong   []WrongReview `json:"wrongAnswers"`
}

// PlaySession walks one user through one quiz attempt. It exclusively
// owns the answer ledger for its lifetime; nothing else mutates it.
type PlaySession struct {
	id            string
	code          domain.RoomCode
	userID        string
	questions     []domain.Question
	alreadySolved bool
	results       ResultStore
	log           *logrus.Entry

	mu               sync.Mutex
	state            State
	idx              int
	ledger           []domain.Answer
	explanationShown bool
	feedbackVisible  bool
	feedbackCorrect  bool
	feedbackGen      int

	schedule func(time.Duration, func())
}

// NewPlaySession builds a session presenting its first question. Exported
// for infrastructure and tests; normal flow goes through PlayService.Start.
func NewPlaySession(id string, code domain.RoomCode, userID string, questions []domain.Question, alreadySolved bool, results ResultStore, log *logrus.Logger) *PlaySession {
	return &PlaySession{
		id:            id,
		code:          code,
		userID:        userID,
		questions:     questions,
		alreadySolved: alreadySolved,
		results:       results,
		log:           log.WithField("session", id),
		state:         StatePresenting,
		ledger:        make([]domain.Answer, len(questions)),
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// SetScheduler is test-only, replacing the feedback-clear timer.
func (s *PlaySession) SetScheduler(fn func(time.Duration, func())) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule = fn
}

func (s *PlaySession) ID() string                { return s.id }
func (s *PlaySession) RoomCode() domain.RoomCode { return s.code }
func (s *PlaySession) UserID() string            { return s.userID }

// State returns the current phase.
func (s *PlaySession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the question on display, its 0-based ordinal, and the
// question count.
func (s *PlaySession) Current() (domain.Question, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions[s.idx], s.idx, len(s.questions)
}

// Select records an answer for the current question. Re-selection while
// the question is already answered is ignored, not an error. Correctness
// is type-aware: truefalse compares booleans, everything else compares
// trimmed strings.
func (s *PlaySession) Select(answer domain.Answer) SelectOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePresenting || !answer.Answered() {
		return SelectOutcome{}
	}

	q := s.questions[s.idx]
	correct := answer.Matches(q)

	s.ledger[s.idx] = answer
	s.state = StateAnswered
	s.feedbackVisible = true
	s.feedbackCorrect = correct
	s.feedbackGen++

	gen := s.feedbackGen
	s.schedule(feedbackDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A newer selection owns the indicator now.
		if s.feedbackGen == gen {
			s.feedbackVisible = false
		}
	})

	return SelectOutcome{Accepted: true, Correct: correct}
}

// Feedback reports the transient correctness indicator.
func (s *PlaySession) Feedback() (visible, correct bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedbackVisible, s.feedbackCorrect
}

// ToggleExplanation flips the explanation panel for the answered question.
func (s *PlaySession) ToggleExplanation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAnswered {
		return false
	}
	s.explanationShown = !s.explanationShown
	return s.explanationShown
}

// Advance moves past an answered question. On the last ordinal it runs
// the persistence policy once and completes the session; completion is
// unconditional, persistence failures are logged and swallowed.
func (s *PlaySession) Advance(ctx context.Context) (*Summary, error) {
	s.mu.Lock()

	switch s.state {
	case StateCompleted:
		s.mu.Unlock()
		return nil, domain.ErrSessionCompleted
	case StateAnswered:
	default:
		s.mu.Unlock()
		return nil, domain.ErrNotAnswered
	}

	if s.idx < len(s.questions)-1 {
		s.idx++
		s.state = StatePresenting
		s.explanationShown = false
		s.feedbackVisible = false
		s.feedbackGen++
		s.mu.Unlock()
		return nil, nil
	}

	s.state = StateSubmitting
	sub := s.submissionLocked()
	code := s.code
	alreadySolved := s.alreadySolved
	s.mu.Unlock()

	s.persist(ctx, code, alreadySolved, sub)

	s.mu.Lock()
	s.state = StateCompleted
	summary := s.summaryLocked()
	s.mu.Unlock()
	return summary, nil
}

// persist applies the room-scope persistence policy. Student rooms are
// retakeable (create or overwrite); teacher rooms take exactly one
// submission and silently discard the rest. Unknown scopes never touch
// the store.
func (s *PlaySession) persist(ctx context.Context, code domain.RoomCode, alreadySolved bool, sub domain.ResultSubmission) {
	var err error
	switch {
	case code.Role == domain.RoleStudent && alreadySolved:
		err = s.results.Update(ctx, sub)
	case code.Role == domain.RoleStudent:
		err = s.results.Save(ctx, sub)
	case code.Role == domain.RoleTeacher && !alreadySolved:
		err = s.results.Save(ctx, sub)
	case code.Role == domain.RoleTeacher:
		return
	default:
		return
	}
	if err != nil {
		// Completion wins over retry complexity; the user still sees
		// their score.
		s.log.WithError(err).WithFields(logrus.Fields{
			"roomCode": code.String(),
			"userId":   s.userID,
		}).Error("result persistence failed")
	}
}

func (s *PlaySession) submissionLocked() domain.ResultSubmission {
	entries := make([]domain.ResultEntry, 0, len(s.questions))
	for i, q := range s.questions {
		answer := s.ledger[i]
		entries = append(entries, domain.ResultEntry{
			QuestionNum:   q.Number,
			UserAnswer:    answer.String(),
			CorrectAnswer: q.Answer,
			IsCorrect:     answer.Matches(q),
		})
	}
	return domain.ResultSubmission{
		UserID:  s.userID,
		QuizID:  s.code.String(),
		Results: entries,
	}
}

// Summary returns the final score and wrong-answer review. Nil until the
// session completes.
func (s *PlaySession) Summary() *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCompleted {
		return nil
	}
	return s.summaryLocked()
}

func (s *PlaySession) summaryLocked() *Summary {
	total := len(s.questions)
	correct := 0
	wrong := []WrongReview{}
	for i, q := range s.questions {
		if s.ledger[i].Matches(q) {
			correct++
			continue
		}
		options := q.Options
		if options == nil {
			options = []domain.Option{}
		}
		wrong = append(wrong, WrongReview{
			Number:        q.Number,
			Text:          q.Text,
			UserAnswer:    s.ledger[i].String(),
			CorrectAnswer: q.Answer,
			Explanation:   q.Explanation,
			Options:       options,
			Kind:          q.Kind,
		})
	}

	score := 0
	if total > 0 {
		score = int(math.Round(float64(correct) / float64(total) * 100))
	}
	return &Summary{Score: score, Correct: correct, Total: total, Wrong: wrong}
}

// Progress renders "{current}/{total}" for display.
func (s *PlaySession) Progress() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%d/%d", s.idx+1, len(s.questions))
}
