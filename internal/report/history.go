// Package report turns raw result, content, and roster collections into
// the derived records the report views render. Everything in here is a
// pure transform: same inputs, same outputs, no retained state.
package report

import (
	"fmt"
	"math"

	"classroom-quiz-service/internal/domain"
)

// Fallback text used when a wrong answer cannot be joined back to its
// quiz content. Entries are never dropped over a missing join target.
const (
	fallbackQuestionText = "Question text unavailable."
	fallbackExplanation  = "No explanation available."
)

// contentKey is the composite join key between results and quiz content.
type contentKey struct {
	quizID      string
	questionNum int
}

// WrongAnswer is one incorrectly answered question, enriched with the
// matching content where available.
type WrongAnswer struct {
	Question      string              `json:"question"`
	QuestionText  string              `json:"questionText"`
	UserAnswer    string              `json:"userAnswer"`
	CorrectAnswer string              `json:"correctAnswer"`
	Explanation   string              `json:"explanation"`
	Options       []domain.Option     `json:"options"`
	Kind          domain.QuestionKind `json:"questionType,omitempty"`
}

// QuizHistoryItem is the per-quiz summary row of a user's report.
// Score, CorrectAnswers and TotalQuestions are nil for quizzes that have
// content but were never attempted; "not yet attempted" is a real state,
// not a zero score.
type QuizHistoryItem struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Score          *int          `json:"score"`
	CorrectAnswers *int          `json:"correctAnswers"`
	TotalQuestions *int          `json:"totalQuestions"`
	WrongAnswers   []WrongAnswer `json:"wrongAnswers"`
}

// BuildHistory merges a user's result records with quiz content into one
// history row per quiz. The view is keyed by content: a quiz appears once
// per distinct quiz id in content, in first-seen order, whether or not it
// was ever attempted.
func BuildHistory(results []domain.ResultRecord, content []domain.Question) []QuizHistoryItem {
	groups := groupByQuiz(results)
	index := indexContent(content)

	seen := make(map[string]bool)
	items := make([]QuizHistoryItem, 0)
	for _, q := range content {
		if seen[q.QuizID] {
			continue
		}
		seen[q.QuizID] = true

		item := QuizHistoryItem{
			ID:           q.QuizID,
			Title:        Title(q),
			WrongAnswers: []WrongAnswer{},
		}
		if entries, ok := groups[q.QuizID]; ok && len(entries) > 0 {
			total := len(entries)
			correct := 0
			for _, e := range entries {
				if e.Correct {
					correct++
				}
			}
			score := Score(correct, total)
			item.Score = &score
			item.CorrectAnswers = &correct
			item.TotalQuestions = &total
			item.WrongAnswers = enrichWrongAnswers(entries, index)
		}
		items = append(items, item)
	}
	return items
}

// Score is the rounded percentage of correct answers. Callers must not
// pass total==0; groups are only formed from non-empty record sets.
func Score(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Title renders the display title "{batch}. {unit1}-{unit2}-{unit3}" for
// a quiz, deriving the batch number from the trailing id segment.
func Title(q domain.Question) string {
	return fmt.Sprintf("%d. %s-%s-%s", domain.BatchNumber(q.QuizID), q.Unit1, q.Unit2, q.Unit3)
}

func groupByQuiz(results []domain.ResultRecord) map[string][]domain.ResultRecord {
	groups := make(map[string][]domain.ResultRecord)
	for _, r := range results {
		groups[r.QuizID] = append(groups[r.QuizID], r)
	}
	return groups
}

func indexContent(content []domain.Question) map[contentKey]domain.Question {
	index := make(map[contentKey]domain.Question, len(content))
	for _, q := range content {
		index[contentKey{q.QuizID, q.Number}] = q
	}
	return index
}

// enrichWrongAnswers joins each incorrect record against quiz content by
// (quizID, questionNum). A missing join target degrades that entry to
// fallback text; it is never dropped.
func enrichWrongAnswers(entries []domain.ResultRecord, index map[contentKey]domain.Question) []WrongAnswer {
	wrong := []WrongAnswer{}
	for _, e := range entries {
		if e.Correct {
			continue
		}
		w := WrongAnswer{
			Question:      fmt.Sprintf("%d", e.QuestionNum),
			QuestionText:  fallbackQuestionText,
			UserAnswer:    e.UserAnswer,
			CorrectAnswer: e.CorrectAnswer,
			Explanation:   fallbackExplanation,
			Options:       []domain.Option{},
		}
		if q, ok := index[contentKey{e.QuizID, e.QuestionNum}]; ok {
			w.QuestionText = q.Text
			w.Explanation = q.Explanation
			w.Kind = q.Kind
			if q.Options != nil {
				w.Options = q.Options
			}
		}
		wrong = append(wrong, w)
	}
	return wrong
}
