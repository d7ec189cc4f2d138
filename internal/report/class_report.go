package report

import (
	"sort"

	"classroom-quiz-service/internal/domain"
)

// AnswerBucket is one bar of a per-question answer distribution.
type AnswerBucket struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percentage"`
}

// QuestionBreakdown is the answer distribution for one question of a quiz.
type QuestionBreakdown struct {
	QuestionNum int             `json:"questionNum"`
	Text        string          `json:"questionText"`
	Options     []domain.Option `json:"options"`
	Answer      string          `json:"answer"`
	Responses   int             `json:"responses"`
	Buckets     []AnswerBucket  `json:"submissionStats"`
}

// ClassReport is the per-quiz classroom view: who submitted, who did not,
// and how answers were distributed per question.
type ClassReport struct {
	Total        int                 `json:"total"`
	Submitted    int                 `json:"submitted"`
	NotSubmitted []string            `json:"notSubmittedIds"`
	Questions    []QuestionBreakdown `json:"questions"`
}

// maxFreeTextBuckets caps the histogram for subjective questions at the
// most frequent raw answers.
const maxFreeTextBuckets = 4

// BuildClassReports computes one ClassReport per quiz id found in
// content. classResults holds every record submitted in the classroom;
// roster is the full student list, whose complement against the
// submitters becomes the not-submitted set (by student number).
func BuildClassReports(content []domain.Question, classResults []domain.ResultRecord, roster []domain.Student) map[string]ClassReport {
	groups := groupByQuiz(classResults)

	byQuiz := make(map[string][]domain.Question)
	order := make([]string, 0)
	for _, q := range content {
		if _, ok := byQuiz[q.QuizID]; !ok {
			order = append(order, q.QuizID)
		}
		byQuiz[q.QuizID] = append(byQuiz[q.QuizID], q)
	}

	reports := make(map[string]ClassReport, len(order))
	for _, quizID := range order {
		entries := groups[quizID]

		submitters := make(map[string]bool)
		for _, e := range entries {
			submitters[e.UserID] = true
		}
		notSubmitted := []string{}
		for _, stu := range roster {
			if !submitters[stu.ID] {
				notSubmitted = append(notSubmitted, stu.StudentNumber)
			}
		}

		reports[quizID] = ClassReport{
			Total:        len(roster),
			Submitted:    len(submitters),
			NotSubmitted: notSubmitted,
			Questions:    buildBreakdowns(byQuiz[quizID], entries),
		}
	}
	return reports
}

func buildBreakdowns(questions []domain.Question, entries []domain.ResultRecord) []QuestionBreakdown {
	byNum := make(map[int][]domain.ResultRecord)
	for _, e := range entries {
		byNum[e.QuestionNum] = append(byNum[e.QuestionNum], e)
	}

	sorted := append([]domain.Question(nil), questions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	breakdowns := make([]QuestionBreakdown, 0, len(sorted))
	for _, q := range sorted {
		responses := byNum[q.Number]
		breakdowns = append(breakdowns, QuestionBreakdown{
			QuestionNum: q.Number,
			Text:        q.Text,
			Options:     q.Options,
			Answer:      q.Answer,
			Responses:   len(responses),
			Buckets:     distribution(q, responses),
		})
	}
	return breakdowns
}

// distribution buckets the responses of one question. Multiple-choice
// questions with 2-4 options bucket by option id; truefalse questions
// (literal "true"/"false" answer and no option list) get fixed O/X
// buckets; everything else falls back to the top-4 raw answers.
func distribution(q domain.Question, responses []domain.ResultRecord) []AnswerBucket {
	counts := make(map[string]int)
	for _, r := range responses {
		counts[domain.NormalizeAnswerText(r.UserAnswer)]++
	}
	total := len(responses)

	switch {
	case len(q.Options) >= 2 && len(q.Options) <= 4:
		buckets := make([]AnswerBucket, 0, len(q.Options))
		for _, opt := range q.Options {
			buckets = append(buckets, bucket(opt.ID, counts[opt.ID], total))
		}
		return buckets

	case isTrueFalse(q):
		return []AnswerBucket{
			bucket("O", counts["true"], total),
			bucket("X", counts["false"], total),
		}

	default:
		type freq struct {
			label string
			count int
		}
		ranked := make([]freq, 0, len(counts))
		for label, count := range counts {
			ranked = append(ranked, freq{label, count})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].count != ranked[j].count {
				return ranked[i].count > ranked[j].count
			}
			return ranked[i].label < ranked[j].label
		})
		if len(ranked) > maxFreeTextBuckets {
			ranked = ranked[:maxFreeTextBuckets]
		}
		buckets := make([]AnswerBucket, 0, len(ranked))
		for _, f := range ranked {
			buckets = append(buckets, bucket(f.label, f.count, total))
		}
		return buckets
	}
}

// isTrueFalse detects truefalse questions by their canonical answer being
// exactly the "true"/"false" literal with no parsed option list.
func isTrueFalse(q domain.Question) bool {
	return (q.Answer == "true" || q.Answer == "false") && len(q.Options) == 0
}

func bucket(label string, count, total int) AnswerBucket {
	b := AnswerBucket{Label: label, Count: count}
	if total > 0 {
		b.Percent = float64(count) * 100 / float64(total)
	}
	return b
}
