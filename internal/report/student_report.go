package report

import (
	"sort"

	"classroom-quiz-service/internal/domain"
)

// EnrichedResult is one result record joined with its quiz content for
// the teacher's per-student view.
type EnrichedResult struct {
	QuizID        string              `json:"questionId"`
	QuestionNum   int                 `json:"questionNum"`
	UserAnswer    string              `json:"userAnswer"`
	CorrectAnswer string              `json:"correctAnswer"`
	Correct       bool                `json:"correct"`
	QuestionText  string              `json:"questionText"`
	Kind          domain.QuestionKind `json:"questionType"`
	Options       []domain.Option     `json:"options"`
}

// StudentReport groups a classroom's results by student.
type StudentReport struct {
	UserID        string           `json:"userId"`
	StudentNumber string           `json:"studentId"`
	Name          string           `json:"name"`
	Results       []EnrichedResult `json:"results"`
}

// BuildStudentReports groups classroom results per student and enriches
// every record with the matching question content. Records for users
// missing from the roster are skipped; missing content degrades to
// fallback text per record.
func BuildStudentReports(classResults []domain.ResultRecord, content []domain.Question, roster []domain.Student) []StudentReport {
	index := indexContent(content)

	byStudent := make(map[string]domain.Student, len(roster))
	for _, stu := range roster {
		byStudent[stu.ID] = stu
	}

	byUser := make(map[string][]domain.ResultRecord)
	for _, r := range classResults {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	reports := make([]StudentReport, 0, len(byUser))
	for userID, records := range byUser {
		stu, ok := byStudent[userID]
		if !ok {
			continue
		}
		enriched := make([]EnrichedResult, 0, len(records))
		for _, r := range records {
			e := EnrichedResult{
				QuizID:        r.QuizID,
				QuestionNum:   r.QuestionNum,
				UserAnswer:    r.UserAnswer,
				CorrectAnswer: r.CorrectAnswer,
				Correct:       r.Correct,
				QuestionText:  fallbackQuestionText,
				Options:       []domain.Option{},
			}
			if q, ok := index[contentKey{r.QuizID, r.QuestionNum}]; ok {
				e.QuestionText = q.Text
				e.Kind = q.Kind
				if q.Options != nil {
					e.Options = q.Options
				}
			}
			enriched = append(enriched, e)
		}
		reports = append(reports, StudentReport{
			UserID:        userID,
			StudentNumber: stu.StudentNumber,
			Name:          stu.Name,
			Results:       enriched,
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StudentNumber < reports[j].StudentNumber
	})
	return reports
}
