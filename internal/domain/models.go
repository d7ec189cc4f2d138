package domain

// QuestionKind discriminates how a question is presented and scored.
type QuestionKind string

const (
	KindMultiple   QuestionKind = "multiple"
	KindTrueFalse  QuestionKind = "truefalse"
	KindSubjective QuestionKind = "subjective"
)

// Option is one choice of a multiple-choice question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is one item of a quiz, immutable once loaded.
// Answer holds the canonical answer in normalized string form;
// truefalse questions use the literals "true" / "false".
type Question struct {
	QuizID      string       `json:"quizId"`
	CreatorID   string       `json:"userId,omitempty"`
	Number      int          `json:"questionNum"`
	Kind        QuestionKind `json:"questionType"`
	Text        string       `json:"questionText"`
	Options     []Option     `json:"options,omitempty"`
	Answer      string       `json:"answer"`
	Explanation string       `json:"explanation"`
	Unit1       string       `json:"unit1"`
	Unit2       string       `json:"unit2"`
	Unit3       string       `json:"unit3"`
}

// ResultRecord is one persisted row per (user, quiz, question).
type ResultRecord struct {
	UserID        string `json:"userId"`
	QuizID        string `json:"questionId"`
	QuestionNum   int    `json:"questionNum"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
}

// ResultEntry is one answered question inside a submission payload.
type ResultEntry struct {
	QuestionNum   int    `json:"questionNum" validate:"gt=0"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// ResultSubmission is the payload handed to the result store when a
// play session finishes.
type ResultSubmission struct {
	UserID  string        `json:"userId" validate:"required"`
	QuizID  string        `json:"questionId" validate:"required"`
	Results []ResultEntry `json:"results" validate:"required,dive"`
}

// Student is one roster row of a classroom.
type Student struct {
	ID            string `json:"id"`
	StudentNumber string `json:"studentId"`
	Name          string `json:"name"`
}
