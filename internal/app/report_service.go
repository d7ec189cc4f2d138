package app

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/report"
)

// ReportService orchestrates the fetches behind the report views and
// hands the resolved collections to the pure aggregation functions.
type ReportService struct {
	content ContentStore
	results ResultStore
	roster  RosterStore
	log     *logrus.Logger
}

func NewReportService(content ContentStore, results ResultStore, roster RosterStore, log *logrus.Logger) *ReportService {
	return &ReportService{content: content, results: results, roster: roster, log: log}
}

// UserHistory builds the personal learning report. The content fetch is
// sequenced after the results fetch; the wrong-answer join runs only
// once both collections have resolved.
func (s *ReportService) UserHistory(ctx context.Context, userID string) ([]report.QuizHistoryItem, error) {
	results, err := s.results.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	content, err := s.content.CreatedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	return report.BuildHistory(results, content), nil
}

// ClassroomView is everything the classroom page needs. Teacher-only
// collections (roster, class-wide results) have no dependency on the
// results/content chain or on each other and are fetched concurrently.
type ClassroomView struct {
	History        []report.QuizHistoryItem      `json:"history"`
	Roster         []domain.Student              `json:"students,omitempty"`
	StudentReports []report.StudentReport        `json:"studentReports,omitempty"`
	ClassReports   map[string]report.ClassReport `json:"reportByQuestionId,omitempty"`
}

// Classroom builds the classroom report for a viewer. Students get their
// own history against the classroom content; teachers additionally get
// roster, per-student, and class-distribution views.
func (s *ReportService) Classroom(ctx context.Context, classroom, userID string, role domain.Role) (*ClassroomView, error) {
	results, err := s.results.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	school, grade, class, err := splitClassroom(classroom)
	if err != nil {
		return nil, err
	}
	content, err := s.content.ClassroomContent(ctx, school, grade, class)
	if err != nil {
		return nil, err
	}

	view := &ClassroomView{History: report.BuildHistory(results, content)}
	if role != domain.RoleTeacher {
		return view, nil
	}

	var (
		roster       []domain.Student
		classResults []domain.ResultRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.roster.Students(gctx, classroom)
		return err
	})
	g.Go(func() error {
		var err error
		classResults, err = s.results.ByQuizPrefix(gctx, "t-"+classroom+"-")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view.Roster = roster
	view.StudentReports = report.BuildStudentReports(classResults, content, roster)
	view.ClassReports = report.BuildClassReports(content, classResults, roster)
	return view, nil
}

func splitClassroom(classroom string) (school, grade, class string, err error) {
	code, parseErr := domain.ParseRoomCode("t-" + classroom)
	if parseErr != nil {
		return "", "", "", domain.ErrInvalidRoomCode
	}
	return code.SchoolCode, code.Grade, code.Class, nil
}
