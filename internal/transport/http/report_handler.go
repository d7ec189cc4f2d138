package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
)

// ReportHandler serves the report views as JSON.
type ReportHandler struct {
	service *app.ReportService
	log     *logrus.Logger
}

func NewReportHandler(service *app.ReportService, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{service: service, log: log}
}

// UserHistory serves GET /api/reports/user/{userId}.
func (h *ReportHandler) UserHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	history, err := h.service.UserHistory(r.Context(), userID)
	if err != nil {
		h.log.WithError(err).WithField("userId", userID).Error("user history failed")
		http.Error(w, "could not build report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, history)
}

// Classroom serves GET /api/reports/classroom/{classroom}?userId=&role=.
// The viewer identity is passed explicitly; teacher viewers additionally
// get roster, per-student, and class-distribution views.
func (h *ReportHandler) Classroom(w http.ResponseWriter, r *http.Request) {
	classroom := r.PathValue("classroom")
	userID := r.URL.Query().Get("userId")
	if classroom == "" || userID == "" {
		http.Error(w, "missing classroom or userId", http.StatusBadRequest)
		return
	}
	role := domain.RoleStudent
	if r.URL.Query().Get("role") == string(domain.RoleTeacher) {
		role = domain.RoleTeacher
	}

	view, err := h.service.Classroom(r.Context(), classroom, userID, role)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRoomCode) {
			http.Error(w, "invalid classroom code", http.StatusBadRequest)
			return
		}
		h.log.WithError(err).WithField("classroom", classroom).Error("classroom report failed")
		http.Error(w, "could not build report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, view)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
