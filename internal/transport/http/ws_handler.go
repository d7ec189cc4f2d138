package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
)

// WSHandler drives quiz play sessions over a websocket: the client
// selects answers and advances; the server answers with correctness
// feedback and, at the end, the completion summary.
type WSHandler struct {
	service  *app.PlayService
	upgrader websocket.Upgrader
	validate *validator.Validate
	log      *logrus.Logger
}

func NewWSHandler(service *app.PlayService, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		validate: validator.New(),
		log:      log,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Answer json.RawMessage `json:"answer" validate:"required"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type questionPayload struct {
	Index    int                 `json:"index"`
	Total    int                 `json:"total"`
	Number   int                 `json:"questionNum"`
	Kind     domain.QuestionKind `json:"questionType"`
	Text     string              `json:"questionText"`
	Options  []domain.Option     `json:"options,omitempty"`
	Progress string              `json:"progress"`
}

type feedbackPayload struct {
	Correct bool `json:"correct"`
}

type explanationPayload struct {
	Shown       bool   `json:"shown"`
	Explanation string `json:"explanation,omitempty"`
}

// ServePlay upgrades the request and walks the client through one quiz
// attempt. The session dies with the connection; an abandoned attempt
// leaves no trace.
func (h *WSHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	roomCode := r.URL.Query().Get("roomCode")
	userID := r.URL.Query().Get("userId")
	if roomCode == "" || userID == "" {
		http.Error(w, "missing roomCode or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	session, err := h.service.Start(r.Context(), roomCode, userID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Close(session.ID())

	h.sendQuestion(conn, session)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			h.handleSelect(conn, session, inbound.Payload)
		case "advance":
			done := h.handleAdvance(conn, r, session)
			if done {
				return
			}
		case "explanation":
			h.handleExplanation(conn, session)
		default:
			h.sendError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) handleSelect(conn *websocket.Conn, session *app.PlaySession, raw json.RawMessage) {
	var payload selectPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.sendError(conn, "invalid select payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		h.sendError(conn, "invalid select payload")
		return
	}

	q, _, _ := session.Current()
	answer, ok := decodeAnswer(q.Kind, payload.Answer)
	if !ok {
		h.sendError(conn, "answer type does not match question type")
		return
	}

	outcome := session.Select(answer)
	if !outcome.Accepted {
		// Re-selection of an answered question is ignored, no reply.
		return
	}
	_ = conn.WriteJSON(outboundMessage[feedbackPayload]{Type: "feedback", Payload: feedbackPayload{Correct: outcome.Correct}})
}

func (h *WSHandler) handleAdvance(conn *websocket.Conn, r *http.Request, session *app.PlaySession) bool {
	summary, err := session.Advance(r.Context())
	if err != nil {
		h.sendError(conn, err.Error())
		return false
	}
	if summary != nil {
		_ = conn.WriteJSON(outboundMessage[*app.Summary]{Type: "completed", Payload: summary})
		return true
	}
	h.sendQuestion(conn, session)
	return false
}

func (h *WSHandler) handleExplanation(conn *websocket.Conn, session *app.PlaySession) {
	shown := session.ToggleExplanation()
	payload := explanationPayload{Shown: shown}
	if shown {
		q, _, _ := session.Current()
		payload.Explanation = q.Explanation
	}
	_ = conn.WriteJSON(outboundMessage[explanationPayload]{Type: "explanation", Payload: payload})
}

func (h *WSHandler) sendQuestion(conn *websocket.Conn, session *app.PlaySession) {
	q, idx, total := session.Current()
	_ = conn.WriteJSON(outboundMessage[questionPayload]{Type: "question", Payload: questionPayload{
		Index:    idx,
		Total:    total,
		Number:   q.Number,
		Kind:     q.Kind,
		Text:     q.Text,
		Options:  q.Options,
		Progress: session.Progress(),
	}})
}

func (h *WSHandler) sendError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}})
}

// decodeAnswer keeps truefalse answers boolean-typed until submission;
// everything else is a string.
func decodeAnswer(kind domain.QuestionKind, raw json.RawMessage) (domain.Answer, bool) {
	if kind == domain.KindTrueFalse {
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return domain.Answer{}, false
		}
		return domain.BoolAnswer(b), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Answer{}, false
	}
	return domain.TextAnswer(s), true
}
