package domain

import "errors"

var (
	// ErrInvalidRoomCode is returned for room codes without a known role prefix.
	ErrInvalidRoomCode = errors.New("invalid room code")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned when a play session has not been started.
	ErrSessionNotFound = errors.New("play session not found")
	// ErrNotAnswered is returned when advancing before the current question is answered.
	ErrNotAnswered = errors.New("current question not answered")
	// ErrSessionCompleted is returned for actions on an already-completed session.
	ErrSessionCompleted = errors.New("play session already completed")
)
