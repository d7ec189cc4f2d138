package domain

import (
	"strconv"
	"strings"
)

// Role tags who a quiz room is scoped to. It is derived once from the
// room-code prefix and replaces string-prefix checks downstream.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// RoomCode is the parsed form of "{prefix}-{school}-{grade}-{class}[-{batch}]".
// The prefix selects the role; the middle three segments identify the
// classroom for reporting purposes.
type RoomCode struct {
	Role       Role
	SchoolCode string
	Grade      string
	Class      string
	Batch      int

	raw string
}

// ParseRoomCode validates and splits a raw room code. Codes without the
// s- or t- prefix are rejected before anything else looks at them.
func ParseRoomCode(raw string) (RoomCode, error) {
	var role Role
	switch {
	case strings.HasPrefix(raw, "s-"):
		role = RoleStudent
	case strings.HasPrefix(raw, "t-"):
		role = RoleTeacher
	default:
		return RoomCode{}, ErrInvalidRoomCode
	}

	parts := strings.Split(raw, "-")
	if len(parts) < 4 {
		return RoomCode{}, ErrInvalidRoomCode
	}

	code := RoomCode{
		Role:       role,
		SchoolCode: parts[1],
		Grade:      parts[2],
		Class:      parts[3],
		raw:        raw,
	}
	if len(parts) >= 5 {
		code.Batch = BatchNumber(raw)
	}
	return code, nil
}

// Classroom returns the "{school}-{grade}-{class}" identity shared by all
// rooms of one class.
func (c RoomCode) Classroom() string {
	return c.SchoolCode + "-" + c.Grade + "-" + c.Class
}

func (c RoomCode) String() string { return c.raw }

// BatchNumber extracts the trailing numeric segment of a quiz id, used for
// display ordering. Unparseable segments fall back to 0.
func BatchNumber(quizID string) int {
	parts := strings.Split(quizID, "-")
	if len(parts) == 0 {
		return 0
	}
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return n
}
