package domain

import "strings"

// Answer is a user's submitted value for one question. The zero value
// means unanswered; an unanswered slot never matches any canonical
// answer, including an empty one.
type Answer struct {
	answered bool
	boolean  bool
	isBool   bool
	text     string
}

// TextAnswer wraps a free-text or option-id answer.
func TextAnswer(s string) Answer {
	return Answer{answered: true, text: s}
}

// BoolAnswer wraps a truefalse answer. It stays boolean-typed until the
// submission payload stringifies it.
func BoolAnswer(b bool) Answer {
	return Answer{answered: true, boolean: b, isBool: true}
}

// Answered reports whether a value was recorded for this slot.
func (a Answer) Answered() bool { return a.answered }

// Matches compares the answer against a question's canonical answer.
// Truefalse questions compare as booleans; everything else compares as
// trimmed strings.
func (a Answer) Matches(q Question) bool {
	if !a.answered {
		return false
	}
	if q.Kind == KindTrueFalse {
		return a.isBool && a.boolean == (q.Answer == "true")
	}
	return strings.TrimSpace(a.String()) == strings.TrimSpace(q.Answer)
}

// String renders the answer for the persisted payload. Booleans become
// the literals "true" / "false".
func (a Answer) String() string {
	if !a.answered {
		return ""
	}
	if a.isBool {
		if a.boolean {
			return "true"
		}
		return "false"
	}
	return a.text
}

// NormalizeAnswerText strips surrounding JSON quotes and whitespace from a
// canonical answer as stored upstream.
func NormalizeAnswerText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}
