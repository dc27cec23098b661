package questions

import "time"

// Question is a multiple-choice item inside a quiz. CorrectAnswers holds
// zero-based indexes into Options.
type Question struct {
	ID             int64
	QuizID         int64
	Text           string
	Options        []string
	CorrectAnswers []int32
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateQuestion carries the fields accepted on create and update.
type CreateQuestion struct {
	Text           string
	Options        []string
	CorrectAnswers []int32
}
