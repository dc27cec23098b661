package quizzes

import "time"

// Quiz belongs to exactly one course.
type Quiz struct {
	ID          int64
	Title       string
	CourseID    int64
	CourseTitle string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateQuiz carries the fields accepted on create and update.
type CreateQuiz struct {
	Title    string
	CourseID int64
}
