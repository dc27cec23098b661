package courses

import "time"

// Course is a unit of academic content owned by exactly one account.
type Course struct {
	ID            int64
	Title         string
	Description   string
	OwnerID       int64
	OwnerUsername string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateCourse carries the fields accepted when creating or updating a course.
type CreateCourse struct {
	Title       string
	Description string
}
