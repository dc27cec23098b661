// Package authz decides whether an authenticated principal may perform an
// operation on the course/quiz/question hierarchy.
package authz

import "github.com/xnice1/studybuddy/internal/shared"

// Operation identifies a protected action. Every operation carries an
// explicit allow-set of roles; there is no implicit role hierarchy.
type Operation string

const (
	OpCourseList   Operation = "course.list"
	OpCourseRead   Operation = "course.read"
	OpCourseCreate Operation = "course.create"
	OpCourseUpdate Operation = "course.update"
	OpCourseDelete Operation = "course.delete"

	OpQuizList   Operation = "quiz.list"
	OpQuizRead   Operation = "quiz.read"
	OpQuizCreate Operation = "quiz.create"
	OpQuizUpdate Operation = "quiz.update"
	OpQuizDelete Operation = "quiz.delete"

	OpQuestionList   Operation = "question.list"
	OpQuestionRead   Operation = "question.read"
	OpQuestionCreate Operation = "question.create"
	OpQuestionUpdate Operation = "question.update"
	OpQuestionDelete Operation = "question.delete"

	OpUserList   Operation = "user.list"
	OpUserManage Operation = "user.manage"

	OpJobTrigger Operation = "job.trigger"
)

// Requirement couples an operation's role allow-set with whether the
// operation additionally demands ownership of the addressed resource.
type Requirement struct {
	Roles     []shared.Role
	Ownership bool
}

var anyRole = []shared.Role{shared.RoleAdmin, shared.RoleInstructor, shared.RoleStudent}

var requirements = map[Operation]Requirement{
	OpCourseList:   {Roles: anyRole},
	OpCourseRead:   {Roles: []shared.Role{shared.RoleAdmin, shared.RoleInstructor}, Ownership: true},
	OpCourseCreate: {Roles: []shared.Role{shared.RoleAdmin, shared.RoleInstructor}},
	OpCourseUpdate: {Roles: []shared.Role{shared.RoleAdmin, shared.RoleInstructor}, Ownership: true},
	OpCourseDelete: {Roles: []shared.Role{shared.RoleAdmin, shared.RoleInstructor}, Ownership: true},

	OpQuizList:   {Roles: anyRole},
	OpQuizRead:   {Roles: anyRole},
	OpQuizCreate: {Roles: []shared.Role{shared.RoleAdmin, shared.RoleInstructor}, Ownership: true},
	OpQuizUpdate: {Roles: []shared.Role{shared.RoleAdmin}},
	OpQuizDelete: {Roles: []shared.Role{shared.RoleAdmin}},

	OpQuestionList:   {Roles: anyRole},
	OpQuestionRead:   {Roles: anyRole},
	OpQuestionCreate: {Roles: []shared.Role{shared.RoleAdmin, shared.RoleInstructor}, Ownership: true},
	OpQuestionUpdate: {Roles: []shared.Role{shared.RoleAdmin, shared.RoleInstructor}, Ownership: true},
	OpQuestionDelete: {Roles: []shared.Role{shared.RoleAdmin, shared.RoleInstructor}, Ownership: true},

	OpUserList:   {Roles: []shared.Role{shared.RoleAdmin}},
	OpUserManage: {Roles: []shared.Role{shared.RoleAdmin}},

	OpJobTrigger: {Roles: []shared.Role{shared.RoleAdmin}},
}

// PathRefs carries the resource ids supplied on the request path.
// A zero id means the segment was not present.
type PathRefs struct {
	CourseID   int64
	QuizID     int64
	QuestionID int64
}

// DenyKind enumerates the distinct reasons a request is refused.
type DenyKind string

const (
	DenyUnauthenticated    DenyKind = "UNAUTHENTICATED"
	DenyForbidden          DenyKind = "FORBIDDEN"
	DenyMalformedReference DenyKind = "MALFORMED_REFERENCE"
	DenyNotFound           DenyKind = "RESOURCE_NOT_FOUND"
)

// Decision is the outcome of a policy evaluation. It is produced per call
// and never stored.
type Decision struct {
	Allowed bool
	Reason  DenyKind
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with the given reason.
func Deny(kind DenyKind) Decision {
	return Decision{Reason: kind}
}

// Err maps a decision onto the shared sentinel errors so services can
// return it through the usual error path. Allowed decisions map to nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case DenyUnauthenticated:
		return shared.ErrUnauthenticated
	case DenyMalformedReference:
		return shared.ErrMalformedReference
	case DenyNotFound:
		return shared.ErrNotFound
	default:
		return shared.ErrForbidden
	}
}

type refKind int

const (
	refCourse refKind = iota
	refQuiz
	refQuestion
)

// ResourceRef addresses exactly one node in the resource hierarchy.
type ResourceRef struct {
	kind refKind
	id   int64
}

// CourseRef addresses a course directly.
func CourseRef(id int64) ResourceRef { return ResourceRef{kind: refCourse, id: id} }

// QuizRef addresses a quiz; ownership resolves through its course.
func QuizRef(id int64) ResourceRef { return ResourceRef{kind: refQuiz, id: id} }

// QuestionRef addresses a question; ownership resolves through quiz and course.
func QuestionRef(id int64) ResourceRef { return ResourceRef{kind: refQuestion, id: id} }
