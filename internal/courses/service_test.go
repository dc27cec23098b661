package courses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xnice1/studybuddy/internal/authz"
	"github.com/xnice1/studybuddy/internal/shared"
)

// memoryRepo backs both the course repository and the ownership graph so the
// policy evaluator observes the same data as the service under test.
type memoryRepo struct {
	courses map[int64]Course
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{courses: make(map[int64]Course)}
}

func (r *memoryRepo) ListCourses(ctx context.Context) ([]Course, error) {
	out := make([]Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) ListCoursesByOwner(ctx context.Context, owner string) ([]Course, error) {
	var out []Course
	for _, c := range r.courses {
		if c.OwnerUsername == owner {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetCourse(ctx context.Context, id int64) (Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return Course{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) CreateCourse(ctx context.Context, in CreateCourse, owner string) (Course, error) {
	r.nextID++
	c := Course{ID: r.nextID, Title: in.Title, Description: in.Description, OwnerUsername: owner}
	r.courses[c.ID] = c
	return c, nil
}

func (r *memoryRepo) UpdateCourse(ctx context.Context, id int64, in CreateCourse) (Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return Course{}, shared.ErrNotFound
	}
	c.Title, c.Description = in.Title, in.Description
	r.courses[id] = c
	return c, nil
}

func (r *memoryRepo) DeleteCourse(ctx context.Context, id int64) error {
	if _, ok := r.courses[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *memoryRepo) GetCourseOwner(ctx context.Context, courseID int64) (string, error) {
	c, ok := r.courses[courseID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return c.OwnerUsername, nil
}

func (r *memoryRepo) GetQuizParentCourse(ctx context.Context, quizID int64) (int64, error) {
	return 0, shared.ErrNotFound
}

func (r *memoryRepo) GetQuestionParentQuiz(ctx context.Context, questionID int64) (int64, error) {
	return 0, shared.ErrNotFound
}

func newService(repo *memoryRepo) *Service {
	return NewService(repo, authz.NewEvaluator(repo, nil))
}

var (
	admin = &shared.Principal{Username: "root", Role: shared.RoleAdmin}
	inst1 = &shared.Principal{Username: "inst1", Role: shared.RoleInstructor}
	inst2 = &shared.Principal{Username: "inst2", Role: shared.RoleInstructor}
	stud  = &shared.Principal{Username: "stud1", Role: shared.RoleStudent}
)

func TestCreateCourseBindsOwnerToCaller(t *testing.T) {
	t.Parallel()

	svc := newService(newMemoryRepo())
	course, err := svc.CreateCourse(context.Background(), inst1, CreateCourse{Title: "Algebra"})
	require.NoError(t, err)
	require.Equal(t, "inst1", course.OwnerUsername)
}

func TestStudentCannotCreateCourse(t *testing.T) {
	t.Parallel()

	svc := newService(newMemoryRepo())
	_, err := svc.CreateCourse(context.Background(), stud, CreateCourse{Title: "Algebra"})
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestListScopedByRole(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	svc := newService(repo)
	_, err := svc.CreateCourse(context.Background(), inst1, CreateCourse{Title: "Algebra"})
	require.NoError(t, err)
	_, err = svc.CreateCourse(context.Background(), inst2, CreateCourse{Title: "Biology"})
	require.NoError(t, err)

	all, err := svc.ListForPrincipal(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, all, 2)

	own, err := svc.ListForPrincipal(context.Background(), inst1)
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "Algebra", own[0].Title)

	none, err := svc.ListForPrincipal(context.Background(), stud)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestGetCourseOwnerOrAdminOnly(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	svc := newService(repo)
	created, err := svc.CreateCourse(context.Background(), inst1, CreateCourse{Title: "Algebra"})
	require.NoError(t, err)

	_, err = svc.GetCourse(context.Background(), inst1, created.ID)
	require.NoError(t, err)
	_, err = svc.GetCourse(context.Background(), admin, created.ID)
	require.NoError(t, err)

	_, err = svc.GetCourse(context.Background(), inst2, created.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.GetCourse(context.Background(), stud, created.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUpdateDeleteRequireOwnership(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	svc := newService(repo)
	created, err := svc.CreateCourse(context.Background(), inst1, CreateCourse{Title: "Algebra"})
	require.NoError(t, err)

	_, err = svc.UpdateCourse(context.Background(), inst2, created.ID, CreateCourse{Title: "Hijacked"})
	require.ErrorIs(t, err, shared.ErrForbidden)

	updated, err := svc.UpdateCourse(context.Background(), inst1, created.ID, CreateCourse{Title: "Algebra II"})
	require.NoError(t, err)
	require.Equal(t, "Algebra II", updated.Title)

	require.ErrorIs(t, svc.DeleteCourse(context.Background(), inst2, created.ID), shared.ErrForbidden)
	require.NoError(t, svc.DeleteCourse(context.Background(), admin, created.ID))
}

func TestMissingCourseIsNotOwned(t *testing.T) {
	t.Parallel()

	svc := newService(newMemoryRepo())
	_, err := svc.GetCourse(context.Background(), inst1, 404)
	require.ErrorIs(t, err, shared.ErrForbidden)
}
