package quizzes

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/xnice1/studybuddy/internal/authz"
	"github.com/xnice1/studybuddy/internal/shared"
)

// memoryRepo serves both the quiz repository and the ownership graph.
type memoryRepo struct {
	owners    map[int64]string
	quizzes   map[int64]Quiz
	nextID    int64
	listCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{owners: make(map[int64]string), quizzes: make(map[int64]Quiz)}
}

func (r *memoryRepo) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	r.listCalls++
	out := make([]Quiz, 0, len(r.quizzes))
	for _, q := range r.quizzes {
		out = append(out, q)
	}
	return out, nil
}

func (r *memoryRepo) ListQuizzesByCourse(ctx context.Context, courseID int64) ([]Quiz, error) {
	r.listCalls++
	var out []Quiz
	for _, q := range r.quizzes {
		if q.CourseID == courseID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	q, ok := r.quizzes[id]
	if !ok {
		return Quiz{}, shared.ErrNotFound
	}
	return q, nil
}

func (r *memoryRepo) CreateQuiz(ctx context.Context, in CreateQuiz) (Quiz, error) {
	r.nextID++
	q := Quiz{ID: r.nextID, Title: in.Title, CourseID: in.CourseID}
	r.quizzes[q.ID] = q
	return q, nil
}

func (r *memoryRepo) UpdateQuiz(ctx context.Context, id int64, in CreateQuiz) (Quiz, error) {
	q, ok := r.quizzes[id]
	if !ok {
		return Quiz{}, shared.ErrNotFound
	}
	q.Title = in.Title
	r.quizzes[id] = q
	return q, nil
}

func (r *memoryRepo) DeleteQuiz(ctx context.Context, id int64) error {
	if _, ok := r.quizzes[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.quizzes, id)
	return nil
}

func (r *memoryRepo) GetCourseOwner(ctx context.Context, courseID int64) (string, error) {
	owner, ok := r.owners[courseID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return owner, nil
}

func (r *memoryRepo) GetQuizParentCourse(ctx context.Context, quizID int64) (int64, error) {
	q, ok := r.quizzes[quizID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return q.CourseID, nil
}

func (r *memoryRepo) GetQuestionParentQuiz(ctx context.Context, questionID int64) (int64, error) {
	return 0, shared.ErrNotFound
}

var (
	admin = &shared.Principal{Username: "root", Role: shared.RoleAdmin}
	inst1 = &shared.Principal{Username: "inst1", Role: shared.RoleInstructor}
	inst2 = &shared.Principal{Username: "inst2", Role: shared.RoleInstructor}
	stud  = &shared.Principal{Username: "stud1", Role: shared.RoleStudent}
)

func newService(t *testing.T, repo *memoryRepo) *Service {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, authz.NewEvaluator(repo, nil), NewCache(client, time.Minute))
}

func TestCreateQuizRequiresCourseOwnership(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	repo.owners[10] = "inst1"
	svc := newService(t, repo)

	quiz, err := svc.CreateQuiz(context.Background(), inst1, CreateQuiz{Title: "Week 1", CourseID: 10})
	require.NoError(t, err)
	require.Equal(t, int64(10), quiz.CourseID)

	_, err = svc.CreateQuiz(context.Background(), inst2, CreateQuiz{Title: "Hijack", CourseID: 10})
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.CreateQuiz(context.Background(), stud, CreateQuiz{Title: "Nope", CourseID: 10})
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.CreateQuiz(context.Background(), admin, CreateQuiz{Title: "Audit", CourseID: 10})
	require.NoError(t, err)
}

func TestCreateQuizOnMissingCourseDenied(t *testing.T) {
	t.Parallel()

	svc := newService(t, newMemoryRepo())
	_, err := svc.CreateQuiz(context.Background(), inst1, CreateQuiz{Title: "Ghost", CourseID: 77})
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUpdateDeleteAdminOnly(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	repo.owners[10] = "inst1"
	svc := newService(t, repo)
	quiz, err := svc.CreateQuiz(context.Background(), inst1, CreateQuiz{Title: "Week 1", CourseID: 10})
	require.NoError(t, err)

	// even the owning instructor cannot rewrite a published quiz
	_, err = svc.UpdateQuiz(context.Background(), inst1, quiz.ID, CreateQuiz{Title: "Week 1b"})
	require.ErrorIs(t, err, shared.ErrForbidden)

	updated, err := svc.UpdateQuiz(context.Background(), admin, quiz.ID, CreateQuiz{Title: "Week 1b"})
	require.NoError(t, err)
	require.Equal(t, "Week 1b", updated.Title)

	require.ErrorIs(t, svc.DeleteQuiz(context.Background(), inst1, quiz.ID), shared.ErrForbidden)
	require.NoError(t, svc.DeleteQuiz(context.Background(), admin, quiz.ID))
}

func TestAnyRoleCanReadCatalog(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	repo.owners[10] = "inst1"
	svc := newService(t, repo)
	quiz, err := svc.CreateQuiz(context.Background(), inst1, CreateQuiz{Title: "Week 1", CourseID: 10})
	require.NoError(t, err)

	list, err := svc.ListQuizzes(context.Background(), stud)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := svc.GetQuiz(context.Background(), stud, quiz.ID)
	require.NoError(t, err)
	require.Equal(t, quiz.ID, got.ID)
}

func TestListingCachedUntilMutation(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	repo.owners[10] = "inst1"
	svc := newService(t, repo)
	_, err := svc.CreateQuiz(context.Background(), inst1, CreateQuiz{Title: "Week 1", CourseID: 10})
	require.NoError(t, err)

	repo.listCalls = 0
	_, err = svc.ListQuizzes(context.Background(), stud)
	require.NoError(t, err)
	_, err = svc.ListQuizzes(context.Background(), stud)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls, "second read should come from cache")

	// a mutation bumps the version and forces a reload
	_, err = svc.CreateQuiz(context.Background(), inst1, CreateQuiz{Title: "Week 2", CourseID: 10})
	require.NoError(t, err)
	list, err := svc.ListQuizzes(context.Background(), stud)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, 2, repo.listCalls)
}

func TestNilPrincipalUnauthenticated(t *testing.T) {
	t.Parallel()

	svc := newService(t, newMemoryRepo())
	_, err := svc.ListQuizzes(context.Background(), nil)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}
