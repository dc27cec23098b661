package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/xnice1/studybuddy/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OwnershipIntegrityJob scans the catalog for records whose owner or parent
// no longer exists. Such records deny every non-admin request, so they are
// surfaced for operators instead of being silently unreachable.
type OwnershipIntegrityJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewOwnershipIntegrityJob initialises the integrity scan handler.
func NewOwnershipIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *OwnershipIntegrityJob {
	return &OwnershipIntegrityJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type orphanCounts struct {
	Courses   int
	Quizzes   int
	Questions int
}

// Handle executes the scan.
func (j *OwnershipIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("ownership integrity: handler not configured")
	}
	var payload OwnershipIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := j.now()
	tracker := j.metrics().Track(TaskOwnershipIntegrity)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting ownership integrity scan")

	counts, err := j.scan(ctx)
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}

	if counts.Courses > 0 {
		logger.Warn("courses without a valid owner", slog.Int("count", counts.Courses))
		j.metrics().AddOrphans("course", counts.Courses)
	}
	if counts.Quizzes > 0 {
		logger.Warn("quizzes without a valid course", slog.Int("count", counts.Quizzes))
		j.metrics().AddOrphans("quiz", counts.Quizzes)
	}
	if counts.Questions > 0 {
		logger.Warn("questions without a valid quiz", slog.Int("count", counts.Questions))
		j.metrics().AddOrphans("question", counts.Questions)
	}

	logger.Info("completed ownership integrity scan",
		slog.Int("orphaned_courses", counts.Courses),
		slog.Int("orphaned_quizzes", counts.Quizzes),
		slog.Int("orphaned_questions", counts.Questions),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *OwnershipIntegrityJob) scan(ctx context.Context) (orphanCounts, error) {
	if j.Pool == nil {
		return orphanCounts{}, errors.New("ownership integrity: pool not configured")
	}

	var counts orphanCounts
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return j.Pool.QueryRow(ctx, `
			SELECT count(*) FROM courses c
			LEFT JOIN users u ON u.id = c.owner_id
			WHERE u.id IS NULL`).Scan(&counts.Courses)
	})
	g.Go(func() error {
		return j.Pool.QueryRow(ctx, `
			SELECT count(*) FROM quizzes q
			LEFT JOIN courses c ON c.id = q.course_id
			WHERE c.id IS NULL`).Scan(&counts.Quizzes)
	})
	g.Go(func() error {
		return j.Pool.QueryRow(ctx, `
			SELECT count(*) FROM questions qs
			LEFT JOIN quizzes q ON q.id = qs.quiz_id
			WHERE q.id IS NULL`).Scan(&counts.Questions)
	})
	if err := g.Wait(); err != nil {
		return orphanCounts{}, err
	}
	return counts, nil
}

func (j *OwnershipIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskOwnershipIntegrity))
	}
	return slog.Default().With(slog.String("job", TaskOwnershipIntegrity))
}

func (j *OwnershipIntegrityJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *OwnershipIntegrityJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
