package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/jobs"
	"github.com/noah-isme/attendance-api/pkg/logger"
)

// StatsWarmupJob is the queue job type that precomputes today's stats.
const StatsWarmupJob = "stats-warmup"

type snapshotProvider interface {
	Load(ctx context.Context, userID string) (*LoadedSnapshot, error)
}

// StatsResult is a report plus what changed since the user's previous one.
type StatsResult struct {
	Report     *attendance.Report `json:"report"`
	Milestones []Milestone        `json:"milestones,omitempty"`
	Cached     bool               `json:"-"`
}

// StatsServiceConfig tunes memoisation.
type StatsServiceConfig struct {
	CacheTTL time.Duration
}

// StatsService runs attendance calculations over freshly loaded snapshots.
type StatsService struct {
	snapshots  snapshotProvider
	cache      *CacheService
	metrics    *MetricsService
	milestones *MilestoneObserver
	logger     *zap.Logger
	cfg        StatsServiceConfig
	now        func() time.Time
}

// NewStatsService constructs the service.
func NewStatsService(snapshots snapshotProvider, cache *CacheService, metrics *MetricsService, milestones *MilestoneObserver, cfg StatsServiceConfig, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &StatsService{
		snapshots:  snapshots,
		cache:      cache,
		metrics:    metrics,
		milestones: milestones,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Today returns the current calendar day.
func (s *StatsService) Today() time.Time {
	return attendance.Day(s.now())
}

func statsKey(userID, hash string, asOf time.Time) string {
	return fmt.Sprintf("stats:%s:%s:%s", userID, hash, attendance.FormatDate(asOf))
}

func statsPattern(userID string) string {
	return fmt.Sprintf("stats:%s:*", userID)
}

// Stats returns the report for userID as of asOf. Reports are memoised per
// snapshot digest so any write yields a fresh calculation. Milestones are
// checked for today's report whether or not it came from the cache.
func (s *StatsService) Stats(ctx context.Context, userID string, asOf time.Time) (*StatsResult, error) {
	return s.stats(ctx, userID, asOf, true)
}

func (s *StatsService) stats(ctx context.Context, userID string, asOf time.Time, observe bool) (*StatsResult, error) {
	asOf = attendance.Day(asOf)
	loaded, err := s.snapshots.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := statsKey(userID, loaded.Hash, asOf)

	var cached attendance.Report
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		result := &StatsResult{Report: &cached, Cached: true}
		if observe && asOf.Equal(s.Today()) {
			result.Milestones = s.milestones.Observe(ctx, userID, result.Report)
		}
		return result, nil
	}

	engine, err := s.engine(loaded)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	report, err := engine.Stats(asOf)
	s.metrics.ObserveCalculation("stats", time.Since(start))
	if err != nil {
		return nil, calculationError(err)
	}
	_ = s.cache.Set(ctx, key, report, s.cfg.CacheTTL)

	result := &StatsResult{Report: report}
	if observe && asOf.Equal(s.Today()) {
		result.Milestones = s.milestones.Observe(ctx, userID, report)
	}
	return result, nil
}

// SafeMargins returns how many future sessions each subject can still skip.
func (s *StatsService) SafeMargins(ctx context.Context, userID string, asOf time.Time) ([]attendance.SafeMargin, error) {
	engine, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	margins, err := engine.SafeMargins(attendance.Day(asOf))
	s.metrics.ObserveCalculation("safe_margins", time.Since(start))
	if err != nil {
		return nil, calculationError(err)
	}
	return margins, nil
}

// SafeMargin returns the margin for one subject.
func (s *StatsService) SafeMargin(ctx context.Context, userID string, subjectID models.SubjectID, asOf time.Time) (*attendance.SafeMargin, error) {
	engine, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	margin, err := engine.SafeMargin(subjectID, attendance.Day(asOf))
	s.metrics.ObserveCalculation("safe_margin", time.Since(start))
	if err != nil {
		return nil, calculationError(err)
	}
	return margin, nil
}

// ODHours returns on-duty hour usage against the semester cap.
func (s *StatsService) ODHours(ctx context.Context, userID string) (*attendance.ODUsage, error) {
	engine, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	usage, err := engine.ODHours()
	if err != nil {
		return nil, calculationError(err)
	}
	return &usage, nil
}

// Sessions lists enumerated sessions with their effective status.
func (s *StatsService) Sessions(ctx context.Context, userID string, start, end time.Time, subjectID models.SubjectID) ([]attendance.SessionStatus, error) {
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end must not be before start")
	}
	engine, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := engine.Sessions(attendance.Day(start), attendance.Day(end), subjectID)
	if err != nil {
		return nil, calculationError(err)
	}
	return sessions, nil
}

// SimulateLeave reports the effect of a hypothetical absence without storing anything.
func (s *StatsService) SimulateLeave(ctx context.Context, userID string, req attendance.LeaveRequest, asOf time.Time) (*attendance.Simulation, error) {
	if req.End.Before(req.Start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end must not be before start")
	}
	engine, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sim, err := engine.SimulateLeave(req, attendance.Day(asOf))
	s.metrics.ObserveCalculation("simulate_leave", time.Since(start))
	if err != nil {
		return nil, calculationError(err)
	}
	return sim, nil
}

// Warm is the queue handler that precomputes today's report for a user. It
// leaves milestone state alone so the next read still sees the transition.
func (s *StatsService) Warm(ctx context.Context, job jobs.Job) error {
	userID, ok := job.Payload.(string)
	if !ok || userID == "" {
		return fmt.Errorf("stats warmup: unexpected payload %T", job.Payload)
	}
	_, err := s.stats(ctx, userID, s.Today(), false)
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Status < 500 {
		s.logger.Debug("stats warmup skipped", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return err
}

func (s *StatsService) load(ctx context.Context, userID string) (*attendance.Engine, error) {
	loaded, err := s.snapshots.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine(loaded)
}

func (s *StatsService) engine(loaded *LoadedSnapshot) (*attendance.Engine, error) {
	engine, err := attendance.New(loaded.Snapshot)
	if err != nil {
		return nil, calculationError(err)
	}
	return engine, nil
}

// calculationError maps engine failures onto API errors.
func calculationError(err error) error {
	var fieldErr *attendance.FieldError
	switch {
	case errors.As(err, &fieldErr) && errors.Is(err, attendance.ErrMissingField) && isSemesterField(fieldErr.Field):
		return appErrors.Wrap(err, appErrors.ErrSemesterNotConfigured.Code, appErrors.ErrSemesterNotConfigured.Status, fieldErr.Error())
	case errors.As(err, &fieldErr):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fieldErr.Error())
	case errors.Is(err, attendance.ErrUnknownSubject):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, err.Error())
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "attendance calculation failed")
	}
}

func isSemesterField(field string) bool {
	switch field {
	case "start_date", "end_date", "last_instruction_date":
		return true
	default:
		return false
	}
}

type warmupQueue interface {
	Enqueue(job jobs.Job) (bool, error)
}

// StatsInvalidator drops memoised stats after a write and schedules a recompute.
type StatsInvalidator struct {
	cache  *CacheService
	queue  warmupQueue
	logger *zap.Logger
}

// NewStatsInvalidator constructs the invalidator. A nil queue skips warmup.
func NewStatsInvalidator(cache *CacheService, queue warmupQueue, logger *zap.Logger) *StatsInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsInvalidator{cache: cache, queue: queue, logger: logger}
}

// Invalidate is best effort; failures are logged and never fail the write.
func (i *StatsInvalidator) Invalidate(ctx context.Context, userID string) {
	if i == nil {
		return
	}
	_ = i.cache.Invalidate(ctx, statsPattern(userID))
	if i.queue == nil {
		return
	}
	job := jobs.Job{ID: StatsWarmupJob + ":" + userID, Type: StatsWarmupJob, Payload: userID}
	if _, err := i.queue.Enqueue(job); err != nil {
		logger.FromContext(ctx, i.logger).Warn("stats warmup enqueue failed", zap.String("user_id", userID), zap.Error(err))
	}
}

type noopInvalidation struct{}

func (noopInvalidation) Invalidate(context.Context, string) {}
