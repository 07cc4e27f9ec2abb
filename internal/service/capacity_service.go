package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/erms/internal/cache"
	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/ledger"
	"github.com/spec-kit/erms/internal/observability"
	"github.com/spec-kit/erms/internal/repository"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

// maxTimelineDays bounds the range a timeline request may cover.
const maxTimelineDays = 3 * 366

// CapacityService answers capacity questions from the assignment ledger.
type CapacityService struct {
	engineers   repository.EngineerRepository
	assignments repository.AssignmentRepository
	cache       cache.CapacityCache
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// CapacityDependencies bundles collaborators for the capacity service.
type CapacityDependencies struct {
	EngineerRepo   repository.EngineerRepository
	AssignmentRepo repository.AssignmentRepository
	Cache          cache.CapacityCache
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	Now            func() time.Time
}

// CapacityReport pairs an engineer with their capacity summary.
type CapacityReport struct {
	Engineer *domain.Engineer
	Summary  domain.CapacitySummary
}

// NewCapacityService constructs the service.
func NewCapacityService(deps CapacityDependencies) *CapacityService {
	s := &CapacityService{
		engineers:   deps.EngineerRepo,
		assignments: deps.AssignmentRepo,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		now:         deps.Now,
	}
	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Today returns the current calendar day.
func (s *CapacityService) Today() time.Time {
	return domain.Day(s.now())
}

// GetCapacity reports the engineer's committed and available allocation on asOf (default today).
func (s *CapacityService) GetCapacity(ctx context.Context, caller domain.Caller, engineerID string, asOf *time.Time) (*CapacityReport, error) {
	if err := requireSelfOrManager(caller, engineerID); err != nil {
		return nil, err
	}
	// Taken before any ledger read so a write committed meanwhile makes Set a no-op.
	gen, genErr := s.cache.Generation(ctx, engineerID)
	if genErr != nil {
		s.logger.Warn("capacity cache generation read failed", zap.String("engineer_id", engineerID), zap.Error(genErr))
	}
	engineer, err := s.engineers.GetByID(ctx, engineerID)
	if err != nil {
		return nil, mapRepoError(err, "engineer", map[string]any{"engineer_id": engineerID})
	}

	day := s.Today()
	if asOf != nil {
		day = domain.Day(*asOf)
	}

	if cached, ok, err := s.cache.Get(ctx, engineerID, day); err != nil {
		s.logger.Warn("capacity cache read failed", zap.String("engineer_id", engineerID), zap.Error(err))
	} else if ok && cached.MaxCapacity == engineer.MaxCapacity {
		s.metrics.RecordCacheLookup(true)
		return &CapacityReport{Engineer: engineer, Summary: *cached}, nil
	}
	s.metrics.RecordCacheLookup(false)

	assignments, err := s.assignments.ListByEngineer(ctx, engineerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	summary := Summarize(engineer, assignments, day)
	if genErr == nil {
		if err := s.cache.Set(ctx, &summary, gen); err != nil {
			s.logger.Warn("capacity cache write failed", zap.String("engineer_id", engineerID), zap.Error(err))
		}
	}
	return &CapacityReport{Engineer: engineer, Summary: summary}, nil
}

// Timeline returns the engineer's committed allocation over [from, to] as constant steps.
func (s *CapacityService) Timeline(ctx context.Context, caller domain.Caller, engineerID string, from, to time.Time) (*domain.Engineer, []ledger.Step, error) {
	if err := requireSelfOrManager(caller, engineerID); err != nil {
		return nil, nil, err
	}
	from, to = domain.Day(from), domain.Day(to)
	if to.Before(from) {
		return nil, nil, apperrors.NewValidationError("from must not be after to", nil)
	}
	if to.Sub(from) > maxTimelineDays*24*time.Hour {
		return nil, nil, apperrors.NewValidationError("timeline range too large", map[string]any{"max_days": maxTimelineDays})
	}
	engineer, err := s.engineers.GetByID(ctx, engineerID)
	if err != nil {
		return nil, nil, mapRepoError(err, "engineer", map[string]any{"engineer_id": engineerID})
	}
	assignments, err := s.assignments.ListByEngineer(ctx, engineerID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return engineer, ledger.Timeline(ledger.FromAssignments(assignments), from, to), nil
}

// Invalidate drops cached summaries after the engineer's ledger or profile changed.
func (s *CapacityService) Invalidate(ctx context.Context, engineerID string) {
	if err := s.cache.Invalidate(ctx, engineerID); err != nil {
		s.logger.Warn("capacity cache invalidation failed", zap.String("engineer_id", engineerID), zap.Error(err))
	}
}

// Summarize computes the capacity summary for engineer on day from their assignments.
func Summarize(engineer *domain.Engineer, assignments []domain.Assignment, day time.Time) domain.CapacitySummary {
	total := ledger.ActiveOn(ledger.FromAssignments(assignments), day)
	available := engineer.MaxCapacity - total
	if available < 0 {
		available = 0
	}
	return domain.CapacitySummary{
		EngineerID:        engineer.ID,
		AsOf:              domain.Day(day),
		MaxCapacity:       engineer.MaxCapacity,
		TotalAllocated:    total,
		AvailableCapacity: available,
	}
}

func requireSelfOrManager(caller domain.Caller, engineerID string) error {
	if caller.CanManage() || caller.Owns(engineerID) {
		return nil
	}
	return apperrors.NewForbidden("engineers may only view their own capacity")
}
