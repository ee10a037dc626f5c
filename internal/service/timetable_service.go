// Package service wires the time-grid generator, input snapshot, conflict
// index, constraint evaluator, placement engine, and local optimizer into
// the Generate and Save operations of spec §6. Grounded on the teacher's
// ScheduleGeneratorService: validator-first entry points, a zap logger
// threaded through the constructor, and a TTL-backed proposal cache between
// Generate and Save.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campusplan/timetable-core/internal/conflictindex"
	"github.com/campusplan/timetable-core/internal/dto"
	"github.com/campusplan/timetable-core/internal/models"
	"github.com/campusplan/timetable-core/internal/optimize"
	"github.com/campusplan/timetable-core/internal/placement"
	"github.com/campusplan/timetable-core/internal/snapshot"
	apperrors "github.com/campusplan/timetable-core/pkg/errors"
	"github.com/campusplan/timetable-core/pkg/metrics"
)

// PersistenceRepository is the persistence boundary of §5: it commits a
// generated schedule in a single transaction that deletes every
// non-hardcoded item and inserts the produced ones.
type PersistenceRepository interface {
	CommitSchedule(ctx context.Context, items []models.ScheduleItem) error
}

// Defaults governs option fallbacks and the proposal cache TTL (§6,
// pkg/config.SchedulerConfig).
type Defaults struct {
	Preset              string
	MaxIterations       int
	TimeoutMs           int
	OptimizationEnabled bool
	ProposalTTL         time.Duration
}

// TimetableService orchestrates components A-F and owns the Generate/Save
// operations.
type TimetableService struct {
	loader      *snapshot.Loader
	settings    models.SystemSettings
	persistence PersistenceRepository
	defaults    Defaults
	store       proposalCache
	validate    *validator.Validate
	logger      *zap.Logger
	metrics     *metrics.Registry
}

// NewTimetableService wires a Loader, the solver's system settings, the
// persistence boundary, and ambient collaborators into one service. The
// proposal cache is in-process; use NewTimetableServiceWithRedisCache for a
// Redis-backed one.
func NewTimetableService(
	loader *snapshot.Loader,
	settings models.SystemSettings,
	persistence PersistenceRepository,
	defaults Defaults,
	logger *zap.Logger,
	registry *metrics.Registry,
) *TimetableService {
	return newTimetableService(loader, settings, persistence, defaults, logger, registry, newProposalStore(defaults.ProposalTTL))
}

// NewTimetableServiceWithRedisCache is identical to NewTimetableService but
// backs the pending-proposal cache with Redis (SPEC_FULL §2), so a
// generated proposal survives across service instances until Saved.
func NewTimetableServiceWithRedisCache(
	loader *snapshot.Loader,
	settings models.SystemSettings,
	persistence PersistenceRepository,
	defaults Defaults,
	logger *zap.Logger,
	registry *metrics.Registry,
	redisClient *redis.Client,
) *TimetableService {
	return newTimetableService(loader, settings, persistence, defaults, logger, registry, newRedisProposalCache(redisClient, defaults.ProposalTTL))
}

func newTimetableService(
	loader *snapshot.Loader,
	settings models.SystemSettings,
	persistence PersistenceRepository,
	defaults Defaults,
	logger *zap.Logger,
	registry *metrics.Registry,
	cache proposalCache,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		loader:      loader,
		settings:    settings,
		persistence: persistence,
		defaults:    defaults,
		store:       cache,
		validate:    validator.New(),
		logger:      logger,
		metrics:     registry,
	}
}

// Generate runs the full A-F pipeline and caches the result under a fresh
// RunID for a subsequent Save (§6, SPEC_FULL §4 two-phase flow).
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateOptionsRequest) (*dto.GenerateResultResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidOptions.Code, apperrors.ErrInvalidOptions.Status, "invalid generation options")
	}

	preset := req.Preset
	if preset == "" {
		preset = s.defaults.Preset
	}
	maxIterations := req.MaxIterations
	if maxIterations == 0 {
		maxIterations = s.defaults.MaxIterations
	}
	timeoutMs := req.TimeoutMs
	if timeoutMs == 0 {
		timeoutMs = s.defaults.TimeoutMs
	}
	optimizationEnabled := s.defaults.OptimizationEnabled
	if req.OptimizationEnabled != nil {
		optimizationEnabled = *req.OptimizationEnabled
	}

	runID := uuid.NewString()
	start := time.Now()
	s.logger.Info("generation started", zap.String("run_id", runID), zap.String("preset", preset))

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	snapStart := time.Now()
	snap, err := s.loader.Load(runCtx, s.settings)
	if err != nil {
		s.logger.Warn("generation failed at snapshot stage", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}
	snapshotMs := time.Since(snapStart).Milliseconds()
	s.observeStage("snapshot", snapStart)

	idx := conflictindex.New(s.settings.SlotDurationMinutes)

	placeStart := time.Now()
	engine := placement.New(s.settings)
	placementResult, err := engine.Run(runCtx, snap, idx)
	if err != nil {
		s.logger.Warn("generation failed at placement stage", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}
	placementMs := time.Since(placeStart).Milliseconds()
	s.observeStage("placement", placeStart)

	items := placementResult.Items
	warnings := append([]placement.Warning{}, placementResult.Warnings...)

	var optStats optimize.Stats
	optStart := time.Now()
	if optimizationEnabled {
		optimizer := optimize.New(s.settings)
		var optWarnings []placement.Warning
		items, optStats, optWarnings = optimizer.Run(runCtx, snap, idx, items, maxIterations)
		warnings = append(warnings, optWarnings...)
	}
	optimizeMs := time.Since(optStart).Milliseconds()
	s.observeStage("optimize", optStart)
	s.metrics.ObserveOptimizerIterations(optStats.Iterations)

	for _, c := range placementResult.Conflicts {
		s.metrics.AddConflict(string(c.Kind))
	}
	s.metrics.AddUnplaceable(len(placementResult.Unplaceable))
	s.metrics.ObserveGeneration(preset, time.Since(start))

	s.store.Save(proposal{RunID: runID, Items: items, RequestedAt: time.Now()})

	result := &dto.GenerateResultResponse{
		Success:            len(placementResult.Unplaceable) == 0,
		RunID:              runID,
		Schedules:          toScheduleItemResponses(items),
		Conflicts:          toConflictResponses(placementResult.Conflicts),
		UnscheduledCourses: toUnplaceableResponses(placementResult.Unplaceable),
		Warnings:           toWarningResponses(warnings),
		ProcessingTimeMs:   time.Since(start).Milliseconds(),
		Metrics: dto.MetricsResponse{
			SnapshotMs:   snapshotMs,
			PlacementMs:  placementMs,
			OptimizeMs:   optimizeMs,
			MovesApplied: optStats.MovesApplied,
			SwapsApplied: optStats.SwapsApplied,
			Iterations:   optStats.Iterations,
		},
	}

	s.logger.Info("generation finished",
		zap.String("run_id", runID),
		zap.Int("scheduled", len(items)),
		zap.Int("unplaceable", len(placementResult.Unplaceable)),
		zap.Duration("total", time.Since(start)),
	)

	return result, nil
}

// Save commits a previously generated proposal via the persistence boundary.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid save payload")
	}
	p, ok := s.store.Get(req.RunID)
	if !ok {
		return apperrors.Clone(apperrors.ErrNotFound, "generation run not found or expired")
	}
	if s.persistence == nil {
		return apperrors.Clone(apperrors.ErrInternal, "persistence repository not configured")
	}
	if err := s.persistence.CommitSchedule(ctx, p.Items); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to commit schedule")
	}
	s.logger.Info("schedule committed", zap.String("run_id", req.RunID), zap.Int("items", len(p.Items)))
	return nil
}

func (s *TimetableService) observeStage(stage string, start time.Time) {
	s.metrics.ObserveStage(stage, time.Since(start))
}

func toScheduleItemResponses(items []models.ScheduleItem) []dto.ScheduleItemResponse {
	out := make([]dto.ScheduleItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ScheduleItemResponse{
			Day:          item.Day.String(),
			TimeRange:    item.Range.String(),
			CourseID:     item.CourseID,
			ClassroomID:  item.ClassroomID,
			SessionType:  string(item.SessionType),
			SessionHours: item.SessionHours,
			IsHardcoded:  item.IsHardcoded,
		})
	}
	return out
}

func toConflictResponses(conflicts []placement.Conflict) []dto.ConflictResponse {
	out := make([]dto.ConflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, dto.ConflictResponse{Kind: string(c.Kind), Explanation: c.Explanation})
	}
	return out
}

func toUnplaceableResponses(items []placement.Unplaceable) []dto.UnplaceableResponse {
	out := make([]dto.UnplaceableResponse, 0, len(items))
	for _, u := range items {
		out = append(out, dto.UnplaceableResponse{
			ID:           fmt.Sprintf("%d-%d", u.CourseID, u.SessionIndex),
			CourseID:     u.CourseID,
			SessionIndex: u.SessionIndex,
			Cause:        string(u.Cause),
			Message:      u.Message,
		})
	}
	return out
}

func toWarningResponses(warnings []placement.Warning) []dto.WarningResponse {
	out := make([]dto.WarningResponse, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, dto.WarningResponse{Kind: w.Kind, Message: w.Message})
	}
	return out
}
