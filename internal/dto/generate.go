// Package dto defines the wire shapes of the Generate operation (§6): what
// the HTTP adapter accepts and returns, independent of the internal models
// the solver works with.
package dto

// GenerateOptionsRequest is the optional input to a Generate call (§6).
type GenerateOptionsRequest struct {
	Preset              string `json:"preset" validate:"omitempty,oneof=fast default quality"`
	MaxIterations       int    `json:"maxIterations" validate:"omitempty,min=10,max=1000"`
	TimeoutMs           int    `json:"timeoutMs" validate:"omitempty,min=5000,max=300000"`
	OptimizationEnabled *bool  `json:"optimizationEnabled"`
}

// ScheduleItemResponse is the wire shape of one solver output (§6: "All ids
// are positive integers").
type ScheduleItemResponse struct {
	Day          string `json:"day"`
	TimeRange    string `json:"timeRange"`
	CourseID     int64  `json:"courseId"`
	ClassroomID  int64  `json:"classroomId"`
	SessionType  string `json:"sessionType"`
	SessionHours int    `json:"sessionHours"`
	IsHardcoded  bool   `json:"isHardcoded"`
}

// ConflictResponse names a rejected candidate, surfaced for operator review.
type ConflictResponse struct {
	Kind        string `json:"kind"`
	Explanation string `json:"explanation"`
}

// UnplaceableResponse is the per-session diagnostic of §4.E step 5 / §7.
type UnplaceableResponse struct {
	ID           string `json:"id"`
	CourseID     int64  `json:"courseId"`
	SessionIndex int    `json:"sessionIndex"`
	Cause        string `json:"cause"`
	Message      string `json:"message"`
}

// WarningResponse is a non-fatal run-level notice (§7: Timeout / Cancelled).
type WarningResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// MetricsResponse elaborates §6's bare "metrics" field with per-stage timing
// and optimizer iteration counts (SPEC_FULL §4, grounded on the teacher's
// ScheduleImprovementStats).
type MetricsResponse struct {
	SnapshotMs    int64 `json:"snapshotMs"`
	PlacementMs   int64 `json:"placementMs"`
	OptimizeMs    int64 `json:"optimizeMs"`
	MovesApplied  int   `json:"movesApplied"`
	SwapsApplied  int   `json:"swapsApplied"`
	Iterations    int   `json:"iterations"`
}

// GenerateResultResponse is the Generate operation's output (§6).
type GenerateResultResponse struct {
	Success            bool                   `json:"success"`
	RunID              string                 `json:"runId"`
	Schedules          []ScheduleItemResponse `json:"schedules"`
	Metrics            MetricsResponse        `json:"metrics"`
	Conflicts          []ConflictResponse      `json:"conflicts"`
	UnscheduledCourses []UnplaceableResponse   `json:"unscheduledCourses"`
	Warnings           []WarningResponse       `json:"warnings"`
	ProcessingTimeMs   int64                  `json:"processingTimeMs"`
	Diagnostics        []string               `json:"diagnostics,omitempty"`
}

// ProgressEvent is one frame of the optional SSE progress stream (§6).
type ProgressEvent struct {
	Stage          string `json:"stage"`
	Progress       int    `json:"progress"`
	Message        string `json:"message"`
	ScheduledCount *int   `json:"scheduledCount,omitempty"`
}

const (
	StageLoading    = "loading"
	StageSeeding    = "seeding"
	StagePlacing    = "placing"
	StageOptimizing = "optimizing"
	StageComplete   = "complete"
	StageError      = "error"
)

// SaveRequest persists a previously generated proposal (SPEC_FULL §4:
// two-phase Generate → cache → Save flow).
type SaveRequest struct {
	RunID string `json:"runId" validate:"required"`
}
