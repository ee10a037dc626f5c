package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusplan/timetable-core/internal/dto"
)

// StreamGenerate runs Generate and reports it over Server-Sent Events using
// the stage vocabulary of dto.ProgressEvent (§6: "optional, for the
// long-running mode"). The solver itself runs synchronously; this adapter
// brackets it with loading/complete (or error) frames rather than
// threading a progress callback through every stage.
func (h *TimetableHandler) StreamGenerate(c *gin.Context) {
	var req dto.GenerateOptionsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.SSEvent(dto.StageError, dto.ProgressEvent{Stage: dto.StageError, Message: err.Error()})
			return
		}
	}

	c.SSEvent(dto.StageLoading, dto.ProgressEvent{Stage: dto.StageLoading, Progress: 0, Message: "loading input snapshot"})
	c.Writer.Flush()

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		c.SSEvent(dto.StageError, dto.ProgressEvent{Stage: dto.StageError, Progress: 100, Message: err.Error()})
		return
	}

	scheduled := len(result.Schedules)
	c.SSEvent(dto.StageComplete, gin.H{
		"event":  dto.ProgressEvent{Stage: dto.StageComplete, Progress: 100, Message: "generation finished", ScheduledCount: &scheduled},
		"result": result,
	})
	c.Status(http.StatusOK)
}
