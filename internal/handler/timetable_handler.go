package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusplan/timetable-core/internal/dto"
	appErrors "github.com/campusplan/timetable-core/pkg/errors"
	"github.com/campusplan/timetable-core/pkg/response"
)

// timetableGenerator is the subset of TimetableService a handler depends on,
// grounded on the teacher's scheduleGenerator seam (ScheduleGeneratorHandler).
type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateOptionsRequest) (*dto.GenerateResultResponse, error)
	Save(ctx context.Context, req dto.SaveRequest) error
}

// TimetableHandler exposes the Generate/Save HTTP surface of §6.
type TimetableHandler struct {
	service timetableGenerator
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableGenerator) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Run the timetable solver and return a preview proposal
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateOptionsRequest false "Generate options"
// @Success 200 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateOptionsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
			return
		}
	}

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Save godoc
// @Summary Persist a previously generated proposal
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.SaveRequest true "Save payload"
// @Success 204
// @Router /schedules/save [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	if err := h.service.Save(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
