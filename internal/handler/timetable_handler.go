package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dineshrk/timegrid-api/internal/dto"
	"github.com/dineshrk/timegrid-api/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context) (*dto.GenerateTimetableResponse, error)
}

type timetableQueries interface {
	Active(ctx context.Context) (*dto.TimetableView, error)
	ByTeacher(ctx context.Context, teacherID string) ([]dto.SlotView, error)
	ByGroup(ctx context.Context, groupID string) ([]dto.SlotView, error)
	ByDay(ctx context.Context, dayName string) ([]dto.SlotView, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	ExportPDF(ctx context.Context) ([]byte, error)
}

// TimetableHandler exposes generation and timetable read endpoints.
type TimetableHandler struct {
	generator timetableGenerator
	queries   timetableQueries
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(generator timetableGenerator, queries timetableQueries) *TimetableHandler {
	return &TimetableHandler{generator: generator, queries: queries}
}

// Generate godoc
// @Summary Run timetable generation and publish a new version
// @Description Schedules the first active student group across the fixed 5-day, 8-slot week.
// @Tags Timetable
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	result, err := h.generator.Generate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Active godoc
// @Summary Get the published timetable grouped by day
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Active(c *gin.Context) {
	view, err := h.queries.Active(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ByTeacher godoc
// @Summary Get the published timetable for one teacher
// @Tags Timetable
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/teachers/{id} [get]
func (h *TimetableHandler) ByTeacher(c *gin.Context) {
	slots, err := h.queries.ByTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// ByGroup godoc
// @Summary Get the published timetable for one student group
// @Tags Timetable
// @Produce json
// @Param id path string true "Student group ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/groups/{id} [get]
func (h *TimetableHandler) ByGroup(c *gin.Context) {
	slots, err := h.queries.ByGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// ByDay godoc
// @Summary Get the published timetable for one day
// @Tags Timetable
// @Produce json
// @Param day path string true "Day name (Monday..Friday)"
// @Success 200 {object} response.Envelope
// @Router /timetable/days/{day} [get]
func (h *TimetableHandler) ByDay(c *gin.Context) {
	slots, err := h.queries.ByDay(c.Request.Context(), c.Param("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// ExportCSV godoc
// @Summary Download the published timetable as CSV
// @Tags Timetable
// @Produce text/csv
// @Success 200
// @Router /timetable/export/csv [get]
func (h *TimetableHandler) ExportCSV(c *gin.Context) {
	data, err := h.queries.ExportCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="timetable.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportPDF godoc
// @Summary Download the published timetable as PDF
// @Tags Timetable
// @Produce application/pdf
// @Success 200
// @Router /timetable/export/pdf [get]
func (h *TimetableHandler) ExportPDF(c *gin.Context) {
	data, err := h.queries.ExportPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="timetable.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
