package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dineshrk/timegrid-api/internal/dto"
	"github.com/dineshrk/timegrid-api/internal/models"
	"github.com/dineshrk/timegrid-api/pkg/errors"
	"github.com/dineshrk/timegrid-api/pkg/response"
)

type preferenceManager interface {
	Get(ctx context.Context, teacherID string) (*models.TeacherPreference, error)
	Upsert(ctx context.Context, teacherID string, req dto.UpsertPreferenceRequest) (*models.TeacherPreference, error)
}

// TeacherPreferenceHandler exposes per-teacher availability preferences.
type TeacherPreferenceHandler struct {
	preferences preferenceManager
}

// NewTeacherPreferenceHandler constructs the handler.
func NewTeacherPreferenceHandler(preferences preferenceManager) *TeacherPreferenceHandler {
	return &TeacherPreferenceHandler{preferences: preferences}
}

// Get godoc
// @Summary Get a teacher's availability preference
// @Description Returns stored preferences, or the defaults when none are stored.
// @Tags Preferences
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id}/preferences [get]
func (h *TeacherPreferenceHandler) Get(c *gin.Context) {
	pref, err := h.preferences.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// Upsert godoc
// @Summary Create or replace a teacher's availability preference
// @Tags Preferences
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param request body dto.UpsertPreferenceRequest true "Preference payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id}/preferences [put]
func (h *TeacherPreferenceHandler) Upsert(c *gin.Context) {
	var req dto.UpsertPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "invalid request body"))
		return
	}
	pref, err := h.preferences.Upsert(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}
