package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/dto"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/export"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/response"
)

type scheduleService interface {
	Get(ctx context.Context, id int64) (*models.Schedule, error)
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error)
	Search(ctx context.Context, query, specialty string) ([]models.Schedule, error)
	Specialties(ctx context.Context) ([]models.Specialty, error)
	Create(ctx context.Context, adminID int64, req *dto.CreateScheduleRequest) (*models.Schedule, error)
	Update(ctx context.Context, adminID, id int64, req *dto.UpdateScheduleRequest) (*models.Schedule, error)
	Delete(ctx context.Context, adminID, id int64) error
	Import(ctx context.Context, adminID int64, req *dto.ImportScheduleRequest) (int, error)
	AddSpecialDay(ctx context.Context, adminID int64, day *models.SpecialDay) error
	SpecialDays(ctx context.Context, from, to time.Time) ([]models.SpecialDay, error)
	ExportDataset(ctx context.Context, filter models.ScheduleFilter) (*export.Dataset, error)
}

// ScheduleHandler exposes timetable endpoints.
type ScheduleHandler struct {
	service scheduleService
	csv     datasetRenderer
	pdf     datasetRenderer
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(service scheduleService, csv, pdf datasetRenderer) *ScheduleHandler {
	return &ScheduleHandler{service: service, csv: csv, pdf: pdf}
}

// List godoc
// @Summary List timetable occurrences
// @Tags Schedule
// @Produce json
// @Param specialty query string false "Specialty name"
// @Param group query string false "Group name"
// @Param day query string false "Day of week"
// @Param date query string false "Concrete date (YYYY-MM-DD)"
// @Param teacher_id query int false "Teacher id"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	filter, err := scheduleFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	schedules, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Get godoc
// @Summary Get one occurrence
// @Tags Schedule
// @Produce json
// @Param id path int true "Occurrence ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	schedule, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Search godoc
// @Summary Search occurrences by subject or teacher
// @Tags Schedule
// @Produce json
// @Param q query string true "Search query"
// @Param specialty query string false "Narrow to a specialty"
// @Success 200 {object} response.Envelope
// @Router /schedule/search [get]
func (h *ScheduleHandler) Search(c *gin.Context) {
	schedules, err := h.service.Search(c.Request.Context(), c.Query("q"), strings.TrimSpace(c.Query("specialty")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Specialties godoc
// @Summary List study programs
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/specialties [get]
func (h *ScheduleHandler) Specialties(c *gin.Context) {
	specialties, err := h.service.Specialties(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, specialties, nil)
}

// Create godoc
// @Summary Add one occurrence
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.CreateScheduleRequest true "Occurrence payload"
// @Success 201 {object} response.Envelope
// @Router /schedule [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid schedule payload"))
		return
	}
	schedule, err := h.service.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, schedule, nil)
}

// Update godoc
// @Summary Edit one occurrence
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path int true "Occurrence ID"
// @Param payload body dto.UpdateScheduleRequest true "Partial edits"
// @Success 200 {object} response.Envelope
// @Router /schedule/{id} [patch]
func (h *ScheduleHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid schedule payload"))
		return
	}
	schedule, err := h.service.Update(c.Request.Context(), claims.UserID, id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Remove one occurrence
// @Tags Schedule
// @Param id path int true "Occurrence ID"
// @Success 204 "No Content"
// @Router /schedule/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims.UserID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Bulk-import pre-parsed timetable rows
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ImportScheduleRequest true "Import payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/import [post]
func (h *ScheduleHandler) Import(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ImportScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid import payload"))
		return
	}
	inserted, err := h.service.Import(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"imported": inserted}, nil)
}

// AddSpecialDay godoc
// @Summary Mark a date as holiday or short day
// @Tags Schedule
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /schedule/special-days [post]
func (h *ScheduleHandler) AddSpecialDay(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload struct {
		Date        string `json:"date" binding:"required"`
		IsHoliday   bool   `json:"is_holiday"`
		IsShortDay  bool   `json:"is_short_day"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid special day payload"))
		return
	}
	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date"))
		return
	}
	day := &models.SpecialDay{
		Date:       date,
		IsHoliday:  payload.IsHoliday,
		IsShortDay: payload.IsShortDay,
	}
	if payload.Description != "" {
		day.Description = &payload.Description
	}
	if err := h.service.AddSpecialDay(c.Request.Context(), claims.UserID, day); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, day)
}

// SpecialDays godoc
// @Summary List special days in a range
// @Tags Schedule
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule/special-days [get]
func (h *ScheduleHandler) SpecialDays(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid from date"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid to date"))
		return
	}
	days, err := h.service.SpecialDays(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}

// Export godoc
// @Summary Export a filtered timetable as CSV or PDF
// @Tags Schedule
// @Produce octet-stream
// @Param format query string false "csv or pdf (default pdf)"
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	filter, err := scheduleFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	dataset, err := h.service.ExportDataset(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "pdf"))
	var renderer datasetRenderer
	var contentType, extension string
	switch format {
	case "csv":
		renderer, contentType, extension = h.csv, "text/csv", "csv"
	case "pdf":
		renderer, contentType, extension = h.pdf, "application/pdf", "pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
		return
	}

	payload, err := renderer.Render(dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}

	filename := fmt.Sprintf("timetable-%s.%s", time.Now().UTC().Format("20060102-150405"), extension)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}

func scheduleFilterFromQuery(c *gin.Context) (models.ScheduleFilter, error) {
	filter := models.ScheduleFilter{
		Specialty: strings.TrimSpace(c.Query("specialty")),
		GroupName: strings.TrimSpace(c.Query("group")),
		DayOfWeek: strings.TrimSpace(c.Query("day")),
		Semester:  strings.TrimSpace(c.Query("semester")),
	}
	if rawDate := c.Query("date"); rawDate != "" {
		date, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid date")
		}
		filter.Date = &date
	}
	if rawTeacher := c.Query("teacher_id"); rawTeacher != "" {
		teacherID, err := strconv.ParseInt(rawTeacher, 10, 64)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid teacher_id")
		}
		filter.TeacherID = teacherID
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "0")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "0")); err == nil && size > 0 && size <= 200 {
		filter.PageSize = size
	}
	return filter, nil
}
