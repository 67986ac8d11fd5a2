package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/christopherklint97/studyr/internal/calendar"
	"github.com/christopherklint97/studyr/internal/export"
	"github.com/christopherklint97/studyr/internal/planner"
	"github.com/christopherklint97/studyr/internal/progress"
	"github.com/christopherklint97/studyr/internal/quotes"
	"github.com/christopherklint97/studyr/internal/store"
	"github.com/christopherklint97/studyr/internal/study"
	"github.com/christopherklint97/studyr/internal/subjects"
)

// Service is the application layer the handlers call.
type Service interface {
	CreatePlan(ctx context.Context, req study.Request) (*study.Result, error)
	Sessions(ctx context.Context) ([]store.Session, error)
	Complete(ctx context.Context, subject string) (store.Session, error)
	Progress(ctx context.Context) (progress.Summary, error)
	CompletionRate(ctx context.Context) (int, error)
}

var _ Service = (*study.Service)(nil)

type Handler struct {
	svc          Service
	defaultHours float64
	quote        func() quotes.Quote
	now          func() time.Time
}

func NewHandler(svc Service, defaultHours float64) *Handler {
	return &Handler{
		svc:          svc,
		defaultHours: defaultHours,
		quote:        func() quotes.Quote { return quotes.Random(nil) },
		now:          time.Now,
	}
}

type createPlanRequest struct {
	DailyHours float64          `json:"daily_hours"`
	Subjects   []subjects.Entry `json:"subjects"`
	DryRun     bool             `json:"dry_run"`
}

type planResponse struct {
	PlanID     string            `json:"plan_id,omitempty"`
	TotalDays  int               `json:"total_days"`
	DailyHours float64           `json:"daily_hours"`
	Sessions   []planner.Session `json:"sessions"`
	Subjects   []planner.Subject `json:"subjects"`
}

type completeRequest struct {
	Subject string `json:"subject" binding:"required"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreatePlan handles POST /api/v1/plans.
func (h *Handler) CreatePlan(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWithDetails(c, http.StatusBadRequest, codeBadRequest, "invalid request body", err.Error())
		return
	}
	if req.DailyHours == 0 {
		req.DailyHours = h.defaultHours
	}

	res, err := h.svc.CreatePlan(c.Request.Context(), study.Request{
		Subjects:   subjects.NewList(req.Subjects...),
		DailyHours: req.DailyHours,
		DryRun:     req.DryRun,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := planResponse{
		TotalDays:  res.Plan.TotalDays,
		DailyHours: res.Plan.DailyHours,
		Sessions:   res.Plan.Sessions,
		Subjects:   res.Inputs,
	}
	if res.Record == nil {
		ok(c, resp)
		return
	}
	resp.PlanID = res.Record.ID
	created(c, resp)
}

func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.svc.Sessions(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	if sessions == nil {
		sessions = []store.Session{}
	}
	ok(c, sessions)
}

// CompleteSession handles POST /api/v1/sessions/complete.
func (h *Handler) CompleteSession(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWithDetails(c, http.StatusBadRequest, codeBadRequest, "subject is required", err.Error())
		return
	}

	sess, err := h.svc.Complete(c.Request.Context(), req.Subject)
	if err != nil {
		h.handleError(c, err)
		return
	}
	ok(c, sess)
}

func (h *Handler) Progress(c *gin.Context) {
	sum, err := h.svc.Progress(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, sum)
}

func (h *Handler) CompletionRate(c *gin.Context) {
	rate, err := h.svc.CompletionRate(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, gin.H{"completion_rate": rate})
}

// ExportICS handles GET /api/v1/export/ics.
func (h *Handler) ExportICS(c *gin.Context) {
	sessions, err := h.svc.Sessions(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := calendar.Export(&buf, sessions, h.now()); err != nil {
		internalError(c, err)
		return
	}
	h.attachment(c, "studyr.ics", "text/calendar; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /api/v1/export/xlsx.
func (h *Handler) ExportXLSX(c *gin.Context) {
	ctx := c.Request.Context()
	sessions, err := h.svc.Sessions(ctx)
	if err != nil {
		internalError(c, err)
		return
	}
	// Summarize the same snapshot so both sheets agree.
	sum := progress.Summarize(sessions, h.now())

	buf, err := export.Workbook(sessions, sum)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.attachment(c, "studyr.xlsx", export.ContentType, buf.Bytes())
}

func (h *Handler) RandomQuote(c *gin.Context) {
	ok(c, h.quote())
}

func (h *Handler) attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, subjects.ErrValidation), errors.Is(err, planner.ErrInvalidInput):
		fail(c, http.StatusUnprocessableEntity, codeValidation, err.Error())
	case errors.Is(err, store.ErrNoPendingSession):
		fail(c, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, export.ErrNoSessions):
		fail(c, http.StatusNotFound, codeNotFound, "no sessions to export")
	default:
		internalError(c, err)
	}
}
