package analyses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hirevision-backend/internal/shared/server/middleware"
	"hirevision-backend/internal/shared/server/respond"
	"hirevision-backend/internal/shared/telemetry"
)

// multipartOverhead is allowed on top of the file limit for form fields and boundaries.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
	Log telemetry.Logger
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Log: svc.Log}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume-analyses", h.createAnalysis)
	rg.GET("/resume-analyses", h.listAnalyses)
	rg.GET("/resume-analyses/:id", h.getAnalysis)
	rg.GET("/resume-analyses/:id/report", h.getReport)
}

func (h *Handler) createAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limits := h.Svc.limits()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limits.MaxFileBytes+multipartOverhead)

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeValidation, "File is too large.", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "Please upload a resume file.", []map[string]string{
			{"field": "resume", "issue": "required"},
		})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "The uploaded file could not be read.", nil)
		return
	}
	defer file.Close()

	analysis, err := h.Svc.Create(c.Request.Context(), CreateInput{
		UserID:         userID,
		FileName:       fileHeader.Filename,
		Size:           fileHeader.Size,
		Body:           file,
		JobDescription: c.PostForm("job_description"),
	})
	if analysis.ID != "" {
		c.Set(middleware.RecordIDKey, analysis.ID)
	}
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, verr.Message, nil)
		case errors.Is(err, ErrDispatch):
			respond.Error(c, http.StatusServiceUnavailable, respond.CodeUnavailable, "The analysis could not be scheduled. Please try again.", gin.H{"id": analysis.ID})
		default:
			telemetry.OrDefault(h.Log).Error("analysis.create_failed", map[string]any{"user_id": userID, "error": err.Error()})
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to start analysis", nil)
		}
		return
	}

	c.Set(middleware.StatusTransitionKey, "->"+string(analysis.TaskStatus))
	respond.Accepted(c, gin.H{
		"id":         analysis.ID,
		"taskStatus": analysis.TaskStatus,
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysis, ok := h.lookup(c)
	if !ok {
		return
	}
	respond.OK(c, analysis)
}

func (h *Handler) getReport(c *gin.Context) {
	analysis, ok := h.lookup(c)
	if !ok {
		return
	}
	if analysis.Result == nil {
		respond.Error(c, http.StatusConflict, respond.CodeNotReady, "The analysis has not finished yet.", gin.H{"taskStatus": analysis.TaskStatus})
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(FormatMarkdown(*analysis.Result)))
}

func (h *Handler) lookup(c *gin.Context) (Analysis, bool) {
	analysisID := c.Param("id")
	c.Set(middleware.RecordIDKey, analysisID)
	analysis, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), analysisID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "analysis not found", nil)
		} else {
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to fetch analysis", nil)
		}
		return Analysis{}, false
	}
	return analysis, true
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit, offset := respond.Page(c)
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to list analyses", nil)
		return
	}
	if items == nil {
		items = []Analysis{}
	}
	respond.OK(c, gin.H{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}
