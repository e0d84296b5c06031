package resumebuilds

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"hirevision-backend/internal/shared/server/middleware"
	"hirevision-backend/internal/shared/server/respond"
	"hirevision-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the resume build service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume build routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume-builds", h.createBuild)
	rg.GET("/resume-builds", h.listBuilds)
	rg.GET("/resume-builds/:id", h.getBuild)
	rg.GET("/resume-builds/:id/latex", h.downloadLatex)
}

func (h *Handler) createBuild(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid JSON body", nil)
		return
	}
	build, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if build.ID != "" {
		c.Set(middleware.RecordIDKey, build.ID)
	}
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, verr.Message, nil)
		case errors.Is(err, ErrDispatch):
			respond.Error(c, http.StatusServiceUnavailable, respond.CodeUnavailable, "The resume build could not be scheduled. Please try again.", gin.H{"id": build.ID})
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to start resume build", nil)
		}
		return
	}
	c.Set(middleware.StatusTransitionKey, "->"+string(build.TaskStatus))
	respond.Accepted(c, gin.H{"id": build.ID, "taskStatus": build.TaskStatus})
}

func (h *Handler) getBuild(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RecordIDKey, id)
	build, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}
	respond.OK(c, build)
}

func (h *Handler) downloadLatex(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RecordIDKey, id)
	build, rc, err := h.Svc.OpenLatex(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		if errors.Is(err, ErrNotReady) {
			respond.Error(c, http.StatusConflict, respond.CodeNotReady, "The resume has not been generated yet.", gin.H{"taskStatus": build.TaskStatus})
			return
		}
		h.writeLookupError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "text/x-tex; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="resume.tex"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		telemetry.Error("resume_build.download_failed", map[string]any{"build_id": id, "error": err.Error()})
	}
}

func (h *Handler) writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "resume build not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to fetch resume build", nil)
}

func (h *Handler) listBuilds(c *gin.Context) {
	limit, offset := respond.Page(c)
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to list resume builds", nil)
		return
	}
	if items == nil {
		items = []ResumeBuild{}
	}
	respond.OK(c, gin.H{"items": items, "limit": limit, "offset": offset})
}
