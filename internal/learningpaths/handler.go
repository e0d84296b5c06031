package learningpaths

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hirevision-backend/internal/shared/server/middleware"
	"hirevision-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the learning path service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches learning path routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/learning-paths", h.createPath)
	rg.GET("/learning-paths", h.listPaths)
	rg.GET("/learning-paths/:id", h.getPath)
	rg.GET("/learning-paths/:id/report", h.getReport)
}

func (h *Handler) createPath(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid JSON body", nil)
		return
	}
	path, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if path.ID != "" {
		c.Set(middleware.RecordIDKey, path.ID)
	}
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, verr.Message, nil)
		case errors.Is(err, ErrDispatch):
			respond.Error(c, http.StatusServiceUnavailable, respond.CodeUnavailable, "The learning path could not be scheduled. Please try again.", gin.H{"id": path.ID})
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to start learning path", nil)
		}
		return
	}
	c.Set(middleware.StatusTransitionKey, "->"+string(path.TaskStatus))
	respond.Accepted(c, gin.H{"id": path.ID, "taskStatus": path.TaskStatus})
}

func (h *Handler) getPath(c *gin.Context) {
	path, ok := h.lookup(c)
	if !ok {
		return
	}
	respond.OK(c, path)
}

func (h *Handler) getReport(c *gin.Context) {
	path, ok := h.lookup(c)
	if !ok {
		return
	}
	if path.Result == nil {
		respond.Error(c, http.StatusConflict, respond.CodeNotReady, "The learning path has not finished yet.", gin.H{"taskStatus": path.TaskStatus})
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(FormatMarkdown(*path.Result)))
}

func (h *Handler) lookup(c *gin.Context) (LearningPath, bool) {
	id := c.Param("id")
	c.Set(middleware.RecordIDKey, id)
	path, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "learning path not found", nil)
		} else {
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to fetch learning path", nil)
		}
		return LearningPath{}, false
	}
	return path, true
}

func (h *Handler) listPaths(c *gin.Context) {
	limit, offset := respond.Page(c)
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to list learning paths", nil)
		return
	}
	if items == nil {
		items = []LearningPath{}
	}
	respond.OK(c, gin.H{"items": items, "limit": limit, "offset": offset})
}
