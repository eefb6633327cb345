package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cliplab/annotation-backend/internal/http/response"
	"github.com/cliplab/annotation-backend/internal/services"
)

type AnnotationHandler struct {
	annotations services.AnnotationService
}

func NewAnnotationHandler(annotations services.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{annotations: annotations}
}

// POST /api/queries/:id/annotations
func (h *AnnotationHandler) CreateAnnotation(c *gin.Context) {
	queryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query_id", err)
		return
	}
	var in services.AnnotationCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	a, err := h.annotations.Create(c.Request.Context(), nil, queryID, in)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"annotation": a})
}

// GET /api/queries/:id/annotations
func (h *AnnotationHandler) ListQueryAnnotations(c *gin.Context) {
	queryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query_id", err)
		return
	}
	annotations, err := h.annotations.ListByQuery(c.Request.Context(), nil, queryID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"annotations": annotations, "count": len(annotations)})
}

// GET /api/annotations/:id
func (h *AnnotationHandler) GetAnnotation(c *gin.Context) {
	annotationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_annotation_id", err)
		return
	}
	a, err := h.annotations.Get(c.Request.Context(), nil, annotationID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"annotation": a})
}

// PUT /api/annotations/:id
func (h *AnnotationHandler) UpdateAnnotation(c *gin.Context) {
	annotationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_annotation_id", err)
		return
	}
	var in services.AnnotationUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	a, err := h.annotations.Update(c.Request.Context(), nil, annotationID, in)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"annotation": a})
}

// DELETE /api/annotations/:id
func (h *AnnotationHandler) DeleteAnnotation(c *gin.Context) {
	annotationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_annotation_id", err)
		return
	}
	if err := h.annotations.Delete(c.Request.Context(), nil, annotationID); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "annotation deleted"})
}
