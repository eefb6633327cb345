package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cliplab/annotation-backend/internal/http/response"
	"github.com/cliplab/annotation-backend/internal/services"
)

type QueryHandler struct {
	queries services.QueryService
}

func NewQueryHandler(queries services.QueryService) *QueryHandler {
	return &QueryHandler{queries: queries}
}

// POST /api/videos/:id/queries
func (h *QueryHandler) CreateQuery(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_video_id", err)
		return
	}
	var in services.QueryCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	q, err := h.queries.Create(c.Request.Context(), nil, videoID, in)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"query": q})
}

// GET /api/videos/:id/queries
func (h *QueryHandler) ListVideoQueries(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_video_id", err)
		return
	}
	queries, err := h.queries.ListByVideo(c.Request.Context(), nil, videoID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"queries": queries, "count": len(queries)})
}

// GET /api/queries/:id
func (h *QueryHandler) GetQuery(c *gin.Context) {
	queryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query_id", err)
		return
	}
	q, err := h.queries.Get(c.Request.Context(), nil, queryID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"query": q})
}

// PUT /api/queries/:id
func (h *QueryHandler) UpdateQuery(c *gin.Context) {
	queryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query_id", err)
		return
	}
	var in services.QueryUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	q, err := h.queries.Update(c.Request.Context(), nil, queryID, in)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"query": q})
}

// PATCH /api/queries/:id/status
func (h *QueryHandler) SetQueryStatus(c *gin.Context) {
	queryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query_id", err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	q, err := h.queries.SetStatus(c.Request.Context(), nil, queryID, body.Status)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"query": q})
}

// DELETE /api/queries/:id
func (h *QueryHandler) DeleteQuery(c *gin.Context) {
	queryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query_id", err)
		return
	}
	if err := h.queries.Delete(c.Request.Context(), nil, queryID); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "query and all associated annotations deleted"})
}
