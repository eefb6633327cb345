package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cliplab/annotation-backend/internal/http/response"
	"github.com/cliplab/annotation-backend/internal/services"
)

var errEmptyBatch = errors.New("batch must contain at least one video")

type VideoHandler struct {
	ingest services.IngestService
	videos services.VideoService
}

func NewVideoHandler(ingest services.IngestService, videos services.VideoService) *VideoHandler {
	return &VideoHandler{ingest: ingest, videos: videos}
}

// POST /api/submit_video
func (h *VideoHandler) SubmitVideo(c *gin.Context) {
	var in services.SubmissionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	res, err := h.ingest.SubmitVideo(c.Request.Context(), nil, in)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if res.VideoExisted {
		response.RespondOK(c, res)
		return
	}
	response.RespondCreated(c, res)
}

// POST /api/submit_videos
func (h *VideoHandler) SubmitBatch(c *gin.Context) {
	var body struct {
		Videos []services.SubmissionInput `json:"videos"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if len(body.Videos) == 0 {
		response.RespondError(c, http.StatusBadRequest, "empty_batch", errEmptyBatch)
		return
	}
	res, err := h.ingest.SubmitBatch(c.Request.Context(), nil, body.Videos)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// GET /api/videos
func (h *VideoHandler) ListVideos(c *gin.Context) {
	videos, err := h.videos.List(c.Request.Context(), nil)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videos": videos, "count": len(videos)})
}

// GET /api/videos/:id
func (h *VideoHandler) GetVideo(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_video_id", err)
		return
	}
	video, err := h.videos.Get(c.Request.Context(), nil, videoID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"video": video})
}

// PUT /api/videos/:id
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_video_id", err)
		return
	}
	var in services.VideoUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	video, err := h.videos.Update(c.Request.Context(), nil, videoID, in)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"video": video})
}

// PATCH /api/videos/:id/status
func (h *VideoHandler) SetVideoStatus(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_video_id", err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	video, err := h.videos.SetStatus(c.Request.Context(), nil, videoID, body.Status)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"video": video})
}

// DELETE /api/videos/:id
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_video_id", err)
		return
	}
	if err := h.videos.Delete(c.Request.Context(), nil, videoID); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "video and all associated data deleted"})
}
