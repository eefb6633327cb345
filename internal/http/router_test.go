package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/cliplab/annotation-backend/internal/http/handlers"
	"github.com/cliplab/annotation-backend/internal/repos"
	"github.com/cliplab/annotation-backend/internal/repos/testutil"
	"github.com/cliplab/annotation-backend/internal/services"
)

type stubProber struct {
	seconds int
}

func (p stubProber) Duration(ctx context.Context, rawURL string) (int, error) {
	return p.seconds, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := testutil.DB(t)
	log := testutil.Logger(t)

	videoRepo := repos.NewVideoRepo(gdb, log)
	queryRepo := repos.NewQueryRepo(gdb, log)
	annotationRepo := repos.NewAnnotationRepo(gdb, log)

	statuses := services.NewVideoStatusSet([]string{"pending", "processing", "completed", "failed"})
	ingest := services.NewIngestService(gdb, log, videoRepo, queryRepo, annotationRepo, stubProber{seconds: 90}, statuses)
	videoSvc := services.NewVideoService(gdb, log, videoRepo, queryRepo, annotationRepo, statuses)
	querySvc := services.NewQueryService(gdb, log, videoRepo, queryRepo, annotationRepo)
	annotationSvc := services.NewAnnotationService(gdb, log, queryRepo, annotationRepo)

	return NewRouter(RouterConfig{
		Log:               log,
		VideoHandler:      httpH.NewVideoHandler(ingest, videoSvc),
		QueryHandler:      httpH.NewQueryHandler(querySvc),
		AnnotationHandler: httpH.NewAnnotationHandler(annotationSvc),
		HealthHandler:     httpH.NewHealthHandler(),
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	r := testRouter(t)

	for _, path := range []string{"/healthcheck", "/api/health"} {
		rec := doJSON(t, r, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
	}
	rec := doJSON(t, r, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("index: status = %d", rec.Code)
	}
}

func TestSubmitVideoRoute(t *testing.T) {
	r := testRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/submit_video",
		`{"url":"https://example.com/router-submit.mp4","title":"clip","duration":30}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Video struct {
			ID string `json:"id"`
		} `json:"video"`
		VideoExisted bool `json:"video_existed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.VideoExisted {
		t.Fatal("fresh submission reported as existing")
	}

	// Resubmission reuses the row and reports 200.
	rec = doJSON(t, r, http.MethodPost, "/api/submit_video",
		`{"url":"https://example.com/router-submit.mp4","title":"other title"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("resubmit: status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPost, "/api/submit_video", `{"title":"no url"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing url: status = %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code  string `json:"code"`
			Field string `json:"field"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != "missing_field" || envelope.Error.Field != "url" {
		t.Fatalf("error envelope = %+v", envelope.Error)
	}

	// Local sources need an explicit duration.
	rec = doJSON(t, r, http.MethodPost, "/api/submit_video",
		`{"url":"/data/local-router.mp4","title":"clip"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("local without duration: status = %d", rec.Code)
	}
}

func TestSubmitBatchRoute(t *testing.T) {
	r := testRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/submit_videos", `{"videos":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty batch: status = %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/submit_videos", `{"videos":[
		{"url":"https://example.com/router-batch-0.mp4","title":"a","duration":10},
		{"url":"https://example.com/router-batch-1.mp4","title":"  ","duration":10}
	]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad batch: status = %d body = %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Error struct {
			Code  string `json:"code"`
			Index *int   `json:"index"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != "empty_field" || envelope.Error.Index == nil || *envelope.Error.Index != 1 {
		t.Fatalf("error envelope = %+v", envelope.Error)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/submit_videos", `{"videos":[
		{"url":"https://example.com/router-batch-0.mp4","title":"a","duration":10},
		{"url":"https://example.com/router-batch-1.mp4","title":"b","duration":10}
	]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("batch: status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestVideoLifecycleRoutes(t *testing.T) {
	r := testRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/submit_video",
		`{"url":"https://example.com/router-lifecycle.mp4","title":"clip","duration":60,
		  "queries":[{"query_text":"runner","annotations":[{"notes":"start line"}]}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Video struct {
			ID string `json:"id"`
		} `json:"video"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	videoID := created.Video.ID

	rec = doJSON(t, r, http.MethodGet, "/api/videos/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status = %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodGet, "/api/videos/00000000-0000-0000-0000-000000000000", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status = %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPatch, "/api/videos/"+videoID+"/status", `{"status":"archived"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: status = %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodPatch, "/api/videos/"+videoID+"/status", `{"status":"completed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set status: status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodGet, "/api/videos/"+videoID+"/queries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list queries: status = %d", rec.Code)
	}
	var queries struct {
		Queries []struct {
			ID string `json:"id"`
		} `json:"queries"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &queries); err != nil {
		t.Fatalf("decode queries: %v", err)
	}
	if queries.Count != 1 {
		t.Fatalf("query count = %d, want 1", queries.Count)
	}
	queryID := queries.Queries[0].ID

	rec = doJSON(t, r, http.MethodPatch, "/api/queries/"+queryID+"/status", `{"status":"verified"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify query: status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodDelete, "/api/videos/"+videoID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete video: status = %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodGet, "/api/queries/"+queryID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("query survived cascade: status = %d", rec.Code)
	}
}
