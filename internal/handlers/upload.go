package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"drake-homes/internal/config"
	"drake-homes/internal/database"
	"drake-homes/internal/models"
	"drake-homes/internal/search"
	"drake-homes/internal/upload"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadHandler serves /api/upload: a one-shot upload for single files and
// staged sessions for bulk property image uploads
type UploadHandler struct {
	gdb      *database.GormDB
	store    upload.Store
	sessions *upload.Sessions
	cfg      config.UploadConfig
	index    IndexQueue
}

func NewUploadHandler(gdb *database.GormDB, store upload.Store, sessions *upload.Sessions, cfg config.UploadConfig, index IndexQueue) *UploadHandler {
	return &UploadHandler{gdb: gdb, store: store, sessions: sessions, cfg: cfg, index: indexQueueOrNoop(index)}
}

func (h *UploadHandler) limits() upload.Limits {
	return upload.Limits{
		MaxFiles:      h.cfg.MaxFiles,
		MaxFileSizeMB: h.cfg.MaxFileSizeMB,
		BatchSize:     h.cfg.BatchSize,
	}
}

// Upload stores one image from the "file" form field and returns its URL
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	contentType, r, err := upload.CheckImage(fh.Filename, fh.Size, h.cfg.MaxFileSizeBytes(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	key := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	url, err := h.store.Put(c.Request.Context(), key, r, fh.Size, contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[upload] stored %s as %s", fh.Filename, key)
	c.JSON(http.StatusCreated, gin.H{"url": url, "content_type": contentType, "size": fh.Size})
}

type createSessionRequest struct {
	PropertyID uint `json:"property_id" binding:"required"`
}

// CreateSession opens a queue for one property. Its capacity accounts for
// the images the property already has.
func (h *UploadHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	if _, err := h.gdb.GetProperty(ctx, req.PropertyID); err != nil {
		respondError(c, err)
		return
	}
	existing, err := h.gdb.CountPropertyImages(ctx, req.PropertyID)
	if err != nil {
		respondError(c, err)
		return
	}

	propertyID := req.PropertyID
	q := upload.NewQueue(upload.Options{
		Limits:     h.limits(),
		Existing:   existing,
		StagingDir: h.cfg.StagingDir,
		Store:      h.store,
		OnUploaded: func(ctx context.Context, e upload.Entry) error {
			return h.gdb.AddPropertyImage(ctx, &models.PropertyImage{
				PropertyID: propertyID,
				ImageURL:   e.URL,
				IsMain:     e.IsMain,
			})
		},
	})
	sess := h.sessions.Create(propertyID, q)
	log.Printf("[upload] session %s opened for property %d (%d existing images)", sess.ID, propertyID, existing)
	c.JSON(http.StatusCreated, gin.H{"session": sess, "remaining": q.Remaining()})
}

func (h *UploadHandler) session(c *gin.Context) (*upload.Session, bool) {
	sess, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload session not found"})
		return nil, false
	}
	return sess, true
}

func (h *UploadHandler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":   sess,
		"entries":   sess.Queue.Entries(),
		"remaining": sess.Queue.Remaining(),
	})
}

// DeleteSession closes the queue and releases every preview
func (h *UploadHandler) DeleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Upload session closed"})
}

// AddFiles stages the "files" form fields. A batch over the remaining
// capacity is rejected whole; otherwise invalid files are reported next to
// the ones that were added.
func (h *UploadHandler) AddFiles(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "multipart form is required")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		badRequest(c, "no files given")
		return
	}

	incoming := make([]upload.Incoming, len(headers))
	for i, fh := range headers {
		incoming[i] = incomingFile(fh)
	}
	added, err := sess.Queue.AddFiles(incoming)
	if err != nil && len(added) == 0 {
		respondError(c, err)
		return
	}

	resp := gin.H{"added": added, "entries": sess.Queue.Entries(), "remaining": sess.Queue.Remaining()}
	if err != nil {
		resp["errors"] = strings.Split(err.Error(), "\n")
	}
	c.JSON(http.StatusOK, resp)
}

func incomingFile(fh *multipart.FileHeader) upload.Incoming {
	return upload.Incoming{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// Preview streams the staged copy of a pending or failed entry
func (h *UploadHandler) Preview(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	path, contentType, err := sess.Queue.Preview(c.Param("entryId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", contentType)
	c.File(path)
}

func (h *UploadHandler) RemoveFile(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Queue.Remove(c.Param("entryId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": sess.Queue.Entries(), "remaining": sess.Queue.Remaining()})
}

func (h *UploadHandler) SetMain(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Queue.SetMain(c.Param("entryId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": sess.Queue.Entries()})
}

// UploadAll uploads every pending entry in batches
func (h *UploadHandler) UploadAll(c *gin.Context) {
	h.run(c, "uploaded", (*upload.Queue).UploadAll)
}

// Retry re-queues failed entries and uploads them again
func (h *UploadHandler) Retry(c *gin.Context) {
	h.run(c, "retried", (*upload.Queue).RetryFailed)
}

func (h *UploadHandler) run(c *gin.Context, verb string, pass func(*upload.Queue, context.Context) (upload.Result, error)) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	result, err := pass(sess.Queue, ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Uploaded > 0 {
		enqueue(ctx, h.index, search.KindProperties, sess.PropertyID, models.IndexActionUpsert)
	}
	log.Printf("[upload] session %s %s %d, failed %d", sess.ID, verb, result.Uploaded, result.Failed)
	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"message": fmt.Sprintf("Uploaded %d of %d", result.Uploaded, result.Uploaded+result.Failed),
		"entries": sess.Queue.Entries(),
	})
}
