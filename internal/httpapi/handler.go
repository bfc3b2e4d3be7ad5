package httpapi

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/export"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
	"github.com/joseph-ayodele/docfields/internal/repository"
)

type Config struct {
	Version        string
	MaxUploadBytes int64
	// UploadDir holds uploads while they are processed; empty means os.TempDir.
	UploadDir string
}

type Handler struct {
	proc     *pipeline.Processor
	repo     repository.ExtractionRepository
	exporter *export.Service
	cfg      Config
	logger   *slog.Logger
}

// NewHandler wires the HTTP surface. repo may be nil; the stored-result
// routes then answer 503.
func NewHandler(proc *pipeline.Processor, repo repository.ExtractionRepository, cfg Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		proc:     proc,
		repo:     repo,
		exporter: export.NewService(repo, logger),
		cfg:      cfg,
		logger:   logger,
	}
}

type extractTextRequest struct {
	Text    string `json:"text"`
	DocType string `json:"doc_type"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": h.cfg.Version})
}

func (h *Handler) extractText(c *gin.Context) {
	var req extractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	v := common.NewValidator().
		Field("doc_type", req.DocType, common.DocumentType)
	if err := v.Error(); err != nil {
		writeError(c, http.StatusBadRequest, v.ErrorMessage())
		return
	}
	var docType constants.DocumentType
	if strings.TrimSpace(req.DocType) != "" {
		docType, _ = constants.ParseDocumentType(req.DocType)
	}
	res, err := h.proc.ProcessText(c.Request.Context(), req.Text, docType)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// extractFile accepts a multipart "file". A non-nil allowed narrows the
// accepted extensions below the global set.
func (h *Handler) extractFile(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cfg.MaxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes)
		}
		fh, err := c.FormFile("file")
		if err != nil {
			if code := statusCode(err); code == http.StatusRequestEntityTooLarge {
				writeError(c, code, "upload too large")
				return
			}
			writeError(c, http.StatusBadRequest, "multipart field \"file\" is required")
			return
		}
		v := common.NewValidator().Field("file", fh.Filename, common.Required, common.FileExtension)
		if err := v.Error(); err != nil {
			writeError(c, http.StatusBadRequest, v.ErrorMessage())
			return
		}
		ext := constants.NormalizeExt(filepath.Ext(fh.Filename))
		if allowed != nil && !slices.Contains(allowed, ext) {
			writeError(c, http.StatusBadRequest, "unsupported file type; use "+strings.Join(allowed, ", "))
			return
		}

		path, cleanup, err := saveUpload(fh, h.cfg.UploadDir, ext)
		if err != nil {
			h.fail(c, err)
			return
		}
		defer cleanup()

		res, err := h.proc.ProcessNamedFile(c.Request.Context(), path, filepath.Base(fh.Filename))
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func saveUpload(fh *multipart.FileHeader, dir, ext string) (string, func(), error) {
	src, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "upload-*."+ext)
	if err != nil {
		return "", nil, fmt.Errorf("create upload file: %w", err)
	}
	cleanup := func() { _ = os.Remove(dst.Name()) }
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		cleanup()
		return "", nil, fmt.Errorf("store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("store upload: %w", err)
	}
	return dst.Name(), cleanup, nil
}

func (h *Handler) getExtraction(c *gin.Context) {
	if h.repo == nil {
		writeError(c, http.StatusServiceUnavailable, "no store configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "id must be a UUID")
		return
	}
	res, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) listFilter(c *gin.Context) (repository.ListFilter, bool) {
	var f repository.ListFilter
	if raw := c.Query("doc_type"); raw != "" {
		dt, ok := constants.ParseDocumentType(raw)
		if !ok {
			writeError(c, http.StatusBadRequest, "unknown doc_type "+strconv.Quote(raw))
			return f, false
		}
		f.DocType = dt
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return f, false
		}
		f.Limit = n
	}
	return f, true
}

func (h *Handler) listExtractions(c *gin.Context) {
	if h.repo == nil {
		writeError(c, http.StatusServiceUnavailable, "no store configured")
		return
	}
	f, ok := h.listFilter(c)
	if !ok {
		return
	}
	results, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	if results == nil {
		results = []pipeline.DocumentResult{}
	}
	c.JSON(http.StatusOK, gin.H{"extractions": results})
}

func (h *Handler) exportXLSX(c *gin.Context) {
	if h.repo == nil {
		writeError(c, http.StatusServiceUnavailable, "no store configured")
		return
	}
	f, ok := h.listFilter(c)
	if !ok {
		return
	}
	b, err := h.exporter.ExportStored(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="extractions.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		common.LoggerFromContext(c.Request.Context(), h.logger).Error("http.request.failed", "err", err)
	}
	writeError(c, code, err.Error())
}

func statusCode(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrUnsupportedFormat), errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrEmptyDocument):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}
