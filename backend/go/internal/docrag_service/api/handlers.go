package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"DocRAG/backend/go/internal/crew"
	"DocRAG/backend/go/internal/docrag_service/service"
	"DocRAG/backend/go/internal/docstore"
	"DocRAG/backend/go/internal/llm"
	"DocRAG/backend/go/internal/models"
	"DocRAG/backend/go/internal/rag"
	"DocRAG/backend/go/internal/websearch"
	"DocRAG/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// API provides handlers for the DocRAG service.
type API struct {
	service        *service.Service
	logger         *logger.Logger
	title          string
	maxUploadBytes int64
}

// NewAPI creates a new API handler.
func NewAPI(svc *service.Service, title string, maxUploadBytes int64, logger *logger.Logger) *API {
	return &API{service: svc, logger: logger, title: title, maxUploadBytes: maxUploadBytes}
}

type uploadResponse struct {
	*docstore.Document
	Message string `json:"message"`
}

// IndexHandler renders the single page.
func (a *API) IndexHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":  a.title,
		"Accept": ".pdf,.png,.jpg,.jpeg",
		"Models": a.service.Models(),
	})
}

// HealthHandler reports 503 with the failing backends when any enabled backend is down.
func (a *API) HealthHandler(c *gin.Context) {
	if failed := a.service.Health(c.Request.Context()); len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ModelsHandler lists the model choices.
func (a *API) ModelsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": a.service.Models()})
}

// UploadHandler stores one multipart file under the field "file".
func (a *API) UploadHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", a.maxUploadBytes)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"file\""})
		return
	}
	f, err := fh.Open()
	if err != nil {
		a.writeError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		a.writeError(c, err)
		return
	}

	doc, err := a.service.Upload(c.Request.Context(), fh.Filename, data)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, uploadResponse{Document: doc, Message: uploadMessage(doc)})
}

// RunHandler runs the blog pipeline for one query.
func (a *API) RunHandler(c *gin.Context) {
	var req service.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	res, err := a.service.Run(c.Request.Context(), req)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func uploadMessage(doc *docstore.Document) string {
	if doc.Kind == docstore.KindImage {
		return fmt.Sprintf("Image file %s uploaded successfully.", doc.Name)
	}
	return fmt.Sprintf("PDF file %s uploaded successfully.", doc.Name)
}

func (a *API) writeError(c *gin.Context, err error) {
	status := StatusFor(err)
	info := models.NewErrorInfo(err, "http_error")
	info.StatusCode = status
	entry := a.logger.WithError(info).WithPayload(map[string]interface{}{"path": c.FullPath()})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, crew.ErrEmptyQuery),
		errors.Is(err, llm.ErrUnknownModel),
		errors.Is(err, docstore.ErrInvalidFilename):
		return http.StatusBadRequest
	case errors.Is(err, docstore.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, docstore.ErrUnsupportedKind):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, rag.ErrUnreadableDocument),
		errors.Is(err, crew.ErrCannotAnswer):
		return http.StatusUnprocessableEntity
	case errors.Is(err, websearch.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
