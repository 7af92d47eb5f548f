package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elsanchez/media-fetch/internal/domain"
	"github.com/elsanchez/media-fetch/internal/extractor"
)

// PreviewRequest es el body de POST /api/preview
type PreviewRequest struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// DownloadURLRequest es el body de POST /api/download-url. Acepta una
// URL individual o un lote; con ambas presentes gana el lote.
type DownloadURLRequest struct {
	URL  string   `json:"url,omitempty"`
	URLs []string `json:"urls,omitempty"`
	Kind string   `json:"kind,omitempty"`
}

// ZipRequest es el body de POST /api/download-zip
type ZipRequest struct {
	URLs []string `json:"urls"`
	Kind string   `json:"kind,omitempty"`
}

// Version se reporta en /api/health
const Version = "0.1.0"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
}

func (s *Server) handlePreview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	meta, err := s.svc.Preview(ctx, req.URL, req.Type)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, meta)
}

func (s *Server) handleDownload(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url parameter is required"})
		return
	}
	kind := domain.ParseKind(c.Query("kind"))
	formatID := c.Query("formatId")

	ctx, cancel := s.requestContext(c)
	defer cancel()

	d, err := s.svc.Deliver(ctx, rawURL, kind, formatID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"%s\"", url.PathEscape(d.Filename)))
	c.Header("Content-Length", strconv.Itoa(len(d.Data)))
	c.Data(http.StatusOK, d.ContentType, d.Data)
}

func (s *Server) handleDownloadURL(c *gin.Context) {
	var req DownloadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	kind := domain.ParseKind(req.Kind)

	ctx, cancel := s.requestContext(c)
	defer cancel()

	// Modo lote: tolerante a fallos, placeholders vacíos por item fallido
	if len(req.URLs) > 0 {
		links := s.svc.ResolveDirectBatch(ctx, req.URLs, kind)
		c.JSON(http.StatusOK, gin.H{"links": links})
		return
	}

	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	link, err := s.svc.ResolveDirect(ctx, req.URL, kind)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

func (s *Server) handleDownloadZip(c *gin.Context) {
	var req ZipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.URLs) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least 2 urls are required"})
		return
	}
	kind := domain.ParseKind(req.Kind)

	ctx, cancel := s.requestContext(c)
	defer cancel()

	zs, err := s.svc.DeliverZip(ctx, req.URLs, kind)
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer zs.Close()

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", "attachment; filename=\"playlist.zip\"")
	if zs.TotalSize > 0 {
		// Estimación, no el tamaño del zip: el cliente la usa para progreso
		c.Header("X-Total-Size", strconv.FormatInt(zs.TotalSize, 10))
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, zs.Reader); err != nil {
		// Headers ya enviados; solo queda registrar el corte
		log.Printf("zip stream aborted: %v", err)
	}
}

// writeError mapea errores del servicio a códigos HTTP. Dependencias
// externas ausentes son 503 con instrucciones de instalación.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, extractor.ErrYtDlpMissing):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "yt-dlp is not installed on the server",
			"hint":  "install it with: pip install yt-dlp (or set YTDLP_BINARY_PATH)",
		})
	case errors.Is(err, extractor.ErrFFmpegMissing):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "ffmpeg is not installed on the server",
			"hint":  "install ffmpeg and make sure it is on PATH (or set FFMPEG_PATH)",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
