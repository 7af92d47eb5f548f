package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elsanchez/media-fetch/internal/domain"
)

// Errores centinela para dependencias externas faltantes. El handler HTTP
// los traduce a 503 con instrucciones de instalación.
var (
	ErrYtDlpMissing  = errors.New("yt-dlp not found: install it (pip install yt-dlp) or set YTDLP_BINARY_PATH")
	ErrFFmpegMissing = errors.New("ffmpeg is required for this format: install ffmpeg or set FFMPEG_PATH")
)

// InfoOptions controla la llamada de metadata
type InfoOptions struct {
	// FlatPlaylist aplana playlists a entradas livianas sin resolver cada video
	FlatPlaylist bool
}

// Info es la metadata que retorna yt-dlp (--dump-single-json)
type Info struct {
	Type           string          `json:"_type"`
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Uploader       string          `json:"uploader"`
	Channel        string          `json:"channel"`
	Description    string          `json:"description"`
	Duration       float64         `json:"duration"`
	Thumbnail      string          `json:"thumbnail"`
	Thumbnails     []Thumbnail     `json:"thumbnails"`
	WebpageURL     string          `json:"webpage_url"`
	Filesize       int64           `json:"filesize"`
	FilesizeApprox int64           `json:"filesize_approx"`
	Formats        []domain.Format `json:"formats"`
	Entries        []Entry         `json:"entries"`
}

// Thumbnail es una miniatura reportada por el extractor
type Thumbnail struct {
	URL string `json:"url"`
}

// Entry es un item de playlist aplanada
type Entry struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	URL        string      `json:"url"`
	WebpageURL string      `json:"webpage_url"`
	Duration   float64     `json:"duration"`
	Thumbnail  string      `json:"thumbnail"`
	Thumbnails []Thumbnail `json:"thumbnails"`
}

// IsPlaylist retorna true si la metadata corresponde a una playlist
func (i *Info) IsPlaylist() bool {
	return i.Type == "playlist"
}

// BestThumbnail retorna la miniatura principal o la primera disponible
func (i *Info) BestThumbnail() string {
	if i.Thumbnail != "" {
		return i.Thumbnail
	}
	if len(i.Thumbnails) > 0 {
		return i.Thumbnails[0].URL
	}
	return ""
}

// Author retorna uploader o channel, lo que exista
func (i *Info) Author() string {
	if i.Uploader != "" {
		return i.Uploader
	}
	return i.Channel
}

// File es el resultado de una recuperación de media. Reader entrega los
// bytes; Size es -1 cuando el total no se conoce. Close libera el stream
// y cualquier directorio temporal asociado.
type File struct {
	Reader  io.ReadCloser
	Size    int64
	Ext     string
	cleanup func()
}

// NewFile construye un File; cleanup puede ser nil
func NewFile(r io.ReadCloser, size int64, ext string, cleanup func()) *File {
	return &File{Reader: r, Size: size, Ext: ext, cleanup: cleanup}
}

// NewBufferedFile construye un File ya materializado en memoria
func NewBufferedFile(data []byte, ext string) *File {
	return &File{
		Reader: io.NopCloser(bytes.NewReader(data)),
		Size:   int64(len(data)),
		Ext:    ext,
	}
}

// Close cierra el stream y ejecuta la limpieza pendiente
func (f *File) Close() error {
	err := f.Reader.Close()
	if f.cleanup != nil {
		f.cleanup()
		f.cleanup = nil
	}
	return err
}

// Bytes normaliza el File a un buffer único y lo cierra.
// La entrega single-item necesita el largo total para Content-Length.
func (f *File) Bytes() ([]byte, error) {
	defer f.Close()
	data, err := io.ReadAll(f.Reader)
	if err != nil {
		return nil, fmt.Errorf("read media stream: %w", err)
	}
	return data, nil
}

// Extractor define al colaborador externo de metadata y extracción.
// El core nunca implementa extracción; solo forma requests e interpreta
// respuestas de esta interfaz.
type Extractor interface {
	GetInfo(ctx context.Context, url string, opts InfoOptions) (*Info, error)
	GetFile(ctx context.Context, url, format string) (*File, error)
}

// Chain combina la llamada estructurada con el escape hatch de línea de
// comandos: si la recuperación primaria falla se intenta el subprocess
// directo antes de reportar el error.
type Chain struct {
	Primary  Extractor
	Fallback Extractor
}

// NewChain crea la cadena primaria + fallback
func NewChain(primary, fallback Extractor) *Chain {
	return &Chain{Primary: primary, Fallback: fallback}
}

// GetInfo consulta metadata; no tiene camino de fallback
func (c *Chain) GetInfo(ctx context.Context, url string, opts InfoOptions) (*Info, error) {
	return c.Primary.GetInfo(ctx, url, opts)
}

// GetFile intenta la vía estructurada y cae al subprocess si falla
func (c *Chain) GetFile(ctx context.Context, url, format string) (*File, error) {
	file, primaryErr := c.Primary.GetFile(ctx, url, format)
	if primaryErr == nil {
		return file, nil
	}

	// No reintentar si el request fue cancelado
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	file, fallbackErr := c.Fallback.GetFile(ctx, url, format)
	if fallbackErr == nil {
		return file, nil
	}

	if err := classifyDependency(primaryErr, fallbackErr); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("primary: %v; fallback: %w", primaryErr, fallbackErr)
}

// classifyDependency detecta dependencias faltantes en el texto del error.
// Un fallo que menciona ffmpeg es instalable, no un bug.
func classifyDependency(errs ...error) error {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, ErrYtDlpMissing) || errors.Is(err, ErrFFmpegMissing) {
			return err
		}
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "ffmpeg") {
			return fmt.Errorf("%w: %v", ErrFFmpegMissing, err)
		}
		if strings.Contains(msg, "executable file not found") && strings.Contains(msg, "yt-dlp") {
			return fmt.Errorf("%w: %v", ErrYtDlpMissing, err)
		}
	}
	return nil
}
