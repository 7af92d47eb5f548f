package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lrstanley/go-ytdlp"
)

// CookieResolver retorna el path a un cookie file para la URL dada,
// o "" cuando no hay cookies disponibles. Se inyecta como función para
// no acoplar el adapter a la detección de plataforma.
type CookieResolver func(url string) string

// YtDlp es la implementación estructurada del Extractor: usa el wrapper
// tipado de yt-dlp en vez de armar líneas de comando a mano.
type YtDlp struct {
	binPath    string
	ffmpegPath string
	cookies    CookieResolver
	tmpRoot    string
}

// YtDlpOption configura el adapter
type YtDlpOption func(*YtDlp)

// WithBinary fija el path del binario yt-dlp (sino, discovery por PATH)
func WithBinary(path string) YtDlpOption {
	return func(y *YtDlp) { y.binPath = path }
}

// WithFFmpeg fija el path del helper de transcoding
func WithFFmpeg(path string) YtDlpOption {
	return func(y *YtDlp) { y.ffmpegPath = path }
}

// WithCookies instala el resolver de cookie files
func WithCookies(resolver CookieResolver) YtDlpOption {
	return func(y *YtDlp) { y.cookies = resolver }
}

// WithTmpRoot fija el directorio raíz para temporales (tests)
func WithTmpRoot(root string) YtDlpOption {
	return func(y *YtDlp) { y.tmpRoot = root }
}

// NewYtDlp crea el adapter estructurado
func NewYtDlp(opts ...YtDlpOption) *YtDlp {
	y := &YtDlp{}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// GetInfo obtiene metadata vía --dump-single-json y la decodifica
func (y *YtDlp) GetInfo(ctx context.Context, url string, opts InfoOptions) (*Info, error) {
	dl := ytdlp.New().
		DumpSingleJSON().
		SkipDownload().
		NoWarnings()

	if opts.FlatPlaylist {
		dl.FlatPlaylist()
	}
	y.applyCommon(dl, url)

	result, err := dl.Run(ctx, url)
	if err != nil {
		if depErr := classifyDependency(err); depErr != nil {
			return nil, depErr
		}
		return nil, fmt.Errorf("yt-dlp info: %w", err)
	}

	info, err := ParseInfo([]byte(result.Stdout))
	if err != nil {
		return nil, err
	}
	return info, nil
}

// ParseInfo decodifica el JSON de metadata de yt-dlp
func ParseInfo(data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode yt-dlp metadata: %w", err)
	}
	return &info, nil
}

// GetFile descarga el media con el format pedido a un directorio temporal
// propio del request y retorna un stream sobre el archivo producido.
// Close() del File elimina el directorio.
func (y *YtDlp) GetFile(ctx context.Context, url, format string) (*File, error) {
	dir, err := os.MkdirTemp(y.tmpRoot, "media-fetch-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	dl := ytdlp.New().
		Format(format).
		Output(filepath.Join(dir, "media.%(ext)s")).
		NoPlaylist().
		NoWarnings().
		NoProgress()
	y.applyCommon(dl, url)

	if _, err := dl.Run(ctx, url); err != nil {
		os.RemoveAll(dir)
		if depErr := classifyDependency(err); depErr != nil {
			return nil, depErr
		}
		return nil, fmt.Errorf("yt-dlp download: %w", err)
	}

	path, err := findProducedFile(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("open downloaded file: %w", err)
	}

	size := int64(-1)
	if stat, err := f.Stat(); err == nil {
		size = stat.Size()
	}

	return NewFile(f, size, extOf(path), func() { os.RemoveAll(dir) }), nil
}

// applyCommon aplica overrides de config y cookies al comando
func (y *YtDlp) applyCommon(dl *ytdlp.Command, url string) {
	if y.binPath != "" {
		dl.SetExecutable(y.binPath)
	}
	if y.ffmpegPath != "" {
		dl.FFmpegLocation(y.ffmpegPath)
	}
	if y.cookies != nil {
		if path := y.cookies(url); path != "" {
			dl.Cookies(path)
		}
	}
}

// findProducedFile retorna el primer archivo no oculto del directorio
func findProducedFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read temp dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || entry.Name()[0] == '.' {
			continue
		}
		return filepath.Join(dir, entry.Name()), nil
	}
	return "", fmt.Errorf("no file found after download in %s", dir)
}

// extOf extrae la extensión sin punto del path, o "" si no tiene
func extOf(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return ext[1:]
}
