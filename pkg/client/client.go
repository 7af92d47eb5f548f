package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL es la dirección del daemon por defecto
const DefaultBaseURL = "http://127.0.0.1:8090"

// defaultChunkSize es el tamaño de lectura para reportar progreso
const defaultChunkSize = 32 * 1024

// ProgressFunc recibe el avance de una descarga. percent es -1 cuando
// el servidor no reporta tamaño total.
type ProgressFunc func(received, total int64, percent int)

// Client representa un cliente HTTP del daemon
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	chunkSize int
}

// Option configura el cliente
type Option func(*Client)

// WithHTTPClient reemplaza el http.Client subyacente
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit limita el ancho de banda de descarga en bytes/segundo
func WithRateLimit(bytesPerSec int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
	}
}

// WithChunkSize cambia el tamaño de lectura para progreso
func WithChunkSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// NewClient crea un cliente apuntando a baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 0},
		chunkSize: defaultChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError es el body de error que retorna el daemon
type apiError struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func decodeError(resp *http.Response) error {
	var e apiError
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if e.Hint != "" {
		return fmt.Errorf("%s (%s)", e.Error, e.Hint)
	}
	return fmt.Errorf("%s", e.Error)
}

// Preview pide la metadata de una URL sin descargarla. Retorna el JSON
// crudo: puede ser un item individual o una playlist.
func (c *Client) Preview(ctx context.Context, mediaURL, typ string) (json.RawMessage, error) {
	body, _ := json.Marshal(map[string]string{"url": mediaURL, "type": typ})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/preview", strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w (is the daemon running?)", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// Download baja un item a destDir reportando progreso por chunks.
// Retorna la ruta del archivo guardado.
func (c *Client) Download(ctx context.Context, mediaURL, typ, formatID, destDir string, progress ProgressFunc) (string, error) {
	q := url.Values{}
	q.Set("url", mediaURL)
	if typ != "" {
		q.Set("kind", typ)
	}
	if formatID != "" {
		q.Set("formatId", formatID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/download?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("connect to daemon: %w (is the daemon running?)", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	filename := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	if filename == "" {
		filename = "download"
	}

	dest := filepath.Join(destDir, filename)
	return dest, c.saveStream(ctx, resp.Body, dest, resp.ContentLength, progress)
}

// DownloadZip baja un lote de URLs como archivo zip. El total para
// progreso viene del header X-Total-Size y es una estimación.
func (c *Client) DownloadZip(ctx context.Context, urls []string, typ, destDir string, progress ProgressFunc) (string, error) {
	body, _ := json.Marshal(map[string]any{"urls": urls, "kind": typ})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/download-zip", strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("connect to daemon: %w (is the daemon running?)", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	var total int64 = -1
	if ts := resp.Header.Get("X-Total-Size"); ts != "" {
		if n, err := strconv.ParseInt(ts, 10, 64); err == nil && n > 0 {
			total = n
		}
	}

	dest := filepath.Join(destDir, "playlist-"+time.Now().Format("20060102-150405")+".zip")
	return dest, c.saveStream(ctx, resp.Body, dest, total, progress)
}

// LinkError es un item fallido de una descarga por archivo de links
type LinkError struct {
	URL string
	Err error
}

// EachFunc se invoca antes de cada item de un lote
type EachFunc func(index, total int, url string)

// DownloadLinks procesa un archivo de links (una URL por línea, líneas
// vacías ignoradas) descargando secuencialmente a destDir. Un item
// fallido no detiene el lote; los fallos se retornan al final.
func (c *Client) DownloadLinks(ctx context.Context, linksPath, typ, destDir string, each EachFunc, progress ProgressFunc) ([]LinkError, error) {
	urls, err := readLinksFile(linksPath)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no links found in %s", linksPath)
	}

	var failures []LinkError
	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			return failures, err
		}
		if each != nil {
			each(i, len(urls), u)
		}
		if _, err := c.Download(ctx, u, typ, "", destDir, progress); err != nil {
			failures = append(failures, LinkError{URL: u, Err: err})
		}
	}

	return failures, nil
}

// saveStream copia el body a dest leyendo por chunks y reportando
// progreso. percent = floor(received*100/total); -1 sin total conocido.
func (c *Client) saveStream(ctx context.Context, body io.Reader, dest string, total int64, progress ProgressFunc) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	buf := make([]byte, c.chunkSize)
	var received int64

	for {
		if err := ctx.Err(); err != nil {
			os.Remove(dest)
			return err
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if c.limiter != nil {
				if err := waitQuota(ctx, c.limiter, n); err != nil {
					os.Remove(dest)
					return err
				}
			}
			if _, err := out.Write(buf[:n]); err != nil {
				os.Remove(dest)
				return fmt.Errorf("write file: %w", err)
			}
			received += int64(n)

			if progress != nil {
				percent := -1
				if total > 0 {
					percent = int(received * 100 / total)
					if percent > 100 {
						percent = 100
					}
				}
				progress(received, total, percent)
			}
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			os.Remove(dest)
			return fmt.Errorf("read response: %w", readErr)
		}
	}
}

// waitQuota consume n bytes del limiter, en partes si n excede el burst
func waitQuota(ctx context.Context, limiter *rate.Limiter, n int) error {
	burst := limiter.Burst()
	for n > 0 {
		take := n
		if take > burst {
			take = burst
		}
		if err := limiter.WaitN(ctx, take); err != nil {
			return err
		}
		n -= take
	}
	return nil
}

// filenameFromDisposition extrae el filename de un header
// Content-Disposition, decodificando percent-encoding
func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}

	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := params["filename"]; name != "" {
			if decoded, err := url.PathUnescape(name); err == nil {
				name = decoded
			}
			return filepath.Base(name)
		}
	}

	// Fallback tolerante para headers que mime no acepta
	const marker = "filename="
	idx := strings.Index(header, marker)
	if idx < 0 {
		return ""
	}
	name := strings.Trim(header[idx+len(marker):], "\" ")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	return filepath.Base(name)
}

// readLinksFile lee un archivo de links, una URL por línea
func readLinksFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open links file: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}

	return urls, nil
}
