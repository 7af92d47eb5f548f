package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/elsanchez/media-fetch/internal/domain"
	"github.com/elsanchez/media-fetch/internal/downloader"
	"github.com/elsanchez/media-fetch/internal/extractor"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeExtractor struct {
	getInfo func(url string, opts extractor.InfoOptions) (*extractor.Info, error)
	getFile func(url, format string) (*extractor.File, error)
}

func (f *fakeExtractor) GetInfo(ctx context.Context, url string, opts extractor.InfoOptions) (*extractor.Info, error) {
	return f.getInfo(url, opts)
}

func (f *fakeExtractor) GetFile(ctx context.Context, url, format string) (*extractor.File, error) {
	return f.getFile(url, format)
}

func newTestServer(fake *fakeExtractor) *Server {
	return NewServer(":0", downloader.NewService(fake), 0)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeExtractor{})

	w := doJSON(t, s, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestPreviewRequiresURL(t *testing.T) {
	s := newTestServer(&fakeExtractor{})

	for _, body := range []string{"", "{}", `{"type":"video"}`} {
		w := doJSON(t, s, http.MethodPost, "/api/preview", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestPreviewReturnsMetadata(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			return &extractor.Info{Title: "Clip", Uploader: "autor", Duration: 65}, nil
		},
	}
	s := newTestServer(fake)

	w := doJSON(t, s, http.MethodPost, "/api/preview", `{"url":"https://youtu.be/x"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var meta domain.MediaMetadata
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if meta.Title != "Clip" || meta.Platform != "youtube" || meta.Duration != "1:05" {
		t.Errorf("meta = %+v", meta)
	}
}

func TestPreviewMissingDependencyIs503(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			return nil, extractor.ErrYtDlpMissing
		},
	}
	s := newTestServer(fake)

	w := doJSON(t, s, http.MethodPost, "/api/preview", `{"url":"https://youtu.be/x"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "yt-dlp") {
		t.Errorf("body = %s, want mención a yt-dlp", w.Body.String())
	}
}

func TestDownloadRequiresURL(t *testing.T) {
	s := newTestServer(&fakeExtractor{})

	w := doJSON(t, s, http.MethodGet, "/api/download", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestDownloadHeaders(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			return &extractor.Info{
				Title: "Mi Clip",
				Formats: []domain.Format{{
					ID: "mux-720", Ext: "mp4", VCodec: "avc1", ACodec: "mp4a", Height: 720,
				}},
			}, nil
		},
		getFile: func(url, format string) (*extractor.File, error) {
			return extractor.NewBufferedFile([]byte("payload-bytes"), ""), nil
		},
	}
	s := newTestServer(fake)

	w := doJSON(t, s, http.MethodGet, "/api/download?url=https://youtu.be/x&kind=video", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("Content-Type = %q, want video/mp4", ct)
	}
	// Nombre con espacio: debe ir percent-encoded en la disposition
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Mi%20Clip.mp4") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if cl := w.Header().Get("Content-Length"); cl != "13" {
		t.Errorf("Content-Length = %q, want 13", cl)
	}
	if w.Body.String() != "payload-bytes" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestDownloadGenericErrorIs500(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			return nil, errors.New("video unavailable")
		},
	}
	s := newTestServer(fake)

	w := doJSON(t, s, http.MethodGet, "/api/download?url=https://youtu.be/x", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestDownloadURLSingle(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			return &extractor.Info{
				Title: "Track",
				Formats: []domain.Format{{
					ID: "mux-1", Ext: "mp4", VCodec: "avc1", ACodec: "mp4a",
					Height: 1080, URL: "https://cdn/video.mp4",
				}},
			}, nil
		},
	}
	s := newTestServer(fake)

	w := doJSON(t, s, http.MethodPost, "/api/download-url", `{"url":"https://youtu.be/x"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var link domain.DirectLink
	if err := json.Unmarshal(w.Body.Bytes(), &link); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if link.DirectURL != "https://cdn/video.mp4" || link.Filename != "Track.mp4" {
		t.Errorf("link = %+v", link)
	}
}

func TestDownloadURLBatchTolerant(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			if url == "https://bad" {
				return nil, errors.New("unavailable")
			}
			return &extractor.Info{
				Title: "t",
				Formats: []domain.Format{{
					ID: "f", Ext: "mp4", VCodec: "avc1", ACodec: "mp4a", URL: "https://cdn/f.mp4",
				}},
			}, nil
		},
	}
	s := newTestServer(fake)

	w := doJSON(t, s, http.MethodPost, "/api/download-url",
		`{"urls":["https://a","https://bad","https://c"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 con placeholders", w.Code)
	}

	var resp struct {
		Links []domain.DirectLink `json:"links"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Links) != 3 {
		t.Fatalf("links = %d, want 3", len(resp.Links))
	}
	if resp.Links[1].DirectURL != "" || resp.Links[1].Filename != "" {
		t.Errorf("links[1] = %+v, want placeholder vacío", resp.Links[1])
	}
	if resp.Links[0].DirectURL == "" || resp.Links[2].DirectURL == "" {
		t.Errorf("links laterales vacíos: %+v", resp.Links)
	}
}

func TestDownloadZipRejectsShortBatch(t *testing.T) {
	s := newTestServer(&fakeExtractor{})

	for _, body := range []string{`{"urls":[]}`, `{"urls":["https://solo"]}`} {
		w := doJSON(t, s, http.MethodPost, "/api/download-zip", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestDownloadZipStreamsArchive(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			return &extractor.Info{
				Title:    "item-" + strings.TrimPrefix(url, "https://"),
				Filesize: 100,
			}, nil
		},
		getFile: func(url, format string) (*extractor.File, error) {
			return extractor.NewBufferedFile([]byte("data"), "mp4"), nil
		},
	}
	s := newTestServer(fake)

	w := doJSON(t, s, http.MethodPost, "/api/download-zip",
		`{"urls":["https://a","https://b"],"kind":"video"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "playlist.zip") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if ts := w.Header().Get("X-Total-Size"); ts != "200" {
		t.Errorf("X-Total-Size = %q, want 200", ts)
	}

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatalf("open streamed archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d, want 2", len(zr.File))
	}
	if zr.File[0].Name != "item-a.mp4" || zr.File[1].Name != "item-b.mp4" {
		t.Errorf("entries = [%q, %q]", zr.File[0].Name, zr.File[1].Name)
	}
}
