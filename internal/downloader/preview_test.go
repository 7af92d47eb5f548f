package downloader

import (
	"context"
	"testing"

	"github.com/elsanchez/media-fetch/internal/domain"
	"github.com/elsanchez/media-fetch/internal/extractor"
)

func TestPreviewSingleVideo(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			if !opts.FlatPlaylist {
				t.Error("preview debe pedir metadata con flat-playlist")
			}
			return &extractor.Info{
				Title:     "Un Video",
				Uploader:  "canal",
				Duration:  125,
				Thumbnail: "https://img/t.jpg",
			}, nil
		},
	}
	svc := NewService(fake)

	got, err := svc.Preview(context.Background(), "https://youtube.com/watch?v=x", "")
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	meta, ok := got.(*domain.MediaMetadata)
	if !ok {
		t.Fatalf("got %T, want *domain.MediaMetadata", got)
	}
	if meta.Type != "video" {
		t.Errorf("Type = %q, want default video", meta.Type)
	}
	if meta.Title != "Un Video" || meta.Author != "canal" {
		t.Errorf("Title/Author = %q/%q", meta.Title, meta.Author)
	}
	if meta.Duration != "2:05" {
		t.Errorf("Duration = %q, want 2:05", meta.Duration)
	}
	if meta.Platform != string(PlatformYouTube) {
		t.Errorf("Platform = %q", meta.Platform)
	}
	if len(meta.AudioFormats) != 0 {
		t.Errorf("AudioFormats presente en preview de video")
	}
}

func TestPreviewAudioIncludesQualityMenu(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			return &extractor.Info{
				Title: "Track",
				Formats: []domain.Format{
					audioOnly("ao-128", 128),
					audioOnly("ao-160", 160),
				},
			}, nil
		},
	}
	svc := NewService(fake)

	got, err := svc.Preview(context.Background(), "https://youtu.be/x", "audio")
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	meta := got.(*domain.MediaMetadata)
	if meta.Type != "audio" {
		t.Errorf("Type = %q", meta.Type)
	}
	if len(meta.AudioFormats) != 2 {
		t.Fatalf("AudioFormats = %d opciones, want 2", len(meta.AudioFormats))
	}
	if meta.AudioFormats[0].FormatID != "ao-160" {
		t.Errorf("primera opción = %q, want la de mayor abr", meta.AudioFormats[0].FormatID)
	}
}

func TestPreviewPlaylistFlattened(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			return &extractor.Info{
				Type:    "playlist",
				Title:   "Mi Lista",
				Channel: "canal",
				Entries: []extractor.Entry{
					{ID: "v1", Title: "Uno", URL: "https://youtu.be/v1", Duration: 60},
					{ID: "v2", Title: "Dos", WebpageURL: "https://youtu.be/v2"},
					{Title: ""},
				},
			}, nil
		},
	}
	svc := NewService(fake)

	got, err := svc.Preview(context.Background(), "https://youtube.com/playlist?list=x", "")
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	pl, ok := got.(*domain.PlaylistMetadata)
	if !ok {
		t.Fatalf("got %T, want *domain.PlaylistMetadata", got)
	}
	if pl.Type != "playlist" || pl.Title != "Mi Lista" {
		t.Errorf("Type/Title = %q/%q", pl.Type, pl.Title)
	}
	if pl.TotalItems != 3 || len(pl.Items) != 3 {
		t.Fatalf("TotalItems = %d, Items = %d, want 3/3", pl.TotalItems, len(pl.Items))
	}

	if pl.Items[0].URL != "https://youtu.be/v1" || pl.Items[0].Duration != "1:00" {
		t.Errorf("item[0] = %+v", pl.Items[0])
	}
	// Sin url plana se usa webpage_url
	if pl.Items[1].URL != "https://youtu.be/v2" {
		t.Errorf("item[1].URL = %q", pl.Items[1].URL)
	}
	// Entrada sin nada usable hereda la URL origen y recibe id sintético
	if pl.Items[2].URL != "https://youtube.com/playlist?list=x" {
		t.Errorf("item[2].URL = %q", pl.Items[2].URL)
	}
	if pl.Items[2].Title != "Untitled" {
		t.Errorf("item[2].Title = %q", pl.Items[2].Title)
	}
	for i, it := range pl.Items {
		if it.ID == "" {
			t.Errorf("item[%d] sin id", i)
		}
		if it.Selected {
			t.Errorf("item[%d].Selected = true, debe iniciar en false", i)
		}
	}
}

// Entradas sin id ni URL propia no pueden heredar la URL origen como
// id: colisionarían entre sí
func TestPreviewPlaylistBareEntriesGetDistinctIDs(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			return &extractor.Info{
				Type:  "playlist",
				Title: "Lista",
				Entries: []extractor.Entry{
					{Title: "Uno"},
					{Title: "Dos"},
				},
			}, nil
		},
	}
	svc := NewService(fake)

	got, err := svc.Preview(context.Background(), "https://youtube.com/playlist?list=x", "")
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	pl := got.(*domain.PlaylistMetadata)
	if len(pl.Items) != 2 {
		t.Fatalf("Items = %d, want 2", len(pl.Items))
	}
	if pl.Items[0].ID == "" || pl.Items[1].ID == "" {
		t.Fatalf("ids vacíos: %+v", pl.Items)
	}
	if pl.Items[0].ID == pl.Items[1].ID {
		t.Errorf("ids duplicados: %q == %q", pl.Items[0].ID, pl.Items[1].ID)
	}
	// La URL heredada sigue siendo la de origen
	for i, it := range pl.Items {
		if it.URL != "https://youtube.com/playlist?list=x" {
			t.Errorf("item[%d].URL = %q", i, it.URL)
		}
	}
}

func TestPreviewPropagatesExtractorError(t *testing.T) {
	fake := &fakeExtractor{
		getInfo: func(url string, opts extractor.InfoOptions) (*extractor.Info, error) {
			return nil, extractor.ErrYtDlpMissing
		},
	}
	svc := NewService(fake)

	if _, err := svc.Preview(context.Background(), "https://x.com/v", ""); err == nil {
		t.Fatal("expected error from extractor")
	}
}
