package downloader

import (
	"context"

	"github.com/google/uuid"

	"github.com/elsanchez/media-fetch/internal/domain"
	"github.com/elsanchez/media-fetch/internal/extractor"
)

// Preview resuelve la metadata de una URL para mostrarla antes de
// descargar. Para playlists retorna *domain.PlaylistMetadata con las
// entradas aplanadas; para items individuales *domain.MediaMetadata.
// El parámetro typ es el tipo pedido por la UI (video/audio/photo);
// con "audio" se incluye el menú de calidades top-3.
func (s *Service) Preview(ctx context.Context, url, typ string) (any, error) {
	info, err := s.ex.GetInfo(ctx, url, extractor.InfoOptions{FlatPlaylist: true})
	if err != nil {
		return nil, err
	}

	platform := string(DetectPlatform(url))

	if info.IsPlaylist() {
		return buildPlaylistPreview(info, url, platform), nil
	}

	title := info.Title
	if title == "" {
		title = "Untitled"
	}
	if typ == "" {
		typ = "video"
	}

	meta := &domain.MediaMetadata{
		Type:        typ,
		Title:       title,
		Author:      info.Author(),
		Description: info.Description,
		Duration:    domain.SecondsToTimestamp(info.Duration),
		Thumbnail:   info.BestThumbnail(),
		Platform:    platform,
		SourceURL:   url,
	}
	if typ == "audio" {
		meta.AudioFormats = AudioOptions(info.Formats)
	}

	return meta, nil
}

// buildPlaylistPreview aplana las entradas de la playlist. Selected
// siempre sale en false: es estado de UI que vive en el cliente.
func buildPlaylistPreview(info *extractor.Info, sourceURL, platform string) *domain.PlaylistMetadata {
	title := info.Title
	if title == "" {
		title = "Playlist"
	}

	items := make([]domain.PlaylistEntry, 0, len(info.Entries))
	for _, e := range info.Entries {
		entryURL := e.URL
		if entryURL == "" {
			entryURL = e.WebpageURL
		}

		// El id sale de la URL propia de la entrada, no de la heredada:
		// varias entradas sin URL compartirían la de la playlist y
		// colisionarían entre sí
		id := e.ID
		if id == "" {
			id = entryURL
		}
		if id == "" {
			// ID aleatorio para mantener ids únicos en la UI
			id = uuid.NewString()[:8]
		}

		if entryURL == "" {
			entryURL = sourceURL
		}

		entryTitle := e.Title
		if entryTitle == "" {
			entryTitle = "Untitled"
		}

		thumb := e.Thumbnail
		if thumb == "" && len(e.Thumbnails) > 0 {
			thumb = e.Thumbnails[0].URL
		}

		items = append(items, domain.PlaylistEntry{
			ID:        id,
			Title:     entryTitle,
			Thumbnail: thumb,
			Duration:  domain.SecondsToTimestamp(e.Duration),
			URL:       entryURL,
			Selected:  false,
		})
	}

	return &domain.PlaylistMetadata{
		Type:       "playlist",
		Title:      title,
		Author:     info.Author(),
		Platform:   platform,
		TotalItems: len(items),
		Items:      items,
	}
}
