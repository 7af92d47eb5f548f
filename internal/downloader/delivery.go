package downloader

import (
	"context"
	"errors"
	"fmt"

	"github.com/elsanchez/media-fetch/internal/domain"
	"github.com/elsanchez/media-fetch/internal/extractor"
)

// ErrNoFormat indica que el extractor corrió pero no encontró una URL
// de format descargable
var ErrNoFormat = errors.New("no downloadable format URL found")

// ErrEmptyPayload indica que la descarga produjo cero bytes
var ErrEmptyPayload = errors.New("file download failed: empty file")

// Service resuelve URLs a bytes/streams usando el Extractor. No guarda
// estado entre requests; cada entrega es sincrónica y request-scoped.
type Service struct {
	ex extractor.Extractor
}

// NewService crea el servicio de entrega
func NewService(ex extractor.Extractor) *Service {
	return &Service{ex: ex}
}

// Delivery es el payload resuelto de una entrega single-item, ya
// materializado para conocer el Content-Length
type Delivery struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Deliver resuelve una URL a bytes con metadata de respuesta HTTP.
// Orden de resolución del format: formatID explícito si existe entre los
// candidatos; sino el mejor según el kind (muxed para video, audio-only
// para audio); sino el request genérico "best"/"bestaudio".
func (s *Service) Deliver(ctx context.Context, url string, kind domain.Kind, formatID string) (*Delivery, error) {
	info, err := s.ex.GetInfo(ctx, url, extractor.InfoOptions{})
	if err != nil {
		return nil, err
	}

	formatRequest, ext := resolveFormatRequest(info.Formats, kind, formatID)

	file, err := s.ex.GetFile(ctx, url, formatRequest)
	if err != nil {
		return nil, err
	}

	// La extensión real del archivo producido manda sobre la adivinada
	if file.Ext != "" {
		ext = file.Ext
	}

	data, err := file.Bytes()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	title := info.Title
	if title == "" {
		title = "download"
	}

	return &Delivery{
		Data:        data,
		Filename:    fmt.Sprintf("%s.%s", title, ext),
		ContentType: ContentTypeFor(ext, kind),
	}, nil
}

// ResolveDirect resuelve la URL directa del mejor format sin proxear bytes
func (s *Service) ResolveDirect(ctx context.Context, url string, kind domain.Kind) (*domain.DirectLink, error) {
	info, err := s.ex.GetInfo(ctx, url, extractor.InfoOptions{})
	if err != nil {
		return nil, err
	}

	chosen := BestForKind(info.Formats, kind)
	if chosen == nil || chosen.URL == "" {
		return nil, ErrNoFormat
	}

	ext := chosen.Ext
	if ext == "" {
		ext = defaultExt(kind)
	}

	title := info.Title
	if title == "" {
		title = "download"
	}

	return &domain.DirectLink{
		DirectURL: chosen.URL,
		Filename:  fmt.Sprintf("%s.%s", title, ext),
	}, nil
}

// ResolveDirectBatch resuelve varias URLs tolerando fallos por item:
// un item fallido se representa con strings vacíos en vez de abortar
// el batch completo.
func (s *Service) ResolveDirectBatch(ctx context.Context, urls []string, kind domain.Kind) []domain.DirectLink {
	links := make([]domain.DirectLink, 0, len(urls))
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		link, err := s.ResolveDirect(ctx, u, kind)
		if err != nil {
			links = append(links, domain.DirectLink{})
			continue
		}
		links = append(links, *link)
	}
	return links
}

// resolveFormatRequest decide el string de format para el extractor y la
// extensión estimada del resultado
func resolveFormatRequest(formats []domain.Format, kind domain.Kind, formatID string) (request, ext string) {
	if formatID != "" {
		for i := range formats {
			if formats[i].ID == formatID {
				return formatID, orDefault(formats[i].Ext, kind)
			}
		}
	}

	var restricted *domain.Format
	if kind == domain.KindAudio {
		restricted = bestAudioOnly(formats)
	} else {
		restricted = bestMuxed(formats)
	}
	if restricted != nil {
		return restricted.ID, orDefault(restricted.Ext, kind)
	}

	if kind == domain.KindAudio {
		return "bestaudio", orDefault("", kind)
	}
	return "best", orDefault("", kind)
}

// bestMuxed retorna el mejor format muxed o nil si no hay ninguno
func bestMuxed(formats []domain.Format) *domain.Format {
	return bestByHeight(filter(formats, (*domain.Format).IsMuxed))
}

// bestAudioOnly retorna el mejor format audio-only o nil si no hay ninguno
func bestAudioOnly(formats []domain.Format) *domain.Format {
	pool := filter(formats, (*domain.Format).IsAudioOnly)
	if len(pool) == 0 {
		return nil
	}
	sortDesc(pool, func(f *domain.Format) (float64, float64) {
		return f.ABR, f.TBR
	})
	return &pool[0]
}

func orDefault(ext string, kind domain.Kind) string {
	if ext != "" {
		return ext
	}
	if kind == domain.KindAudio {
		return "m4a"
	}
	return "mp4"
}

func defaultExt(kind domain.Kind) string {
	if kind == domain.KindAudio {
		return "mp3"
	}
	return "mp4"
}

// ContentTypeFor mapea (extensión, kind) al Content-Type de la respuesta
func ContentTypeFor(ext string, kind domain.Kind) string {
	if kind == domain.KindAudio {
		switch ext {
		case "m4a", "mp4":
			return "audio/mp4"
		case "webm":
			return "audio/webm"
		case "aac":
			return "audio/aac"
		default:
			return "audio/mpeg"
		}
	}
	switch ext {
	case "webm":
		return "video/webm"
	case "mkv":
		return "video/x-matroska"
	default:
		return "video/mp4"
	}
}
