package domain

import "fmt"

// Kind representa la categoría de media solicitada en una entrega
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// ParseKind normaliza el kind recibido; cualquier valor distinto de "audio" es video
func ParseKind(s string) Kind {
	if s == string(KindAudio) {
		return KindAudio
	}
	return KindVideo
}

// Format representa una codificación concreta reportada por el extractor.
// Es transitorio: se obtiene fresco en cada request y nunca se persiste.
type Format struct {
	ID             string  `json:"format_id"`
	Ext            string  `json:"ext"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Height         int     `json:"height"`
	TBR            float64 `json:"tbr"`
	ABR            float64 `json:"abr"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	URL            string  `json:"url"`
	FormatNote     string  `json:"format_note"`
}

// HasVideo retorna true si el format incluye un codec de video
func (f *Format) HasVideo() bool {
	return f.VCodec != "" && f.VCodec != "none"
}

// HasAudio retorna true si el format incluye un codec de audio
func (f *Format) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != "none"
}

// IsMuxed retorna true si el format trae video y audio en un solo stream
func (f *Format) IsMuxed() bool {
	return f.HasVideo() && f.HasAudio()
}

// IsAudioOnly retorna true si el format trae solo audio
func (f *Format) IsAudioOnly() bool {
	return !f.HasVideo() && f.HasAudio()
}

// Size retorna el tamaño exacto si se conoce, sino el aproximado, sino 0
func (f *Format) Size() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return f.FilesizeApprox
}

// Bitrate retorna el bitrate de audio si existe, sino el total
func (f *Format) Bitrate() float64 {
	if f.ABR > 0 {
		return f.ABR
	}
	return f.TBR
}

// MediaItem es el entregable resuelto para un request; vive solo durante la respuesta
type MediaItem struct {
	SourceURL string
	Title     string
	Format    *Format
}

// PlaylistEntry representa un item de playlist aplanada.
// Selected es estado de UI del cliente; el servidor siempre lo emite en false.
type PlaylistEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Duration  string `json:"duration,omitempty"`
	URL       string `json:"url"`
	Selected  bool   `json:"selected"`
}

// AudioOption es una entrada del menú de calidades de audio (top 3)
type AudioOption struct {
	FormatID string  `json:"formatId"`
	Ext      string  `json:"ext,omitempty"`
	ABR      float64 `json:"abr,omitempty"`
	Filesize int64   `json:"filesize,omitempty"`
	Label    string  `json:"label"`
}

// MediaMetadata es el payload de preview para un item individual
type MediaMetadata struct {
	Type         string        `json:"type"` // video | audio | photo | playlist
	Title        string        `json:"title"`
	Author       string        `json:"author,omitempty"`
	Description  string        `json:"description,omitempty"`
	Duration     string        `json:"duration,omitempty"`
	Thumbnail    string        `json:"thumbnail,omitempty"`
	Platform     string        `json:"platform"`
	SourceURL    string        `json:"sourceUrl,omitempty"`
	AudioFormats []AudioOption `json:"audioFormats,omitempty"`
}

// PlaylistMetadata es el payload de preview para una playlist aplanada
type PlaylistMetadata struct {
	Type       string          `json:"type"` // siempre "playlist"
	Title      string          `json:"title"`
	Author     string          `json:"author,omitempty"`
	Platform   string          `json:"platform"`
	TotalItems int             `json:"totalItems"`
	Items      []PlaylistEntry `json:"items"`
}

// DirectLink es el resultado de resolver una URL directa sin proxear bytes.
// Un item fallido en batch se representa con strings vacíos.
type DirectLink struct {
	DirectURL string `json:"directUrl"`
	Filename  string `json:"filename"`
}

// SecondsToTimestamp convierte segundos a H:MM:SS o M:SS legible
func SecondsToTimestamp(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	s := int(seconds)
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
