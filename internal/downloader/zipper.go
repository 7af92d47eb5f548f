package downloader

import (
	"archive/zip"
	"context"
	"fmt"
	"io"

	"github.com/elsanchez/media-fetch/internal/domain"
	"github.com/elsanchez/media-fetch/internal/extractor"
)

// ZipStream es un archivo ZIP en construcción: Reader entrega los bytes
// del archive a medida que el productor los escribe. TotalSize es la
// estimación de la suma de tamaños de los items (0 = desconocido; nunca
// se inventa un total).
type ZipStream struct {
	Reader    io.ReadCloser
	TotalSize int64
}

// Close aborta el archive y libera el pipe
func (z *ZipStream) Close() error {
	return z.Reader.Close()
}

type zipItem struct {
	url   string
	title string
	size  int64
}

// DeliverZip resuelve N URLs y arma un ZIP streameado: la respuesta
// empieza a fluir apenas el writer produce output, sin bufferizar el
// archive completo en memoria. Los items se procesan secuencialmente y
// las entradas aparecen en el orden de la lista de entrada.
//
// Política de fallo parcial (uniforme con ResolveDirectBatch): un item
// que falla al resolverse se omite y el resto continúa; solo si todos
// fallan el archive completo se aborta.
func (s *Service) DeliverZip(ctx context.Context, urls []string, kind domain.Kind) (*ZipStream, error) {
	// Primera pasada: metadata secuencial para títulos y estimación de tamaño
	items := make([]zipItem, 0, len(urls))
	var totalSize int64
	var failed int
	for _, u := range urls {
		info, err := s.ex.GetInfo(ctx, u, extractor.InfoOptions{})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			continue
		}
		title := info.Title
		if title == "" {
			title = "item"
		}
		size := info.Filesize
		if size == 0 {
			size = info.FilesizeApprox
		}
		items = append(items, zipItem{url: u, title: title, size: size})
		totalSize += size
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("zip: all %d items failed to resolve", failed)
	}

	pr, pw := io.Pipe()
	go s.writeArchive(ctx, pw, items, kind)

	return &ZipStream{Reader: pr, TotalSize: totalSize}, nil
}

// writeArchive es el productor: agrega cada media al ZIP y cierra el pipe
func (s *Service) writeArchive(ctx context.Context, pw *io.PipeWriter, items []zipItem, kind domain.Kind) {
	zw := zip.NewWriter(pw)
	ext := defaultExt(kind)
	appended := 0

	for _, it := range items {
		if ctx.Err() != nil {
			pw.CloseWithError(ctx.Err())
			return
		}

		file, err := s.ex.GetFile(ctx, it.url, zipFormatRequest(kind))
		if err != nil {
			// Item fallido: se omite y el archive continúa
			continue
		}

		name := fmt.Sprintf("%s.%s", it.title, ext)
		w, err := zw.Create(name)
		if err != nil {
			file.Close()
			pw.CloseWithError(fmt.Errorf("zip entry %q: %w", name, err))
			return
		}

		// Un fallo a mitad de copia dejaría una entrada truncada dentro
		// del archive, así que acá sí se aborta el request completo
		if _, err := io.Copy(w, file.Reader); err != nil {
			file.Close()
			pw.CloseWithError(fmt.Errorf("zip copy %q: %w", name, err))
			return
		}
		file.Close()
		appended++
	}

	if appended == 0 {
		pw.CloseWithError(fmt.Errorf("zip: no items could be fetched"))
		return
	}

	// Finalizar recién después de agregar todos los items
	if err := zw.Close(); err != nil {
		pw.CloseWithError(err)
		return
	}
	pw.Close()
}

// zipFormatRequest arma el selector de yt-dlp para el contenido del ZIP:
// audio-only en máxima calidad, o video+audio muxed con container mp4
// preferido
func zipFormatRequest(kind domain.Kind) string {
	if kind == domain.KindAudio {
		return "bestaudio"
	}
	return "best[ext=mp4]/best"
}
