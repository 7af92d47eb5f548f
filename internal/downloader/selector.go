package downloader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/elsanchez/media-fetch/internal/domain"
)

// Nombres de los tres niveles de calidad del menú de audio
var qualityNames = []string{"Best", "Better", "Good"}

// BestVideo elige el mejor format de video de una lista.
// Prefiere formats muxed (video+audio) ordenados por (height, tbr)
// descendente; sin muxed cae a video-only con el mismo orden; como último
// recurso retorna el primer format de la lista. Con lista vacía retorna nil
// y el caller debe tratarlo como fallo de resolución.
func BestVideo(formats []domain.Format) *domain.Format {
	if len(formats) == 0 {
		return nil
	}

	if best := bestByHeight(filter(formats, (*domain.Format).IsMuxed)); best != nil {
		return best
	}
	if best := bestByHeight(filter(formats, (*domain.Format).HasVideo)); best != nil {
		return best
	}

	return &formats[0]
}

// BestAudio elige el mejor format de audio de una lista.
// Prefiere audio-only ordenado por (abr, tbr) descendente; sin audio-only
// cae al primer format con codec de audio; como último recurso el primero.
func BestAudio(formats []domain.Format) *domain.Format {
	if len(formats) == 0 {
		return nil
	}

	audioOnly := filter(formats, (*domain.Format).IsAudioOnly)
	if len(audioOnly) > 0 {
		sortDesc(audioOnly, func(f *domain.Format) (float64, float64) {
			return f.ABR, f.TBR
		})
		return &audioOnly[0]
	}

	for i := range formats {
		if formats[i].HasAudio() {
			return &formats[i]
		}
	}

	return &formats[0]
}

// BestForKind aplica la política de selección según el kind solicitado
func BestForKind(formats []domain.Format, kind domain.Kind) *domain.Format {
	if kind == domain.KindAudio {
		return BestAudio(formats)
	}
	return BestVideo(formats)
}

// AudioOptions construye el menú de calidades de audio: deduplica por
// format id, ordena por bitrate descendente y retiene solo los tres
// mejores, etiquetados "Best" / "Better" / "Good" con un tag legible.
func AudioOptions(formats []domain.Format) []domain.AudioOption {
	audioOnly := filter(formats, (*domain.Format).IsAudioOnly)

	seen := make(map[string]bool)
	options := make([]domain.AudioOption, 0, len(audioOnly))
	for i := range audioOnly {
		f := &audioOnly[i]
		if f.ID == "" || seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		options = append(options, domain.AudioOption{
			FormatID: f.ID,
			Ext:      f.Ext,
			ABR:      f.Bitrate(),
			Filesize: f.Size(),
			Label:    formatTag(f),
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].ABR > options[j].ABR
	})

	if len(options) > 3 {
		options = options[:3]
	}
	for i := range options {
		options[i].Label = qualityNames[i] + " - " + options[i].Label
	}

	return options
}

// formatTag genera la descripción legible de un format de audio
func formatTag(f *domain.Format) string {
	var parts []string
	if br := f.Bitrate(); br > 0 {
		parts = append(parts, fmt.Sprintf("%.0f kbps", br))
	}
	if f.Ext != "" {
		parts = append(parts, strings.ToUpper(f.Ext))
	}
	if size := f.Size(); size > 0 {
		parts = append(parts, fmt.Sprintf("%.1f MB", float64(size)/(1024*1024)))
	}
	if len(parts) == 0 {
		return f.ID
	}
	return strings.Join(parts, " • ")
}

// bestByHeight ordena por (height, tbr) descendente y retorna el primero
func bestByHeight(pool []domain.Format) *domain.Format {
	if len(pool) == 0 {
		return nil
	}
	sortDesc(pool, func(f *domain.Format) (float64, float64) {
		return float64(f.Height), f.TBR
	})
	return &pool[0]
}

// sortDesc ordena estable por dos claves descendentes; los empates
// conservan el orden de entrada para mantener la selección determinista
func sortDesc(pool []domain.Format, keys func(*domain.Format) (float64, float64)) {
	sort.SliceStable(pool, func(i, j int) bool {
		ki1, ki2 := keys(&pool[i])
		kj1, kj2 := keys(&pool[j])
		if ki1 != kj1 {
			return ki1 > kj1
		}
		return ki2 > kj2
	})
}

// filter copia los formats que cumplen el predicado (no muta la entrada)
func filter(formats []domain.Format, pred func(*domain.Format) bool) []domain.Format {
	var out []domain.Format
	for i := range formats {
		if pred(&formats[i]) {
			out = append(out, formats[i])
		}
	}
	return out
}
