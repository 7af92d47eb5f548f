package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config agrupa la configuración del daemon. Todos los valores vienen
// de variables de entorno con defaults razonables.
type Config struct {
	// ListenAddr es la dirección del servidor HTTP (host:port)
	ListenAddr string

	// YtDlpPath es la ruta al binario yt-dlp. Vacío usa el PATH.
	YtDlpPath string

	// FFmpegPath es la ruta al binario ffmpeg. Vacío usa el PATH.
	FFmpegPath string

	// CookiesDir es el directorio donde se buscan archivos de cookies
	// por plataforma (<plataforma>.txt en formato Netscape)
	CookiesDir string

	// TmpDir es el directorio raíz para descargas temporales.
	// Vacío usa el temporal del sistema.
	TmpDir string

	// RequestTimeout limita la duración de cada operación de
	// extracción. Cero deshabilita el límite.
	RequestTimeout time.Duration
}

// FromEnv construye la configuración desde variables de entorno
func FromEnv() *Config {
	cfg := &Config{
		ListenAddr:     envOr("MEDIA_FETCH_ADDR", ":8090"),
		YtDlpPath:      os.Getenv("YTDLP_BINARY_PATH"),
		FFmpegPath:     os.Getenv("FFMPEG_PATH"),
		CookiesDir:     os.Getenv("MEDIA_FETCH_COOKIES_DIR"),
		TmpDir:         os.Getenv("MEDIA_FETCH_TMP_DIR"),
		RequestTimeout: envDuration("MEDIA_FETCH_TIMEOUT", 10*time.Minute),
	}

	if cfg.CookiesDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.CookiesDir = filepath.Join(home, ".config", "media-fetch", "cookies")
		}
	}

	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
