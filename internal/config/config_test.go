package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MEDIA_FETCH_ADDR", "")
	t.Setenv("YTDLP_BINARY_PATH", "")
	t.Setenv("FFMPEG_PATH", "")
	t.Setenv("MEDIA_FETCH_TIMEOUT", "")

	cfg := FromEnv()

	if cfg.ListenAddr != ":8090" {
		t.Errorf("ListenAddr = %q, want :8090", cfg.ListenAddr)
	}
	if cfg.YtDlpPath != "" || cfg.FFmpegPath != "" {
		t.Errorf("binary paths = %q/%q, want empty (usar PATH)", cfg.YtDlpPath, cfg.FFmpegPath)
	}
	if cfg.RequestTimeout != 10*time.Minute {
		t.Errorf("RequestTimeout = %v, want 10m", cfg.RequestTimeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MEDIA_FETCH_ADDR", "127.0.0.1:9000")
	t.Setenv("YTDLP_BINARY_PATH", "/opt/bin/yt-dlp")
	t.Setenv("FFMPEG_PATH", "/opt/bin/ffmpeg")
	t.Setenv("MEDIA_FETCH_COOKIES_DIR", "/tmp/cookies")
	t.Setenv("MEDIA_FETCH_TIMEOUT", "30s")

	cfg := FromEnv()

	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.YtDlpPath != "/opt/bin/yt-dlp" {
		t.Errorf("YtDlpPath = %q", cfg.YtDlpPath)
	}
	if cfg.FFmpegPath != "/opt/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q", cfg.FFmpegPath)
	}
	if cfg.CookiesDir != "/tmp/cookies" {
		t.Errorf("CookiesDir = %q", cfg.CookiesDir)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
}

func TestFromEnvInvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("MEDIA_FETCH_TIMEOUT", "no-es-duracion")

	cfg := FromEnv()
	if cfg.RequestTimeout != 10*time.Minute {
		t.Errorf("RequestTimeout = %v, want default ante valor inválido", cfg.RequestTimeout)
	}
}
