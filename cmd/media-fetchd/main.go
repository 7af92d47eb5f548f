package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elsanchez/media-fetch/internal/config"
	"github.com/elsanchez/media-fetch/internal/cookies"
	"github.com/elsanchez/media-fetch/internal/downloader"
	"github.com/elsanchez/media-fetch/internal/extractor"
	"github.com/elsanchez/media-fetch/internal/server"
)

const (
	version = "0.1.0"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("media-fetchd v%s starting...", version)

	cfg := config.FromEnv()

	// Verificar dependencias externas. Un binario ausente no impide
	// arrancar: las requests que lo necesiten responderán 503.
	if err := extractor.CheckYtDlp(cfg.YtDlpPath); err != nil {
		log.Printf("⚠ yt-dlp not available: %v", err)
	} else {
		log.Println("✓ yt-dlp found")
	}
	if err := extractor.CheckFFmpeg(cfg.FFmpegPath); err != nil {
		log.Printf("⚠ ffmpeg not available: %v (some formats may fail)", err)
	} else {
		log.Println("✓ ffmpeg found")
	}

	// Cookies por plataforma para sitios que requieren sesión
	store := cookies.NewStore(cfg.CookiesDir)
	log.Printf("Cookies directory: %s", cfg.CookiesDir)

	resolver := func(mediaURL string) string {
		platform := downloader.DetectPlatform(mediaURL)
		if platform == downloader.PlatformUnknown {
			return ""
		}
		return store.FileFor(string(platform))
	}

	primary := extractor.NewYtDlp(
		extractor.WithBinary(cfg.YtDlpPath),
		extractor.WithFFmpeg(cfg.FFmpegPath),
		extractor.WithCookies(resolver),
		extractor.WithTmpRoot(cfg.TmpDir),
	)
	fallback := &extractor.Exec{BinPath: cfg.YtDlpPath, TmpRoot: cfg.TmpDir}

	svc := downloader.NewService(extractor.NewChain(primary, fallback))
	srv := server.NewServer(cfg.ListenAddr, svc, cfg.RequestTimeout)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	log.Println("media-fetchd is ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		log.Println("Shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}
}
