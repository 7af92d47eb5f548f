package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Exec es el escape hatch de línea de comandos: invoca el binario yt-dlp
// directamente sobre un directorio temporal del request. Se usa como
// último recurso cuando la llamada estructurada falla.
type Exec struct {
	// BinPath es el binario a invocar; vacío usa "yt-dlp" del PATH
	BinPath string
	// TmpRoot es la raíz de los directorios temporales; vacío usa os.TempDir
	TmpRoot string
}

// NewExec crea el adapter de subprocess
func NewExec(binPath string) *Exec {
	return &Exec{BinPath: binPath}
}

func (e *Exec) bin() string {
	if e.BinPath != "" {
		return e.BinPath
	}
	return "yt-dlp"
}

// GetInfo obtiene metadata ejecutando yt-dlp -J
func (e *Exec) GetInfo(ctx context.Context, url string, opts InfoOptions) (*Info, error) {
	args := []string{"--dump-single-json", "--no-warnings"}
	if opts.FlatPlaylist {
		args = append(args, "--flat-playlist")
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, e.bin(), args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, wrapExecError("yt-dlp info", err, stderr.String())
	}

	return ParseInfo(output)
}

// GetFile descarga el media en un directorio temporal, lee de vuelta el
// primer archivo no oculto producido y retorna el payload ya materializado.
// El directorio se elimina incondicionalmente, también cuando el propio
// fallback falla.
func (e *Exec) GetFile(ctx context.Context, url, format string) (*File, error) {
	dir, err := os.MkdirTemp(e.TmpRoot, "ytdl-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	cmd := exec.CommandContext(ctx, e.bin(),
		"-f", format,
		"-o", filepath.Join(dir, "download.%(ext)s"),
		"--no-playlist",
		"--no-warnings",
		"--no-progress",
		url,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, wrapExecError("yt-dlp download", err, stderr.String())
	}

	path, err := findProducedFile(dir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read downloaded file: %w", err)
	}

	return NewBufferedFile(data, extOf(path)), nil
}

// wrapExecError conserva el stderr del proceso para el diagnóstico y
// clasifica dependencias faltantes
func wrapExecError(op string, err error, stderr string) error {
	combined := fmt.Errorf("%s failed: %w\n%s", op, err, strings.TrimSpace(stderr))
	if depErr := classifyDependency(combined); depErr != nil {
		return depErr
	}
	return combined
}

// CheckYtDlp verifica que el binario yt-dlp esté disponible
func CheckYtDlp(binPath string) error {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if err := exec.Command(binPath, "--version").Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrYtDlpMissing, err)
	}
	return nil
}

// CheckFFmpeg verifica que el helper de transcoding esté disponible
func CheckFFmpeg(path string) error {
	if path == "" {
		path = "ffmpeg"
	}
	if err := exec.Command(path, "-version").Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrFFmpegMissing, err)
	}
	return nil
}
