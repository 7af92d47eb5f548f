package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elsanchez/media-fetch/internal/cookies"
	"github.com/elsanchez/media-fetch/internal/tui/transfer"
	"github.com/elsanchez/media-fetch/pkg/client"
)

const (
	version = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "preview":
		handlePreview(os.Args[2:])
	case "get":
		handleGet(os.Args[2:])
	case "zip":
		handleZip(os.Args[2:])
	case "links":
		handleLinks(os.Args[2:])
	case "cookies":
		handleCookies(os.Args[2:])
	case "version":
		fmt.Printf("mf v%s\n", version)
	case "help":
		printUsage()
	default:
		// Si el primer argumento parece una URL, asumir que es "get"
		if strings.HasPrefix(os.Args[1], "http") {
			handleGet(os.Args[1:])
		} else {
			fmt.Printf("Unknown command: %s\n", os.Args[1])
			printUsage()
			os.Exit(1)
		}
	}
}

func printUsage() {
	fmt.Println(`Media Fetch (mf) v` + version + `

Usage: mf <command> [args]

Commands:
  preview <url>             Show metadata without downloading
  get <url> [options]       Download a single video or audio
  zip <url> <url> [...]     Download several items as one zip archive
  links <file>              Download every URL listed in a file
  cookies <subcommand>      Manage per-platform cookie files
  version                   Show version
  help                      Show this help

Get Options:
  --type <video|audio>   What to extract (default: video)
  --format <id>          Specific format id from preview
  --out <dir>            Output directory (default: current)
  --limit <bytes/s>      Bandwidth cap for the transfer
  --plain                Line-based progress instead of the TUI

Cookies Subcommands:
  cookies import <file> [--platform <name>]
  cookies browser <browser> <domain>
  cookies export <platform> <output-file>
  cookies list
  cookies remove <platform>

Environment:
  MEDIA_FETCH_SERVER        Daemon address (default: ` + client.DefaultBaseURL + `)
  MEDIA_FETCH_COOKIES_DIR   Cookie files directory

Examples:
  mf preview https://youtube.com/watch?v=xxx
  mf get https://youtube.com/watch?v=xxx --type audio
  mf https://youtube.com/watch?v=xxx           (shorthand for 'get')
  mf zip https://youtu.be/a https://youtu.be/b --type audio
  mf links watchlist.txt --out ~/Music --type audio
  mf cookies import ~/cookies.txt
  mf cookies browser firefox youtube.com`)
}

func newClient(limit int) *client.Client {
	baseURL := os.Getenv("MEDIA_FETCH_SERVER")
	var opts []client.Option
	if limit > 0 {
		opts = append(opts, client.WithRateLimit(limit))
	}
	return client.NewClient(baseURL, opts...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func handlePreview(args []string) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	typ := fs.String("type", "video", "Media type (video or audio)")

	if len(args) == 0 {
		fatalf("URL is required")
	}
	url := args[0]
	fs.Parse(args[1:])

	c := newClient(0)
	data, err := c.Preview(context.Background(), url, *typ)
	if err != nil {
		fatalf("%v", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(pretty.String())
}

func handleGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	typ := fs.String("type", "video", "Media type (video or audio)")
	format := fs.String("format", "", "Specific format id")
	out := fs.String("out", ".", "Output directory")
	limit := fs.Int("limit", 0, "Bandwidth cap in bytes per second")
	plain := fs.Bool("plain", false, "Line-based progress output")

	if len(args) == 0 {
		fatalf("URL is required")
	}
	url := args[0]
	fs.Parse(args[1:])

	c := newClient(*limit)

	run := func(progress client.ProgressFunc) (string, error) {
		return c.Download(context.Background(), url, *typ, *format, *out, progress)
	}

	if *plain {
		path, err := run(plainProgress())
		fmt.Println()
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Saved: %s\n", path)
		return
	}

	runWithTUI(url, func(progress client.ProgressFunc) (string, error) {
		return run(progress)
	})
}

func handleZip(args []string) {
	fs := flag.NewFlagSet("zip", flag.ExitOnError)
	typ := fs.String("type", "video", "Media type (video or audio)")
	out := fs.String("out", ".", "Output directory")

	var urls []string
	for len(args) > 0 && strings.HasPrefix(args[0], "http") {
		urls = append(urls, args[0])
		args = args[1:]
	}
	fs.Parse(args)

	if len(urls) < 2 {
		fatalf("at least 2 URLs are required for a zip download")
	}

	c := newClient(0)
	runWithTUI("playlist.zip", func(progress client.ProgressFunc) (string, error) {
		return c.DownloadZip(context.Background(), urls, *typ, *out, progress)
	})
}

func handleLinks(args []string) {
	fs := flag.NewFlagSet("links", flag.ExitOnError)
	typ := fs.String("type", "video", "Media type (video or audio)")
	out := fs.String("out", ".", "Output directory")

	if len(args) == 0 {
		fatalf("links file is required")
	}
	linksPath := args[0]
	fs.Parse(args[1:])

	c := newClient(0)

	failures, err := c.DownloadLinks(context.Background(), linksPath, *typ, *out,
		func(i, total int, url string) {
			fmt.Printf("\n[%d/%d] %s\n", i+1, total, url)
		}, plainProgress())
	fmt.Println()
	if err != nil {
		fatalf("%v", err)
	}

	if len(failures) > 0 {
		fmt.Printf("\n%d item(s) failed:\n", len(failures))
		for _, f := range failures {
			fmt.Printf("  ✗ %s: %v\n", f.URL, f.Err)
		}
		os.Exit(1)
	}
	fmt.Println("✓ All links downloaded")
}

// plainProgress imprime el avance en una sola línea reescrita
func plainProgress() client.ProgressFunc {
	return func(received, total int64, percent int) {
		if percent >= 0 {
			fmt.Printf("\r  %3d%% (%d/%d bytes)", percent, received, total)
		} else {
			fmt.Printf("\r  %d bytes", received)
		}
	}
}

// runWithTUI ejecuta una transferencia dentro del modelo de progreso
func runWithTUI(name string, run func(client.ProgressFunc) (string, error)) {
	events := make(chan transfer.Event)
	prog := tea.NewProgram(transfer.NewModel(events))

	var savedPath string
	var runErr error

	go func() {
		events <- transfer.Event{Kind: transfer.EventStart, Name: name}

		progress := func(received, total int64, percent int) {
			events <- transfer.Event{
				Kind:     transfer.EventProgress,
				Name:     name,
				Received: received,
				Total:    total,
				Percent:  percent,
			}
		}

		savedPath, runErr = run(progress)
		events <- transfer.Event{Kind: transfer.EventDone, Name: name, Err: runErr}
		events <- transfer.Event{Kind: transfer.EventFinished}
		close(events)
	}()

	if _, err := prog.Run(); err != nil {
		fatalf("%v", err)
	}

	if runErr != nil {
		fatalf("%v", runErr)
	}
	fmt.Printf("Saved: %s\n", savedPath)
}

func cookiesDir() string {
	if dir := os.Getenv("MEDIA_FETCH_COOKIES_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		fatalf("cannot determine home directory: %v", err)
	}
	return filepath.Join(home, ".config", "media-fetch", "cookies")
}

func handleCookies(args []string) {
	if len(args) == 0 {
		fatalf("cookies subcommand is required (import, browser, export, list, remove)")
	}

	store := cookies.NewStore(cookiesDir())

	switch args[0] {
	case "import":
		fs := flag.NewFlagSet("cookies import", flag.ExitOnError)
		platform := fs.String("platform", "", "Platform name (auto-detect if empty)")
		if len(args) < 2 {
			fatalf("cookie file path is required")
		}
		path := args[1]
		fs.Parse(args[2:])

		detected, err := store.Import(path, *platform)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("✓ Cookies imported for %s\n", detected)

	case "browser":
		if len(args) < 3 {
			fatalf("usage: mf cookies browser <browser> <domain>")
		}
		browser, domain := args[1], args[2]

		extracted, err := cookies.ExtractFromBrowser(context.Background(), cookies.ExtractOptions{
			Browser: browser,
			Domain:  domain,
		})
		if err != nil {
			fatalf("%v", err)
		}

		tmp, err := os.CreateTemp("", "mf-cookies-*.txt")
		if err != nil {
			fatalf("%v", err)
		}
		tmp.Close()
		defer os.Remove(tmp.Name())

		if err := cookies.WriteFile(tmp.Name(), extracted); err != nil {
			fatalf("%v", err)
		}
		detected, err := store.Import(tmp.Name(), "")
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("✓ %d cookies extracted from %s for %s\n", len(extracted), browser, detected)

	case "export":
		if len(args) < 3 {
			fatalf("usage: mf cookies export <platform> <output-file>")
		}
		if err := store.Export(args[1], args[2]); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("✓ Cookies exported to %s\n", args[2])

	case "list":
		entries, err := store.List()
		if err != nil {
			fatalf("%v", err)
		}
		if len(entries) == 0 {
			fmt.Println("No cookies stored")
			return
		}
		for _, e := range entries {
			expires := ""
			if !e.ExpiresAt.IsZero() {
				expires = " expires " + e.ExpiresAt.Format("2006-01-02")
			}
			fmt.Printf("  %-12s %3d cookies  [%s]%s\n", e.Platform, e.Cookies, e.Status, expires)
		}

	case "remove":
		if len(args) < 2 {
			fatalf("platform name is required")
		}
		if err := store.Remove(args[1]); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("✓ Cookies removed for %s\n", args[1])

	default:
		fatalf("unknown cookies subcommand: %s", args[0])
	}
}
