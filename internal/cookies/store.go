package cookies

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store manages cookie files on disk, one per platform. The layout is
// a flat directory of <platform>.txt files in Netscape format; yt-dlp
// receives the file path directly via --cookies.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created
// lazily on the first import.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory
func (s *Store) Dir() string {
	return s.dir
}

// FileFor returns the path of the cookie file for a platform, or ""
// when no usable file exists. Files whose cookies have all expired are
// treated as absent.
func (s *Store) FileFor(platform string) string {
	if s == nil || s.dir == "" || platform == "" {
		return ""
	}

	path := filepath.Join(s.dir, platform+".txt")
	cookies, err := ParseFile(path)
	if err != nil {
		return ""
	}

	res := ValidateExpiration(cookies, time.Now())
	if res.Status == StatusExpired {
		return ""
	}
	return path
}

// Import copies a Netscape cookie file into the store under the given
// platform. With platform empty, the platform is auto-detected from
// the cookie domains.
func (s *Store) Import(srcPath, platform string) (string, error) {
	cookies, err := ParseFile(srcPath)
	if err != nil {
		return "", err
	}

	if platform == "" {
		platform = DetectPlatform(cookies)
		if platform == "" {
			return "", fmt.Errorf("could not auto-detect platform from cookie domains, specify one explicitly")
		}
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", fmt.Errorf("create cookies dir: %w", err)
	}

	dst := filepath.Join(s.dir, platform+".txt")
	if err := WriteFile(dst, cookies); err != nil {
		return "", err
	}

	return platform, nil
}

// Export copies the stored cookie file for a platform to outPath
func (s *Store) Export(platform, outPath string) error {
	src := filepath.Join(s.dir, platform+".txt")
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no cookies stored for platform: %s", platform)
		}
		return fmt.Errorf("read cookie file: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0600); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

// Remove deletes the stored cookie file for a platform
func (s *Store) Remove(platform string) error {
	path := filepath.Join(s.dir, platform+".txt")
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no cookies stored for platform: %s", platform)
		}
		return err
	}
	return nil
}

// Entry describes one stored cookie file
type Entry struct {
	Platform  string
	Path      string
	Cookies   int
	Status    string
	ExpiresAt time.Time
}

// List returns the stored cookie files sorted by platform
func (s *Store) List() ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cookies dir: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}

		platform := strings.TrimSuffix(name, ".txt")
		path := filepath.Join(s.dir, name)

		entry := Entry{Platform: platform, Path: path}
		cookies, err := ParseFile(path)
		if err != nil {
			entry.Status = StatusInvalid
		} else {
			res := ValidateExpiration(cookies, time.Now())
			entry.Cookies = len(cookies)
			entry.Status = res.Status
			entry.ExpiresAt = res.ExpiresAt
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Platform < entries[j].Platform
	})

	return entries, nil
}
