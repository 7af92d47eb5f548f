package cookies

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// NetscapeCookie is a single entry of a Netscape format cookie file,
// the format yt-dlp consumes via --cookies
type NetscapeCookie struct {
	Domain     string
	Flag       string
	Path       string
	Secure     bool
	Expiration int64 // Unix timestamp, 0 for session cookies
	Name       string
	Value      string
}

// Expired reports whether the cookie expired before now. Session
// cookies (expiration 0) never count as expired.
func (c NetscapeCookie) Expired(now time.Time) bool {
	return c.Expiration > 0 && c.Expiration < now.Unix()
}

// ParseFile parses a Netscape format cookie file
// Format: domain	flag	path	secure	expiration	name	value
func ParseFile(path string) ([]NetscapeCookie, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookie file: %w", err)
	}
	defer file.Close()

	var cookies []NetscapeCookie
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			// Try space-separated as fallback
			fields = strings.Fields(line)
			if len(fields) < 7 {
				return nil, fmt.Errorf("line %d: invalid format (expected 7 fields, got %d)", lineNum, len(fields))
			}
		}

		expiration, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid expiration timestamp: %w", lineNum, err)
		}

		secure := strings.ToUpper(fields[3]) == "TRUE"

		// Remove surrounding quotes from the value if present
		value := fields[6]
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = strings.Trim(value, "\"")
		}

		cookies = append(cookies, NetscapeCookie{
			Domain:     fields[0],
			Flag:       fields[1],
			Path:       fields[2],
			Secure:     secure,
			Expiration: expiration,
			Name:       fields[5],
			Value:      value,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}

	if len(cookies) == 0 {
		return nil, fmt.Errorf("no valid cookies found in file")
	}

	return cookies, nil
}

// WriteFile saves cookies to path in Netscape format with 0600 perms
func WriteFile(path string, cookies []NetscapeCookie) error {
	var b strings.Builder
	b.WriteString("# Netscape HTTP Cookie File\n")

	for _, cookie := range cookies {
		secure := "FALSE"
		if cookie.Secure {
			secure = "TRUE"
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			cookie.Domain,
			cookie.Flag,
			cookie.Path,
			secure,
			cookie.Expiration,
			cookie.Name,
			cookie.Value,
		)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	return nil
}

// EarliestExpiration returns the earliest expiration time from a list
// of cookies, ignoring session cookies
func EarliestExpiration(cookies []NetscapeCookie) time.Time {
	var earliest int64
	for _, cookie := range cookies {
		if cookie.Expiration == 0 {
			continue
		}
		if earliest == 0 || cookie.Expiration < earliest {
			earliest = cookie.Expiration
		}
	}
	if earliest == 0 {
		return time.Time{}
	}
	return time.Unix(earliest, 0)
}

// DetectPlatform attempts to detect the platform from cookie domains
func DetectPlatform(cookies []NetscapeCookie) string {
	if len(cookies) == 0 {
		return ""
	}

	domainCounts := make(map[string]int)
	for _, cookie := range cookies {
		domain := strings.TrimPrefix(cookie.Domain, ".")
		domainCounts[domain]++
	}

	platformMap := map[string]string{
		"youtube.com":   "youtube",
		"facebook.com":  "facebook",
		"fb.watch":      "facebook",
		"instagram.com": "instagram",
		"twitter.com":   "twitter",
		"x.com":         "twitter",
		"linkedin.com":  "linkedin",
	}

	// Most common matching domain wins
	maxCount := 0
	detected := ""
	for domain, count := range domainCounts {
		if platform, ok := platformMap[domain]; ok && count > maxCount {
			maxCount = count
			detected = platform
		}
	}

	return detected
}
