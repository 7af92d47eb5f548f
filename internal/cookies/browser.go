package cookies

import (
	"context"
	"fmt"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/chromium"
	_ "github.com/browserutils/kooky/browser/edge"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/opera"
)

// SupportedBrowsers returns the browser names extraction can read from
func SupportedBrowsers() []string {
	return []string{
		"chrome",
		"chromium",
		"firefox",
		"edge",
		"opera",
	}
}

// ExtractOptions contains options for browser cookie extraction
type ExtractOptions struct {
	Browser string // Browser name (chrome, firefox, ...); empty matches any
	Domain  string // Domain to filter cookies (e.g. "youtube.com")
}

// ExtractFromBrowser reads cookies for a domain from an installed
// browser's cookie store and returns them in Netscape form, ready to
// be imported into a Store.
func ExtractFromBrowser(ctx context.Context, opts ExtractOptions) ([]NetscapeCookie, error) {
	browser := strings.ToLower(opts.Browser)

	var filters []kooky.Filter
	if opts.Domain != "" {
		// Match the domain and its subdomains
		filters = append(filters, kooky.DomainHasSuffix(opts.Domain))
	}

	found, err := kooky.ReadCookies(ctx, filters...)
	if err != nil {
		return nil, fmt.Errorf("read cookies from browser: %w", err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("no cookies found for domain: %s", opts.Domain)
	}

	converted := make([]NetscapeCookie, 0, len(found))
	for _, cookie := range found {
		if browser != "" && cookie.Browser != nil {
			cookieBrowser := strings.ToLower(cookie.Browser.Browser())
			if !strings.Contains(cookieBrowser, browser) {
				continue
			}
		}

		domain := cookie.Domain
		if domain != "" && !strings.HasPrefix(domain, ".") {
			domain = "." + domain
		}

		httpOnly := "FALSE"
		if cookie.HttpOnly {
			httpOnly = "TRUE"
		}

		expiration := cookie.Expires.Unix()
		if expiration < 0 {
			expiration = 0
		}

		converted = append(converted, NetscapeCookie{
			Domain:     domain,
			Flag:       httpOnly,
			Path:       cookie.Path,
			Secure:     cookie.Secure,
			Expiration: expiration,
			Name:       cookie.Name,
			Value:      cookie.Value,
		})
	}

	if len(converted) == 0 {
		return nil, fmt.Errorf("no cookies found for browser '%s' and domain '%s'", browser, opts.Domain)
	}

	return converted, nil
}
