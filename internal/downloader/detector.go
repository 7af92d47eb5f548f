package downloader

import (
	"net/url"
	"strings"
)

// Platform identifica la plataforma de origen de una URL
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformUnknown   Platform = "unknown"
)

// Tabla ordenada de hosts; gana la primera coincidencia
var platformHosts = []struct {
	hosts    []string
	platform Platform
}{
	{[]string{"youtube.com", "youtu.be"}, PlatformYouTube},
	{[]string{"facebook.com", "fb.watch"}, PlatformFacebook},
	{[]string{"instagram.com"}, PlatformInstagram},
	{[]string{"twitter.com", "x.com"}, PlatformTwitter},
	{[]string{"linkedin.com"}, PlatformLinkedIn},
}

// DetectPlatform clasifica una URL por hostname. Es total: cualquier
// string retorna exactamente uno de los seis tags, sin efectos secundarios.
func DetectPlatform(rawURL string) Platform {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return PlatformUnknown
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	for _, entry := range platformHosts {
		for _, h := range entry.hosts {
			if strings.Contains(host, h) {
				return entry.platform
			}
		}
	}

	return PlatformUnknown
}

// CookieDomain retorna el dominio usado para buscar cookies de la plataforma
func (p Platform) CookieDomain() string {
	switch p {
	case PlatformYouTube:
		return "youtube.com"
	case PlatformFacebook:
		return "facebook.com"
	case PlatformInstagram:
		return "instagram.com"
	case PlatformTwitter:
		return "x.com"
	case PlatformLinkedIn:
		return "linkedin.com"
	default:
		return ""
	}
}
