package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var spotifyID = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)

// ExtractSpotifyID returns the bare ID from a Spotify URI ("spotify:playlist:ID"),
// an open.spotify.com URL or a bare ID. kind is "playlist", "track", ... or "" for bare IDs.
func ExtractSpotifyID(s string) (kind, id string, err error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "spotify:") {
		parts := strings.Split(s, ":")
		if len(parts) < 3 || parts[len(parts)-1] == "" {
			return "", "", fmt.Errorf("malformed Spotify URI: %s", s)
		}
		return parts[len(parts)-2], parts[len(parts)-1], nil
	}

	if IsSpotifyURL(s) {
		u, err := url.Parse(s)
		if err != nil {
			return "", "", fmt.Errorf("invalid URL: %w", err)
		}
		segs := strings.Split(strings.Trim(u.Path, "/"), "/")
		// drop locale prefixes such as /intl-de/
		if len(segs) > 0 && strings.HasPrefix(segs[0], "intl-") {
			segs = segs[1:]
		}
		if len(segs) >= 2 && segs[1] != "" {
			return segs[0], segs[1], nil
		}
		return "", "", fmt.Errorf("no ID found in Spotify URL: %s", s)
	}

	if spotifyID.MatchString(s) {
		return "", s, nil
	}
	return "", "", fmt.Errorf("unable to extract Spotify ID from: %s", s)
}

func IsSpotifyURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, "open.spotify.com")
}
