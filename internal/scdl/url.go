package scdl

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Kind is the type of resource a SoundCloud URL points at
type Kind string

const (
	KindTrack       Kind = "track"
	KindPlaylist    Kind = "playlist"
	KindUser        Kind = "user"
	KindUserListing Kind = "user listing"

	// Short links and anything else scdl has to resolve itself
	KindUnknown Kind = "unknown"
)

var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrNotSoundCloudURL = errors.New("URL must be a SoundCloud link")
)

// Collapsed scheme separators, as left behind by proxies that merge "//" in paths
var collapsedScheme = regexp.MustCompile(`^(https?):/([^/])`)

// Path segments that list several tracks of a user
var listingSegments = map[string]bool{
	"tracks":         true,
	"likes":          true,
	"reposts":        true,
	"albums":         true,
	"sets":           true,
	"popular-tracks": true,
	"spotlight":      true,
	"toptracks":      true,
}

// SingleFile reports whether the resource resolves to at most one audio file
func (k Kind) SingleFile() bool {
	return k == KindTrack || k == KindUnknown
}

// NormalizeURL trims the URL, repairs a collapsed scheme separator and adds
// https:// when no scheme is given
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = collapsedScheme.ReplaceAllString(raw, "$1://$2")
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return raw
}

// Classify validates that raw is a SoundCloud URL and determines its kind
func Classify(raw string) (Kind, error) {
	u, err := url.Parse(NormalizeURL(raw))
	if err != nil || u.Host == "" {
		return KindUnknown, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return KindUnknown, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host != "soundcloud.com" && !strings.HasSuffix(host, ".soundcloud.com") {
		return KindUnknown, fmt.Errorf("%w: %s", ErrNotSoundCloudURL, raw)
	}

	if host == "on.soundcloud.com" {
		return KindUnknown, nil
	}

	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	switch {
	case len(parts) == 0:
		return KindUnknown, fmt.Errorf("%w: no track, playlist or user in %s", ErrInvalidURL, raw)
	case parts[0] == "discover" && len(parts) >= 3 && parts[1] == "sets":
		return KindPlaylist, nil
	case len(parts) == 1:
		return KindUser, nil
	case parts[1] == "sets" && len(parts) >= 3:
		return KindPlaylist, nil
	case listingSegments[parts[1]]:
		return KindUserListing, nil
	default:
		// user/track, or user/track/s-secret for private share links
		return KindTrack, nil
	}
}
