// Package dsp computes the set of streaming destinations reachable from an
// artist profile and its releases.
package dsp

import "time"

// Platform identifies a destination streaming or retail platform.
type Platform string

const (
	PlatformSpotify    Platform = "spotify"
	PlatformAppleMusic Platform = "apple_music"
	PlatformYouTube    Platform = "youtube"
	PlatformSoundCloud Platform = "soundcloud"
	PlatformBandcamp   Platform = "bandcamp"
	PlatformTidal      Platform = "tidal"
)

// platformOrder fixes the aggregation order. Keeping it static makes the
// destination set deterministic for identical inputs, which the single
// destination auto-redirect and the picker layout both rely on.
var platformOrder = []Platform{
	PlatformSpotify,
	PlatformAppleMusic,
	PlatformYouTube,
	PlatformSoundCloud,
	PlatformBandcamp,
	PlatformTidal,
}

var platformLabels = map[Platform]string{
	PlatformSpotify:    "Spotify",
	PlatformAppleMusic: "Apple Music",
	PlatformYouTube:    "YouTube",
	PlatformSoundCloud: "SoundCloud",
	PlatformBandcamp:   "Bandcamp",
	PlatformTidal:      "Tidal",
}

// Label returns the human-readable platform name.
func (p Platform) Label() string {
	if label, ok := platformLabels[p]; ok {
		return label
	}

	return string(p)
}

// Artist is a public profile with optional per-platform artist page URLs.
type Artist struct {
	ID          string
	Handle      string
	Name        string
	Published   bool
	ProfileURLs map[Platform]string
}

// Release is a published release with optional per-platform URLs.
type Release struct {
	ID         string
	Title      string
	ReleasedAt time.Time
	URLs       map[Platform]string
}

// Destination is one reachable platform choice.
type Destination struct {
	Platform Platform
	URL      string
	Label    string
}

// AvailableDestinations computes the ordered destination set for an artist.
// Releases are expected most-recent-first; a release URL takes precedence
// over the artist's generic profile URL for the same platform. Platforms
// with no resolvable URL are omitted entirely. The result is deterministic
// for identical inputs.
func AvailableDestinations(artist *Artist, releases []Release) []Destination {
	var destinations []Destination

	for _, platform := range platformOrder {
		url := resolveURL(artist, releases, platform)
		if url == "" {
			continue
		}

		destinations = append(destinations, Destination{
			Platform: platform,
			URL:      url,
			Label:    platform.Label(),
		})
	}

	return destinations
}

func resolveURL(artist *Artist, releases []Release, platform Platform) string {
	for _, release := range releases {
		if url := release.URLs[platform]; url != "" {
			return url
		}
	}

	return artist.ProfileURLs[platform]
}
