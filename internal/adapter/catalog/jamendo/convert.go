package jamendo

import (
	"time"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// RawTrack is a track as returned by the /tracks endpoint.
type RawTrack struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ArtistName    string `json:"artist_name"`
	AlbumName     string `json:"album_name"`
	Duration      int    `json:"duration"`
	Image         string `json:"image"`
	Audio         string `json:"audio"`
	AudioDownload string `json:"audiodownload"`
	ReleaseDate   string `json:"releasedate"`
}

// ToTrack maps a raw descriptor onto a domain track. A missing stream URL
// falls back to the download URL and missing artwork to the placeholder.
func ToTrack(raw RawTrack) domain.Track {
	media := raw.Audio
	if media == "" {
		media = raw.AudioDownload
	}

	artwork := raw.Image
	if artwork == "" {
		artwork = domain.FallbackArtworkURL
	}

	track := domain.Track{
		ID:         raw.ID,
		Title:      raw.Name,
		Artist:     raw.ArtistName,
		Album:      raw.AlbumName,
		Duration:   time.Duration(raw.Duration) * time.Second,
		ArtworkURL: artwork,
		MediaURL:   media,
	}
	if released, err := time.Parse(time.DateOnly, raw.ReleaseDate); err == nil {
		track.CreatedAt = released
	}
	return track
}

// ToTracks maps every descriptor, preserving order.
func ToTracks(raws []RawTrack) []domain.Track {
	tracks := make([]domain.Track, 0, len(raws))
	for _, raw := range raws {
		tracks = append(tracks, ToTrack(raw))
	}
	return tracks
}
