package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// printer writes command output. Event handlers may call it from the media
// clock goroutine, so writes are serialized.
type printer struct {
	w  io.Writer
	mu sync.Mutex
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) info(format string, args ...any) {
	p.printf(format+"\n", args...)
}

func (p *printer) warn(format string, args ...any) {
	p.printf("warning: "+format+"\n", args...)
}

func (p *printer) lines(lines []string) {
	if len(lines) == 0 {
		p.info("(none)")
		return
	}
	for _, line := range lines {
		p.info("%s", line)
	}
}

func (p *printer) tracks(tracks []domain.Track) {
	if len(tracks) == 0 {
		p.info("No tracks")
		return
	}
	for i, t := range tracks {
		p.info("%3d. %s  [%s]  %s", i+1, trackLabel(t), formatDuration(t.Duration), t.ID)
	}
}

func (p *printer) playlists(playlists []*domain.Playlist) {
	if len(playlists) == 0 {
		p.info("No playlists")
		return
	}
	for _, pl := range playlists {
		p.info("%-36s  %-24s  %s, updated %s",
			pl.ID, pl.Name, trackCount(len(pl.Tracks)), humanize.Time(pl.UpdatedAt))
	}
}

func (p *printer) playlist(pl *domain.Playlist) {
	p.info("%s (%s)", pl.Name, pl.ID)
	if pl.Description != "" {
		p.info("%s", pl.Description)
	}
	p.info("%s, %s, created %s", trackCount(len(pl.Tracks)), totalLength(pl.Tracks), humanize.Time(pl.CreatedAt))
	p.tracks(pl.Tracks)
}

// nowPlaying announces a track. A negative index means the current track
// started over.
func (p *printer) nowPlaying(t domain.Track, index, total int) {
	if index < 0 {
		p.info("↻ %s  [%s]", trackLabel(t), formatDuration(t.Duration))
		return
	}
	p.info("▶ %d/%d %s  [%s]", index+1, total, trackLabel(t), formatDuration(t.Duration))
}

func trackLabel(t domain.Track) string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

func trackCount(n int) string {
	if n == 1 {
		return "1 track"
	}
	return humanize.Comma(int64(n)) + " tracks"
}

// formatDuration renders d as m:ss. Unknown lengths render as --:--.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "--:--"
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func totalLength(tracks []domain.Track) string {
	var total time.Duration
	for _, t := range tracks {
		total += t.Duration
	}
	if total < time.Minute {
		return "under a minute"
	}
	var zero time.Time
	return strings.TrimSpace(humanize.RelTime(zero, zero.Add(total), "", ""))
}
