package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// Controller turns user intents (play this card, play that playlist, like
// what is playing) into calls on the player and the collections.
type Controller struct {
	logger     *slog.Logger
	player     *PlayerService
	collection *CollectionService
	catalog    *CatalogService
	searches   *SearchHistoryService
}

// NewController creates a controller. catalog and searches may be nil when
// the host has no catalog.
func NewController(
	logger *slog.Logger,
	player *PlayerService,
	collection *CollectionService,
	catalog *CatalogService,
	searches *SearchHistoryService,
) *Controller {
	return &Controller{
		logger:     logger.With(slog.String("service", "controller")),
		player:     player,
		collection: collection,
		catalog:    catalog,
		searches:   searches,
	}
}

// PlaySong toggles playback when track is already current. Otherwise it
// makes track current, starts playing and records it as recently played.
func (c *Controller) PlaySong(track domain.Track) {
	if current := c.player.CurrentTrack(); current != nil && current.ID == track.ID {
		c.player.TogglePlay()
		return
	}

	c.player.SetCurrentSong(track)
	c.player.SetIsPlaying(true)
	c.collection.AddToRecentlyPlayed(track)
}

// PlayList replaces the queue with tracks and plays the one at index.
func (c *Controller) PlayList(tracks []domain.Track, index int) error {
	if len(tracks) == 0 {
		return domain.ErrQueueEmpty
	}
	if index < 0 || index >= len(tracks) {
		return domain.ErrInvalidIndex
	}

	c.player.SetQueue(tracks, index)
	c.player.SetIsPlaying(true)
	c.collection.AddToRecentlyPlayed(tracks[index])

	c.logger.Debug("playing list", slog.Int("tracks", len(tracks)), slog.Int("index", index))
	return nil
}

// PlayLikedSongs plays the liked songs from the start.
func (c *Controller) PlayLikedSongs() error {
	return c.PlayList(c.collection.LikedSongs(), 0)
}

// PlayPlaylist plays the playlist with the given ID from the start.
func (c *Controller) PlayPlaylist(id string) error {
	playlist, err := c.collection.Playlist(id)
	if err != nil {
		return err
	}
	return c.PlayList(playlist.Tracks, 0)
}

// PlayRecentlyPlayed plays the recently played list, newest first.
func (c *Controller) PlayRecentlyPlayed() error {
	return c.PlayList(c.collection.RecentlyPlayed(), 0)
}

// ToggleLikeCurrent likes or unlikes the current track and reports the new
// state.
func (c *Controller) ToggleLikeCurrent() (bool, error) {
	current := c.player.CurrentTrack()
	if current == nil {
		return false, domain.ErrQueueEmpty
	}
	return c.collection.ToggleLikedSong(*current), nil
}

// QueueNext queues track to play after the current one.
func (c *Controller) QueueNext(track domain.Track) {
	c.player.InsertNext(track)
}

// Search looks term up in the catalog and remembers it as a recent search.
func (c *Controller) Search(ctx context.Context, term string, limit int) []domain.Track {
	term = strings.TrimSpace(term)
	if term == "" || c.catalog == nil {
		return []domain.Track{}
	}

	results := c.catalog.Search(ctx, term, limit)
	if c.searches != nil {
		c.searches.Record(term)
	}
	return results
}
