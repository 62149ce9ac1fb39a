package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	tsapp "github.com/tejashwikalptaru/tunestream/internal/app"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// Values accepted by play --from.
const (
	sourcePopular  = "popular"
	sourceReleases = "new"
	sourceGenre    = "genre"
	sourceSearch   = "search"
	sourceLiked    = "liked"
	sourceRecent   = "recent"
	sourcePlaylist = "playlist"
	sourceQueue    = "queue"
)

var playSources = []string{
	sourcePopular, sourceReleases, sourceGenre, sourceSearch,
	sourceLiked, sourceRecent, sourcePlaylist, sourceQueue,
}

type playOptions struct {
	from    string
	value   string
	shuffle bool
	repeat  bool
	limit   int
	maxTime time.Duration
}

// play starts a queue and blocks until every track in it has completed once,
// the context is canceled or maxTime elapses. With repeat on only the last
// two apply.
func play(ctx context.Context, a *tsapp.Application, out *printer, opts playOptions) error {
	player := a.Player()
	bus := a.EventBus()

	state := player.State()
	player.SetModes(state.IsShuffled || opts.shuffle, state.IsRepeating || opts.repeat)

	var (
		completed atomic.Int64
		total     atomic.Int64
		doneOnce  sync.Once
	)
	done := make(chan struct{})
	finish := func() {
		t := total.Load()
		if t > 0 && completed.Load() >= t && !player.State().IsRepeating {
			doneOnce.Do(func() { close(done) })
		}
	}

	subs := []domain.SubscriptionID{
		bus.Subscribe(domain.EventTrackChanged, func(event domain.Event) {
			e := event.(domain.TrackChangedEvent)
			if e.Current != nil {
				out.nowPlaying(*e.Current, e.Index, len(player.Queue()))
			}
		}),
		bus.Subscribe(domain.EventTrackRestarted, func(event domain.Event) {
			e := event.(domain.TrackRestartedEvent)
			out.nowPlaying(e.Track, -1, 0)
		}),
		bus.Subscribe(domain.EventTrackError, func(event domain.Event) {
			e := event.(domain.TrackErrorEvent)
			out.warn("cannot play %q: %v", e.Track.Title, e.Error)
		}),
		bus.Subscribe(domain.EventPlaybackRejected, func(event domain.Event) {
			e := event.(domain.PlaybackRejectedEvent)
			out.warn("playback of %q rejected: %v", e.Track.Title, e.Error)
		}),
		bus.Subscribe(domain.EventTrackCompleted, func(domain.Event) {
			completed.Add(1)
			finish()
		}),
	}
	defer func() {
		for _, id := range subs {
			bus.Unsubscribe(id)
		}
	}()

	if err := startQueue(ctx, a, opts); err != nil {
		return err
	}
	total.Store(int64(len(player.Queue())))
	finish()

	var timeout <-chan time.Time
	if opts.maxTime > 0 {
		timer := time.NewTimer(opts.maxTime)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
	case <-done:
	case <-timeout:
	}

	player.SetIsPlaying(false)
	out.info("stopped after %d track(s)", completed.Load())
	return nil
}

func startQueue(ctx context.Context, a *tsapp.Application, opts playOptions) error {
	controller := a.Controller()
	catalog := a.Catalog()

	switch opts.from {
	case sourcePopular:
		return controller.PlayList(catalog.Popular(ctx, opts.limit), 0)
	case sourceReleases:
		return controller.PlayList(catalog.NewReleases(ctx, opts.limit), 0)
	case sourceGenre:
		if opts.value == "" {
			return errors.New("--from=genre needs a genre")
		}
		return controller.PlayList(catalog.ByGenre(ctx, opts.value, opts.limit), 0)
	case sourceSearch:
		if opts.value == "" {
			return errors.New("--from=search needs a search term")
		}
		return controller.PlayList(controller.Search(ctx, opts.value, opts.limit), 0)
	case sourceLiked:
		return controller.PlayLikedSongs()
	case sourceRecent:
		return controller.PlayRecentlyPlayed()
	case sourcePlaylist:
		if opts.value == "" {
			return errors.New("--from=playlist needs a playlist ID")
		}
		return controller.PlayPlaylist(opts.value)
	case sourceQueue:
		if a.Player().CurrentTrack() == nil {
			return domain.ErrQueueEmpty
		}
		a.Player().SetIsPlaying(true)
		return nil
	default:
		return errors.Newf("unknown source %q", opts.from)
	}
}

func addToPlaylist(ctx context.Context, a *tsapp.Application, out *printer, playlistID, term string) error {
	p, err := a.Collection().Playlist(playlistID)
	if err != nil {
		return err
	}
	track, err := topResult(ctx, a, term)
	if err != nil {
		return err
	}
	a.Collection().AddSongToPlaylist(p.ID, track)
	out.info("added %q to %q", track.Title, p.Name)
	return nil
}

func like(ctx context.Context, a *tsapp.Application, out *printer, term string) error {
	track, err := topResult(ctx, a, term)
	if err != nil {
		return err
	}
	if a.Collection().ToggleLikedSong(track) {
		out.info("liked %q", track.Title)
	} else {
		out.info("unliked %q", track.Title)
	}
	return nil
}

func topResult(ctx context.Context, a *tsapp.Application, term string) (domain.Track, error) {
	results := a.Controller().Search(ctx, term, 1)
	if len(results) == 0 {
		return domain.Track{}, errors.Wrapf(domain.ErrTrackNotFound, "no results for %q", term)
	}
	return results[0], nil
}
