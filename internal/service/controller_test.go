package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
)

type controllerFixture struct {
	controller *Controller
	player     *PlayerService
	collection *CollectionService
	searches   *SearchHistoryService
	catalog    *stubCatalog
	rec        *eventRecorder
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()
	player, bus, rec := newTestPlayer(t)
	log := logger.NewTestLogger()

	collection := NewCollectionService(log, bus, newMockPlaylistRepository(), newMockTrackListRepository())
	searches := NewSearchHistoryService(log, &mockSearchHistoryRepository{}, bus)
	src := &stubCatalog{tracks: makeTracks(4)}

	return &controllerFixture{
		controller: NewController(log, player, collection, NewCatalogService(log, src), searches),
		player:     player,
		collection: collection,
		searches:   searches,
		catalog:    src,
		rec:        rec,
	}
}

func TestController_PlaySongStartsNewTrack(t *testing.T) {
	f := newControllerFixture(t)
	f.player.SetQueue(makeTracks(3), 0)

	f.controller.PlaySong(makeTrack("t2"))

	state := f.player.State()
	assert.Equal(t, "t2", state.CurrentTrack.ID)
	assert.True(t, state.IsPlaying)
	require.Len(t, f.collection.RecentlyPlayed(), 1)
	assert.Equal(t, "t2", f.collection.RecentlyPlayed()[0].ID)
}

func TestController_PlaySongTogglesCurrent(t *testing.T) {
	f := newControllerFixture(t)
	f.controller.PlaySong(makeTrack("a"))
	require.True(t, f.player.IsPlaying())

	f.controller.PlaySong(makeTrack("a"))
	assert.False(t, f.player.IsPlaying())

	f.controller.PlaySong(makeTrack("a"))
	assert.True(t, f.player.IsPlaying())

	assert.Len(t, f.collection.RecentlyPlayed(), 1, "toggling does not re-record")
}

func TestController_PlaySongOutsideQueue(t *testing.T) {
	f := newControllerFixture(t)
	f.player.SetQueue(makeTracks(2), 1)

	f.controller.PlaySong(makeTrack("other"))

	state := f.player.State()
	assertConsistent(t, state)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Equal(t, "other", state.CurrentTrack.ID)
	assert.Len(t, state.Queue, 3)
}

func TestController_PlayList(t *testing.T) {
	f := newControllerFixture(t)
	tracks := makeTracks(5)

	require.NoError(t, f.controller.PlayList(tracks, 3))

	state := f.player.State()
	assert.Equal(t, 3, state.CurrentIndex)
	assert.True(t, state.IsPlaying)
	assert.Len(t, state.Queue, 5)

	assert.ErrorIs(t, f.controller.PlayList(nil, 0), domain.ErrQueueEmpty)
	assert.ErrorIs(t, f.controller.PlayList(tracks, 5), domain.ErrInvalidIndex)
	assert.Equal(t, 3, f.player.State().CurrentIndex)
}

func TestController_PlayLikedSongs(t *testing.T) {
	f := newControllerFixture(t)
	assert.ErrorIs(t, f.controller.PlayLikedSongs(), domain.ErrQueueEmpty)

	f.collection.ToggleLikedSong(makeTrack("b"))
	f.collection.ToggleLikedSong(makeTrack("c"))

	require.NoError(t, f.controller.PlayLikedSongs())
	state := f.player.State()
	assert.Equal(t, "b", state.CurrentTrack.ID)
	assert.Len(t, state.Queue, 2)
	assert.True(t, state.IsPlaying)
}

func TestController_PlayPlaylist(t *testing.T) {
	f := newControllerFixture(t)
	f.collection.AddSongToPlaylist("2", makeTrack("w1"))
	f.collection.AddSongToPlaylist("2", makeTrack("w2"))

	require.NoError(t, f.controller.PlayPlaylist("2"))
	assert.Equal(t, "w1", f.player.CurrentTrack().ID)

	assert.ErrorIs(t, f.controller.PlayPlaylist("nope"), domain.ErrPlaylistNotFound)
	assert.ErrorIs(t, f.controller.PlayPlaylist("1"), domain.ErrQueueEmpty)
}

func TestController_PlayRecentlyPlayed(t *testing.T) {
	f := newControllerFixture(t)
	f.controller.PlaySong(makeTrack("a"))
	f.controller.PlaySong(makeTrack("b"))

	require.NoError(t, f.controller.PlayRecentlyPlayed())

	state := f.player.State()
	assert.Equal(t, "b", state.CurrentTrack.ID)
	assert.Equal(t, []string{"b", "a"}, []string{state.Queue[0].ID, state.Queue[1].ID})
}

func TestController_ToggleLikeCurrent(t *testing.T) {
	f := newControllerFixture(t)

	_, err := f.controller.ToggleLikeCurrent()
	assert.ErrorIs(t, err, domain.ErrQueueEmpty)

	f.player.SetQueue(makeTracks(2), 1)
	liked, err := f.controller.ToggleLikeCurrent()
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, f.collection.IsLiked("t1"))

	liked, err = f.controller.ToggleLikeCurrent()
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestController_QueueNext(t *testing.T) {
	f := newControllerFixture(t)
	f.player.SetQueue(makeTracks(3), 0)

	f.controller.QueueNext(makeTrack("n"))

	queue := f.player.Queue()
	require.Len(t, queue, 4)
	assert.Equal(t, "n", queue[1].ID)
	assert.Equal(t, "t0", f.player.CurrentTrack().ID)
}

func TestController_SearchRecordsTerm(t *testing.T) {
	f := newControllerFixture(t)

	results := f.controller.Search(context.Background(), " chill ", 10)

	assert.Len(t, results, 4)
	assert.Equal(t, "chill", f.catalog.lastQuery)
	assert.Equal(t, []string{"chill"}, f.searches.Terms())
	assert.Equal(t, 1, f.rec.count(domain.EventSearchHistoryChanged))

	assert.Empty(t, f.controller.Search(context.Background(), "  ", 10))
	assert.Len(t, f.searches.Terms(), 1)
}

func TestController_SearchWithoutCatalog(t *testing.T) {
	player, bus, _ := newTestPlayer(t)
	log := logger.NewTestLogger()
	c := NewController(log, player, NewCollectionService(log, bus, nil, nil), nil, nil)

	assert.Empty(t, c.Search(context.Background(), "x", 5))
}
