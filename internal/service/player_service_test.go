package service

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

func TestPlayerService_InitialState(t *testing.T) {
	player, _, _ := newTestPlayer(t)

	state := player.State()
	assert.Equal(t, domain.StatusEmpty, state.Status())
	assert.Equal(t, -1, state.CurrentIndex)
	assert.Nil(t, state.CurrentTrack)
	assert.Equal(t, domain.DefaultVolume, state.Volume)
	assert.False(t, state.IsPlaying)
}

func TestPlayerService_SetQueue(t *testing.T) {
	player, _, rec := newTestPlayer(t)
	tracks := makeTracks(3)

	player.SetQueue(tracks, 1)

	state := player.State()
	assertConsistent(t, state)
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Equal(t, "t1", state.CurrentTrack.ID)
	assert.Equal(t, domain.StatusPaused, state.Status())
	assert.Equal(t, []domain.EventType{domain.EventQueueChanged, domain.EventTrackChanged}, rec.types())
}

func TestPlayerService_SetQueueClampsStartIndex(t *testing.T) {
	player, _, _ := newTestPlayer(t)

	player.SetQueue(makeTracks(3), 10)
	assert.Equal(t, 2, player.State().CurrentIndex)

	player.SetQueue(makeTracks(3), -4)
	assert.Equal(t, 0, player.State().CurrentIndex)
}

func TestPlayerService_SetQueueCopiesInput(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	tracks := makeTracks(2)

	player.SetQueue(tracks, 0)
	tracks[0].Title = "mutated"

	assert.Equal(t, "Title t0", player.CurrentTrack().Title)
}

func TestPlayerService_SetQueueResetsTransport(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	player.SetQueue(makeTracks(2), 0)
	player.SetDuration(3 * time.Minute)
	player.SetCurrentTime(time.Minute)

	player.SetQueue(makeTracks(2), 1)

	state := player.State()
	assert.Zero(t, state.Position)
	assert.Zero(t, state.Duration)
}

func TestPlayerService_SetQueueEmptyStopsPlayback(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	player.SetQueue(makeTracks(2), 0)
	player.SetIsPlaying(true)

	player.SetQueue(nil, 0)

	state := player.State()
	assertConsistent(t, state)
	assert.Equal(t, domain.StatusEmpty, state.Status())
}

func TestPlayerService_SetCurrentSong(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	player.SetQueue(makeTracks(3), 0)

	player.SetCurrentSong(makeTrack("t2"))

	state := player.State()
	assertConsistent(t, state)
	assert.Equal(t, 2, state.CurrentIndex)
	assert.Len(t, state.Queue, 3)
}

func TestPlayerService_SetCurrentSongNotQueued(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	player.SetQueue(makeTracks(3), 2)

	player.SetCurrentSong(makeTrack("x"))

	state := player.State()
	assertConsistent(t, state)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Equal(t, "x", state.CurrentTrack.ID)
	require.Len(t, state.Queue, 4)
	assert.Equal(t, "t0", state.Queue[1].ID)
}

func TestPlayerService_SetCurrentSongOnEmptyQueue(t *testing.T) {
	player, _, _ := newTestPlayer(t)

	player.SetCurrentSong(makeTrack("x"))

	state := player.State()
	assertConsistent(t, state)
	assert.Equal(t, "x", state.CurrentTrack.ID)
}

func TestPlayerService_SetCurrentSongKeepsPlayingFlag(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	player.SetQueue(makeTracks(3), 0)
	player.SetIsPlaying(true)

	player.SetCurrentSong(makeTrack("t1"))

	assert.True(t, player.IsPlaying())
}

func TestPlayerService_TogglePlay(t *testing.T) {
	player, _, rec := newTestPlayer(t)
	player.SetQueue(makeTracks(1), 0)
	rec.reset()

	player.TogglePlay()
	assert.True(t, player.IsPlaying())
	player.TogglePlay()
	assert.False(t, player.IsPlaying())

	assert.Equal(t, 2, rec.count(domain.EventPlayStateChanged))
}

func TestPlayerService_SetIsPlayingNoopWhenUnchanged(t *testing.T) {
	player, _, rec := newTestPlayer(t)
	player.SetQueue(makeTracks(1), 0)
	rec.reset()

	player.SetIsPlaying(false)

	assert.Zero(t, rec.count(domain.EventPlayStateChanged))
}

// Empty queue: next, previous and play are no-ops.
func TestPlayerService_EmptyQueueNoops(t *testing.T) {
	player, _, rec := newTestPlayer(t)

	player.PlayNext()
	player.PlayPrevious()
	player.TogglePlay()
	player.SetIsPlaying(true)

	state := player.State()
	assert.Equal(t, domain.StatusEmpty, state.Status())
	assert.False(t, state.IsPlaying)
	assert.Empty(t, rec.types())
}

// Forward wrap: with shuffle and repeat off, len(q) nexts return to the start.
func TestPlayerService_PlayNextWraps(t *testing.T) {
	player, _, _ := newTestPlayer(t)

	for n := 1; n <= 5; n++ {
		for start := 0; start < n; start++ {
			player.SetQueue(makeTracks(n), start)
			for i := 0; i < n; i++ {
				player.PlayNext()
				assertConsistent(t, player.State())
			}
			assert.Equal(t, start, player.State().CurrentIndex, "n=%d start=%d", n, start)
		}
	}
}

func TestPlayerService_PlayNextSequential(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	player.SetQueue(makeTracks(3), 2)

	player.PlayNext()

	assert.Equal(t, 0, player.State().CurrentIndex)
}

// Repeat-one: next under repeat keeps the track and rewinds the position.
func TestPlayerService_PlayNextRepeat(t *testing.T) {
	player, _, rec := newTestPlayer(t)
	player.SetQueue(makeTracks(3), 1)
	player.ToggleRepeat()
	player.ToggleShuffle()
	player.SetCurrentTime(42 * time.Second)
	rec.reset()

	player.PlayNext()

	state := player.State()
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Zero(t, state.Position)
	assert.Equal(t, []domain.EventType{domain.EventTrackRestarted}, rec.types())
}

func TestPlayerService_PlayNextShuffleUsesRandomSource(t *testing.T) {
	tracks := makeTracks(10)

	expected := rand.New(rand.NewPCG(7, 7))
	player, _, _ := newTestPlayerWithSeed(t, 7)
	player.SetQueue(tracks, 0)
	player.ToggleShuffle()

	for i := 0; i < 20; i++ {
		player.PlayNext()
		state := player.State()
		assertConsistent(t, state)
		assert.Equal(t, expected.IntN(len(tracks)), state.CurrentIndex)
		assert.Zero(t, state.Position)
	}
}

// Backward wrap: previous from index 0 goes to the last track regardless of flags.
func TestPlayerService_PlayPreviousWrapsIgnoringFlags(t *testing.T) {
	for _, flags := range []struct{ shuffle, repeat bool }{{false, false}, {true, false}, {false, true}, {true, true}} {
		player, _, _ := newTestPlayer(t)
		player.SetQueue(makeTracks(4), 0)
		player.SetModes(flags.shuffle, flags.repeat)

		player.PlayPrevious()

		assert.Equal(t, 3, player.State().CurrentIndex, "flags %+v", flags)

		player.PlayPrevious()
		assert.Equal(t, 2, player.State().CurrentIndex, "flags %+v", flags)
	}
}

func TestPlayerService_SingleTrackNextIsRestart(t *testing.T) {
	player, _, rec := newTestPlayer(t)
	player.SetQueue(makeTracks(1), 0)
	rec.reset()

	player.PlayNext()

	assert.Equal(t, []domain.EventType{domain.EventTrackRestarted}, rec.types())
}

func TestPlayerService_DuplicateTrackElsewhereIsTrackChange(t *testing.T) {
	player, _, rec := newTestPlayer(t)
	song := makeTrack("dup")
	player.SetQueue([]domain.Track{song, makeTrack("other"), song}, 0)
	rec.reset()

	player.JumpTo(2)

	require.Equal(t, []domain.EventType{domain.EventTrackChanged}, rec.types())
	changed := rec.events[0].(domain.TrackChangedEvent)
	assert.Equal(t, 2, changed.Index)
	assert.Equal(t, "dup", changed.Current.ID)
	assert.Equal(t, 2, player.State().CurrentIndex)

	rec.reset()
	player.JumpTo(2)
	assert.Equal(t, []domain.EventType{domain.EventTrackRestarted}, rec.types())
}

func TestPlayerService_ToggleModes(t *testing.T) {
	player, _, rec := newTestPlayer(t)

	player.ToggleShuffle()
	player.ToggleRepeat()

	state := player.State()
	assert.True(t, state.IsShuffled)
	assert.True(t, state.IsRepeating)
	assert.Equal(t, 2, rec.count(domain.EventModeChanged))

	player.SetModes(true, true)
	assert.Equal(t, 2, rec.count(domain.EventModeChanged))
}

func TestPlayerService_SetVolumeNotClamped(t *testing.T) {
	player, _, rec := newTestPlayer(t)

	player.SetVolume(1.4)
	assert.Equal(t, 1.4, player.Volume())

	player.SetVolume(1.4)
	assert.Equal(t, 1, rec.count(domain.EventVolumeChanged))
}

func TestPlayerService_CurrentTimeIgnoredWhenEmpty(t *testing.T) {
	player, _, rec := newTestPlayer(t)

	player.SetCurrentTime(time.Second)
	player.SetDuration(time.Minute)

	assert.Zero(t, player.State().Position)
	assert.Empty(t, rec.types())
}

func TestPlayerService_AddToQueue(t *testing.T) {
	player, _, _ := newTestPlayer(t)

	player.AddToQueue(makeTrack("a"))
	state := player.State()
	assertConsistent(t, state)
	assert.Equal(t, 0, state.CurrentIndex)

	player.AddToQueue(makeTrack("b"))
	state = player.State()
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Len(t, state.Queue, 2)
}

func TestPlayerService_InsertNext(t *testing.T) {
	player, _, _ := newTestPlayer(t)

	player.InsertNext(makeTrack("x"))
	assert.Equal(t, "x", player.CurrentTrack().ID)

	player.SetQueue(makeTracks(3), 1)
	player.InsertNext(makeTrack("x"))

	state := player.State()
	assertConsistent(t, state)
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Equal(t, "t1", state.CurrentTrack.ID)
	assert.Equal(t, "x", state.Queue[2].ID)
	assert.Len(t, state.Queue, 4)
}

// removeFromQueue index shift.
func TestPlayerService_RemoveFromQueue(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		remove    int
		wantIndex int
		wantID    string
	}{
		{name: "before current", current: 2, remove: 0, wantIndex: 1, wantID: "t2"},
		{name: "after current", current: 1, remove: 3, wantIndex: 1, wantID: "t1"},
		{name: "current in middle", current: 1, remove: 1, wantIndex: 1, wantID: "t2"},
		{name: "current at end", current: 3, remove: 3, wantIndex: 2, wantID: "t2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player, _, _ := newTestPlayer(t)
			player.SetQueue(makeTracks(4), tt.current)

			require.True(t, player.RemoveFromQueue(tt.remove))

			state := player.State()
			assertConsistent(t, state)
			assert.Len(t, state.Queue, 3)
			assert.Equal(t, tt.wantIndex, state.CurrentIndex)
			assert.Equal(t, tt.wantID, state.CurrentTrack.ID)
		})
	}
}

func TestPlayerService_RemoveFromQueueOutOfRange(t *testing.T) {
	player, _, rec := newTestPlayer(t)
	player.SetQueue(makeTracks(2), 1)
	rec.reset()

	assert.False(t, player.RemoveFromQueue(2))
	assert.False(t, player.RemoveFromQueue(-1))

	assert.Len(t, player.Queue(), 2)
	assert.Empty(t, rec.types())
}

func TestPlayerService_RemoveLastTrackEmptiesQueue(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	player.SetQueue(makeTracks(1), 0)
	player.SetIsPlaying(true)

	require.True(t, player.RemoveFromQueue(0))

	state := player.State()
	assertConsistent(t, state)
	assert.Equal(t, domain.StatusEmpty, state.Status())
}

func TestPlayerService_MoveInQueue(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	player.SetQueue(makeTracks(4), 1)

	require.True(t, player.MoveInQueue(1, 3))
	state := player.State()
	assertConsistent(t, state)
	assert.Equal(t, 3, state.CurrentIndex)
	assert.Equal(t, "t1", state.CurrentTrack.ID)

	require.True(t, player.MoveInQueue(0, 3))
	state = player.State()
	assertConsistent(t, state)
	assert.Equal(t, "t1", state.CurrentTrack.ID)
	assert.Equal(t, 2, state.CurrentIndex)

	assert.False(t, player.MoveInQueue(0, 9))
}

func TestPlayerService_JumpTo(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	player.SetQueue(makeTracks(3), 0)

	assert.True(t, player.JumpTo(2))
	assert.Equal(t, "t2", player.CurrentTrack().ID)
	assert.False(t, player.JumpTo(3))
}

// Queue/current consistency over a random sequence of operations.
func TestPlayerService_InvariantUnderRandomOperations(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	r := rand.New(rand.NewPCG(42, 42))
	pool := makeTracks(8)

	for i := 0; i < 2000; i++ {
		switch r.IntN(11) {
		case 0:
			n := r.IntN(6)
			player.SetQueue(pool[:n], r.IntN(8)-1)
		case 1:
			player.SetCurrentSong(pool[r.IntN(len(pool))])
		case 2:
			player.PlayNext()
		case 3:
			player.PlayPrevious()
		case 4:
			player.RemoveFromQueue(r.IntN(8) - 1)
		case 5:
			player.AddToQueue(pool[r.IntN(len(pool))])
		case 6:
			player.ToggleShuffle()
		case 7:
			player.ToggleRepeat()
		case 8:
			player.TogglePlay()
		case 9:
			player.MoveInQueue(r.IntN(6), r.IntN(6))
		case 10:
			player.ClearQueue()
		}
		assertConsistent(t, player.State())
	}
}

// S1/S2/S3 scenario: a three-track queue played through next, previous and shuffle.
func TestPlayerService_Scenario(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	a, b, c := makeTrack("A"), makeTrack("B"), makeTrack("C")

	player.SetQueue([]domain.Track{a, b, c}, 0)
	player.SetIsPlaying(true)

	player.PlayNext()
	assert.Equal(t, "B", player.CurrentTrack().ID)
	player.PlayNext()
	assert.Equal(t, "C", player.CurrentTrack().ID)
	player.PlayNext()
	assert.Equal(t, "A", player.CurrentTrack().ID)

	player.PlayPrevious()
	assert.Equal(t, "C", player.CurrentTrack().ID)

	player.ToggleShuffle()
	for i := 0; i < 10; i++ {
		player.PlayNext()
		state := player.State()
		assertConsistent(t, state)
		assert.Contains(t, []string{"A", "B", "C"}, state.CurrentTrack.ID)
	}
	assert.True(t, player.IsPlaying())
}

func TestPlayerService_SaveAndLoadQueue(t *testing.T) {
	player, _, _ := newTestPlayer(t)
	player.SetQueue(makeTracks(3), 2)
	player.SetIsPlaying(true)

	require.NoError(t, player.SaveQueue())

	player.ClearQueue()
	require.NoError(t, player.LoadQueue())

	state := player.State()
	assertConsistent(t, state)
	assert.Len(t, state.Queue, 3)
	assert.Equal(t, 2, state.CurrentIndex)
	assert.False(t, state.IsPlaying)
}

func TestPlayerService_WithoutHistory(t *testing.T) {
	player, bus, _ := newTestPlayer(t)
	player = NewPlayerService(player.logger, bus, nil, nil)

	assert.NoError(t, player.SaveQueue())
	assert.NoError(t, player.LoadQueue())
}
