package prefs

import (
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

func newTestPrefs(t *testing.T) fyne.Preferences {
	t.Helper()
	return test.NewApp().Preferences()
}

func sampleTrack(id string) domain.Track {
	return domain.Track{
		ID:         id,
		Title:      "Title " + id,
		Artist:     "Artist",
		Duration:   3 * time.Minute,
		ArtworkURL: domain.FallbackArtworkURL,
		MediaURL:   "https://media.example.com/" + id + ".mp3",
	}
}

func TestPlaylistRepository_SaveLoadOrder(t *testing.T) {
	repo := NewPlaylistRepository(newTestPrefs(t), logger.NewTestLogger())

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, repo.Save(&domain.Playlist{ID: id, Name: "P" + id}))
	}
	require.NoError(t, repo.Save(&domain.Playlist{ID: "a", Name: "renamed", Tracks: []domain.Track{sampleTrack("1")}}))

	all, err := repo.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "renamed", all[1].Name)
	require.Len(t, all[1].Tracks, 1)
	assert.Equal(t, 3*time.Minute, all[1].Tracks[0].Duration)

	p, err := repo.Load("a")
	require.NoError(t, err)
	assert.Equal(t, "renamed", p.Name)
}

func TestPlaylistRepository_LoadMissing(t *testing.T) {
	repo := NewPlaylistRepository(newTestPrefs(t), logger.NewTestLogger())

	_, err := repo.Load("nope")

	assert.ErrorIs(t, err, domain.ErrPlaylistNotFound)
	assert.False(t, repo.Exists("nope"))
}

func TestPlaylistRepository_Delete(t *testing.T) {
	repo := NewPlaylistRepository(newTestPrefs(t), logger.NewTestLogger())
	require.NoError(t, repo.Save(&domain.Playlist{ID: "a"}))
	require.NoError(t, repo.Save(&domain.Playlist{ID: "b"}))

	require.NoError(t, repo.Delete("a"))
	require.NoError(t, repo.Delete("missing"))

	assert.False(t, repo.Exists("a"))
	all, err := repo.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].ID)
}

func TestPlaylistRepository_SkipsCorrupted(t *testing.T) {
	prefs := newTestPrefs(t)
	repo := NewPlaylistRepository(prefs, logger.NewTestLogger())
	require.NoError(t, repo.Save(&domain.Playlist{ID: "a"}))
	require.NoError(t, repo.Save(&domain.Playlist{ID: "b"}))
	prefs.SetString(keyPlaylistPrefix+"a", "{broken")

	all, err := repo.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].ID)

	_, err = repo.Load("a")
	var rerr *domain.RepositoryError
	assert.ErrorAs(t, err, &rerr)
}

func TestTrackListRepository(t *testing.T) {
	repo := NewTrackListRepository(newTestPrefs(t))

	tracks, saved, err := repo.LoadTracks(ports.TrackListLiked)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Empty(t, tracks)

	require.NoError(t, repo.SaveTracks(ports.TrackListLiked, nil))
	tracks, saved, err = repo.LoadTracks(ports.TrackListLiked)
	require.NoError(t, err)
	assert.True(t, saved, "an empty list still counts as saved")
	assert.Empty(t, tracks)

	require.NoError(t, repo.SaveTracks(ports.TrackListRecentlyPlayed, []domain.Track{sampleTrack("x"), sampleTrack("y")}))
	tracks, _, err = repo.LoadTracks(ports.TrackListRecentlyPlayed)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "x", tracks[0].ID)
}

func TestHistoryRepository(t *testing.T) {
	repo := NewHistoryRepository(newTestPrefs(t))

	index, err := repo.LoadCurrentIndex()
	require.NoError(t, err)
	assert.Equal(t, -1, index)
	queue, err := repo.LoadQueue()
	require.NoError(t, err)
	assert.Empty(t, queue)

	require.NoError(t, repo.SaveQueue([]domain.Track{sampleTrack("a"), sampleTrack("b")}))
	require.NoError(t, repo.SaveCurrentIndex(0))

	index, _ = repo.LoadCurrentIndex()
	assert.Equal(t, 0, index)
	queue, _ = repo.LoadQueue()
	assert.Len(t, queue, 2)

	require.NoError(t, repo.Clear())
	index, _ = repo.LoadCurrentIndex()
	assert.Equal(t, -1, index)
}

func TestPreferencesRepository(t *testing.T) {
	repo := NewPreferencesRepository(newTestPrefs(t))

	vol, err := repo.LoadVolume()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultVolume, vol)

	require.NoError(t, repo.SaveVolume(0))
	vol, _ = repo.LoadVolume()
	assert.Equal(t, 0.0, vol)

	assert.Error(t, repo.SaveVolume(1.2))

	require.NoError(t, repo.SaveShuffle(true))
	require.NoError(t, repo.SaveRepeat(true))
	shuffle, _ := repo.LoadShuffle()
	repeat, _ := repo.LoadRepeat()
	assert.True(t, shuffle)
	assert.True(t, repeat)

	require.NoError(t, repo.Clear())
	vol, _ = repo.LoadVolume()
	shuffle, _ = repo.LoadShuffle()
	assert.Equal(t, domain.DefaultVolume, vol)
	assert.False(t, shuffle)
}

func TestSearchHistoryRepository(t *testing.T) {
	prefs := newTestPrefs(t)
	repo := NewSearchHistoryRepository(prefs)

	terms, err := repo.LoadTerms()
	require.NoError(t, err)
	assert.Empty(t, terms)

	require.NoError(t, repo.SaveTerms([]string{"jazz", "lofi"}))
	assert.JSONEq(t, `["jazz","lofi"]`, prefs.String(KeyRecentSearches))

	terms, _ = repo.LoadTerms()
	assert.Equal(t, []string{"jazz", "lofi"}, terms)

	require.NoError(t, repo.Clear())
	terms, _ = repo.LoadTerms()
	assert.Empty(t, terms)
}

func TestNewRepositories(t *testing.T) {
	repos := NewRepositories(newTestPrefs(t), logger.NewTestLogger())

	assert.NotNil(t, repos.Playlists)
	assert.NotNil(t, repos.TrackLists)
	assert.NotNil(t, repos.History)
	assert.NotNil(t, repos.Preferences)
	assert.NotNil(t, repos.SearchHistory)
}
