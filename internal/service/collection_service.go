package service

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// CollectionService manages the user's library: playlists, liked songs and
// recently played tracks. It is independent of playback; callers record
// plays explicitly.
//
// When repositories are provided, every mutation is written through. A
// persistence failure is logged and the in-memory state stays authoritative.
type CollectionService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	bus       ports.EventBus
	playlists ports.PlaylistRepository
	lists     ports.TrackListRepository
	now       func() time.Time

	// State
	library []*domain.Playlist
	byID    map[string]*domain.Playlist
	liked   []domain.Track
	recent  []domain.Track

	// Concurrency control
	mu sync.RWMutex
}

// NewCollectionService creates the collection service and loads saved state.
// Either repository may be nil for a purely in-memory library. A library that
// was never initialized starts with the default playlists.
func NewCollectionService(
	logger *slog.Logger,
	bus ports.EventBus,
	playlists ports.PlaylistRepository,
	lists ports.TrackListRepository,
) *CollectionService {
	s := &CollectionService{
		logger:    logger.With(slog.String("service", "collection")),
		bus:       bus,
		playlists: playlists,
		lists:     lists,
		now:       time.Now,
		byID:      make(map[string]*domain.Playlist),
	}

	if !s.load() {
		s.seed()
	}

	s.logger.Debug("collection service initialized",
		slog.Int("playlists", len(s.library)),
		slog.Int("liked", len(s.liked)),
		slog.Int("recent", len(s.recent)))

	return s
}

// DefaultPlaylists returns the playlists a fresh library starts with.
func DefaultPlaylists(now time.Time) []*domain.Playlist {
	return []*domain.Playlist{
		{
			ID:          "1",
			Name:        "My Favorites",
			Description: "Your favorite songs",
			ArtworkURL:  domain.FavoritesArtworkURL,
			Tracks:      []domain.Track{},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "2",
			Name:        "Workout Mix",
			Description: "High energy tracks for your workout",
			ArtworkURL:  domain.WorkoutArtworkURL,
			Tracks:      []domain.Track{},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// load reads saved state. It reports false when the library was never
// initialized; the liked list is written on first start and marks that.
func (s *CollectionService) load() bool {
	if s.playlists == nil || s.lists == nil {
		return false
	}

	liked, initialized, err := s.lists.LoadTracks(ports.TrackListLiked)
	if err != nil {
		s.logger.Warn("failed to load liked songs", slog.Any("error", err))
		return false
	}
	if !initialized {
		return false
	}

	saved, err := s.playlists.LoadAll()
	if err != nil {
		s.logger.Warn("failed to load playlists", slog.Any("error", err))
	}
	for _, p := range saved {
		s.library = append(s.library, p)
		s.byID[p.ID] = p
	}

	recent, _, err := s.lists.LoadTracks(ports.TrackListRecentlyPlayed)
	if err != nil {
		s.logger.Warn("failed to load recently played", slog.Any("error", err))
	}
	if len(recent) > domain.RecentlyPlayedLimit {
		recent = recent[:domain.RecentlyPlayedLimit]
	}

	s.liked = liked
	s.recent = recent
	return true
}

func (s *CollectionService) seed() {
	for _, p := range DefaultPlaylists(s.now()) {
		s.library = append(s.library, p)
		s.byID[p.ID] = p
		s.savePlaylist(p)
	}
	s.liked = []domain.Track{}
	s.recent = []domain.Track{}
	s.saveList(ports.TrackListLiked, s.liked)
}

func (s *CollectionService) savePlaylist(p *domain.Playlist) {
	if s.playlists == nil {
		return
	}
	if err := s.playlists.Save(p.Clone()); err != nil {
		s.logger.Warn("failed to save playlist", slog.String("playlist_id", p.ID), slog.Any("error", err))
	}
}

func (s *CollectionService) saveList(name string, tracks []domain.Track) {
	if s.lists == nil {
		return
	}
	if err := s.lists.SaveTracks(name, slices.Clone(tracks)); err != nil {
		s.logger.Warn("failed to save track list", slog.String("list", name), slog.Any("error", err))
	}
}

// CreatePlaylist appends a new empty playlist. A name that is blank after
// trimming is rejected with a *domain.ValidationError and nothing changes.
func (s *CollectionService) CreatePlaylist(name, description string) (*domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", name, "playlist name must not be blank")
	}

	now := s.now()
	p := &domain.Playlist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		ArtworkURL:  domain.DefaultPlaylistArtworkURL,
		Tracks:      []domain.Track{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.library = append(s.library, p)
	s.byID[p.ID] = p
	s.savePlaylist(p)
	s.mu.Unlock()

	s.logger.Info("playlist created", slog.String("playlist_id", p.ID), slog.String("name", name))
	s.bus.Publish(domain.NewPlaylistUpdatedEvent(p.ID, domain.PlaylistCreated))

	return p.Clone(), nil
}

// DeletePlaylist removes a playlist. Unknown IDs are ignored.
func (s *CollectionService) DeletePlaylist(id string) {
	s.mu.Lock()
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.byID, id)
	s.library = slices.DeleteFunc(s.library, func(p *domain.Playlist) bool { return p.ID == id })
	if s.playlists != nil {
		if err := s.playlists.Delete(id); err != nil {
			s.logger.Warn("failed to delete playlist", slog.String("playlist_id", id), slog.Any("error", err))
		}
	}
	s.mu.Unlock()

	s.logger.Info("playlist deleted", slog.String("playlist_id", id))
	s.bus.Publish(domain.NewPlaylistUpdatedEvent(id, domain.PlaylistDeleted))
}

// AddSongToPlaylist appends track to the playlist. Duplicates are allowed.
// Unknown playlists are ignored.
func (s *CollectionService) AddSongToPlaylist(playlistID string, track domain.Track) {
	s.mu.Lock()
	p, ok := s.byID[playlistID]
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("add to unknown playlist ignored", slog.String("playlist_id", playlistID))
		return
	}
	p.Tracks = append(p.Tracks, track)
	p.UpdatedAt = s.now()
	s.savePlaylist(p)
	s.mu.Unlock()

	s.bus.Publish(domain.NewPlaylistUpdatedEvent(playlistID, domain.PlaylistTrackAdded))
}

// RemoveSongFromPlaylist removes every occurrence of the track from the playlist.
// Unknown playlists and tracks are ignored.
func (s *CollectionService) RemoveSongFromPlaylist(playlistID, trackID string) {
	s.mu.Lock()
	p, ok := s.byID[playlistID]
	if !ok {
		s.mu.Unlock()
		return
	}
	before := len(p.Tracks)
	p.Tracks = slices.DeleteFunc(p.Tracks, func(t domain.Track) bool { return t.ID == trackID })
	if len(p.Tracks) == before {
		s.mu.Unlock()
		return
	}
	p.UpdatedAt = s.now()
	s.savePlaylist(p)
	s.mu.Unlock()

	s.bus.Publish(domain.NewPlaylistUpdatedEvent(playlistID, domain.PlaylistTrackRemoved))
}

// ToggleLikedSong likes an unliked track or unlikes a liked one, and returns
// the new liked state.
func (s *CollectionService) ToggleLikedSong(track domain.Track) bool {
	s.mu.Lock()
	liked := true
	if i := domain.IndexOfTrack(s.liked, track.ID); i >= 0 {
		s.liked = slices.Delete(s.liked, i, i+1)
		liked = false
	} else {
		s.liked = append(s.liked, track)
	}
	s.saveList(ports.TrackListLiked, s.liked)
	s.mu.Unlock()

	s.bus.Publish(domain.NewLikedSongsChangedEvent(track, liked))
	return liked
}

// AddToRecentlyPlayed moves track to the front of recently played, dropping
// any earlier entry for it and anything beyond domain.RecentlyPlayedLimit.
func (s *CollectionService) AddToRecentlyPlayed(track domain.Track) {
	s.mu.Lock()
	recent := make([]domain.Track, 0, min(len(s.recent)+1, domain.RecentlyPlayedLimit))
	recent = append(recent, track)
	for _, t := range s.recent {
		if len(recent) == domain.RecentlyPlayedLimit {
			break
		}
		if t.ID != track.ID {
			recent = append(recent, t)
		}
	}
	s.recent = recent
	s.saveList(ports.TrackListRecentlyPlayed, s.recent)
	snapshot := slices.Clone(s.recent)
	s.mu.Unlock()

	s.bus.Publish(domain.NewRecentlyPlayedChangedEvent(snapshot))
}

// IsLiked reports whether the track is in liked songs.
func (s *CollectionService) IsLiked(trackID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.IndexOfTrack(s.liked, trackID) >= 0
}

// Playlists returns copies of all playlists in creation order.
func (s *CollectionService) Playlists() []*domain.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Playlist, len(s.library))
	for i, p := range s.library {
		out[i] = p.Clone()
	}
	return out
}

// Playlist returns a copy of the playlist with the given ID.
func (s *CollectionService) Playlist(id string) (*domain.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrPlaylistNotFound
	}
	return p.Clone(), nil
}

// LikedSongs returns the liked tracks in the order they were liked.
func (s *CollectionService) LikedSongs() []domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.liked)
}

// RecentlyPlayed returns recently played tracks, most recent first.
func (s *CollectionService) RecentlyPlayed() []domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.recent)
}
