package service

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/tejashwikalptaru/tunestream/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
)

// Mock repositories for testing

type mockPlaylistRepository struct {
	mu        sync.RWMutex
	order     []string
	playlists map[string]*domain.Playlist
	saveErr   error
}

func newMockPlaylistRepository() *mockPlaylistRepository {
	return &mockPlaylistRepository{
		playlists: make(map[string]*domain.Playlist),
	}
}

func (m *mockPlaylistRepository) Save(playlist *domain.Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.playlists[playlist.ID]; !ok {
		m.order = append(m.order, playlist.ID)
	}
	m.playlists[playlist.ID] = playlist.Clone()
	return nil
}

func (m *mockPlaylistRepository) Load(id string) (*domain.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	playlist, ok := m.playlists[id]
	if !ok {
		return nil, domain.ErrPlaylistNotFound
	}
	return playlist.Clone(), nil
}

func (m *mockPlaylistRepository) LoadAll() ([]*domain.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	playlists := make([]*domain.Playlist, 0, len(m.order))
	for _, id := range m.order {
		playlists = append(playlists, m.playlists[id].Clone())
	}
	return playlists, nil
}

func (m *mockPlaylistRepository) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.playlists, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return nil
}

func (m *mockPlaylistRepository) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.playlists[id]
	return ok
}

type mockTrackListRepository struct {
	mu    sync.RWMutex
	lists map[string][]domain.Track
}

func newMockTrackListRepository() *mockTrackListRepository {
	return &mockTrackListRepository{lists: make(map[string][]domain.Track)}
}

func (m *mockTrackListRepository) SaveTracks(list string, tracks []domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[list] = slices.Clone(tracks)
	return nil
}

func (m *mockTrackListRepository) LoadTracks(list string) ([]domain.Track, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tracks, ok := m.lists[list]
	return slices.Clone(tracks), ok, nil
}

type mockHistoryRepository struct {
	mu           sync.RWMutex
	queue        []domain.Track
	currentIndex int
}

func newMockHistoryRepository() *mockHistoryRepository {
	return &mockHistoryRepository{
		queue:        make([]domain.Track, 0),
		currentIndex: -1,
	}
}

func (m *mockHistoryRepository) SaveQueue(tracks []domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = slices.Clone(tracks)
	return nil
}

func (m *mockHistoryRepository) LoadQueue() ([]domain.Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.queue), nil
}

func (m *mockHistoryRepository) SaveCurrentIndex(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentIndex = index
	return nil
}

func (m *mockHistoryRepository) LoadCurrentIndex() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentIndex, nil
}

func (m *mockHistoryRepository) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = nil
	m.currentIndex = -1
	return nil
}

type mockPreferencesRepository struct {
	mu      sync.RWMutex
	volume  *float64
	shuffle bool
	repeat  bool
}

func newMockPreferencesRepository() *mockPreferencesRepository {
	return &mockPreferencesRepository{}
}

func (m *mockPreferencesRepository) SaveVolume(volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = &volume
	return nil
}

func (m *mockPreferencesRepository) LoadVolume() (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.volume == nil {
		return domain.DefaultVolume, nil
	}
	return *m.volume, nil
}

func (m *mockPreferencesRepository) SaveShuffle(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shuffle = enabled
	return nil
}

func (m *mockPreferencesRepository) LoadShuffle() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shuffle, nil
}

func (m *mockPreferencesRepository) SaveRepeat(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repeat = enabled
	return nil
}

func (m *mockPreferencesRepository) LoadRepeat() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.repeat, nil
}

func (m *mockPreferencesRepository) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = nil
	m.shuffle = false
	m.repeat = false
	return nil
}

type mockSearchHistoryRepository struct {
	mu    sync.RWMutex
	terms []string
}

func (m *mockSearchHistoryRepository) SaveTerms(terms []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terms = slices.Clone(terms)
	return nil
}

func (m *mockSearchHistoryRepository) LoadTerms() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.terms), nil
}

func (m *mockSearchHistoryRepository) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terms = nil
	return nil
}

// Helper functions

func makeTrack(id string) domain.Track {
	return domain.Track{
		ID:       id,
		Title:    "Title " + id,
		Artist:   "Artist " + id,
		Album:    "Album " + id,
		Duration: 3 * time.Minute,
		MediaURL: "https://media.example.com/" + id + ".mp3",
	}
}

func makeTracks(n int) []domain.Track {
	tracks := make([]domain.Track, n)
	for i := range tracks {
		tracks[i] = makeTrack(fmt.Sprintf("t%d", i))
	}
	return tracks
}

// eventRecorder collects every event published on a bus.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *eventRecorder) handle(e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type()
	}
	return out
}

func (r *eventRecorder) count(t domain.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type() == t {
			n++
		}
	}
	return n
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func newTestPlayer(t *testing.T) (*PlayerService, *eventbus.SyncEventBus, *eventRecorder) {
	t.Helper()
	return newTestPlayerWithSeed(t, 1)
}

func newTestPlayerWithSeed(t *testing.T, seed uint64) (*PlayerService, *eventbus.SyncEventBus, *eventRecorder) {
	t.Helper()
	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	t.Cleanup(func() { _ = bus.Close() })

	rec := &eventRecorder{}
	bus.SubscribeAll(rec.handle)

	player := NewPlayerService(logger.NewTestLogger(), bus, newMockHistoryRepository(), rand.New(rand.NewPCG(seed, seed)))
	return player, bus, rec
}

// assertConsistent checks the queue/current-track invariant.
func assertConsistent(t *testing.T, s domain.PlaybackState) {
	t.Helper()
	if len(s.Queue) == 0 {
		if s.CurrentIndex != -1 || s.CurrentTrack != nil {
			t.Fatalf("empty queue must have index -1 and no track, got %d %v", s.CurrentIndex, s.CurrentTrack)
		}
		if s.IsPlaying {
			t.Fatalf("empty queue must not be playing")
		}
		return
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Queue) {
		t.Fatalf("index %d out of range for queue of %d", s.CurrentIndex, len(s.Queue))
	}
	if s.CurrentTrack == nil || s.CurrentTrack.ID != s.Queue[s.CurrentIndex].ID {
		t.Fatalf("current track %v does not match queue[%d]", s.CurrentTrack, s.CurrentIndex)
	}
}
